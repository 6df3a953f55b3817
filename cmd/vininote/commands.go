package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/quiz"
	"github.com/sakif/vininote/internal/store"
)

// =============================================================================
// tastings
// =============================================================================

func newTastingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tastings",
		Short: "List, export or clear tastings",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List tastings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			favs := a.favorites.IDs(cmd.Context())
			return printTastings(cmd.OutOrStdout(), a.tastings.List(cmd.Context(), query), favs)
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "filter like the library search box")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write every tasting as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.tastings.List(cmd.Context(), ""))
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "DANGER: delete every tasting and favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			n := len(a.tastings.List(cmd.Context(), ""))
			if err := a.tastings.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d tastings\n", n)
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one tasting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := a.tastings.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, export, clearCmd, remove)
	return cmd
}

func printTastings(w io.Writer, ts []model.Tasting, favorites []string) error {
	fav := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		fav[id] = true
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tWINE\tCOLOR\tSTARS\tFAV")
	for _, t := range ts {
		star := ""
		if fav[t.ID] {
			star = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			t.ID, t.CreatedAt, t.Title(), t.Wine.Color, t.Conclusion.Stars, star)
	}
	return tw.Flush()
}

// =============================================================================
// favorites
// =============================================================================

func newFavoritesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "List or repair favorites",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List favorite tastings in the order they were starred",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts := a.favorites.ListTastings(cmd.Context(), "")
			return printTastings(cmd.OutOrStdout(), ts, a.favorites.IDs(cmd.Context()))
		},
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Drop favorite ids whose tasting no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.favorites.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d favorites\n", n)
			return nil
		},
	}

	cmd.AddCommand(list, prune)
	return cmd
}

// =============================================================================
// profile
// =============================================================================

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect the stored profile",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored profile as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := a.journal.Profile.Get(cmd.Context())
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no profile (logged out)")
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}

	cmd.AddCommand(show)
	return cmd
}

// =============================================================================
// quiz
// =============================================================================

func newQuizCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Show or reset quiz progress",
	}

	progress := &cobra.Command{
		Use:   "progress [topic]",
		Short: "Show progress for one topic or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topics := quiz.Topics()
			if len(args) == 1 {
				t, ok := quiz.Lookup(args[0])
				if !ok {
					return apperror.NotFound("quiz topic", args[0])
				}
				topics = []quiz.Topic{t}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOPIC\tPASSED\tBEST\tATTEMPTS\tXP")
			for _, t := range topics {
				p, err := a.quizzes.Progress(cmd.Context(), t.Slug)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d\t%d\n",
					t.Slug, strconv.FormatBool(p.Passed), p.BestScore, len(t.Questions), p.Attempts, p.XP)
			}
			return tw.Flush()
		},
	}

	reset := &cobra.Command{
		Use:   "reset <topic>",
		Short: "Forget the stored progress of a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.quizzes.ResetProgress(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(progress, reset)
	return cmd
}

// =============================================================================
// keys
// =============================================================================

func newKeysCmd(a *app) *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the storage keys with their value sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := a.backend.Keys(cmd.Context(), prefix)
			if err != nil {
				return fmt.Errorf("listing keys: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tBYTES\tKIND")
			for _, k := range keys {
				v, _, err := a.backend.Get(cmd.Context(), k)
				if err != nil {
					return fmt.Errorf("reading %s: %w", k, err)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", k, len(v), keyKind(k))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "only keys starting with this prefix")
	return cmd
}

func keyKind(k string) string {
	switch {
	case k == store.KeyTastings:
		return "tastings"
	case k == store.KeyFavorites:
		return "favorites"
	case k == store.KeyProfile:
		return "profile"
	case strings.HasPrefix(k, "learn:"):
		return "quiz progress"
	}
	return "-"
}
