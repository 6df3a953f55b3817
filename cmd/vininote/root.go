package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/vininote/internal/config"
	"github.com/sakif/vininote/internal/kv"
	"github.com/sakif/vininote/internal/logger"
	"github.com/sakif/vininote/internal/service"
	"github.com/sakif/vininote/internal/store"
)

// opener opens the backend a command works on. main opens the configured
// storage; tests hand in a memory backend.
type opener func(ctx context.Context, driver, path string) (kv.Backend, *slog.Logger, error)

// app is what every subcommand gets once PersistentPreRunE has run.
type app struct {
	backend   kv.Backend
	journal   *store.Journal
	tastings  *service.TastingService
	favorites *service.FavoriteService
	quizzes   *service.QuizService
}

// openFromConfig loads config.Load, applies the --driver/--path overrides
// and opens the backend.
func openFromConfig(ctx context.Context, driver, path string) (kv.Backend, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if driver != "" {
		cfg.Storage.Driver = driver
	}
	if path != "" {
		cfg.Storage.Path = path
	}

	log := logger.New(cfg.Log)
	backend, err := kv.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, nil, err
	}
	return backend, log, nil
}

func newRootCmd(open opener) *cobra.Command {
	var (
		driver string
		path   string
		a      = &app{}
	)

	root := &cobra.Command{
		Use:           "vininote",
		Short:         "Inspect and maintain a VinoNote journal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			backend, log, err := open(cmd.Context(), driver, path)
			if err != nil {
				return err
			}
			j := store.NewJournal(backend, log)

			a.backend = backend
			a.journal = j
			// Photo previews live in the server process; the CLI has none to release.
			a.tastings = service.NewTastingService(j.Tastings, j.Favorites, nil, log)
			a.favorites = service.NewFavoriteService(j.Favorites, j.Tastings, log)
			a.quizzes = service.NewQuizService(j, log)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.backend == nil {
				return nil
			}
			return a.backend.Close()
		},
	}

	root.PersistentFlags().StringVar(&driver, "driver", "", "storage driver (sqlite, badger, memory); overrides STORAGE_DRIVER")
	root.PersistentFlags().StringVar(&path, "path", "", "storage path; overrides STORAGE_PATH")

	root.AddCommand(
		newTastingsCmd(a),
		newFavoritesCmd(a),
		newProfileCmd(a),
		newQuizCmd(a),
		newKeysCmd(a),
	)
	return root
}
