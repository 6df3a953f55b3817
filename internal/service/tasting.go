// Package service contains the business rules of the journal.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the key-value store
//
// Services accept primitives and domain types, never *http.Request, so the
// same code serves the HTTP API and the vininote CLI. They return
// apperror values; the handler turns those into status codes.
//
// THE DEPENDENCY CHAIN:
//
//	main.go creates:  kv.Backend → store.Journal → Service → Handler
//	At runtime:       Handler calls Service calls Journal calls Backend
//
// Every service takes repository interfaces, not *store.Journal, so tests
// pass small in-memory fakes instead (see fakes_test.go).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/repository"
)

// Quick note defaults. Unlike the wizard, tannins start at 0 and
// sweetness at 1.
const (
	QuickAcidity     = 3
	QuickBody        = 3
	QuickTannins     = 0
	QuickSweetness   = 1
	QuickAlcoholHeat = 3
	QuickStars       = 3
)

// Home calls to action.
const (
	CTAStart = "start"
	CTANew   = "new"
)

var ctaLabels = map[string]string{
	CTAStart: "Commencer",
	CTANew:   "Nouvelle dégustation",
}

// validate is shared by every service. It is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// TastingService handles the tasting library.
type TastingService struct {
	tastings  repository.TastingRepository
	favorites repository.FavoriteRepository
	previews  Revoker
	logger    *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewTastingService creates a TastingService. favorites is used to drop a
// deleted tasting from the favorite set, previews to release its photo.
func NewTastingService(tastings repository.TastingRepository, favorites repository.FavoriteRepository, previews Revoker, logger *slog.Logger) *TastingService {
	return &TastingService{
		tastings:  tastings,
		favorites: favorites,
		previews:  previews,
		logger:    logger,
		now:       time.Now,
		newID:     NewTastingID,
	}
}

// NewTastingID returns a fresh, sortable tasting id.
func NewTastingID() string { return xid.New().String() }

// List returns the library, newest first, filtered by query. See Filter.
func (s *TastingService) List(ctx context.Context, query string) []model.Tasting {
	return Filter(s.tastings.List(ctx), query)
}

// Filter keeps the tastings whose text fields contain query, ignoring case
// and surrounding blanks. A blank query keeps everything.
//
// The searched text is name, year, color, region, appellation, grapes,
// aromas and comment joined by single spaces, so a query can straddle two
// fields ("2019 rouge").
func Filter(ts []model.Tasting, query string) []model.Tasting {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ts
	}

	out := make([]model.Tasting, 0, len(ts))
	for _, t := range ts {
		if strings.Contains(haystack(t), q) {
			out = append(out, t)
		}
	}
	return out
}

func haystack(t model.Tasting) string {
	comment := ""
	if t.Conclusion.Comment != nil {
		comment = *t.Conclusion.Comment
	}
	return strings.ToLower(strings.Join([]string{
		t.Wine.Name,
		t.Wine.Year,
		string(t.Wine.Color),
		t.Wine.Region,
		t.Wine.Appellation,
		strings.Join(t.Wine.Grapes, " "),
		strings.Join(t.Aromas, " "),
		comment,
	}, " "))
}

// GetByID returns one tasting or apperror.ErrNotFound.
func (s *TastingService) GetByID(ctx context.Context, id string) (model.Tasting, error) {
	t, ok := s.tastings.GetByID(ctx, strings.TrimSpace(id))
	if !ok {
		return model.Tasting{}, apperror.NotFound("tasting", id)
	}
	return t, nil
}

// QuickNote saves a tasting from the home page form: a name, an optional
// four-digit year, and fixed defaults for everything else.
func (s *TastingService) QuickNote(ctx context.Context, name, year string) (model.Tasting, error) {
	name = strings.TrimSpace(name)
	year = strings.TrimSpace(year)

	if name == "" {
		return model.Tasting{}, apperror.ValidationFailed("name", "wine name is required")
	}
	if err := validate.Var(year, "omitempty,len=4,number"); err != nil {
		return model.Tasting{}, apperror.ValidationFailed("year", "invalid year (format: 2021)")
	}

	t := model.Tasting{
		ID:        s.newID(),
		CreatedAt: model.FormatCreatedAt(s.now()),
		Wine: model.Wine{
			Year:   year,
			Name:   name,
			Color:  model.ColorNone,
			Grapes: []string{},
		},
		Structure: model.Structure{
			Acidity:     QuickAcidity,
			Body:        QuickBody,
			Tannins:     model.IntPtr(QuickTannins),
			Sweetness:   QuickSweetness,
			AlcoholHeat: QuickAlcoholHeat,
		},
		Aromas: []string{},
		Conclusion: model.Conclusion{
			Stars:   QuickStars,
			Comment: model.StringPtr(""),
		},
	}

	if err := s.tastings.Insert(ctx, t); err != nil {
		s.logger.Error("failed to save quick note",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return model.Tasting{}, fmt.Errorf("saving quick note: %w", err)
	}

	s.logger.Info("quick note saved", slog.String("id", t.ID), slog.String("name", name))
	return t, nil
}

// Save inserts a new tasting at the head of the library. The id must be
// set and unused.
func (s *TastingService) Save(ctx context.Context, t model.Tasting) error {
	if t.ID == "" {
		return apperror.ValidationFailed("id", "tasting id is required")
	}
	if _, exists := s.tastings.GetByID(ctx, t.ID); exists {
		return apperror.Conflict("tasting", t.ID)
	}
	if err := s.tastings.Insert(ctx, t); err != nil {
		return fmt.Errorf("saving tasting: %w", err)
	}
	s.logger.Info("tasting saved", slog.String("id", t.ID), slog.String("title", t.Title()))
	return nil
}

// Replace overwrites the tasting with t.ID. Nothing is merged.
func (s *TastingService) Replace(ctx context.Context, t model.Tasting) error {
	ok, err := s.tastings.Replace(ctx, t)
	if err != nil {
		return fmt.Errorf("replacing tasting: %w", err)
	}
	if !ok {
		return apperror.NotFound("tasting", t.ID)
	}
	s.logger.Info("tasting replaced", slog.String("id", t.ID))
	return nil
}

// Delete removes a tasting, its favorite mark and its photo preview.
func (s *TastingService) Delete(ctx context.Context, id string) error {
	cur, found := s.tastings.GetByID(ctx, id)
	ok, err := s.tastings.RemoveByID(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting tasting: %w", err)
	}
	if !ok {
		return apperror.NotFound("tasting", id)
	}
	if found {
		s.revokePhoto(cur)
	}

	// A stale favorite id is never shown: favorites join against the library.
	if err := s.favorites.Set(ctx, id, false); err != nil {
		s.logger.Warn("failed to unfavorite deleted tasting",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("tasting deleted", slog.String("id", id))
	return nil
}

// Clear empties the library and the favorite set, releasing every photo
// preview the library held.
func (s *TastingService) Clear(ctx context.Context) error {
	all := s.tastings.List(ctx)
	if err := s.tastings.Clear(ctx); err != nil {
		return fmt.Errorf("clearing tastings: %w", err)
	}
	for _, t := range all {
		s.revokePhoto(t)
	}
	if err := s.favorites.Clear(ctx); err != nil {
		return fmt.Errorf("clearing favorites: %w", err)
	}
	s.logger.Info("library cleared")
	return nil
}

func (s *TastingService) revokePhoto(t model.Tasting) {
	if s.previews != nil && t.Wine.PhotoURL != nil {
		s.previews.Revoke(*t.Wine.PhotoURL)
	}
}

// Summary is what the home page needs.
type Summary struct {
	Count    int             `json:"count"`
	CTA      string          `json:"cta"`
	CTALabel string          `json:"ctaLabel"`
	Latest   []model.Tasting `json:"latest"`
}

// LatestOnHome is how many recent tastings the home page lists.
const LatestOnHome = 3

// Summary returns the tasting count and the call to action: "start" for
// an empty journal, "new" otherwise.
func (s *TastingService) Summary(ctx context.Context) Summary {
	ts := s.tastings.List(ctx)

	sum := Summary{Count: len(ts), CTA: CTANew, Latest: ts[:min(len(ts), LatestOnHome)]}
	if sum.Count == 0 {
		sum.CTA = CTAStart
	}
	sum.CTALabel = ctaLabels[sum.CTA]
	return sum
}
