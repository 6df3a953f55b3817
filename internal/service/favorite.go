package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/repository"
)

// FavoriteService marks tastings as favorites.
//
// The favorite set only stores ids. Marking requires the tasting to exist;
// unmarking never does, so a stale id can always be removed.
type FavoriteService struct {
	favorites repository.FavoriteRepository
	tastings  repository.TastingRepository
	logger    *slog.Logger
}

// NewFavoriteService creates a FavoriteService.
func NewFavoriteService(favorites repository.FavoriteRepository, tastings repository.TastingRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{favorites: favorites, tastings: tastings, logger: logger}
}

// IDs returns the favorite ids in stored order.
func (s *FavoriteService) IDs(ctx context.Context) []string {
	return s.favorites.IDs(ctx)
}

// Has reports whether id is a favorite.
func (s *FavoriteService) Has(ctx context.Context, id string) bool {
	return s.favorites.Has(ctx, id)
}

// Toggle flips id's membership and returns the new state.
func (s *FavoriteService) Toggle(ctx context.Context, id string) (bool, error) {
	if !s.favorites.Has(ctx, id) {
		if _, ok := s.tastings.GetByID(ctx, id); !ok {
			return false, apperror.NotFound("tasting", id)
		}
	}

	on, err := s.favorites.Toggle(ctx, id)
	if err != nil {
		return false, fmt.Errorf("toggling favorite: %w", err)
	}
	s.logger.Info("favorite toggled", slog.String("id", id), slog.Bool("favorite", on))
	return on, nil
}

// Set forces id's membership.
func (s *FavoriteService) Set(ctx context.Context, id string, favorite bool) error {
	if favorite {
		if _, ok := s.tastings.GetByID(ctx, id); !ok {
			return apperror.NotFound("tasting", id)
		}
	}
	if err := s.favorites.Set(ctx, id, favorite); err != nil {
		return fmt.Errorf("setting favorite: %w", err)
	}
	return nil
}

// ListTastings returns the favorite tastings in library order, filtered
// like the library.
func (s *FavoriteService) ListTastings(ctx context.Context, query string) []model.Tasting {
	all := s.tastings.List(ctx)

	favs := make([]model.Tasting, 0, len(all))
	for _, t := range all {
		if s.favorites.Has(ctx, t.ID) {
			favs = append(favs, t)
		}
	}
	return Filter(favs, query)
}

// Prune drops favorite ids whose tasting no longer exists and returns how
// many were dropped.
func (s *FavoriteService) Prune(ctx context.Context) (int, error) {
	known := make(map[string]struct{})
	for _, t := range s.tastings.List(ctx) {
		known[t.ID] = struct{}{}
	}

	n, err := s.favorites.Prune(ctx, func(id string) bool {
		_, ok := known[id]
		return ok
	})
	if err != nil {
		return 0, fmt.Errorf("pruning favorites: %w", err)
	}
	if n > 0 {
		s.logger.Info("stale favorites pruned", slog.Int("count", n))
	}
	return n, nil
}
