// Package repository declares the storage interfaces the services depend on.
//
// The store package implements them over a kv backend; service tests
// implement them with in-memory fakes. Services never import store.
package repository

import (
	"context"

	"github.com/sakif/vininote/internal/model"
)

// TastingRepository is the tasting collection, newest first.
//
// Read methods never fail: unreadable storage reads as empty. Replace and
// RemoveByID report false when no tasting has the id.
type TastingRepository interface {
	List(ctx context.Context) []model.Tasting
	GetByID(ctx context.Context, id string) (model.Tasting, bool)
	Insert(ctx context.Context, t model.Tasting) error
	Replace(ctx context.Context, t model.Tasting) (bool, error)
	RemoveByID(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}

// FavoriteRepository is the set of favorite tasting ids.
type FavoriteRepository interface {
	IDs(ctx context.Context) []string
	Has(ctx context.Context, id string) bool
	Set(ctx context.Context, id string, favorite bool) error
	Toggle(ctx context.Context, id string) (bool, error)
	Prune(ctx context.Context, keep func(id string) bool) (int, error)
	Clear(ctx context.Context) error
}

// ProfileRepository holds the single user profile.
type ProfileRepository interface {
	Get(ctx context.Context) (model.UserProfile, bool)
	Set(ctx context.Context, p model.UserProfile) error
	Update(ctx context.Context, fn func(cur model.UserProfile) (model.UserProfile, error)) (model.UserProfile, error)
	Clear(ctx context.Context) error
}

// ProgressRepository is the stored progress of one quiz topic.
type ProgressRepository interface {
	Get(ctx context.Context) model.QuizProgress
	Record(ctx context.Context, score, earned, passScore int) (model.QuizProgress, error)
	Clear(ctx context.Context) error
}

// ProgressStore resolves a topic storage key to its progress repository.
type ProgressStore interface {
	ProgressFor(key string) ProgressRepository
}
