package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/logger"
	"github.com/sakif/vininote/internal/model"
)

func newTestFavoriteService() (*FavoriteService, *fakeFavorites, *fakeTastings) {
	favs := &fakeFavorites{}
	tastings := &fakeTastings{items: []model.Tasting{
		tasting("a", "Morgon"), tasting("b", "Fleurie"), tasting("c", "Chénas"),
	}}
	return NewFavoriteService(favs, tastings, logger.Discard()), favs, tastings
}

func TestFavoriteToggle_TwiceRestores(t *testing.T) {
	svc, favs, _ := newTestFavoriteService()
	ctx := context.Background()

	on, err := svc.Toggle(ctx, "b")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, svc.Has(ctx, "b"))

	on, err = svc.Toggle(ctx, "b")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, favs.ids)
}

func TestFavoriteToggle_UnknownTasting(t *testing.T) {
	svc, _, _ := newTestFavoriteService()

	_, err := svc.Toggle(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestFavoriteToggle_StaleIDCanBeRemoved(t *testing.T) {
	svc, favs, _ := newTestFavoriteService()
	favs.ids = []string{"ghost"}

	on, err := svc.Toggle(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, on)
	assert.Empty(t, favs.ids)
}

func TestFavoriteSet(t *testing.T) {
	svc, favs, _ := newTestFavoriteService()
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "a", true))
	require.NoError(t, svc.Set(ctx, "a", true))
	assert.Equal(t, []string{"a"}, svc.IDs(ctx))

	assert.ErrorIs(t, svc.Set(ctx, "ghost", true), apperror.ErrNotFound)
	require.NoError(t, svc.Set(ctx, "ghost", false))

	require.NoError(t, svc.Set(ctx, "a", false))
	assert.Empty(t, favs.ids)
}

func TestFavoriteSet_StorageError(t *testing.T) {
	svc, favs, _ := newTestFavoriteService()
	favs.err = errDiskFull

	assert.ErrorIs(t, svc.Set(context.Background(), "a", true), errDiskFull)
}

func TestFavoriteListTastings_LibraryOrderAndFilter(t *testing.T) {
	svc, favs, _ := newTestFavoriteService()
	favs.ids = []string{"c", "ghost", "a"}
	ctx := context.Background()

	var ids []string
	for _, x := range svc.ListTastings(ctx, "") {
		ids = append(ids, x.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids, "library order, dangling ids skipped")

	got := svc.ListTastings(ctx, "CHÉ")
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestFavoritePrune(t *testing.T) {
	svc, favs, _ := newTestFavoriteService()
	favs.ids = []string{"ghost", "a", "gone"}

	n, err := svc.Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a"}, favs.ids)
}
