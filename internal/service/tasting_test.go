package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/logger"
	"github.com/sakif/vininote/internal/model"
)

var fixedNow = time.Date(2024, 5, 1, 18, 30, 0, 250_000_000, time.UTC)

func newTestTastingService() (*TastingService, *fakeTastings, *fakeFavorites) {
	tastings := &fakeTastings{}
	favorites := &fakeFavorites{}
	svc := NewTastingService(tastings, favorites, &fakePhotos{}, logger.Discard())
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "cp1tasting0000000000" }
	return svc, tastings, favorites
}

// =========================================================================
// QUICK NOTE
// =========================================================================

func TestQuickNote_Defaults(t *testing.T) {
	svc, repo, _ := newTestTastingService()

	got, err := svc.QuickNote(context.Background(), "  Château Musar ", " 2017 ")
	require.NoError(t, err)

	want := model.Tasting{
		ID:        "cp1tasting0000000000",
		CreatedAt: "2024-05-01T18:30:00.250Z",
		Wine: model.Wine{
			Year:   "2017",
			Name:   "Château Musar",
			Color:  model.ColorNone,
			Grapes: []string{},
		},
		Structure: model.Structure{
			Acidity:     3,
			Body:        3,
			Tannins:     model.IntPtr(0),
			Sweetness:   1,
			AlcoholHeat: 3,
		},
		Aromas:     []string{},
		Conclusion: model.Conclusion{Stars: 3, Comment: model.StringPtr("")},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []model.Tasting{want}, repo.items)
}

func TestQuickNote_EmptyYearAllowed(t *testing.T) {
	svc, _, _ := newTestTastingService()

	got, err := svc.QuickNote(context.Background(), "Sancerre", "   ")
	require.NoError(t, err)
	assert.Equal(t, "", got.Wine.Year)
}

func TestQuickNote_Validation(t *testing.T) {
	tests := []struct {
		name      string
		wineName  string
		year      string
		wantField string
	}{
		{"empty name", "", "2021", "name"},
		{"blank name", "   ", "", "name"},
		{"two digit year", "Sancerre", "21", "year"},
		{"five digit year", "Sancerre", "20211", "year"},
		{"letters", "Sancerre", "abcd", "year"},
		{"signed", "Sancerre", "-202", "year"},
		{"fullwidth digits", "Sancerre", "２０２１", "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestTastingService()

			_, err := svc.QuickNote(context.Background(), tt.wineName, tt.year)

			require.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantField, appErr.Field)
			assert.Empty(t, repo.items, "nothing is saved on validation failure")
		})
	}
}

func TestQuickNote_StorageError(t *testing.T) {
	svc, repo, _ := newTestTastingService()
	repo.err = errDiskFull

	_, err := svc.QuickNote(context.Background(), "Sancerre", "")

	assert.ErrorIs(t, err, errDiskFull)
	assert.False(t, errors.Is(err, apperror.ErrValidation))
}

// =========================================================================
// LIBRARY FILTER
// =========================================================================

func TestFilter(t *testing.T) {
	musar := tasting("a", "Château Musar")
	musar.Wine.Year = "2017"
	musar.Wine.Color = model.ColorRed
	musar.Wine.Region = "Bekaa"
	musar.Wine.Grapes = []string{"Cinsault", "Carignan"}

	sancerre := tasting("b", "Sancerre")
	sancerre.Wine.Color = model.ColorWhite
	sancerre.Wine.Appellation = "Sancerre AOC"
	sancerre.Aromas = []string{"Agrumes", "Minéral"}
	sancerre.Conclusion.Comment = model.StringPtr("Très tendu")

	all := []model.Tasting{musar, sancerre}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "b"}},
		{"   ", []string{"a", "b"}},
		{"MUSAR", []string{"a"}},
		{"  bekaa ", []string{"a"}},
		{"2017", []string{"a"}},
		{"rouge", []string{"a"}},
		{"cinsault carignan", []string{"a"}},
		{"aoc", []string{"b"}},
		{"minéral", []string{"b"}},
		{"tendu", []string{"b"}},
		{"2017 rouge", []string{"a"}},
		{"pinot", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var ids []string
			for _, x := range Filter(all, tt.query) {
				ids = append(ids, x.ID)
			}
			if len(tt.want) == 0 {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestList_FiltersRepository(t *testing.T) {
	svc, repo, _ := newTestTastingService()
	repo.items = []model.Tasting{tasting("a", "Morgon"), tasting("b", "Fleurie")}

	got := svc.List(context.Background(), "fleur")

	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

// =========================================================================
// CRUD
// =========================================================================

func TestGetByID_NotFound(t *testing.T) {
	svc, _, _ := newTestTastingService()

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSave_InsertsAtHead(t *testing.T) {
	svc, repo, _ := newTestTastingService()
	repo.items = []model.Tasting{tasting("old", "Morgon")}

	require.NoError(t, svc.Save(context.Background(), tasting("new", "Fleurie")))

	assert.Equal(t, "new", repo.items[0].ID)
	assert.Len(t, repo.items, 2)
}

func TestSave_Rejects(t *testing.T) {
	svc, repo, _ := newTestTastingService()
	repo.items = []model.Tasting{tasting("a", "Morgon")}

	err := svc.Save(context.Background(), tasting("", "Fleurie"))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	err = svc.Save(context.Background(), tasting("a", "Fleurie"))
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Len(t, repo.items, 1)
}

func TestReplace(t *testing.T) {
	svc, repo, _ := newTestTastingService()
	repo.items = []model.Tasting{tasting("a", "Morgon")}

	edited := tasting("a", "Morgon Côte du Py")
	require.NoError(t, svc.Replace(context.Background(), edited))
	assert.Equal(t, edited, repo.items[0])

	err := svc.Replace(context.Background(), tasting("zzz", "Ghost"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDelete_RemovesFavorite(t *testing.T) {
	svc, repo, favs := newTestTastingService()
	repo.items = []model.Tasting{tasting("a", "Morgon"), tasting("b", "Fleurie")}
	favs.ids = []string{"a", "b"}

	require.NoError(t, svc.Delete(context.Background(), "a"))

	assert.Equal(t, []string{"b"}, favs.ids)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "b", repo.items[0].ID)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, favs := newTestTastingService()
	favs.ids = []string{"ghost"}

	err := svc.Delete(context.Background(), "ghost")

	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, []string{"ghost"}, favs.ids)
}

func TestDelete_FavoriteFailureIsNotFatal(t *testing.T) {
	svc, repo, favs := newTestTastingService()
	repo.items = []model.Tasting{tasting("a", "Morgon")}
	favs.ids = []string{"a"}
	favs.err = errDiskFull

	require.NoError(t, svc.Delete(context.Background(), "a"))
	assert.Empty(t, repo.items)
}

func TestClear(t *testing.T) {
	svc, repo, favs := newTestTastingService()
	repo.items = []model.Tasting{tasting("a", "Morgon")}
	favs.ids = []string{"a"}

	require.NoError(t, svc.Clear(context.Background()))

	assert.Empty(t, repo.items)
	assert.Empty(t, favs.ids)
}

func withPhoto(t model.Tasting, url string) model.Tasting {
	t.Wine.PhotoURL = &url
	return t
}

func TestDelete_RevokesPhoto(t *testing.T) {
	svc, repo, _ := newTestTastingService()
	photos := svc.previews.(*fakePhotos)
	repo.items = []model.Tasting{
		withPhoto(tasting("a", "Morgon"), "/previews/a"),
		tasting("b", "Fleurie"),
	}

	require.NoError(t, svc.Delete(context.Background(), "b"))
	assert.Empty(t, photos.revoked, "no photo to release")

	require.NoError(t, svc.Delete(context.Background(), "a"))
	assert.Equal(t, []string{"/previews/a"}, photos.revoked)

	assert.ErrorIs(t, svc.Delete(context.Background(), "a"), apperror.ErrNotFound)
	assert.Len(t, photos.revoked, 1)
}

func TestClear_RevokesPhotos(t *testing.T) {
	svc, repo, _ := newTestTastingService()
	photos := svc.previews.(*fakePhotos)
	repo.items = []model.Tasting{
		withPhoto(tasting("a", "Morgon"), "/previews/a"),
		tasting("b", "Fleurie"),
		withPhoto(tasting("c", "Brouilly"), "/previews/c"),
	}

	require.NoError(t, svc.Clear(context.Background()))

	assert.ElementsMatch(t, []string{"/previews/a", "/previews/c"}, photos.revoked)
}

// =========================================================================
// HOME SUMMARY
// =========================================================================

func TestSummary(t *testing.T) {
	svc, repo, _ := newTestTastingService()

	sum := svc.Summary(context.Background())
	assert.Equal(t, 0, sum.Count)
	assert.Equal(t, CTAStart, sum.CTA)
	assert.Equal(t, "Commencer", sum.CTALabel)
	assert.Empty(t, sum.Latest)

	repo.items = []model.Tasting{
		tasting("d", "D"), tasting("c", "C"), tasting("b", "B"), tasting("a", "A"),
	}
	sum = svc.Summary(context.Background())
	assert.Equal(t, 4, sum.Count)
	assert.Equal(t, CTANew, sum.CTA)
	assert.Equal(t, "Nouvelle dégustation", sum.CTALabel)
	require.Len(t, sum.Latest, LatestOnHome)
	assert.Equal(t, "d", sum.Latest[0].ID)
}
