package service

import (
	"context"
	"errors"
	"slices"

	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces.
// Setting err makes every write fail, which is how the tests reach the
// "storage is broken" branches.

var errDiskFull = errors.New("disk full")

type fakeTastings struct {
	items []model.Tasting
	err   error
}

var _ repository.TastingRepository = (*fakeTastings)(nil)

func (f *fakeTastings) List(context.Context) []model.Tasting {
	return append([]model.Tasting{}, f.items...)
}

func (f *fakeTastings) GetByID(_ context.Context, id string) (model.Tasting, bool) {
	for _, t := range f.items {
		if t.ID == id {
			return t, true
		}
	}
	return model.Tasting{}, false
}

func (f *fakeTastings) Insert(_ context.Context, t model.Tasting) error {
	if f.err != nil {
		return f.err
	}
	f.items = append([]model.Tasting{t}, f.items...)
	return nil
}

func (f *fakeTastings) Replace(_ context.Context, t model.Tasting) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for i := range f.items {
		if f.items[i].ID == t.ID {
			f.items[i] = t
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTastings) RemoveByID(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	n := len(f.items)
	f.items = slices.DeleteFunc(f.items, func(t model.Tasting) bool { return t.ID == id })
	return len(f.items) != n, nil
}

func (f *fakeTastings) Clear(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.items = nil
	return nil
}

type fakeFavorites struct {
	ids []string
	err error
}

var _ repository.FavoriteRepository = (*fakeFavorites)(nil)

func (f *fakeFavorites) IDs(context.Context) []string { return slices.Clone(f.ids) }

func (f *fakeFavorites) Has(_ context.Context, id string) bool { return slices.Contains(f.ids, id) }

func (f *fakeFavorites) Set(ctx context.Context, id string, favorite bool) error {
	if f.err != nil {
		return f.err
	}
	f.ids = slices.DeleteFunc(f.ids, func(x string) bool { return x == id })
	if favorite {
		f.ids = append(f.ids, id)
	}
	return nil
}

func (f *fakeFavorites) Toggle(ctx context.Context, id string) (bool, error) {
	on := !f.Has(ctx, id)
	return on, f.Set(ctx, id, on)
}

func (f *fakeFavorites) Prune(_ context.Context, keep func(string) bool) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := len(f.ids)
	f.ids = slices.DeleteFunc(f.ids, func(id string) bool { return !keep(id) })
	return n - len(f.ids), nil
}

func (f *fakeFavorites) Clear(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.ids = nil
	return nil
}

type fakeProfile struct {
	p   *model.UserProfile
	err error
	// swap, when set, replaces the stored profile just before Update reads it.
	swap *model.UserProfile
}

var _ repository.ProfileRepository = (*fakeProfile)(nil)

func (f *fakeProfile) Get(context.Context) (model.UserProfile, bool) {
	if f.p == nil {
		return model.UserProfile{}, false
	}
	return *f.p, true
}

func (f *fakeProfile) Set(_ context.Context, p model.UserProfile) error {
	if f.err != nil {
		return f.err
	}
	f.p = &p
	return nil
}

func (f *fakeProfile) Update(ctx context.Context, fn func(model.UserProfile) (model.UserProfile, error)) (model.UserProfile, error) {
	if f.swap != nil {
		f.p, f.swap = f.swap, nil
	}
	cur, _ := f.Get(ctx)
	next, err := fn(cur)
	if err != nil {
		return model.UserProfile{}, err
	}
	return next, f.Set(ctx, next)
}

func (f *fakeProfile) Clear(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.p = nil
	return nil
}

// fakePhotos records revocations.
type fakePhotos struct {
	n       int
	revoked []string
}

func (f *fakePhotos) Put(string, []byte) string {
	f.n++
	return "/previews/p" + string(rune('0'+f.n))
}

func (f *fakePhotos) Revoke(url string) bool {
	f.revoked = append(f.revoked, url)
	return true
}

// tasting builds a minimal record for list and filter tests.
func tasting(id, name string) model.Tasting {
	return model.Tasting{
		ID:        id,
		CreatedAt: "2024-05-01T10:00:00.000Z",
		Wine:      model.Wine{Name: name, Grapes: []string{}},
		Aromas:    []string{},
	}
}
