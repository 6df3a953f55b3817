package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/repository"
)

// Tastings is the tasting collection at KeyTastings.
type Tastings struct {
	*Collection[model.Tasting]
}

// NewTastings binds the tasting collection.
func NewTastings(backend Backend, logger *slog.Logger) *Tastings {
	return &Tastings{Collection: NewCollection[model.Tasting](backend, KeyTastings, logger)}
}

// Profile is the single user profile at KeyProfile.
type Profile struct {
	*Value[model.UserProfile]
}

// NewProfile binds the profile value.
func NewProfile(backend Backend, logger *slog.Logger) *Profile {
	return &Profile{Value: NewValue[model.UserProfile](backend, KeyProfile, logger)}
}

// Favorites is the set of favorite tasting ids at KeyFavorites, stored as a
// JSON array in insertion order.
type Favorites struct {
	key     string
	backend Backend
	logger  *slog.Logger
	mu      sync.Mutex
	notifier
}

// NewFavorites binds the favorites set.
func NewFavorites(backend Backend, logger *slog.Logger) *Favorites {
	return &Favorites{
		key:      KeyFavorites,
		backend:  backend,
		logger:   logger,
		notifier: newNotifier(logger),
	}
}

// Key is the storage key of the set.
func (f *Favorites) Key() string { return f.key }

// IDs returns the stored ids, never nil.
func (f *Favorites) IDs(ctx context.Context) []string {
	var ids []string
	if !read(ctx, f.backend, f.logger, f.key, &ids) || ids == nil {
		return []string{}
	}
	return ids
}

// Has reports whether id is a favorite.
func (f *Favorites) Has(ctx context.Context, id string) bool {
	return slices.Contains(f.IDs(ctx), id)
}

// Set adds or removes id. Adding a new id appends it at the end; an id
// already present keeps its place. Duplicates already in storage collapse
// to their first occurrence on the way through.
func (f *Favorites) Set(ctx context.Context, id string, favorite bool) error {
	f.mu.Lock()
	err := f.setLocked(ctx, id, favorite)
	f.mu.Unlock()

	if err != nil {
		return err
	}
	op := OpInsert
	if !favorite {
		op = OpRemove
	}
	f.notify(Change{Key: f.key, Op: op, ID: id})
	return nil
}

func (f *Favorites) setLocked(ctx context.Context, id string, favorite bool) error {
	next := make([]string, 0)
	for _, cur := range f.IDs(ctx) {
		if (cur == id && !favorite) || slices.Contains(next, cur) {
			continue
		}
		next = append(next, cur)
	}
	if favorite && !slices.Contains(next, id) {
		next = append(next, id)
	}
	return write(ctx, f.backend, f.key, next)
}

// Toggle flips membership of id and returns the new state.
func (f *Favorites) Toggle(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	now := !f.Has(ctx, id)
	err := f.setLocked(ctx, id, now)
	f.mu.Unlock()

	if err != nil {
		return false, err
	}
	op := OpInsert
	if !now {
		op = OpRemove
	}
	f.notify(Change{Key: f.key, Op: op, ID: id})
	return now, nil
}

// Prune drops ids for which keep returns false and reports how many went.
// Favorites of deleted tastings would otherwise linger forever.
func (f *Favorites) Prune(ctx context.Context, keep func(id string) bool) (int, error) {
	f.mu.Lock()
	ids := f.IDs(ctx)
	kept := slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return !keep(id) })
	dropped := len(ids) - len(kept)
	var err error
	if dropped > 0 {
		err = write(ctx, f.backend, f.key, kept)
	}
	f.mu.Unlock()

	if dropped == 0 || err != nil {
		return 0, err
	}
	f.notify(Change{Key: f.key, Op: OpSet})
	return dropped, nil
}

// Clear deletes the key.
func (f *Favorites) Clear(ctx context.Context) error {
	f.mu.Lock()
	err := remove(ctx, f.backend, f.key)
	f.mu.Unlock()

	if err != nil {
		return err
	}
	f.notify(Change{Key: f.key, Op: OpClear})
	return nil
}

// NotifyExternal tells subscribers the key was changed by someone else.
func (f *Favorites) NotifyExternal() {
	f.notify(Change{Key: f.key, Op: OpExternal, External: true})
}

// QuizProgress is the best-attempt record of one quiz topic.
//
// Decoding is lenient: any JSON value reads as progress, with missing or
// mistyped fields falling back to their zero value. Only invalid JSON or
// a missing key report "not stored".
type QuizProgress struct {
	key     string
	backend Backend
	logger  *slog.Logger
	mu      sync.Mutex
	notifier
}

// NewQuizProgress binds progress to a topic's storage key.
func NewQuizProgress(backend Backend, key string, logger *slog.Logger) *QuizProgress {
	return &QuizProgress{
		key:      key,
		backend:  backend,
		logger:   logger,
		notifier: newNotifier(logger),
	}
}

// Key is the topic's storage key.
func (q *QuizProgress) Key() string { return q.key }

// Get returns the stored progress, or the zero progress when there is none.
func (q *QuizProgress) Get(ctx context.Context) model.QuizProgress {
	p, _ := q.Lookup(ctx)
	return p
}

// Lookup is Get that also reports whether anything usable was stored.
func (q *QuizProgress) Lookup(ctx context.Context) (model.QuizProgress, bool) {
	var raw any
	if !read(ctx, q.backend, q.logger, q.key, &raw) {
		return model.QuizProgress{}, false
	}
	return decodeProgress(raw), true
}

// Record folds one finished attempt into the stored progress.
func (q *QuizProgress) Record(ctx context.Context, score, earned, passScore int) (model.QuizProgress, error) {
	q.mu.Lock()
	next := q.Get(ctx).Merge(score, earned, passScore)
	err := write(ctx, q.backend, q.key, next)
	q.mu.Unlock()

	if err != nil {
		return model.QuizProgress{}, err
	}
	q.notify(Change{Key: q.key, Op: OpSet})
	return next, nil
}

// Clear forgets the topic's progress.
func (q *QuizProgress) Clear(ctx context.Context) error {
	q.mu.Lock()
	err := remove(ctx, q.backend, q.key)
	q.mu.Unlock()

	if err != nil {
		return err
	}
	q.notify(Change{Key: q.key, Op: OpClear})
	return nil
}

// NotifyExternal tells subscribers the key was changed by someone else.
func (q *QuizProgress) NotifyExternal() {
	q.notify(Change{Key: q.key, Op: OpExternal, External: true})
}

func decodeProgress(raw any) model.QuizProgress {
	obj, _ := raw.(map[string]any)
	return model.QuizProgress{
		Passed:    truthy(obj["passed"]),
		BestScore: number(obj["bestScore"]),
		Attempts:  number(obj["attempts"]),
		XP:        number(obj["xp"]),
	}
}

// truthy follows the usual loose rules: false, 0, "" and null are false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// number accepts JSON numbers and numeric strings; anything else is 0.
func number(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case string:
		if f, err := json.Number(x).Float64(); err == nil {
			return int(f)
		}
	}
	return 0
}

// Journal groups every facade of one backend and re-publishes all of
// their changes through its own Subscribe.
type Journal struct {
	Tastings  *Tastings
	Favorites *Favorites
	Profile   *Profile

	backend  Backend
	logger   *slog.Logger
	mu       sync.Mutex
	progress map[string]*QuizProgress
	notifier
}

// NewJournal builds the facades over backend.
func NewJournal(backend Backend, logger *slog.Logger) *Journal {
	j := &Journal{
		Tastings:  NewTastings(backend, logger),
		Favorites: NewFavorites(backend, logger),
		Profile:   NewProfile(backend, logger),
		backend:   backend,
		logger:    logger,
		progress:  make(map[string]*QuizProgress),
		notifier:  newNotifier(logger),
	}
	j.Tastings.Subscribe(j.notify)
	j.Favorites.Subscribe(j.notify)
	j.Profile.Subscribe(j.notify)
	return j
}

// Progress returns the facade for a quiz storage key, creating it once so
// every caller shares the same lock and subscribers.
func (j *Journal) Progress(key string) *QuizProgress {
	j.mu.Lock()
	defer j.mu.Unlock()

	p, ok := j.progress[key]
	if !ok {
		p = NewQuizProgress(j.backend, key, j.logger)
		p.Subscribe(j.notify)
		j.progress[key] = p
	}
	return p
}

// NotifyExternal broadcasts an external change on every facade. Journal
// subscribers see one Change per facade.
func (j *Journal) NotifyExternal() {
	j.mu.Lock()
	obs := []Observable{j.Tastings, j.Favorites, j.Profile}
	for _, p := range j.progress {
		obs = append(obs, p)
	}
	j.mu.Unlock()

	for _, o := range obs {
		o.NotifyExternal()
	}
}

// ProgressFor is Progress behind the repository interface.
func (j *Journal) ProgressFor(key string) repository.ProgressRepository {
	return j.Progress(key)
}

var (
	_ repository.TastingRepository  = (*Tastings)(nil)
	_ repository.FavoriteRepository = (*Favorites)(nil)
	_ repository.ProfileRepository  = (*Profile)(nil)
	_ repository.ProgressRepository = (*QuizProgress)(nil)
	_ repository.ProgressStore      = (*Journal)(nil)
)
