package store

import (
	"context"
	"log/slog"
	"sync"
)

// Record is anything with a stable id. Collections match records by it.
type Record interface {
	RecordID() string
}

// Collection is an ordered list of records stored as one JSON array under
// one key. Newest records come first.
type Collection[T Record] struct {
	key     string
	backend Backend
	logger  *slog.Logger
	mu      sync.Mutex
	notifier
}

// NewCollection binds a Collection to key.
func NewCollection[T Record](backend Backend, key string, logger *slog.Logger) *Collection[T] {
	return &Collection[T]{
		key:      key,
		backend:  backend,
		logger:   logger,
		notifier: newNotifier(logger),
	}
}

// Key is the storage key this collection lives under.
func (c *Collection[T]) Key() string { return c.key }

// List returns every record in stored order. It never returns nil: a
// missing key, a value that is not a JSON array, or a read error all give
// an empty slice.
func (c *Collection[T]) List(ctx context.Context) []T {
	var out []T
	if !read(ctx, c.backend, c.logger, c.key, &out) || out == nil {
		return []T{}
	}
	return out
}

// GetByID returns the first record whose id matches.
func (c *Collection[T]) GetByID(ctx context.Context, id string) (T, bool) {
	for _, r := range c.List(ctx) {
		if r.RecordID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Insert puts rec at the front of the list.
//
// Ids are not checked for uniqueness; callers generate fresh ones.
func (c *Collection[T]) Insert(ctx context.Context, rec T) error {
	c.mu.Lock()
	all := c.List(ctx)
	next := make([]T, 0, len(all)+1)
	next = append(next, rec)
	next = append(next, all...)
	err := write(ctx, c.backend, c.key, next)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.notify(Change{Key: c.key, Op: OpInsert, ID: rec.RecordID()})
	return nil
}

// Replace swaps every record sharing rec's id for rec, keeping positions.
// Nothing is written when no record matches; the bool reports which case
// happened.
func (c *Collection[T]) Replace(ctx context.Context, rec T) (bool, error) {
	id := rec.RecordID()

	c.mu.Lock()
	all := c.List(ctx)
	found := false
	for i := range all {
		if all[i].RecordID() == id {
			all[i] = rec
			found = true
		}
	}
	var err error
	if found {
		err = write(ctx, c.backend, c.key, all)
	}
	c.mu.Unlock()

	if !found || err != nil {
		return found, err
	}
	c.notify(Change{Key: c.key, Op: OpReplace, ID: id})
	return true, nil
}

// RemoveByID drops every record with the given id. Like Replace, it skips
// the write and returns false when there is nothing to remove.
func (c *Collection[T]) RemoveByID(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	all := c.List(ctx)
	kept := make([]T, 0, len(all))
	for _, r := range all {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	removed := len(kept) != len(all)
	var err error
	if removed {
		err = write(ctx, c.backend, c.key, kept)
	}
	c.mu.Unlock()

	if !removed || err != nil {
		return removed, err
	}
	c.notify(Change{Key: c.key, Op: OpRemove, ID: id})
	return true, nil
}

// Clear deletes the key. The next List is empty.
func (c *Collection[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	err := remove(ctx, c.backend, c.key)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.notify(Change{Key: c.key, Op: OpClear})
	return nil
}

// NotifyExternal tells subscribers the key was changed by someone else.
func (c *Collection[T]) NotifyExternal() {
	c.notify(Change{Key: c.key, Op: OpExternal, External: true})
}
