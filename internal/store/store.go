// Package store is the persistence layer of the journal: typed views over
// the JSON blobs kept in a kv backend.
//
// READ-MODIFY-WRITE:
// There is no row-level update. Every mutation reads the whole value under
// its key, changes it in memory and writes the whole value back with one
// Set. Across processes the last writer wins; inside this process each
// facade holds a mutex around the read-modify-write so two HTTP requests
// cannot interleave.
//
// READS NEVER FAIL:
// A missing key, a value that is not valid JSON, or a backend read error
// all read as "empty". Failures are logged at warn level and otherwise
// swallowed, so a corrupt blob never takes a page down. Writes are
// different: a failed Set is returned to the caller.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Keys of the journal. Changing any of these orphans existing data.
const (
	KeyTastings  = "wine_tastings_v1"
	KeyFavorites = "vininote:favorites"
	KeyProfile   = "vininote:user"
)

// Backend is the subset of kv.Backend the store needs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// read fetches and decodes the value under key into dst.
// It reports false (and logs) on any failure.
func read(ctx context.Context, b Backend, logger *slog.Logger, key string, dst any) bool {
	raw, found, err := b.Get(ctx, key)
	if err != nil {
		logger.Warn("store read failed", slog.String("key", key), slog.String("error", err.Error()))
		return false
	}
	if !found || len(raw) == 0 {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("store value is not valid JSON, treating as empty",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// write encodes v and stores it under key.
func write(ctx context.Context, b Backend, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encoding %s: %w", key, err)
	}
	if err := b.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("store: writing %s: %w", key, err)
	}
	return nil
}

func remove(ctx context.Context, b Backend, key string) error {
	if err := b.Delete(ctx, key); err != nil {
		return fmt.Errorf("store: removing %s: %w", key, err)
	}
	return nil
}

// Value is a single JSON value stored under one key.
type Value[T any] struct {
	key     string
	backend Backend
	logger  *slog.Logger
	mu      sync.Mutex
	notifier
}

// NewValue binds a Value to key.
func NewValue[T any](backend Backend, key string, logger *slog.Logger) *Value[T] {
	return &Value[T]{
		key:      key,
		backend:  backend,
		logger:   logger,
		notifier: newNotifier(logger),
	}
}

// Key is the storage key this value lives under.
func (v *Value[T]) Key() string { return v.key }

// Get returns the stored value. Absent or unreadable values return the
// zero T and false.
func (v *Value[T]) Get(ctx context.Context) (T, bool) {
	var out T
	if !read(ctx, v.backend, v.logger, v.key, &out) {
		var zero T
		return zero, false
	}
	return out, true
}

// Set overwrites the value.
func (v *Value[T]) Set(ctx context.Context, val T) error {
	v.mu.Lock()
	err := write(ctx, v.backend, v.key, val)
	v.mu.Unlock()
	if err != nil {
		return err
	}
	v.notify(Change{Key: v.key, Op: OpSet})
	return nil
}

// Update runs fn on the current value (zero T when absent) and stores the
// result, holding the lock for the whole read-modify-write. An error from
// fn is returned as is and nothing is written.
func (v *Value[T]) Update(ctx context.Context, fn func(cur T) (T, error)) (T, error) {
	v.mu.Lock()
	cur, _ := v.Get(ctx)
	next, err := fn(cur)
	if err == nil {
		err = write(ctx, v.backend, v.key, next)
	}
	v.mu.Unlock()
	if err != nil {
		var zero T
		return zero, err
	}
	v.notify(Change{Key: v.key, Op: OpSet})
	return next, nil
}

// Clear deletes the key.
func (v *Value[T]) Clear(ctx context.Context) error {
	v.mu.Lock()
	err := remove(ctx, v.backend, v.key)
	v.mu.Unlock()
	if err != nil {
		return err
	}
	v.notify(Change{Key: v.key, Op: OpClear})
	return nil
}

// NotifyExternal tells subscribers the key was changed by someone else.
func (v *Value[T]) NotifyExternal() {
	v.notify(Change{Key: v.key, Op: OpExternal, External: true})
}
