package service

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/sakif/vininote/internal/apperror"
)

// DefaultRegistryLimit bounds the open quiz sessions and wizard drafts.
// Past it the oldest entry is evicted.
const DefaultRegistryLimit = 256

// registry holds short-lived server-side state (quiz sessions, wizard
// drafts) under uuid ids. One mutex guards the map and every value, so
// callers touch a value only inside with.
type registry[T any] struct {
	resource string
	limit    int
	onEvict  func(*T)
	newID    func() string

	mu    sync.Mutex
	items map[string]*T
	order []string // oldest first
}

func newRegistry[T any](resource string, limit int, onEvict func(*T)) *registry[T] {
	if limit <= 0 {
		limit = DefaultRegistryLimit
	}
	return &registry[T]{
		resource: resource,
		limit:    limit,
		onEvict:  onEvict,
		newID:    uuid.NewString,
		items:    make(map[string]*T),
	}
}

// add stores v under a fresh id, evicting the oldest entry when full.
func (r *registry[T]) add(v *T) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.order) >= r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		if old, ok := r.items[oldest]; ok {
			delete(r.items, oldest)
			if r.onEvict != nil {
				r.onEvict(old)
			}
		}
	}

	id := r.newID()
	r.items[id] = v
	r.order = append(r.order, id)
	return id
}

// with runs fn on the entry under the registry lock. A missing id is
// apperror.ErrNotFound.
func (r *registry[T]) with(id string, fn func(*T) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[id]
	if !ok {
		return apperror.NotFound(r.resource, id)
	}
	return fn(v)
}

// remove deletes and returns the entry.
func (r *registry[T]) remove(id string) (*T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.items[id]
	if !ok {
		return nil, false
	}
	delete(r.items, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return v, true
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
