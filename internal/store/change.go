package store

import (
	"log/slog"
	"sync"
)

// Op names the kind of mutation a Change reports.
type Op string

const (
	OpInsert   Op = "insert"
	OpReplace  Op = "replace"
	OpRemove   Op = "remove"
	OpSet      Op = "set"
	OpClear    Op = "clear"
	OpExternal Op = "external"
)

// Change is what subscribers receive after a mutation. ID is set for
// operations on a single record. External is true when the write was made
// by another process and only observed here.
type Change struct {
	Key      string `json:"key"`
	Op       Op     `json:"op"`
	ID       string `json:"id,omitempty"`
	External bool   `json:"external"`
}

// Observable is implemented by every facade.
type Observable interface {
	Subscribe(fn func(Change)) (unsubscribe func())
	NotifyExternal()
}

// notifier fans a Change out to subscribers. Delivery is synchronous and
// happens after the facade has released its lock, so a subscriber may read
// the store again.
type notifier struct {
	mu     *sync.Mutex
	next   *int
	subs   map[int]func(Change)
	logger *slog.Logger
}

func newNotifier(logger *slog.Logger) notifier {
	return notifier{
		mu:     &sync.Mutex{},
		next:   new(int),
		subs:   make(map[int]func(Change)),
		logger: logger,
	}
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func twice is harmless.
func (n notifier) Subscribe(fn func(Change)) func() {
	n.mu.Lock()
	id := *n.next
	*n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n notifier) notify(c Change) {
	n.mu.Lock()
	fns := make([]func(Change), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		n.deliver(fn, c)
	}
}

// deliver calls fn, turning a panic into a log line.
func (n notifier) deliver(fn func(Change), c Change) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("store observer panicked",
				slog.String("key", c.Key),
				slog.String("op", string(c.Op)),
				slog.Any("panic", r),
			)
		}
	}()
	fn(c)
}
