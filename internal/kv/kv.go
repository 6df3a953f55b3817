// Package kv is the raw key/value layer under the journal: string keys,
// JSON text values, nothing else.
//
// The store package never talks to a database directly. It asks a Backend
// for the bytes under "wine_tastings_v1" and decodes them itself, the same
// way a browser page reads localStorage. Swapping sqlite for badger or a
// plain map therefore changes nothing above this package.
package kv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/vininote/internal/config"
	"github.com/sakif/vininote/internal/kv/badger"
	"github.com/sakif/vininote/internal/kv/memory"
	"github.com/sakif/vininote/internal/kv/sqlite"
)

// Backend stores opaque values under string keys.
//
// Set replaces the whole value in one step: readers see either the old
// value or the new one, never a mix. Delete of an absent key is not an
// error. Keys returns matching keys sorted ascending.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

var (
	_ Backend = (*sqlite.Store)(nil)
	_ Backend = (*badger.Store)(nil)
	_ Backend = (*memory.Store)(nil)
)

// Open creates the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.Path)
	case config.DriverBadger:
		bc := badger.DefaultConfig()
		bc.Path = cfg.Path
		bc.Logger = logger.With(slog.String("component", "badger"))
		return badger.Open(bc)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", cfg.Driver)
	}
}
