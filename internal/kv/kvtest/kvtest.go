// Package kvtest is a conformance suite every kv backend runs in its own
// tests, so sqlite, badger and memory are held to the same contract.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Backend mirrors kv.Backend. It is redeclared here because the backends'
// tests import this package and kv imports the backends.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Run exercises b. newBackend must return a fresh, empty backend; the
// suite closes it.
func Run(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		b := open(t, newBackend)

		v, found, err := b.Get(ctx, "wine_tastings_v1")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		b := open(t, newBackend)

		require.NoError(t, b.Set(ctx, "vininote:user", []byte(`{"id":"u1","name":"Ana"}`)))

		v, found, err := b.Get(ctx, "vininote:user")
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `{"id":"u1","name":"Ana"}`, string(v))
	})

	t.Run("set replaces the whole value", func(t *testing.T) {
		b := open(t, newBackend)

		require.NoError(t, b.Set(ctx, "vininote:favorites", []byte(`["a","b","c"]`)))
		require.NoError(t, b.Set(ctx, "vininote:favorites", []byte(`["z"]`)))

		v, _, err := b.Get(ctx, "vininote:favorites")
		require.NoError(t, err)
		assert.Equal(t, `["z"]`, string(v))
	})

	t.Run("non-JSON bytes round-trip verbatim", func(t *testing.T) {
		b := open(t, newBackend)

		require.NoError(t, b.Set(ctx, "wine_tastings_v1", []byte("{not json")))

		v, found, err := b.Get(ctx, "wine_tastings_v1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "{not json", string(v))
	})

	t.Run("delete", func(t *testing.T) {
		b := open(t, newBackend)

		require.NoError(t, b.Set(ctx, "k", []byte("1")))
		require.NoError(t, b.Delete(ctx, "k"))

		_, found, err := b.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete missing key is not an error", func(t *testing.T) {
		b := open(t, newBackend)
		assert.NoError(t, b.Delete(ctx, "never-written"))
	})

	t.Run("keys by prefix sorted", func(t *testing.T) {
		b := open(t, newBackend)

		for _, k := range []string{
			"learn:basics:vintage:quiz",
			"wine_tastings_v1",
			"learn:basics:grape:quiz",
			"vininote:user",
			"learn:basics:region:quiz",
		} {
			require.NoError(t, b.Set(ctx, k, []byte("{}")))
		}

		keys, err := b.Keys(ctx, "learn:")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"learn:basics:grape:quiz",
			"learn:basics:region:quiz",
			"learn:basics:vintage:quiz",
		}, keys)

		all, err := b.Keys(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 5)
		assert.Equal(t, "learn:basics:grape:quiz", all[0])
	})

	t.Run("keys prefix is literal", func(t *testing.T) {
		b := open(t, newBackend)

		require.NoError(t, b.Set(ctx, "wine_tastings_v1", []byte("[]")))
		require.NoError(t, b.Set(ctx, "wineXtastings", []byte("[]")))
		require.NoError(t, b.Set(ctx, "WINE_upper", []byte("[]")))

		keys, err := b.Keys(ctx, "wine_")
		require.NoError(t, err)
		assert.Equal(t, []string{"wine_tastings_v1"}, keys)
	})

	t.Run("keys on empty backend", func(t *testing.T) {
		b := open(t, newBackend)

		keys, err := b.Keys(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, keys)
	})
}

func open(t *testing.T, newBackend func(t *testing.T) Backend) Backend {
	t.Helper()
	b := newBackend(t)
	t.Cleanup(func() { b.Close() })
	return b
}
