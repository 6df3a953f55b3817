package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/vininote/internal/config"
	"github.com/sakif/vininote/internal/logger"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.StorageConfig{Driver: config.DriverMemory}},
		{name: "sqlite", cfg: config.StorageConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "j.db")}},
		{name: "badger", cfg: config.StorageConfig{Driver: config.DriverBadger, Path: filepath.Join(t.TempDir(), "badger")}},
		{name: "unknown", cfg: config.StorageConfig{Driver: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(ctx, tt.cfg, logger.Discard())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { b.Close() })

			require.NoError(t, b.Set(ctx, "vininote:user", []byte(`{}`)))
			_, found, err := b.Get(ctx, "vininote:user")
			require.NoError(t, err)
			assert.True(t, found)
		})
	}
}
