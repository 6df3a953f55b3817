package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be > 0 (got %d)", c.Server.MaxUploadBytes)
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverBadger:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be one of sqlite, badger, memory (got %q)", c.Storage.Driver)
	}

	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("session.secret must be at least 32 characters (got %d)", len(c.Session.Secret))
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be > 0 (got %s)", c.Session.TTL)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}
