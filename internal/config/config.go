// Package config loads the server and CLI configuration.
//
// CONFIG SOURCES:
// Values come from three places, highest priority first:
//  1. Environment variables (SERVER_PORT, STORAGE_DRIVER, ...)
//  2. A YAML file (CONFIG_PATH, default ./config.yaml), if it exists
//  3. The env-default tags below
//
// cleanenv reads all three in one call, so there is no hand-written
// os.Getenv/strconv plumbing in main anymore.
package config

import "time"

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"SERVER_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// StorageConfig selects where the journal keys live.
//
// Path is a file for sqlite and a directory for badger; it is ignored by
// the memory driver.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path"   env:"STORAGE_PATH"   env-default:"data/vininote.db"`
	// Watch turns on the fsnotify watcher that reports writes made by
	// another process (the CLI, a second server) as external changes.
	Watch bool `yaml:"watch" env:"STORAGE_WATCH" env-default:"true"`
}

// SessionConfig holds the demo session cookie settings.
type SessionConfig struct {
	Secret     string        `yaml:"secret"      env:"SESSION_SECRET"      env-default:"vininote-local-session-secret-change-me"`
	TTL        time.Duration `yaml:"ttl"         env:"SESSION_TTL"         env-default:"720h"`
	CookieName string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"vininote_session"`
	Secure     bool          `yaml:"secure"      env:"SESSION_SECURE"      env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
