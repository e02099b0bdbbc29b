package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// Config holds runtime settings for the taxonomy tool.
type Config struct {
	DBPath          string
	ImportChunkSize int
	LogLevel        slog.Level
	LogFormat       LogFormat
}

// DefaultImportChunkSize is the number of records per bulk write.
const DefaultImportChunkSize = 100

// DefaultConfig returns a Config with sensible defaults. The database lives
// under the user's home directory when one can be found.
func DefaultConfig() Config {
	dbPath := "taxonomy.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".taxonomy", "taxonomy.db")
	}
	return Config{
		DBPath:          dbPath,
		ImportChunkSize: DefaultImportChunkSize,
		LogLevel:        slog.LevelInfo,
		LogFormat:       LogText,
	}
}

// LoadConfig reads configuration from environment variables, falling back
// to defaults for any unset or unparseable values.
func LoadConfig() Config {
	return loadFrom(os.Getenv)
}

func loadFrom(getenv func(string) string) Config {
	cfg := DefaultConfig()

	if v := getenv("TAXONOMY_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("TAXONOMY_IMPORT_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ImportChunkSize = n
		}
	}
	if v := getenv("TAXONOMY_LOG_LEVEL"); v != "" {
		if lvl, err := ParseLevel(v); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := getenv("TAXONOMY_LOG_FORMAT"); v != "" {
		if f, err := ParseLogFormat(v); err == nil {
			cfg.LogFormat = f
		}
	}
	return cfg
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

func ParseLogFormat(s string) (LogFormat, error) {
	switch f := LogFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case LogText, LogJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid log format %q (expected text or json)", s)
	}
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.ImportChunkSize <= 0 {
		return fmt.Errorf("import chunk size must be positive, got %d", c.ImportChunkSize)
	}
	return nil
}
