package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Chroma holds the connection settings for a Chroma collection.
// It arrives as JSON on the first line of stdin, produced by the
// vault-sync plugin that drives this process.
type Chroma struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	SSL         bool   `json:"ssl"`
	TokenHeader string `json:"token_header"`
	Token       string `json:"token"`
	Tenant      string `json:"tenant"`
	Database    string `json:"database"`
	Collection  string `json:"collection"`
}

// Validate checks that the fields required to reach the store are present.
func (c *Chroma) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("config missing host")
	}
	if c.Port <= 0 {
		return fmt.Errorf("config has invalid port: %d", c.Port)
	}
	if c.Collection == "" {
		return fmt.Errorf("config missing collection")
	}
	return nil
}

// Frame is the first stdin line of an index or verify run: the Chroma
// config plus the optional vault root used for content extraction.
type Frame struct {
	Config    *Chroma `json:"config"`
	VaultRoot string  `json:"vaultRoot"`
}

// ParseFrame decodes a config frame line. The config key must be present.
func ParseFrame(line []byte) (*Frame, error) {
	var frame Frame
	if err := json.Unmarshal(line, &frame); err != nil {
		return nil, fmt.Errorf("invalid config JSON: %w", err)
	}
	if frame.Config == nil {
		return nil, fmt.Errorf("first line must contain config")
	}
	if err := frame.Config.Validate(); err != nil {
		return nil, err
	}
	return &frame, nil
}

// Env holds ambient process configuration read from environment variables.
type Env struct {
	LogLevel    slog.Level
	LogFormat   string // "text" or "json"
	JournalPath string // optional SQLite ingest journal, empty disables it
}

// LoadEnv reads ambient configuration from environment variables.
// If a .env file exists in the current directory, it is loaded first;
// variables already set take precedence over .env file values.
func LoadEnv() *Env {
	_ = godotenv.Load() // Try current directory, ignore if absent

	env := &Env{
		LogLevel:    slog.LevelInfo,
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		JournalPath: getEnv("VAULTSYNC_JOURNAL_PATH", ""),
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		env.LogLevel = slog.LevelDebug
	case "warn":
		env.LogLevel = slog.LevelWarn
	case "error":
		env.LogLevel = slog.LevelError
	}

	return env
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
