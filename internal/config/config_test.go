package config

import (
	"log/slog"
	"strings"
	"testing"
)

func TestChroma_Validate(t *testing.T) {
	valid := Chroma{
		Host:       "api.trychroma.com",
		Port:       8000,
		SSL:        true,
		Token:      "tok",
		Tenant:     "team",
		Database:   "vault",
		Collection: "notes",
	}

	tests := []struct {
		name    string
		mutate  func(*Chroma)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Chroma) {}},
		{
			name:    "missing host",
			mutate:  func(c *Chroma) { c.Host = "" },
			wantErr: "missing host",
		},
		{
			name:    "zero port",
			mutate:  func(c *Chroma) { c.Port = 0 },
			wantErr: "invalid port",
		},
		{
			name:    "negative port",
			mutate:  func(c *Chroma) { c.Port = -1 },
			wantErr: "invalid port",
		},
		{
			name:    "missing collection",
			mutate:  func(c *Chroma) { c.Collection = "" },
			wantErr: "missing collection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr string
	}{
		{
			name: "valid frame",
			line: `{"config":{"host":"localhost","port":8000,"collection":"notes"},"vaultRoot":"/vault"}`,
		},
		{
			name: "config only",
			line: `{"config":{"host":"localhost","port":8000,"collection":"notes"}}`,
		},
		{
			name:    "invalid JSON",
			line:    `{config:`,
			wantErr: "invalid config JSON",
		},
		{
			name:    "missing config key",
			line:    `{"vaultRoot":"/vault"}`,
			wantErr: "first line must contain config",
		},
		{
			name:    "invalid config",
			line:    `{"config":{"host":"localhost","port":8000}}`,
			wantErr: "missing collection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := ParseFrame([]byte(tt.line))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ParseFrame() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFrame() error = %v", err)
			}
			if frame.Config.Host != "localhost" || frame.Config.Collection != "notes" {
				t.Errorf("ParseFrame() config = %+v", frame.Config)
			}
		})
	}
}

func TestParseFrame_VaultRoot(t *testing.T) {
	line := `{"config":{"host":"h","port":1,"collection":"c"},"vaultRoot":"/home/user/vault"}`
	frame, err := ParseFrame([]byte(line))
	if err != nil {
		t.Fatalf("ParseFrame() error = %v", err)
	}
	if frame.VaultRoot != "/home/user/vault" {
		t.Errorf("VaultRoot = %q, want /home/user/vault", frame.VaultRoot)
	}
}

func TestLoadEnv_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("VAULTSYNC_JOURNAL_PATH", "")

	env := LoadEnv()
	if env.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", env.LogLevel)
	}
	if env.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", env.LogFormat)
	}
	if env.JournalPath != "" {
		t.Errorf("JournalPath = %q, want empty", env.JournalPath)
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("VAULTSYNC_JOURNAL_PATH", "/tmp/journal.db")

	env := LoadEnv()
	if env.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", env.LogLevel)
	}
	if env.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", env.LogFormat)
	}
	if env.JournalPath != "/tmp/journal.db" {
		t.Errorf("JournalPath = %q", env.JournalPath)
	}
}

func TestLoadEnv_LevelNames(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.value)
			if env := LoadEnv(); env.LogLevel != tt.want {
				t.Errorf("LogLevel = %v, want %v", env.LogLevel, tt.want)
			}
		})
	}
}
