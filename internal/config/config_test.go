package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/localrivet/textsummarizer/internal/errortypes"
)

func TestNewConfigIsValid(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Engine.DefaultSentences != 3 {
		t.Errorf("DefaultSentences = %d, want 3", cfg.Engine.DefaultSentences)
	}
	if cfg.Engine.Damping != 0.85 || cfg.Engine.MaxIterations != 100 {
		t.Errorf("unexpected engine defaults: %+v", cfg.Engine)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "damping", mutate: func(c *Config) { c.Engine.Damping = 1.5 }},
		{name: "tolerance", mutate: func(c *Config) { c.Engine.Tolerance = 0 }},
		{name: "iterations", mutate: func(c *Config) { c.Engine.MaxIterations = 0 }},
		{name: "sentences", mutate: func(c *Config) { c.Engine.DefaultSentences = 0 }},
		{name: "store path", mutate: func(c *Config) { c.Store.SQLitePath = "" }},
		{name: "provider", mutate: func(c *Config) { c.Generator.Provider = "cohere" }},
		{name: "fallback", mutate: func(c *Config) { c.Generator.FallbackOrder = []string{"none"} }},
		{name: "transport", mutate: func(c *Config) { c.Server.Transport = "grpc" }},
		{name: "upload", mutate: func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{name: "duration", mutate: func(c *Config) { c.Cache.TTL = "forever" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := NewConfig()
			test.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if errortypes.TypeOf(err) != errortypes.ErrorTypeConfig {
				t.Errorf("error type = %q, want config", errortypes.TypeOf(err))
			}
		})
	}

	t.Run("store disabled without path", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Store.Enabled = false
		cfg.Store.SQLitePath = ""
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})
}

func TestDuration(t *testing.T) {
	if got := Duration("", time.Second); got != time.Second {
		t.Errorf("Duration(\"\") = %v", got)
	}
	if got := Duration("2m", time.Second); got != 2*time.Minute {
		t.Errorf("Duration(2m) = %v", got)
	}
	if got := Duration("soon", time.Second); got != time.Second {
		t.Errorf("Duration(soon) = %v", got)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath() error = %v", err)
	}
	if cfg.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", cfg.GetConfigPath(), path)
	}
	if cfg.Engine.DefaultSentences != DefaultSentences {
		t.Errorf("DefaultSentences = %d, want default", cfg.Engine.DefaultSentences)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := NewConfig()
	cfg.Engine.DefaultSentences = 5
	cfg.Logging.Level = "debug"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}
	if cfg.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", cfg.GetConfigPath(), path)
	}
	if cfg.LastModified().IsZero() {
		t.Errorf("LastModified() not set after save")
	}

	loaded, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath() error = %v", err)
	}
	if loaded.Engine.DefaultSentences != 5 {
		t.Errorf("DefaultSentences = %d, want 5", loaded.Engine.DefaultSentences)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", loaded.Logging.Level)
	}
}
