package config

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/dshills/drawstorm/internal/logging"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func env(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.History.Strategy != StrategyDocument {
		t.Errorf("Strategy = %q, want document", cfg.History.Strategy)
	}
	if cfg.History.MaxEntries != 0 {
		t.Errorf("MaxEntries = %d, want unbounded", cfg.History.MaxEntries)
	}
	if cfg.LogLevel() != logging.LevelInfo {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
}

func TestLoaderMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoaderWithFS(NewMemFS(), nil).Load("/nope.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.History.Strategy != StrategyDocument {
		t.Errorf("Strategy = %q", cfg.History.Strategy)
	}
}

func TestLoaderReadsTOML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/drawstorm.toml", `
[history]
strategy = "page"
max_entries = 200

[logging]
level = "debug"
`)
	cfg, err := NewLoaderWithFS(memfs, nil).Load("/drawstorm.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.History.Strategy != StrategyPage || cfg.History.MaxEntries != 200 {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.LogLevel() != logging.LevelDebug {
		t.Errorf("LogLevel() = %v", cfg.LogLevel())
	}
	if !cfg.Scripting.Enabled {
		t.Error("unset sections should keep defaults")
	}
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/drawstorm.toml", "[history]\nstrategy = \"page\"\n")
	loader := NewLoaderWithFS(memfs, env(map[string]string{
		"DRAWSTORM_HISTORY_STRATEGY":    "Document",
		"DRAWSTORM_HISTORY_MAX_ENTRIES": "50",
		"DRAWSTORM_LOG_LEVEL":           "WARN",
		"DRAWSTORM_SCRIPTING_ENABLED":   "false",
	}))
	cfg, err := loader.Load("/drawstorm.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.History.Strategy != StrategyDocument || cfg.History.MaxEntries != 50 {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Logging.Level != "warn" || cfg.Scripting.Enabled {
		t.Errorf("logging=%+v scripting=%+v", cfg.Logging, cfg.Scripting)
	}
}

func TestLoaderBadEnv(t *testing.T) {
	loader := NewLoaderWithFS(NewMemFS(), env(map[string]string{
		"DRAWSTORM_HISTORY_MAX_ENTRIES": "lots",
	}))
	_, err := loader.Load("")
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "DRAWSTORM_HISTORY_MAX_ENTRIES" {
		t.Errorf("error = %v, want ValidationError for max entries", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"syntax", "[history\nstrategy = 1", nil},
		{"unknown setting", "[history]\nundo_depth = 3\n", ErrUnknownSetting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.toml", []byte(tt.data))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %v, want ParseError", err)
			}
			if perr.Path != "test.toml" {
				t.Errorf("Path = %q", perr.Path)
			}
			if perr.Line == 0 {
				t.Errorf("Line not reported: %v", perr)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"strategy", func(c *Config) { c.History.Strategy = "global" }, "history.strategy"},
		{"max entries", func(c *Config) { c.History.MaxEntries = -1 }, "history.max_entries"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"capability", func(c *Config) { c.Scripting.Capabilities = []string{"network"} }, "scripting.capabilities"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want validation failure", err)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("error %q does not name %s", err, tt.path)
			}
		})
	}
}

func TestEnvVarsSorted(t *testing.T) {
	vars := EnvVars()
	if len(vars) != 4 {
		t.Fatalf("EnvVars() = %v", vars)
	}
	for i := 1; i < len(vars); i++ {
		if vars[i-1] > vars[i] {
			t.Errorf("EnvVars() not sorted: %v", vars)
		}
		if !strings.HasPrefix(vars[i], EnvPrefix) {
			t.Errorf("%s lacks prefix", vars[i])
		}
	}
}
