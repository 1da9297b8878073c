package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileSystem reads configuration files. It allows tests to use an
// in-memory file system.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LookupFunc resolves environment variables.
type LookupFunc func(key string) (string, bool)

// Loader builds a Config from defaults, a TOML file and the environment.
type Loader struct {
	fs     FileSystem
	lookup LookupFunc
}

// NewLoader creates a loader backed by the OS file system and environment.
func NewLoader() *Loader {
	return &Loader{fs: OSFS{}, lookup: os.LookupEnv}
}

// NewLoaderWithFS creates a loader with a custom file system and
// environment lookup. A nil lookup ignores the environment.
func NewLoaderWithFS(fsys FileSystem, lookup LookupFunc) *Loader {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	return &Loader{fs: fsys, lookup: lookup}
}

// Load is NewLoader().Load(path).
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path or a missing file yields defaults.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := l.fs.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		}
	}
	if err := applyEnv(cfg, l.lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults without consulting the
// environment.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(source, data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(cfg)
	if err == nil {
		return nil
	}

	perr := &ParseError{Path: source, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		perr.Line, perr.Column = derr.Position()
	case errors.As(err, &serr):
		perr.Err = fmt.Errorf("%w: %v", ErrUnknownSetting, err)
		if len(serr.Errors) > 0 {
			perr.Line, perr.Column = serr.Errors[0].Position()
			perr.Message = fmt.Sprintf("unknown setting %s", strings.Join(serr.Errors[0].Key(), "."))
		}
	}
	return perr
}
