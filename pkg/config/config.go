// Package config loads the viewsplit TOML configuration file.
//
// Every section is optional; missing values keep their [Default]. Command
// line flags override file values in the CLI.
//
//	[split]
//	target_size = [512, 512, 128]
//	overlap = [64, 64, 16]
//	min_step_size = []     # empty: resolve from pyramids
//	optimize = true
//
//	[cache]
//	backend = "file"       # file | redis | mongo | none
//	ttl = "168h"
//	namespace = "staging:" # key prefix when several deployments share a backend
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/viewsplit/pkg/cache"
	"github.com/matzehuels/viewsplit/pkg/errors"
)

// Config is the full configuration file.
type Config struct {
	Split  Split  `toml:"split"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Split holds default splitting parameters.
type Split struct {
	TargetSize             []int64 `toml:"target_size"`
	Overlap                []int64 `toml:"overlap"`
	MinStepSize            []int64 `toml:"min_step_size"`
	Optimize               bool    `toml:"optimize"`
	Snap                   bool    `toml:"snap"`
	IlluminationsFromTiles bool    `toml:"illuminations_from_tiles"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	TTL           Duration `toml:"ttl"`
	Namespace     string   `toml:"namespace"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("168h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Split: Split{
			TargetSize: []int64{512, 512, 128},
			Overlap:    []int64{64, 64, 16},
			Optimize:   true,
		},
		Cache: Cache{
			Backend:       cache.BackendFile,
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "viewsplit",
			TTL:           Duration{cache.TTLSplit},
		},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads path on top of [Default] and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault loads the file at [DefaultPath] when it exists and returns
// [Default] otherwise.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// DefaultPath returns $XDG_CONFIG_HOME/viewsplit/config.toml, falling back to
// ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "viewsplit", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "viewsplit", "config.toml"), nil
}

// Validate checks backend names and vector lengths. Alignment of the split
// parameters depends on the dataset and is checked when splitting.
func (c Config) Validate() error {
	if !slices.Contains(cache.Backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want one of %v)", c.Cache.Backend, cache.Backends)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}

	dims := len(c.Split.TargetSize)
	if err := errors.ValidatePositive("target_size", c.Split.TargetSize); err != nil {
		return err
	}
	if err := errors.ValidateDimensions("overlap", c.Split.Overlap, dims); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("overlap", c.Split.Overlap); err != nil {
		return err
	}
	if len(c.Split.MinStepSize) > 0 {
		if err := errors.ValidateDimensions("min_step_size", c.Split.MinStepSize, dims); err != nil {
			return err
		}
		if err := errors.ValidatePositive("min_step_size", c.Split.MinStepSize); err != nil {
			return err
		}
	}
	return nil
}

// CacheOptions converts the cache section for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisAddr:     c.Cache.RedisAddr,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
	}
}

// Keyer returns the cache keyer, scoped to the namespace when one is set.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Namespace)
}
