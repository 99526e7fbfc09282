// Package config loads the engine's build-time-adjacent settings (page
// size, buffer pool capacity, data directory) from YAML. None of this is
// part of the core's public contract; it's the ambient plumbing a
// standalone binary uses to construct a DiskManager/BufferPool pair.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPageSize matches spec.md's default: 1024 bytes, a power of two.
	DefaultPageSize = 1024
	// DefaultMaxPages is the default buffer pool capacity in frames.
	DefaultMaxPages = 128
	// DefaultDataDir is used when no directory is configured.
	DefaultDataDir = "."
)

// Config holds the engine's tunables. Zero-valued fields are replaced by
// defaults in Normalize.
type Config struct {
	// PageSize is the fixed page size in bytes. Must be a power of two.
	PageSize int `yaml:"page_size"`
	// MaxPages is the buffer pool's frame capacity.
	MaxPages int `yaml:"max_pages"`
	// DataDir is the base directory database files are created under.
	DataDir string `yaml:"data_dir"`
	// SkipCleanEvictionWrite skips writing a victim page back to disk when
	// its dirty flag is false (the permitted refinement from spec.md §4.5).
	SkipCleanEvictionWrite bool `yaml:"skip_clean_eviction_write"`
}

// Load reads and parses a YAML config file, applying defaults to any
// zero-valued field.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %q", path)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize fills in defaults for zero-valued fields. It does not validate
// the page size; Valid does that.
func (c *Config) Normalize() {
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxPages == 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
}

// Valid reports whether the page size is a power of two and large enough
// to hold a header plus a minimally-useful body.
func (c Config) Valid() bool {
	if c.PageSize <= 0 || c.PageSize&(c.PageSize-1) != 0 {
		return false
	}
	return c.PageSize >= 64
}
