// Package config holds the configuration of a simulation run and the
// sources it is read from: defaults, a JSON file, the environment and the
// command line.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/cachesim/cache"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the parameters of a simulation run.
type Config struct {
	// TracePath is the trace location: a file, s3://bucket/key or "-".
	TracePath string `json:"trace_path,omitempty"`

	// Size is the total cache size in bytes.
	Size uint64 `json:"size"`

	// BlockSize is the block size in bytes.
	BlockSize uint64 `json:"block_size"`

	// Associativity is the number of blocks per line.
	Associativity int `json:"associativity"`

	// Replacement is the replacement flag character, 'l' for LRU, anything
	// else for FIFO.
	Replacement string `json:"replacement"`

	// WriteAlloc is the write allocation flag character, 'a' for always,
	// anything else for never.
	WriteAlloc string `json:"write_alloc"`

	// Dump prints the cache contents at the end of the run.
	Dump bool `json:"dump,omitempty"`

	// RecordPath enables SQLite recording of every access.
	RecordPath string `json:"record_path,omitempty"`

	// Monitor starts the monitoring web server.
	Monitor bool `json:"monitor,omitempty"`

	// MonitorPort is the port of the monitoring server. Ports below 1000
	// select a random port.
	MonitorPort int `json:"monitor_port,omitempty"`

	// OpenBrowser opens the monitoring page in a browser.
	OpenBrowser bool `json:"open_browser,omitempty"`

	// CPUProfile and MemProfile write runtime profiles.
	CPUProfile string `json:"cpu_profile,omitempty"`
	MemProfile string `json:"mem_profile,omitempty"`

	// JSON prints the result as JSON instead of the classic report.
	JSON bool `json:"json,omitempty"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose,omitempty"`
}

// DefaultConfig returns a small direct-mapped cache that allocates on
// writes.
func DefaultConfig() *Config {
	return &Config{
		Size:          8 * 1024,
		BlockSize:     32,
		Associativity: 1,
		Replacement:   "f",
		WriteAlloc:    "a",
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path is user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // config is not secret
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the geometry yields at least one line and a bounded
// number of blocks.
func (c *Config) Validate() error {
	if err := c.CacheConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ReplacementFlag returns the replacement flag character.
func (c *Config) ReplacementFlag() byte {
	return firstChar(c.Replacement)
}

// WriteAllocFlag returns the write allocation flag character.
func (c *Config) WriteAllocFlag() byte {
	return firstChar(c.WriteAlloc)
}

// CacheConfig converts the configuration into cache construction
// parameters.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Size:          c.Size,
		BlockSize:     c.BlockSize,
		Associativity: c.Associativity,
		Replacement:   cache.ParseReplacementPolicy(c.ReplacementFlag()),
		WriteAlloc:    cache.ParseWriteAllocPolicy(c.WriteAllocFlag()),
	}
}

func firstChar(s string) byte {
	if s == "" {
		return 0
	}

	return s[0]
}
