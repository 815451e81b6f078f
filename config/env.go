package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the defaults.
const (
	EnvSize          = "CACHESIM_USIZE"
	EnvBlockSize     = "CACHESIM_UBSIZE"
	EnvAssociativity = "CACHESIM_UASSOC"
	EnvReplacement   = "CACHESIM_UREPL"
	EnvWriteAlloc    = "CACHESIM_UWALLOC"
)

// LoadEnv loads the given .env files into the process environment and then
// applies the CACHESIM_* variables to c. Files that do not exist are skipped;
// variables already set in the environment win over the files. Unparsable
// values are returned as warnings and leave the field unchanged.
func (c *Config) LoadEnv(files ...string) ([]Warning, error) {
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return c.applyEnv(os.LookupEnv), nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) []Warning {
	var warnings []Warning

	if v, ok := lookup(EnvSize); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Size = n
		} else {
			warnings = append(warnings, Warning{Option: EnvSize, Value: v, Reason: "not a number"})
		}
	}

	if v, ok := lookup(EnvBlockSize); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.BlockSize = n
		} else {
			warnings = append(warnings, Warning{Option: EnvBlockSize, Value: v, Reason: "not a number"})
		}
	}

	if v, ok := lookup(EnvAssociativity); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Associativity = n
		} else {
			warnings = append(warnings, Warning{Option: EnvAssociativity, Value: v, Reason: "not a number"})
		}
	}

	if v, ok := lookup(EnvReplacement); ok && v != "" {
		c.Replacement = v
	}

	if v, ok := lookup(EnvWriteAlloc); ok && v != "" {
		c.WriteAlloc = v
	}

	return warnings
}
