package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Warning describes a command-line option or environment value that was
// ignored.
type Warning struct {
	Option string
	Value  string
	Reason string
}

func (w Warning) String() string {
	if w.Value == "" {
		return fmt.Sprintf("%s: %s", w.Option, w.Reason)
	}

	return fmt.Sprintf("%s=%q: %s", w.Option, w.Value, w.Reason)
}

type option struct {
	takesValue bool
	apply      func(c *Config, value string) error
}

var options = map[string]option{
	"l1-usize": {true, func(c *Config, v string) error {
		return parseUint(v, &c.Size)
	}},
	"l1-ubsize": {true, func(c *Config, v string) error {
		return parseUint(v, &c.BlockSize)
	}},
	"l1-uassoc": {true, func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Associativity = n
		return nil
	}},
	"l1-urepl": {true, func(c *Config, v string) error {
		c.Replacement = v
		return nil
	}},
	"l1-uwalloc": {true, func(c *Config, v string) error {
		c.WriteAlloc = v
		return nil
	}},
	"record": {true, func(c *Config, v string) error {
		c.RecordPath = v
		return nil
	}},
	"monitor-port": {true, func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.MonitorPort = n
		return nil
	}},
	"cpuprofile": {true, func(c *Config, v string) error {
		c.CPUProfile = v
		return nil
	}},
	"memprofile": {true, func(c *Config, v string) error {
		c.MemProfile = v
		return nil
	}},
	"dump":    {false, func(c *Config, _ string) error { c.Dump = true; return nil }},
	"monitor": {false, func(c *Config, _ string) error { c.Monitor = true; return nil }},
	"open":    {false, func(c *Config, _ string) error { c.OpenBrowser = true; return nil }},
	"json":    {false, func(c *Config, _ string) error { c.JSON = true; return nil }},
	"v":       {false, func(c *Config, _ string) error { c.Verbose = true; return nil }},
}

// ConfigFileOption is the option naming a JSON configuration file. It is
// resolved by FindConfigFile before the other options are applied.
const ConfigFileOption = "config"

// ParseArgs applies the options in args to c. The first argument that is
// not an option is taken as the trace path. Options may be spelled with one
// or two dashes. Unrecognized options, missing values and unparsable
// numbers are returned as warnings and otherwise ignored.
func (c *Config) ParseArgs(args []string) []Warning {
	var warnings []Warning

	for i := 0; i < len(args); i++ {
		arg := args[i]

		name, ok := optionName(arg)
		if !ok {
			if c.TracePath == "" {
				c.TracePath = arg
			} else {
				warnings = append(warnings, Warning{Option: arg, Reason: "unexpected argument"})
			}
			continue
		}

		if name == ConfigFileOption {
			i++
			continue
		}

		opt, known := options[name]
		if !known {
			warnings = append(warnings, Warning{Option: arg, Reason: "unrecognized option"})
			continue
		}

		value := ""
		if opt.takesValue {
			if i+1 >= len(args) {
				warnings = append(warnings, Warning{Option: arg, Reason: "missing value"})
				continue
			}
			i++
			value = args[i]
		}

		if err := opt.apply(c, value); err != nil {
			warnings = append(warnings, Warning{Option: arg, Value: value, Reason: "invalid value"})
		}
	}

	return warnings
}

// FindConfigFile returns the value of the -config option, if present.
func FindConfigFile(args []string) (string, bool) {
	for i := 0; i < len(args)-1; i++ {
		if name, ok := optionName(args[i]); ok && name == ConfigFileOption {
			return args[i+1], true
		}
	}

	return "", false
}

// IsHelp reports whether args ask for the usage text.
func IsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "-help" || arg == "--help" {
			return true
		}
	}

	return false
}

func optionName(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}

	return strings.TrimPrefix(arg[1:], "-"), true
}

func parseUint(v string, dst *uint64) error {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return err
	}

	*dst = n

	return nil
}
