package config

// Load builds the configuration of a run from its sources in increasing
// precedence: defaults, the JSON file named by -config, the environment
// (after loading envFiles) and the command line.
func Load(args []string, envFiles ...string) (*Config, []Warning, error) {
	c := DefaultConfig()

	if path, ok := FindConfigFile(args); ok {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, nil, err
		}
		c = loaded
	}

	warnings, err := c.LoadEnv(envFiles...)
	if err != nil {
		return nil, nil, err
	}

	warnings = append(warnings, c.ParseArgs(args)...)

	return c, warnings, nil
}
