// Package cliconfig loads the optional YAML file the CLI reads its defaults
// from. Flags always win over file values; the file only seeds them.
package cliconfig

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = "ptconv.yaml"

// Config holds the CLI defaults a config file can set.
type Config struct {
	// Format names the default output writer (safetensors, manifest).
	Format string `yaml:"format"`

	// OutputDir redirects outputs instead of writing siblings.
	OutputDir string `yaml:"output_dir"`

	// Extensions overrides the checkpoint extension allow-list.
	Extensions []string `yaml:"extensions"`

	// Overwrite names the policy for existing outputs (error, replace,
	// prompt).
	Overwrite string `yaml:"overwrite"`

	// Recursive makes directory sources descend into subdirectories.
	Recursive bool `yaml:"recursive"`
}

// Load reads a config file. An empty path falls back to DefaultFileName in
// the working directory; a missing default file yields a zero Config, while
// a missing explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		return Config{}, errors.Wrapf(err, "cliconfig: read %q", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "cliconfig: parse %q", path)
	}
	return cfg, nil
}
