package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(fs, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}

	// Start from the defaults so older files don't need every field.
	out := Default()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigurationName, err)
	}

	out.configFs = fs
	out.configurationDir = path
	return out, nil
}

// LoadFromEnv loads the configuration named by EnvConfig, falling back to the
// default if it isn't set.
func LoadFromEnv(fs afero.Fs) (*Configuration, error) {
	path, ok := os.LookupEnv(EnvConfig)
	if !ok || path == "" {
		out := Default()
		out.configFs = fs
		return out, nil
	}

	return Load(fs, path)
}
