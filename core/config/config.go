package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"

	// EnvConfig names the environment variable pointing at the configuration
	// directory or file.
	EnvConfig = "MYSH_CONFIG"
)

type Configuration struct {
	configFs         afero.Fs
	configurationDir string

	Prompt     string `json:"prompt"`
	Color      string `json:"color" validate:"oneof=auto always never"`
	SessionLog string `json:"session_log"`
	TTYLog     string `json:"tty_log"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// resolve makes path relative to the configuration directory.
func (c *Configuration) resolve(path string) string {
	if filepath.IsAbs(path) || c.configurationDir == "" {
		return path
	}
	return filepath.Join(c.configurationDir, path)
}

// OpenSessionLog opens the session event log in an append only state.
func (c *Configuration) OpenSessionLog() (afero.File, error) {
	return c.fs().OpenFile(c.resolve(c.SessionLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// CreateTTYLog creates the terminal recording, replacing any old one.
func (c *Configuration) CreateTTYLog() (afero.File, error) {
	return c.fs().OpenFile(c.resolve(c.TTYLog), os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0600)
}

// Default returns the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
