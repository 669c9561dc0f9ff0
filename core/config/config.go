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

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Configuration struct {
	configFs  afero.Fs
	configDir string

	Prompt        string `json:"prompt" validate:"required"`
	MaxLineLength int    `json:"max_line_length" validate:"gte=1"`
	MaxArgs       int    `json:"max_args" validate:"gte=1"`

	Home       string `json:"home"`
	NullDevice string `json:"null_device" validate:"required"`

	HistoryFile string `json:"history_file"`
	EventLog    string `json:"event_log"`

	Color       string `json:"color" validate:"oneof=auto always never"`
	LineEditing bool   `json:"line_editing"`
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

// resolve interprets relative paths against the configuration directory.
func (c *Configuration) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	dir := c.configDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, path)
}

// HomeDir returns the directory "cd" changes to without arguments.
func (c *Configuration) HomeDir() string {
	if c.Home != "" {
		return c.Home
	}
	return os.Getenv("HOME")
}

// HistoryPath returns the path of the line editing history or "" if history
// isn't persisted.
func (c *Configuration) HistoryPath() string {
	return c.resolve(c.HistoryFile)
}

// EventLogEnabled reports whether job events should be recorded.
func (c *Configuration) EventLogEnabled() bool {
	return c.EventLog != ""
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.resolve(c.EventLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.resolve(c.EventLog), os.O_RDONLY, 0600)
}

// Default returns the built in configuration, rooted at the working
// directory.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewOsFs()
	out.configDir = "."
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
