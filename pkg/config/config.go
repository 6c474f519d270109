// Package config loads the YAML configuration of the form engine and turns it
// into form options.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-entityform/pkg/form"
	"github.com/goliatone/go-entityform/pkg/logging"
	"github.com/goliatone/go-entityform/pkg/meta"
	"github.com/goliatone/go-entityform/pkg/provider"
	"github.com/goliatone/go-entityform/pkg/widgets"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the engine configuration.
type Config struct {
	TagKey            string         `yaml:"tagKey"`
	LongTextThreshold int            `yaml:"longTextThreshold"`
	MinWidth          string         `yaml:"minWidth"`
	MaxWidth          string         `yaml:"maxWidth"`
	SessionBean       string         `yaml:"sessionBean"`
	SortByOrder       bool           `yaml:"sortByOrder"`
	Log               logging.Config `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TagKey:            meta.DefaultTagKey,
		LongTextThreshold: widgets.DefaultLongTextThreshold,
		MinWidth:          widgets.DefaultMinWidth,
		MaxWidth:          widgets.DefaultMaxWidth,
		SessionBean:       provider.DefaultSessionName,
		Log:               logging.Config{Level: "info"},
	}
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(string(data)) == "" {
		return cfg, nil
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses path from fsys.
func Load(fsys fs.FS, path string) (Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the configured values.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.TagKey) == "" {
		errs = append(errs, fmt.Errorf("%w: tagKey is empty", ErrInvalid))
	}
	if c.LongTextThreshold <= 0 {
		errs = append(errs, fmt.Errorf("%w: longTextThreshold must be positive, got %d", ErrInvalid, c.LongTextThreshold))
	}
	if strings.TrimSpace(c.SessionBean) == "" {
		errs = append(errs, fmt.Errorf("%w: sessionBean is empty", ErrInvalid))
	}
	return errors.Join(errs...)
}

// FormOptions converts the configuration into form build options.
func (c Config) FormOptions() []form.Option {
	opts := []form.Option{
		form.WithTagKey(c.TagKey),
		form.WithLongTextThreshold(c.LongTextThreshold),
		form.WithWidthBounds(c.MinWidth, c.MaxWidth),
		form.WithSessionName(c.SessionBean),
	}
	if c.SortByOrder {
		opts = append(opts, form.WithSortByOrder())
	}
	return opts
}
