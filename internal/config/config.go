// Package config loads the layered application configuration: the
// embedded defaults, an optional user YAML file and PRODLOOKUP_*
// environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/oakwood-commons/prodlookup/internal/lookup"
	"github.com/oakwood-commons/prodlookup/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// DefaultConfigYAML returns a copy of the embedded default config.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// bytesProvider feeds raw YAML bytes to koanf.
type bytesProvider []byte

func (b bytesProvider) ReadBytes() ([]byte, error) { return b, nil }

func (b bytesProvider) Read() (map[string]any, error) {
	return nil, errors.New("bytes provider does not support Read")
}

// DefaultPath returns $XDG_CONFIG_HOME/prodlookup/config.yaml, falling back
// to ~/.config/prodlookup/config.yaml.
func DefaultPath() string {
	return settings.UserConfigFile("config.yaml")
}

// envKey maps PRODLOOKUP_APP_SUGGESTION_LIMIT to app.suggestion_limit. Only
// the first underscore after the prefix separates the section.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, settings.EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// Load merges the embedded defaults, the YAML file at path and the
// environment. An explicit path that does not exist is an error; when
// path is empty the default user file is used if present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(bytesProvider(embeddedDefaultConfig), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("decode default config: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(settings.EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// MustDefault returns the embedded configuration alone.
func MustDefault() *Config {
	var cfg Config
	if err := yamlv3.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return &cfg
}

var validStyles = map[string]bool{
	"":           true,
	StylePlain:   true,
	StylePrimary: true,
	StyleMono:    true,
	StyleSuccess: true,
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.App.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("app.timeout must be positive"))
	}
	if c.App.Debounce < 0 {
		errs = append(errs, fmt.Errorf("app.debounce must be non-negative"))
	}
	if c.App.SuggestionLimit <= 0 {
		errs = append(errs, fmt.Errorf("app.suggestion_limit must be positive"))
	}
	if len(c.Pages) == 0 {
		errs = append(errs, fmt.Errorf("no pages configured"))
	}
	if _, ok := c.Pages[c.App.DefaultPage]; !ok {
		errs = append(errs, fmt.Errorf("app.default_page %q is not a configured page (available: %s)",
			c.App.DefaultPage, strings.Join(c.PageNames(), ", ")))
	}
	for _, name := range c.PageNames() {
		if err := c.Pages[name].validate(); err != nil {
			errs = append(errs, fmt.Errorf("pages.%s: %w", name, err))
		}
	}
	if _, ok := c.UI.Themes[c.UI.Theme]; !ok {
		errs = append(errs, fmt.Errorf("ui.theme %q is not defined in ui.themes", c.UI.Theme))
	}
	return errors.Join(errs...)
}

func (p Page) validate() error {
	if len(p.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	seen := make(map[string]bool, len(p.Fields))
	for i, f := range p.Fields {
		switch {
		case f.ID == "":
			return fmt.Errorf("fields[%d]: id is required", i)
		case f.Key == "":
			return fmt.Errorf("fields[%d]: key is required", i)
		case seen[f.ID]:
			return fmt.Errorf("fields[%d]: duplicate id %q", i, f.ID)
		}
		seen[f.ID] = true
	}
	for i, l := range p.Card {
		if l.Key == "" {
			return fmt.Errorf("card[%d]: key is required", i)
		}
		if !validStyles[l.Style] {
			return fmt.Errorf("card[%d]: unknown style %q", i, l.Style)
		}
	}
	return nil
}

// PageNames returns the configured page names, sorted.
func (c *Config) PageNames() []string {
	names := make([]string, 0, len(c.Pages))
	for name := range c.Pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Page returns the named page, or the default page when name is empty.
func (c *Config) Page(name string) (Page, error) {
	if name == "" {
		name = c.App.DefaultPage
	}
	p, ok := c.Pages[name]
	if !ok {
		return Page{}, fmt.Errorf("unknown page %q (available: %s)", name, strings.Join(c.PageNames(), ", "))
	}
	return p, nil
}

// SourceFor resolves the data source of a page: override first, then the
// page's own source, then the app default.
func (c *Config) SourceFor(p Page, override string) string {
	switch {
	case override != "":
		return override
	case p.Source != "":
		return p.Source
	default:
		return c.App.Source
	}
}

// LookupFields converts the tracked fields for the lookup controller.
func (p Page) LookupFields() []lookup.Field {
	out := make([]lookup.Field, len(p.Fields))
	for i, f := range p.Fields {
		label := f.Label
		if label == "" {
			label = f.Key
		}
		out[i] = lookup.Field{ID: f.ID, Label: label, Key: f.Key, Placeholder: f.Placeholder}
	}
	return out
}

// Messages returns the error texts of the page.
func (p Page) Messages() lookup.Messages {
	e := p.Texts.Errors
	return lookup.Messages{Error: e.Error, Status: e.Status, NotArray: e.NotArray, Transport: e.Transport}
}

// FieldKeys returns the record keys shown by the page: tracked fields,
// then card lines, then the image field.
func (p Page) FieldKeys() []string {
	seen := map[string]bool{}
	var keys []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, f := range p.Fields {
		add(f.Key)
	}
	for _, l := range p.Card {
		add(l.Key)
	}
	add(p.ImageField)
	return keys
}

// Field returns the tracked field matching id, key or label.
func (p Page) Field(name string) (Field, bool) {
	for _, f := range p.Fields {
		if f.ID == name || f.Key == name || strings.EqualFold(f.Label, name) {
			return f, true
		}
	}
	return Field{}, false
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yamlv3.Marshal(c)
}
