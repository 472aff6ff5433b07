// Package prefs persists the user's theme choice between runs.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/prodlookup/pkg/settings"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Prefs is the content of prefs.yaml.
type Prefs struct {
	Theme string `yaml:"theme,omitempty"`
}

// Store reads and writes prefs at a fixed path.
type Store struct {
	path string
}

// NewStore uses path, or the default location when path is empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path}
}

// DefaultPath returns $XDG_CONFIG_HOME/prodlookup/prefs.yaml, falling back
// to ~/.config/prodlookup/prefs.yaml.
func DefaultPath() string { return settings.UserConfigFile("prefs.yaml") }

func (s *Store) Path() string { return s.path }

// Load returns the stored prefs. A missing or unreadable file yields empty
// prefs and the error for logging; callers fall back to defaults.
func (s *Store) Load() (Prefs, error) {
	var p Prefs
	if s.path == "" {
		return p, nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("reading prefs %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("decoding prefs %s: %w", s.path, err)
	}
	p.Theme = strings.ToLower(strings.TrimSpace(p.Theme))
	if p.Theme != "" && !ValidTheme(p.Theme) {
		return Prefs{}, fmt.Errorf("prefs %s: unknown theme %q", s.path, p.Theme)
	}
	return p, nil
}

// Save writes p, creating the directory if needed.
func (s *Store) Save(p Prefs) error {
	if s.path == "" {
		return fmt.Errorf("no prefs location available")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.path), err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing prefs: %w", err)
	}
	return nil
}

// SetTheme stores theme.
func (s *Store) SetTheme(theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if !ValidTheme(theme) {
		return fmt.Errorf("unknown theme %q (want %s or %s)", theme, ThemeDark, ThemeLight)
	}
	p, _ := s.Load()
	p.Theme = theme
	return s.Save(p)
}

// ValidTheme reports whether name is dark or light.
func ValidTheme(name string) bool {
	return name == ThemeDark || name == ThemeLight
}

// Toggle returns the other theme.
func Toggle(theme string) string {
	if theme == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Resolve picks the effective theme: flag, then stored preference, then
// the configured default.
func Resolve(flag, stored, configured string) string {
	for _, t := range []string{flag, stored, configured} {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			return t
		}
	}
	return ThemeDark
}
