package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the merged application configuration.
type Config struct {
	App   AppConfig       `yaml:"app"`
	Pages map[string]Page `yaml:"pages"`
	UI    UIConfig        `yaml:"ui"`
}

// AppConfig holds settings shared by every page.
type AppConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Source is the default data endpoint (http/https URL) or local file.
	Source string `yaml:"source"`
	// Timeout bounds a single fetch.
	Timeout time.Duration `yaml:"timeout"`
	// Debounce is the delay between the last keystroke and re-filtering.
	Debounce        time.Duration `yaml:"debounce"`
	SuggestionLimit int           `yaml:"suggestion_limit"`
	DefaultPage     string        `yaml:"default_page"`
}

// Page describes one search screen.
type Page struct {
	Title    string `yaml:"title"`
	Language string `yaml:"language,omitempty"`
	// Source overrides AppConfig.Source for this page.
	Source string `yaml:"source,omitempty"`
	// ImageField is the record key holding the product image URL.
	ImageField string `yaml:"image_field,omitempty"`
	// Detail enables the detail overlay for the selected card.
	Detail bool       `yaml:"detail"`
	Fields []Field    `yaml:"fields"`
	Card   []CardLine `yaml:"card"`
	Texts  Texts      `yaml:"texts"`
}

// Field is a tracked search input.
type Field struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Key         string `yaml:"key"`
	Placeholder string `yaml:"placeholder,omitempty"`
}

// Card line styles.
const (
	StylePlain   = "plain"
	StylePrimary = "primary"
	StyleMono    = "mono"
	StyleSuccess = "success"
)

// CardLine is one labelled value on a result card.
type CardLine struct {
	Label string `yaml:"label"`
	Key   string `yaml:"key"`
	Style string `yaml:"style,omitempty"`
}

// Texts are the user-visible strings of a page.
type Texts struct {
	// Count formats the number of matches, e.g. "%d ta topildi".
	Count string `yaml:"count"`
	// Total formats the number of loaded rows.
	Total   string `yaml:"total"`
	Loading string `yaml:"loading"`
	Empty   string `yaml:"empty"`
	// Copied formats the confirmation after a clipboard copy.
	Copied  string        `yaml:"copied,omitempty"`
	NoImage string        `yaml:"no_image,omitempty"`
	Errors  ErrorMessages `yaml:"errors"`
}

// CountText words n matches.
func (t Texts) CountText(n int) string { return formatNumber(t.Count, n) }

// TotalText words n loaded rows.
func (t Texts) TotalText(n int) string { return formatNumber(t.Total, n) }

// formatNumber fills the %d of format with n. A format without %d is read
// as a unit and follows the number.
func formatNumber(format string, n int) string {
	switch {
	case format == "":
		return ""
	case strings.Contains(format, "%d"):
		return fmt.Sprintf(format, n)
	default:
		return strconv.Itoa(n) + " " + format
	}
}

// ErrorMessages word load failures. Status takes the HTTP status code and
// Error wraps the reason.
type ErrorMessages struct {
	Error     string `yaml:"error"`
	Status    string `yaml:"status"`
	NotArray  string `yaml:"not_array"`
	Transport string `yaml:"transport"`
}

// UIConfig selects and defines color themes.
type UIConfig struct {
	Theme  string                 `yaml:"theme"`
	Themes map[string]ThemeConfig `yaml:"themes"`
}

// ThemeConfig is a YAML-friendly palette (colors accept ints or strings).
type ThemeConfig struct {
	Accent      ColorValue `yaml:"accent"`
	Text        ColorValue `yaml:"text"`
	Muted       ColorValue `yaml:"muted"`
	Border      ColorValue `yaml:"border"`
	SelectedFG  ColorValue `yaml:"selected_fg"`
	SelectedBG  ColorValue `yaml:"selected_bg"`
	InputFG     ColorValue `yaml:"input_fg"`
	InputBG     ColorValue `yaml:"input_bg"`
	Placeholder ColorValue `yaml:"placeholder"`
	BadgeFG     ColorValue `yaml:"badge_fg"`
	BadgeBG     ColorValue `yaml:"badge_bg"`
	Error       ColorValue `yaml:"error"`
	Success     ColorValue `yaml:"success"`
	Mono        ColorValue `yaml:"mono"`
}

// ColorValue stores a color token (ANSI number, hex or name) and marshals
// numerics as YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (any, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(value.Value)
	return nil
}
