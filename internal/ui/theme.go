package ui

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/prodlookup/internal/config"
	"github.com/oakwood-commons/prodlookup/internal/formatter"
)

// Theme defines the colors used across the UI.
type Theme struct {
	Accent      color.Color // Titles, focused labels, spinner
	Text        color.Color // Card values
	Muted       color.Color // Labels, status line, footer
	Border      color.Color // Input and overlay borders
	SelectedFG  color.Color // Active suggestion / selected card foreground
	SelectedBG  color.Color // Active suggestion / selected card background
	InputFG     color.Color // Field text
	InputBG     color.Color // Field background
	Placeholder color.Color // Field placeholder
	BadgeFG     color.Color // Count badge foreground
	BadgeBG     color.Color // Count badge background
	Error       color.Color // Error box
	Success     color.Color // "success" card lines and flashes
	Mono        color.Color // "mono" card lines (codes)
}

var currentTheme Theme

// fallbackTheme is used for palette entries a configured theme leaves out.
func fallbackTheme() Theme {
	return Theme{
		Accent:      lipgloss.Color("81"),
		Text:        lipgloss.Color("252"),
		Muted:       lipgloss.Color("244"),
		Border:      lipgloss.Color("238"),
		SelectedFG:  lipgloss.Color("255"),
		SelectedBG:  lipgloss.Color("24"),
		InputFG:     lipgloss.Color("252"),
		InputBG:     lipgloss.Color("236"),
		Placeholder: lipgloss.Color("241"),
		BadgeFG:     lipgloss.Color("16"),
		BadgeBG:     lipgloss.Color("114"),
		Error:       lipgloss.Color("203"),
		Success:     lipgloss.Color("114"),
		Mono:        lipgloss.Color("180"),
	}
}

// ThemeFromConfig converts a YAML palette, filling blanks from base.
func ThemeFromConfig(tc config.ThemeConfig, base Theme) Theme {
	pick := func(v config.ColorValue, fallback color.Color) color.Color {
		s := strings.TrimSpace(string(v))
		if s == "" {
			return fallback
		}
		return lipgloss.Color(s)
	}
	return Theme{
		Accent:      pick(tc.Accent, base.Accent),
		Text:        pick(tc.Text, base.Text),
		Muted:       pick(tc.Muted, base.Muted),
		Border:      pick(tc.Border, base.Border),
		SelectedFG:  pick(tc.SelectedFG, base.SelectedFG),
		SelectedBG:  pick(tc.SelectedBG, base.SelectedBG),
		InputFG:     pick(tc.InputFG, base.InputFG),
		InputBG:     pick(tc.InputBG, base.InputBG),
		Placeholder: pick(tc.Placeholder, base.Placeholder),
		BadgeFG:     pick(tc.BadgeFG, base.BadgeFG),
		BadgeBG:     pick(tc.BadgeBG, base.BadgeBG),
		Error:       pick(tc.Error, base.Error),
		Success:     pick(tc.Success, base.Success),
		Mono:        pick(tc.Mono, base.Mono),
	}
}

// ThemeByName looks up a configured theme.
func ThemeByName(cfg *config.Config, name string) (Theme, error) {
	tc, ok := cfg.UI.Themes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(cfg), ", "))
	}
	return ThemeFromConfig(tc, fallbackTheme()), nil
}

// ThemeNames returns the configured theme names, sorted.
func ThemeNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.UI.Themes))
	for name := range cfg.UI.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetTheme overrides the global theme. The table formatter follows it so
// CLI output and the TUI share one palette.
func SetTheme(t Theme) {
	currentTheme = t
	formatter.SetTableTheme(formatter.TableColors{
		HeaderFG:       t.Accent,
		HeaderBG:       t.InputBG,
		ValueColor:     t.Text,
		SeparatorColor: t.Border,
	})
}

// ApplyTheme selects the named theme from cfg.
func ApplyTheme(cfg *config.Config, name string) error {
	th, err := ThemeByName(cfg, name)
	if err != nil {
		return err
	}
	SetTheme(th)
	return nil
}

// CurrentTheme returns the active theme.
func CurrentTheme() Theme {
	if currentTheme == (Theme{}) {
		currentTheme = fallbackTheme()
	}
	return currentTheme
}

// styles are the lipgloss styles derived from a theme.
type styles struct {
	Title       lipgloss.Style
	Badge       lipgloss.Style
	Status      lipgloss.Style
	Label       lipgloss.Style
	FocusLabel  lipgloss.Style
	Input       lipgloss.Style
	Suggestion  lipgloss.Style
	ActiveSugg  lipgloss.Style
	Error       lipgloss.Style
	Empty       lipgloss.Style
	CardLabel   lipgloss.Style
	Plain       lipgloss.Style
	Primary     lipgloss.Style
	Mono        lipgloss.Style
	Success     lipgloss.Style
	Marker      lipgloss.Style
	Overlay     lipgloss.Style
	Footer      lipgloss.Style
	Placeholder lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			Title: plain.Bold(true), Badge: plain.Bold(true), Status: plain, Label: plain,
			FocusLabel: plain.Bold(true), Input: plain, Suggestion: plain, ActiveSugg: plain.Reverse(true),
			Error: plain.Bold(true), Empty: plain, CardLabel: plain, Plain: plain, Primary: plain.Bold(true),
			Mono: plain, Success: plain, Marker: plain, Footer: plain, Placeholder: plain,
			Overlay: plain.Border(lipgloss.RoundedBorder()),
		}
	}
	return styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(th.Accent),
		Badge:       lipgloss.NewStyle().Bold(true).Foreground(th.BadgeFG).Background(th.BadgeBG).Padding(0, 1),
		Status:      lipgloss.NewStyle().Foreground(th.Muted),
		Label:       lipgloss.NewStyle().Foreground(th.Muted),
		FocusLabel:  lipgloss.NewStyle().Bold(true).Foreground(th.Accent),
		Input:       lipgloss.NewStyle().Foreground(th.InputFG).Background(th.InputBG),
		Suggestion:  lipgloss.NewStyle().Foreground(th.Text),
		ActiveSugg:  lipgloss.NewStyle().Foreground(th.SelectedFG).Background(th.SelectedBG),
		Error:       lipgloss.NewStyle().Bold(true).Foreground(th.Error),
		Empty:       lipgloss.NewStyle().Italic(true).Foreground(th.Muted),
		CardLabel:   lipgloss.NewStyle().Foreground(th.Muted),
		Plain:       lipgloss.NewStyle().Foreground(th.Text),
		Primary:     lipgloss.NewStyle().Bold(true).Foreground(th.Accent),
		Mono:        lipgloss.NewStyle().Foreground(th.Mono),
		Success:     lipgloss.NewStyle().Foreground(th.Success),
		Marker:      lipgloss.NewStyle().Foreground(th.Accent),
		Overlay:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.Border),
		Footer:      lipgloss.NewStyle().Foreground(th.Muted),
		Placeholder: lipgloss.NewStyle().Foreground(th.Placeholder),
	}
}

// valueStyle maps a card line style to its lipgloss style.
func (s styles) valueStyle(name string) lipgloss.Style {
	switch name {
	case config.StylePrimary:
		return s.Primary
	case config.StyleMono:
		return s.Mono
	case config.StyleSuccess:
		return s.Success
	default:
		return s.Plain
	}
}
