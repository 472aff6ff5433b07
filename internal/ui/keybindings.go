package ui

import (
	"strings"

	"charm.land/bubbles/v2/key"
)

// keyMap holds the TUI key bindings. Single-letter bindings only apply
// outside the text fields so they never swallow typed characters.
type keyMap struct {
	Quit     key.Binding
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Escape   key.Binding
	Refresh  key.Binding
	Clear    key.Binding
	Theme    key.Binding
	Close    key.Binding
	Copy     key.Binding
	OpenLink key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Refresh:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Theme:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
		Close:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		OpenLink: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open image")),
	}
}

// fieldHelp lists the bindings shown while a text field has focus.
func (k keyMap) fieldHelp() []key.Binding {
	return []key.Binding{k.Next, k.Up, k.Down, k.Enter, k.Escape, k.Refresh, k.Clear, k.Theme, k.Quit}
}

// resultsHelp lists the bindings shown while the results list has focus.
func (k keyMap) resultsHelp(detail bool) []key.Binding {
	out := []key.Binding{k.Next, k.Up, k.Down}
	if detail {
		out = append(out, k.Enter)
	}
	return append(out, k.Copy, k.OpenLink, k.Refresh, k.Theme, k.Quit)
}

// overlayHelp lists the bindings shown on the detail overlay.
func (k keyMap) overlayHelp() []key.Binding {
	return []key.Binding{k.Close, k.Escape, k.Copy, k.OpenLink, k.Quit}
}

// helpLine renders bindings as "key desc • key desc".
func helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
