// Package autocomplete implements the keyboard and pointer state of a
// suggestion dropdown attached to a single text field.
package autocomplete

// NoSelection is the active index of a freshly built list.
const NoSelection = -1

// Panel is the dropdown of one field. The zero value is a closed, empty
// panel with no active item.
type Panel struct {
	items  []string
	active int
	open   bool
	built  bool
}

// Rebuild replaces the items, clears the active index and opens the panel
// when there is anything to show.
func (p *Panel) Rebuild(items []string) {
	p.items = append(p.items[:0], items...)
	p.active = NoSelection
	p.open = len(p.items) > 0
	p.built = true
}

// Items returns the current suggestions.
func (p *Panel) Items() []string {
	return p.items
}

// Len returns the number of suggestions.
func (p *Panel) Len() int {
	return len(p.items)
}

// Active returns the highlighted index, or NoSelection.
func (p *Panel) Active() int {
	if !p.built {
		return NoSelection
	}
	return p.active
}

// Open reports whether the dropdown is visible.
func (p *Panel) Open() bool {
	return p.open
}

// Move shifts the highlight by delta, wrapping at both ends. It is a no-op
// on a closed or empty panel and reports whether the highlight moved.
func (p *Panel) Move(delta int) bool {
	n := len(p.items)
	if !p.open || n == 0 {
		return false
	}
	// Go's % keeps the sign of the dividend, so fold delta first.
	p.active = ((p.Active()+delta)%n + n) % n
	return true
}

// Commit returns the highlighted item and closes the panel. Nothing
// happens while no item is highlighted.
func (p *Panel) Commit() (string, bool) {
	if !p.open || p.active < 0 || p.active >= len(p.items) {
		return "", false
	}
	v := p.items[p.active]
	p.open = false
	return v, true
}

// Pick selects item i directly, as a pointer click does, and closes the
// panel regardless of the highlight.
func (p *Panel) Pick(i int) (string, bool) {
	if !p.open || i < 0 || i >= len(p.items) {
		return "", false
	}
	p.active = i
	p.open = false
	return p.items[i], true
}

// Close hides the panel without selecting anything.
func (p *Panel) Close() {
	p.open = false
}

// Reset empties the panel.
func (p *Panel) Reset() {
	p.items = p.items[:0]
	p.active = NoSelection
	p.open = false
	p.built = true
}
