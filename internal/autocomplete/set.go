package autocomplete

// Set tracks the panels of several fields, keyed by field id.
type Set struct {
	order  []string
	panels map[string]*Panel
}

// NewSet creates one closed panel per id.
func NewSet(ids ...string) *Set {
	s := &Set{panels: make(map[string]*Panel, len(ids))}
	for _, id := range ids {
		if _, ok := s.panels[id]; ok {
			continue
		}
		s.order = append(s.order, id)
		s.panels[id] = &Panel{active: NoSelection, built: true}
	}
	return s
}

// Get returns the panel for id, or nil for an unknown id.
func (s *Set) Get(id string) *Panel {
	return s.panels[id]
}

// IDs returns the field ids in creation order.
func (s *Set) IDs() []string {
	return s.order
}

// ClickAt closes every panel except the one belonging to the field whose
// input or dropdown was clicked. An empty id means the click landed outside
// all fields. It returns the ids of the panels it closed.
func (s *Set) ClickAt(id string) []string {
	var closed []string
	for _, fid := range s.order {
		if fid == id {
			continue
		}
		p := s.panels[fid]
		if p.Open() {
			p.Close()
			closed = append(closed, fid)
		}
	}
	return closed
}

// CloseAll hides every panel.
func (s *Set) CloseAll() {
	for _, p := range s.panels {
		p.Close()
	}
}

// AnyOpen reports whether some panel is visible.
func (s *Set) AnyOpen() bool {
	for _, p := range s.panels {
		if p.Open() {
			return true
		}
	}
	return false
}
