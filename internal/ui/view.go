package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/prodlookup/internal/config"
	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

// Image slot placeholders.
const (
	slotNoImage = "📦"
	slotBroken  = "🖼"
	slotImage   = "📷"
	slotWidth   = 2
)

// View renders the page.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.WindowTitle = m.Page.Title
	return v
}

// render draws the frame and remembers its clickable regions.
func (m *Model) render() string {
	w, h := m.size()
	if m.detail {
		if rec := m.selectedRecord(); rec != nil {
			return m.renderOverlay(rec, w, h)
		}
		m.detail = false
	}

	f := &frame{}
	title := m.styles.Title.Render(truncate(m.Page.Title, w/2))
	// The badge is hidden while a load is in flight.
	if n := len(m.results); n > 0 && !m.Ctrl.Loading() {
		if badge := m.Page.Texts.CountText(n); badge != "" {
			title += "  " + m.styles.Badge.Render(badge)
		}
	}
	f.add(title, m.statusLine(w), "")

	for i, fd := range m.Page.Fields {
		top := f.row()
		label := fd.Label
		if label == "" {
			label = fd.Key
		}
		if i == m.focus {
			f.add(m.styles.FocusLabel.Render("▸ " + label))
		} else {
			f.add(m.styles.Label.Render("  " + label))
		}
		f.add("  " + m.styles.Input.Render(m.Inputs[i].View()))
		f.mark(regionField, fd.ID, -1, top)

		active := -1
		if p := m.Ctrl.Panel(fd.ID); p != nil {
			active = p.Active()
		}
		for j, s := range m.suggestions[fd.ID] {
			top := f.row()
			line := "    " + truncate(s, w-6)
			if j == active {
				f.add(m.styles.ActiveSugg.Render(line))
			} else {
				f.add(m.styles.Suggestion.Render(line))
			}
			f.mark(regionSuggestion, fd.ID, j, top)
		}
	}
	f.add("")

	if m.errMsg != "" {
		f.add(m.styles.Error.Render(truncate(m.errMsg, w)))
	}
	m.renderResults(f, w, h-f.row()-1)

	for f.row() < h-1 {
		f.add("")
	}
	f.add(m.styles.Footer.Render(truncate(m.footerText(), w)))
	m.regions = f.regions
	return strings.Join(f.lines, "\n")
}

func (m *Model) statusLine(w int) string {
	switch {
	case m.Ctrl.Loading():
		return m.spinner.View() + " " + m.styles.Status.Render(m.Page.Texts.Loading)
	case m.flash != "":
		return m.styles.Success.Render(truncate(m.flash, w))
	case m.Ctrl.Loaded() && m.Page.Texts.Total != "":
		return m.styles.Status.Render(m.Page.Texts.TotalText(len(m.Ctrl.Records())))
	default:
		return ""
	}
}

func (m *Model) footerText() string {
	switch {
	case m.detail:
		return helpLine(m.keys.overlayHelp())
	case m.onResults():
		return helpLine(m.keys.resultsHelp(m.Page.Detail))
	default:
		return helpLine(m.keys.fieldHelp())
	}
}

// renderResults draws as many cards as fit in rows, scrolled so the
// selected card stays visible.
func (m *Model) renderResults(f *frame, w, rows int) {
	if len(m.results) == 0 {
		if m.Ctrl.Loaded() || m.errMsg != "" {
			f.add(m.styles.Empty.Render(m.Page.Texts.Empty))
		}
		return
	}
	cardH := len(m.cardLines()) + 1
	fit := max(rows/cardH, 1)
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+fit {
		m.offset = m.selected - fit + 1
	}
	if m.offset > len(m.results)-1 {
		m.offset = 0
	}
	for i := m.offset; i < len(m.results) && i < m.offset+fit; i++ {
		top := f.row()
		f.add(m.renderCard(i, w)...)
		f.mark(regionCard, "", i, top)
		f.add("")
	}
}

// cardLines returns the configured card lines, or one line per tracked
// field when the page defines none.
func (m *Model) cardLines() []config.CardLine {
	if len(m.Page.Card) > 0 {
		return m.Page.Card
	}
	out := make([]config.CardLine, 0, len(m.Page.Fields))
	for _, fd := range m.Page.Fields {
		out = append(out, config.CardLine{Label: fd.Label, Key: fd.Key})
	}
	return out
}

func (m *Model) renderCard(i, w int) []string {
	rec := m.results[i]
	marker := "  "
	if m.onResults() && i == m.selected {
		marker = m.styles.Marker.Render("▌ ")
	}
	slot := runewidth.FillRight(imageSlot(rec, m.Page.ImageField), slotWidth)

	lines := make([]string, 0, len(m.Page.Card))
	for j, cl := range m.cardLines() {
		prefix := marker + slot + " "
		if j > 0 {
			prefix = marker + strings.Repeat(" ", slotWidth+1)
		}
		label := cl.Label
		if label == "" {
			label = cl.Key
		}
		room := w - lipgloss.Width(prefix) - runewidth.StringWidth(label) - 2
		lines = append(lines, prefix+
			m.styles.CardLabel.Render(label+": ")+
			m.styles.valueStyle(cl.Style).Render(truncate(displayValue(rec, cl.Key), room)))
	}
	return lines
}

// overlayLine is one labelled value of the detail overlay.
type overlayLine struct {
	label, key, style string
}

func (m *Model) overlayLines() []overlayLine {
	seen := map[string]bool{}
	var out []overlayLine
	add := func(label, key, style string) {
		if key == "" || key == m.Page.ImageField || seen[key] {
			return
		}
		seen[key] = true
		if label == "" {
			label = key
		}
		out = append(out, overlayLine{label: label, key: key, style: style})
	}
	for _, fd := range m.Page.Fields {
		add(fd.Label, fd.Key, config.StylePlain)
	}
	for _, cl := range m.Page.Card {
		add(cl.Label, cl.Key, cl.Style)
	}
	return out
}

// renderOverlay draws the detail box of rec centred on an empty screen.
func (m *Model) renderOverlay(rec loader.Record, w, h int) string {
	inner := min(w-4, 64)
	if inner < 10 {
		inner = max(w-2, 1)
	}

	body := []string{m.styles.Title.Render(truncate(m.Page.Title, inner)), ""}
	for _, l := range m.overlayLines() {
		room := inner - runewidth.StringWidth(l.label) - 2
		body = append(body, m.styles.CardLabel.Render(l.label+": ")+
			m.styles.valueStyle(l.style).Render(truncate(displayValue(rec, l.key), room)))
	}
	if m.Page.ImageField != "" {
		slot := imageSlot(rec, m.Page.ImageField)
		text := strings.TrimSpace(rec.String(m.Page.ImageField))
		if slot != slotImage {
			text = m.Page.Texts.NoImage
		}
		body = append(body, "", slot+" "+m.styles.Status.Render(truncate(text, inner-slotWidth-1)))
	}
	if m.flash != "" {
		body = append(body, "", m.styles.Success.Render(truncate(m.flash, inner)))
	}
	body = append(body, "", m.styles.Footer.Render(truncate(m.footerText(), inner)))
	for i, line := range body {
		if pad := inner - lipgloss.Width(line); pad > 0 {
			body[i] = line + strings.Repeat(" ", pad)
		}
	}

	box := strings.Split(m.styles.Overlay.Render(strings.Join(body, "\n")), "\n")
	bw := inner + 2
	bh := len(box)
	x0 := max((w-bw)/2, 0)
	y0 := max((h-bh)/2, 0)

	lines := make([]string, 0, y0+bh)
	for range y0 {
		lines = append(lines, "")
	}
	indent := strings.Repeat(" ", x0)
	for _, l := range box {
		lines = append(lines, indent+l)
	}
	m.regions = []region{{Kind: regionOverlay, Index: m.selected, Top: y0, Bot: y0 + bh, Left: x0, Right: x0 + bw}}
	return strings.Join(lines, "\n")
}

// imageSlot picks the card's image placeholder: a box when the record has
// no image, a broken frame when the value is not an http(s) URL.
func imageSlot(rec loader.Record, field string) string {
	if field == "" {
		return slotNoImage
	}
	v := strings.TrimSpace(rec.String(field))
	switch {
	case v == "":
		return slotNoImage
	case !IsImageURL(v):
		return slotBroken
	default:
		return slotImage
	}
}

// displayValue renders a record value, "-" when empty.
func displayValue(rec loader.Record, key string) string {
	v := strings.TrimSpace(rec.String(key))
	if v == "" {
		return "-"
	}
	return v
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s, w, "…")
}
