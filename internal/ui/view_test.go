package ui

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

func regionOf(t *testing.T, m *Model, kind regionKind, field string, index int) region {
	t.Helper()
	m.render()
	for _, r := range m.regions {
		if r.Kind == kind && r.Field == field && r.Index == index {
			return r
		}
	}
	t.Fatalf("no region kind=%d field=%q index=%d", kind, field, index)
	return region{}
}

func click(m *Model, x, y int) {
	m.Update(tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft})
}

func TestViewEnablesAltScreenAndMouse(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{})
	v := m.View()
	assert.True(t, v.AltScreen)
	assert.Equal(t, tea.MouseModeCellMotion, v.MouseMode)
	assert.Equal(t, "Profil qidiruv", v.WindowTitle)
}

func TestFieldRegionsFollowHeader(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	loadNow(t, m)

	assert.Equal(t, 3, regionOf(t, m, regionField, "profil", -1).Top)
	assert.Equal(t, 5, regionOf(t, m, regionField, "mahsulot", -1).Top)
	assert.Equal(t, 7, regionOf(t, m, regionField, "sap", -1).Top)
	card := regionOf(t, m, regionCard, "", 0)
	assert.Equal(t, 10, card.Top)
	assert.Equal(t, 14, card.Bot)
}

func TestCardsShowLabelsPlaceholdersAndDashes(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	loadNow(t, m)
	out := screen(m)

	lines := strings.Split(out, "\n")
	lineWith := func(needle string) []string {
		var found []string
		for _, l := range lines {
			if strings.Contains(l, needle) {
				found = append(found, l)
			}
		}
		return found
	}
	sixty := lineWith("Profil: 60")
	require.Len(t, sixty, 2)
	assert.Contains(t, sixty[0], slotImage)
	assert.Contains(t, sixty[1], slotNoImage)
	seventy := lineWith("Profil: 70")
	require.Len(t, seventy, 1)
	assert.Contains(t, seventy[0], slotBroken)
	assert.Contains(t, out, "SAP kod: 1002")
	assert.Contains(t, out, "Mahsulot nomi: Stvorka")
	assert.Contains(t, out, "Norma: -")
	assert.Contains(t, out, "Norma: 1.5")
}

func TestEmptyStateAndHiddenBadge(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	assert.NotContains(t, screen(m), "Hech narsa topilmadi", "nothing loaded yet")

	loadNow(t, m)
	typeText(m, "999")
	out := screen(m)
	assert.Contains(t, out, "Hech narsa topilmadi")
	assert.NotContains(t, out, "ta topildi")
}

func TestClickFieldFocusesAndClosesOtherPanels(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	loadNow(t, m)
	typeText(m, "6")
	require.True(t, m.Ctrl.Panel("profil").Open())

	r := regionOf(t, m, regionField, "sap", -1)
	click(m, 4, r.Top+1)

	assert.Equal(t, 2, m.focus)
	assert.True(t, m.Inputs[2].Focused())
	assert.False(t, m.Inputs[0].Focused())
	assert.False(t, m.Ctrl.Panel("profil").Open())
}

func TestClickInsideOwnFieldKeepsPanel(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	loadNow(t, m)
	typeText(m, "6")

	r := regionOf(t, m, regionField, "profil", -1)
	click(m, 2, r.Top)
	assert.True(t, m.Ctrl.Panel("profil").Open())
}

func TestClickSuggestionPicks(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	loadNow(t, m)
	m.Update(keyTab)
	typeText(m, "o")
	require.Equal(t, []string{"Stvorka", "Impost"}, m.suggestions["mahsulot"])

	r := regionOf(t, m, regionSuggestion, "mahsulot", 1)
	click(m, 6, r.Top)

	assert.Equal(t, "Impost", m.Inputs[1].Value())
	assert.Equal(t, "Impost", m.Ctrl.Filter("mahsulot"))
	assert.False(t, m.Ctrl.Panel("mahsulot").Open())
	require.Len(t, m.results, 1)
	assert.Equal(t, float64(3001), m.results[0]["SAP kod"])
}

func TestClickOutsideClosesPanels(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	loadNow(t, m)
	typeText(m, "6")

	click(m, 0, 0)
	assert.False(t, m.Ctrl.AnyPanelOpen())
	assert.Equal(t, "6", m.Inputs[0].Value())
}

func TestRightClickIgnored(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	loadNow(t, m)
	typeText(m, "6")
	m.render()

	m.Update(tea.MouseClickMsg{X: 0, Y: 0, Button: tea.MouseRight})
	assert.True(t, m.Ctrl.AnyPanelOpen())
}

func TestClickCardSelectsWithoutDetail(t *testing.T) {
	m := newTestModel(t, "profil", &stubSource{recs: sampleRecords()})
	loadNow(t, m)

	r := regionOf(t, m, regionCard, "", 2)
	click(m, 5, r.Top+1)
	assert.True(t, m.onResults())
	assert.Equal(t, 2, m.selected)
	assert.False(t, m.detail)
}

func TestClickCardOpensDetailAndOutsideCloses(t *testing.T) {
	recs := []loader.Record{
		{"САП": "1002", "Краткий текст": "Рама", "Группа": "ПВХ"},
		{"САП": "2004", "Краткий текст": "Створка", "Группа": "ПВХ"},
	}
	m := newTestModel(t, "sap", &stubSource{recs: recs})
	loadNow(t, m)

	r := regionOf(t, m, regionCard, "", 1)
	click(m, 3, r.Top)
	require.True(t, m.detail)
	assert.Contains(t, screen(m), "Краткий текст: Створка")

	box := regionOf(t, m, regionOverlay, "", 1)
	click(m, box.Left+1, box.Top+1)
	assert.True(t, m.detail, "clicks inside the overlay keep it open")

	click(m, 0, 0)
	assert.False(t, m.detail)
}

func TestResultsScrollKeepsSelectionVisible(t *testing.T) {
	var recs []loader.Record
	for i := range 10 {
		recs = append(recs, loader.Record{"Profil seriya": i, "Mahsulot turi": "Rama", "SAP kod": 1000 + i})
	}
	m := newTestModel(t, "profil", &stubSource{recs: recs}, func(o *Options) { o.Height = 24 })
	loadNow(t, m)
	m.Update(keyShiftTab)
	for range 9 {
		m.Update(keyDown)
	}
	out := screen(m)
	assert.Contains(t, out, "SAP kod: 1009")
	assert.NotContains(t, out, "SAP kod: 1000")
	assert.Positive(t, m.offset)

	for range 9 {
		m.Update(keyUp)
	}
	m.render()
	assert.Equal(t, 0, m.offset)
}

func TestFooterFollowsFocus(t *testing.T) {
	m := newTestModel(t, "sap", &stubSource{recs: []loader.Record{{"САП": "1"}}})
	loadNow(t, m)
	assert.Contains(t, m.footerText(), "ctrl+l clear")

	m.Update(keyShiftTab)
	assert.Contains(t, m.footerText(), "y copy")
	assert.Contains(t, m.footerText(), "enter choose")

	m.Update(keyEnter)
	assert.Contains(t, m.footerText(), "x close")
}

func TestImageSlot(t *testing.T) {
	tests := []struct {
		name  string
		rec   loader.Record
		field string
		want  string
	}{
		{"no image field", loader.Record{"Rasm": "https://x/y.png"}, "", slotNoImage},
		{"missing value", loader.Record{}, "Rasm", slotNoImage},
		{"blank value", loader.Record{"Rasm": "  "}, "Rasm", slotNoImage},
		{"not a url", loader.Record{"Rasm": "rasm.png"}, "Rasm", slotBroken},
		{"url", loader.Record{"Rasm": "https://x/y.png"}, "Rasm", slotImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, imageSlot(tt.rec, tt.field))
		})
	}
}

func TestFormatText(t *testing.T) {
	assert.Equal(t, "Nusxa olindi: 1002", formatText("Nusxa olindi: %s", "1002"))
	assert.Equal(t, "Copied 1002", formatText("Copied", "1002"))
	assert.Equal(t, "1002", formatText("", "1002"))
}
