package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHitTestPrefersLaterRegions(t *testing.T) {
	regions := []region{
		{Kind: regionField, Field: "profil", Index: -1, Top: 3, Bot: 7},
		{Kind: regionSuggestion, Field: "profil", Index: 0, Top: 5, Bot: 6},
		{Kind: regionCard, Index: 4, Top: 10, Bot: 14},
	}

	assert.Equal(t, regionField, hitTest(regions, 0, 3).Kind)
	got := hitTest(regions, 10, 5)
	assert.Equal(t, regionSuggestion, got.Kind)
	assert.Equal(t, 0, got.Index)
	assert.Equal(t, 4, hitTest(regions, 1, 13).Index)

	miss := hitTest(regions, 0, 8)
	assert.Equal(t, regionNone, miss.Kind)
	assert.Equal(t, -1, miss.Index)
}

func TestRegionContainsHorizontalBounds(t *testing.T) {
	r := region{Kind: regionOverlay, Top: 2, Bot: 6, Left: 10, Right: 20}
	assert.True(t, r.contains(10, 2))
	assert.True(t, r.contains(19, 5))
	assert.False(t, r.contains(20, 5))
	assert.False(t, r.contains(9, 3))
	assert.False(t, r.contains(12, 6))

	full := region{Top: 0, Bot: 1}
	assert.True(t, full.contains(500, 0))
}

func TestFrameMarksRowsAdded(t *testing.T) {
	f := &frame{}
	f.add("title", "")
	top := f.row()
	f.add("a", "b", "c")
	f.mark(regionCard, "", 0, top)

	assert.Equal(t, 5, f.row())
	assert.Equal(t, []region{{Kind: regionCard, Index: 0, Top: 2, Bot: 5}}, f.regions)
}
