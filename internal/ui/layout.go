package ui

// regionKind identifies what a screen area holds.
type regionKind int

const (
	regionNone regionKind = iota
	regionField
	regionSuggestion
	regionCard
	regionOverlay
)

// region is a rectangle of the last rendered frame. Top is inclusive and
// Bottom exclusive; Right == 0 means the full width.
type region struct {
	Kind  regionKind
	Field string
	Index int
	Top   int
	Bot   int
	Left  int
	Right int
}

func (r region) contains(x, y int) bool {
	if y < r.Top || y >= r.Bot {
		return false
	}
	if r.Right == 0 {
		return x >= r.Left
	}
	return x >= r.Left && x < r.Right
}

// hitTest returns the innermost region under (x, y). Later regions win so
// suggestion rows beat the field block they belong to.
func hitTest(regions []region, x, y int) region {
	hit := region{Kind: regionNone, Index: -1}
	for _, r := range regions {
		if r.contains(x, y) {
			hit = r
		}
	}
	return hit
}

// frame accumulates rendered lines and the regions they cover.
type frame struct {
	lines   []string
	regions []region
}

func (f *frame) add(lines ...string) {
	f.lines = append(f.lines, lines...)
}

func (f *frame) row() int { return len(f.lines) }

// mark records a region spanning from top to the current row.
func (f *frame) mark(kind regionKind, field string, index, top int) {
	f.regions = append(f.regions, region{Kind: kind, Field: field, Index: index, Top: top, Bot: f.row()})
}
