package formatter

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// TableColors controls the rendered colors of the table. Nil fields fall
// back to the defaults.
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

// SetTableTheme overrides the table styles.
func SetTableTheme(tc TableColors) {
	hfg, hbg, vc, sep := tc.HeaderFG, tc.HeaderBG, tc.ValueColor, tc.SeparatorColor
	if hfg == nil {
		hfg = defaultHeaderFG
	}
	if hbg == nil {
		hbg = defaultHeaderBG
	}
	if vc == nil {
		vc = defaultValueColor
	}
	if sep == nil {
		sep = defaultSeparator
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(hfg).Background(hbg)
	valueStyle = lipgloss.NewStyle().Foreground(vc)
	separatorStyle = lipgloss.NewStyle().Foreground(sep)
}

//nolint:gochecknoinits // default styles for package consumers
func init() {
	SetTableTheme(TableColors{})
}

const (
	sepWidth    = 2
	minColWidth = 3
	maxColWidth = 40
)

// getTerminalWidth returns the stdout width, or 120 when stdout is not a
// terminal.
func getTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 120
}

// RenderTable renders rows under a header line. Columns are shrunk to fit
// opts.Width and values truncated with an ellipsis.
func RenderTable(columns []string, rows [][]string, opts Options) string {
	if len(columns) == 0 {
		return ""
	}
	width := opts.Width
	if width <= 0 {
		width = getTerminalWidth()
	}
	widths := columnWidths(columns, rows, width)

	var b strings.Builder
	sep := strings.Repeat(" ", sepWidth)

	parts := make([]string, len(columns))
	total := 0
	for i, col := range columns {
		cell := padRight(truncate(col, widths[i]), widths[i])
		if !opts.NoColor {
			cell = headerStyle.Render(cell)
		}
		parts[i] = cell
		total += widths[i]
	}
	total += sepWidth * (len(columns) - 1)
	b.WriteString(strings.Join(parts, sep) + "\n")

	line := strings.Repeat("─", total)
	if !opts.NoColor {
		line = separatorStyle.Render(line)
	}
	b.WriteString(line + "\n")

	for _, row := range rows {
		for i := range columns {
			val := ""
			if i < len(row) {
				val = flatten(row[i])
			}
			cell := padRight(truncate(val, widths[i]), widths[i])
			if !opts.NoColor {
				cell = valueStyle.Render(cell)
			}
			parts[i] = cell
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, sep), " ") + "\n")
	}
	return b.String()
}

// columnWidths sizes each column to its widest cell, capped, then shrinks
// the widest columns until the table fits.
func columnWidths(columns []string, rows [][]string, width int) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = runewidth.StringWidth(col)
	}
	for _, row := range rows {
		for i := range columns {
			if i >= len(row) {
				break
			}
			if w := runewidth.StringWidth(flatten(row[i])); w > widths[i] {
				widths[i] = w
			}
		}
	}

	usable := width - sepWidth*(len(columns)-1)
	if sum(widths) > usable {
		for i := range widths {
			widths[i] = min(widths[i], maxColWidth)
		}
	}
	total := sum(widths)
	for total > usable {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColWidth {
			break
		}
		widths[widest]--
		total--
	}
	return widths
}

func sum(ws []int) int {
	n := 0
	for _, w := range ws {
		n += w
	}
	return n
}

// flatten keeps table rows on one line.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	r := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")
	return r.Replace(s)
}

func truncate(s string, w int) string {
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}

func padRight(s string, w int) string {
	return runewidth.FillRight(s, w)
}
