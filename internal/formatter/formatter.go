// Package formatter writes record sets in the output formats of the
// search command.
package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// Formats lists every supported format in help order.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatCSV, FormatXLSX}

// ErrBinaryToTerminal is returned when xlsx output has no file to go to.
var ErrBinaryToTerminal = errors.New("xlsx output needs --out")

// ParseFormat accepts a format name case-insensitively ("yml" is yaml).
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case "yml":
		return FormatYAML, nil
	case FormatJSON, FormatYAML, FormatCSV, FormatXLSX:
		return f, nil
	default:
		names := make([]string, len(Formats))
		for i, f := range Formats {
			names[i] = string(f)
		}
		return "", fmt.Errorf("unknown output format %q (want one of %s)", s, strings.Join(names, ", "))
	}
}

// Options control rendering.
type Options struct {
	// Columns fixes the leading column order; remaining keys follow sorted.
	Columns []string
	// OnlyColumns drops every key not listed in Columns.
	OnlyColumns bool
	// Width is the table width; zero detects the terminal width.
	Width int
	// NoColor disables ANSI styling in tables.
	NoColor bool
	// Sheet names the worksheet of xlsx output.
	Sheet string
	// Indent is the YAML and JSON indent width.
	Indent int
}

// Columns resolves the column order for records under opts.
func Columns(records []loader.Record, opts Options) []string {
	if opts.OnlyColumns && len(opts.Columns) > 0 {
		return opts.Columns
	}
	return loader.Keys(records, opts.Columns)
}

// Write encodes records to w.
func Write(w io.Writer, f Format, records []loader.Record, opts Options) error {
	cols := Columns(records, opts)
	switch f {
	case FormatTable, "":
		_, err := io.WriteString(w, RenderTable(cols, rows(records, cols), opts))
		return err
	case FormatJSON:
		return writeJSON(w, records, cols, opts.Indent)
	case FormatYAML:
		out, err := renderYAML(records, cols, YAMLFormatOptions{Indent: opts.Indent, LiteralBlockStrings: true})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatCSV:
		return writeCSV(w, records, cols)
	case FormatXLSX:
		return writeXLSX(w, records, cols, opts.Sheet)
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

func rows(records []loader.Record, cols []string) [][]string {
	out := make([][]string, len(records))
	for i, r := range records {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = r.String(c)
		}
		out[i] = row
	}
	return out
}

// writeJSON keeps the column order in each object, which encoding/json
// cannot do for maps.
func writeJSON(w io.Writer, records []loader.Record, cols []string, indent int) error {
	if indent <= 0 {
		indent = 2
	}
	pad := strings.Repeat(" ", indent)

	var buf bytes.Buffer
	if len(records) == 0 {
		buf.WriteString("[]\n")
		_, err := w.Write(buf.Bytes())
		return err
	}
	buf.WriteString("[\n")
	for i, r := range records {
		buf.WriteString(pad + "{")
		first := true
		for _, c := range cols {
			v, ok := r[c]
			if !ok {
				continue
			}
			k, err := json.Marshal(c)
			if err != nil {
				return err
			}
			val, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("encoding %q: %w", c, err)
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			buf.WriteString("\n" + pad + pad)
			buf.Write(k)
			buf.WriteString(": ")
			buf.Write(val)
		}
		if !first {
			buf.WriteString("\n" + pad)
		}
		buf.WriteString("}")
		if i < len(records)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}
