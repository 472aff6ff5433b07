package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// recordsKey holds the array in formats whose top level must be a table.
const recordsKey = "records"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeJSON parses a JSON array of objects.
func DecodeJSON(data []byte) ([]Record, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, notArray("invalid JSON: %v", err)
	}
	return toRecords(v)
}

// DecodeYAML accepts either a top-level sequence of mappings or a mapping
// with a records key.
func DecodeYAML(data []byte) ([]Record, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, notArray("invalid YAML: %v", err)
	}
	if m, ok := v.(map[string]any); ok {
		inner, ok := m[recordsKey]
		if !ok {
			return nil, notArray("YAML mapping has no %q key", recordsKey)
		}
		v = inner
	}
	return toRecords(v)
}

// DecodeTOML reads the array of tables stored under the records key.
func DecodeTOML(data []byte) ([]Record, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, notArray("invalid TOML: %v", err)
	}
	v, ok := doc[recordsKey]
	if !ok {
		return nil, notArray("TOML document has no [[%s]] tables", recordsKey)
	}
	return toRecords(v)
}

// DecodeCSV treats the first row as field names.
func DecodeCSV(data []byte) ([]Record, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, notArray("invalid CSV header: %v", err)
	}
	records := []Record{}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, notArray("invalid CSV: %v", err)
		}
		records = append(records, rowToRecord(header, row))
	}
	return records, nil
}

// DecodeXLSX reads one worksheet, the first one when sheet is empty. The
// first row holds the field names.
func DecodeXLSX(data []byte, sheet string) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, notArray("invalid workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return []Record{}, nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, notArray("reading sheet %q: %v", sheet, err)
	}
	records := []Record{}
	if len(rows) == 0 {
		return records, nil
	}
	header := rows[0]
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		records = append(records, rowToRecord(header, row))
	}
	return records, nil
}

func rowToRecord(header, row []string) Record {
	rec := make(Record, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if i < len(row) {
			rec[name] = row[i]
		} else {
			rec[name] = ""
		}
	}
	return rec
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// toRecords accepts an already decoded array whose elements are all objects.
func toRecords(v any) ([]Record, error) {
	switch arr := v.(type) {
	case []any:
		out := make([]Record, 0, len(arr))
		for i, el := range arr {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, notArray("element %d is %s, not an object", i, describe(el))
			}
			out = append(out, Record(m))
		}
		return out, nil
	case []map[string]any:
		out := make([]Record, 0, len(arr))
		for _, m := range arr {
			out = append(out, Record(m))
		}
		return out, nil
	default:
		return nil, notArray("got %s", describe(v))
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case float64, int, int64, uint64:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
