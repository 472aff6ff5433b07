package formatter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

// DefaultSheet is the worksheet name used when Options.Sheet is empty.
const DefaultSheet = "Natijalar"

// writeXLSX writes a workbook with a bold, frozen header row. Values keep
// their source types so numbers stay numeric in the spreadsheet.
func writeXLSX(w io.Writer, records []loader.Record, cols []string, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if len(cols) > 0 {
		last, err := excelize.CoordinatesToCellName(len(cols), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for i, r := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = cellValue(r[c])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}

func cellValue(v any) any {
	switch v.(type) {
	case nil:
		return ""
	case string, bool, float64, float32, int, int64, int32, uint64:
		return v
	default:
		return loader.Stringify(v)
	}
}
