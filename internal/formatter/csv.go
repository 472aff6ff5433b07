package formatter

import (
	"encoding/csv"
	"io"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

func writeCSV(w io.Writer, records []loader.Record, cols []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, row := range rows(records, cols) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
