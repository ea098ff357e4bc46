package output

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/phyten/humanpp/internal/engine"
)

// WriteCSV renders items as RFC 4180 CSV with CRLF line endings.
func WriteCSV(w io.Writer, items []engine.Item, sel FieldSelection) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	if err := writer.Write(Headers(sel.Fields)); err != nil {
		return err
	}
	for _, it := range items {
		if err := writer.Write(RowValues(it, sel.Fields)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

var tsvReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// WriteTSV renders one tab-separated row per item. Tabs and line breaks
// inside cells become spaces.
func WriteTSV(w io.Writer, items []engine.Item, sel FieldSelection) error {
	if _, err := io.WriteString(w, strings.Join(Headers(sel.Fields), "\t")+"\n"); err != nil {
		return err
	}
	for _, it := range items {
		row := RowValues(it, sel.Fields)
		for i := range row {
			row[i] = tsvReplacer.Replace(row[i])
		}
		if _, err := io.WriteString(w, strings.Join(row, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
