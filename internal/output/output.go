// Package output formats scan results for the CLI.
package output

import (
	"fmt"
	"io"

	"github.com/phyten/humanpp/internal/engine"
)

// Write renders res in format, one of table, tsv, json, ndjson, csv, markdown.
func Write(w io.Writer, format string, res *engine.Result, sel FieldSelection, opts TableOptions) error {
	switch format {
	case "table", "":
		return WriteTable(w, res.Items, sel, opts)
	case "tsv":
		return WriteTSV(w, res.Items, sel)
	case "json":
		return WriteJSON(w, res)
	case "ndjson":
		return WriteNDJSON(w, res)
	case "csv":
		return WriteCSV(w, res.Items, sel)
	case "markdown", "md":
		return WriteMarkdownTable(w, res.Items, sel)
	}
	return fmt.Errorf("unknown output format: %s", format)
}
