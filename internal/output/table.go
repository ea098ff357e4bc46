package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/phyten/humanpp/internal/engine"
	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/termcolor"
	"github.com/phyten/humanpp/internal/textutil"
)

// TableOptions controls WriteTable. With Color set, the type and token
// columns use the marker's badge color reduced to Profile.
type TableOptions struct {
	Color   bool
	Profile termenv.Profile
}

var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// WriteTable aligns columns by display width.
func WriteTable(w io.Writer, items []engine.Item, sel FieldSelection, opts TableOptions) error {
	headers := Headers(sel.Fields)
	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, headers)
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = textutil.VisibleWidth(h)
	}
	for _, it := range items {
		row := RowValues(it, sel.Fields)
		for i := range row {
			row[i] = cellReplacer.Replace(row[i])
			widths[i] = max(widths[i], textutil.VisibleWidth(row[i]))
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	for r, row := range rows {
		b.Reset()
		for i, cell := range row {
			if r > 0 && opts.Color {
				cell = colorize(items[r-1].Type, sel.Fields[i].Key, cell, opts.Profile)
			}
			if i < len(row)-1 {
				cell = textutil.PadRight(cell, widths[i]) + "  "
			}
			b.WriteString(cell)
		}
		line := strings.TrimRight(b.String(), " ")
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func colorize(t model.MarkerType, key, cell string, profile termenv.Profile) string {
	if key != "type" && key != "token" {
		return cell
	}
	bg, _ := t.Colors()
	return termcolor.Paint(cell, bg, profile, true)
}

// WriteMarkdownTable renders items as a GitHub Flavored Markdown table.
func WriteMarkdownTable(w io.Writer, items []engine.Item, sel FieldSelection) error {
	headers := Headers(sel.Fields)
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | ")); err != nil {
		return err
	}
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
		return err
	}
	for _, it := range items {
		row := RowValues(it, sel.Fields)
		for i := range row {
			row[i] = escapeMarkdownCell(row[i])
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | ")); err != nil {
			return err
		}
	}
	return nil
}

var markdownReplacer = strings.NewReplacer("\r\n", "<br>", "\n", "<br>", "\r", "", "|", "\\|")

func escapeMarkdownCell(s string) string {
	return markdownReplacer.Replace(s)
}
