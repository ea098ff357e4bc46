package output

import (
	"encoding/json"
	"io"

	"github.com/phyten/humanpp/internal/engine"
)

// WriteJSON writes the whole result as one indented document.
func WriteJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteNDJSON streams one item per line, then one error object per failed file.
func WriteNDJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, it := range res.Items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	for _, e := range res.Errors {
		if err := enc.Encode(struct {
			Error engine.ItemError `json:"error"`
		}{e}); err != nil {
			return err
		}
	}
	return nil
}
