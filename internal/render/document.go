// Package render draws captured decorations onto a terminal or an HTML page.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/phyten/humanpp/internal/config"
	"github.com/phyten/humanpp/internal/decorate"
	"github.com/phyten/humanpp/internal/detect"
	"github.com/phyten/humanpp/internal/engine"
	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/palette"
	"github.com/phyten/humanpp/internal/textutil"
)

// Document is one file's text together with the decorations it received.
type Document struct {
	Name  string
	Lang  string
	Lines []string
	State decorate.State
}

// Decorate scans text with the settings in st and captures the result on a
// MemorySurface. An empty lang is detected from name and content.
func Decorate(name, text, lang string, diags []model.Diagnostic, st config.Settings) (Document, error) {
	if lang == "" {
		lang = detect.FromPathAndContent(name, []byte(text)).Name
	}
	pal, err := palette.Resolve(st.PaletteOverrides())
	if err != nil {
		return Document{}, fmt.Errorf("palette: %w", err)
	}
	lines := textutil.SplitLines(text)
	surface := decorate.NewMemorySurface()
	m := decorate.NewManager(surface, pal)
	if st.Enabled {
		occs := engine.NewScanner(engine.PrefixMatcherFor(lang), st.Rules()).Scan(text)
		m.Apply(decorate.Project(occs, diags, lines, decorate.OptionsFrom(st)))
	} else {
		m.Clear()
	}
	return Document{Name: name, Lang: lang, Lines: lines, State: surface.Snapshot()}, nil
}

type diagnosticEntry struct {
	Line     int            `json:"line"`
	Severity model.Severity `json:"severity"`
	Message  string         `json:"message"`
}

// ReadDiagnostics decodes a JSON array of {line, severity, message}.
// Lines are 1-based; severity is a name such as "error" or "warn".
func ReadDiagnostics(r io.Reader) ([]model.Diagnostic, error) {
	var entries []diagnosticEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}
	out := make([]model.Diagnostic, 0, len(entries))
	for i, e := range entries {
		if e.Line < 1 {
			return nil, fmt.Errorf("diagnostic %d: line must be >= 1", i)
		}
		out = append(out, model.Diagnostic{Line: e.Line - 1, Severity: e.Severity, Message: e.Message})
	}
	return out, nil
}
