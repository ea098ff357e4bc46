// Package decorate projects scan results and diagnostics into decoration
// ranges and applies them to a Surface.
package decorate

import (
	"github.com/phyten/humanpp/internal/config"
	"github.com/phyten/humanpp/internal/model"
)

// Range is a span on one line. Columns are UTF-16 code units, End exclusive.
type Range struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Annotation is trailing inline text placed after the line's last non-space character.
type Annotation struct {
	Line     int            `json:"line"`
	Column   int            `json:"column"`
	Text     string         `json:"text"`
	Severity model.Severity `json:"severity"`
}

// StyleKey identifies one decoration style (one handle on the surface).
type StyleKey string

func BadgeKey(t model.MarkerType) StyleKey { return StyleKey("badge." + t.String()) }

func LineKey(t model.MarkerType) StyleKey { return StyleKey("line." + t.String()) }

func DiagnosticKey(s model.Severity) StyleKey { return StyleKey("diagnostic." + s.String()) }

// Keys returns every style key in a stable order: badges, line tints, then diagnostics.
func Keys() []StyleKey {
	out := make([]StyleKey, 0, 2*len(model.MarkerTypes)+len(model.Severities))
	for _, t := range model.MarkerTypes {
		out = append(out, BadgeKey(t))
	}
	for _, t := range model.MarkerTypes {
		out = append(out, LineKey(t))
	}
	for _, s := range model.Severities {
		out = append(out, DiagnosticKey(s))
	}
	return out
}

// StyleDef describes how a key is drawn. Generation changes on every restyle
// so surfaces can drop handles created for an older palette.
type StyleDef struct {
	Key        StyleKey `json:"key"`
	Generation int      `json:"generation"`
	Background string   `json:"background,omitempty"`
	Foreground string   `json:"foreground,omitempty"`
	Bold       bool     `json:"bold,omitempty"`
	Italic     bool     `json:"italic,omitempty"`
	WholeLine  bool     `json:"whole_line,omitempty"`
}

// Surface is where decorations end up: an editor, a terminal, or an HTML page.
// Set and Annotate always receive the complete list for a key; an empty list clears it.
type Surface interface {
	Define(styles []StyleDef)
	Set(key StyleKey, ranges []Range)
	Annotate(key StyleKey, annotations []Annotation)
}

// Options controls projection. Build it from settings with OptionsFrom.
type Options struct {
	Style        model.Style
	Markers      [3]bool
	Severities   [4]bool
	MessageWidth int
}

// DefaultOptions mirrors config.Defaults.
func DefaultOptions() Options {
	return OptionsFrom(config.Defaults())
}

// OptionsFrom reads the projection-relevant parts of s.
func OptionsFrom(s config.Settings) Options {
	o := Options{Style: s.Style, MessageWidth: s.MessageWidth}
	for _, t := range model.MarkerTypes {
		o.Markers[t] = s.MarkerEnabled(t)
	}
	for _, sev := range model.Severities {
		o.Severities[sev] = s.SeverityEnabled(sev)
	}
	return o
}

func (o Options) markerEnabled(t model.MarkerType) bool {
	return t >= 0 && int(t) < len(o.Markers) && o.Markers[t]
}

func (o Options) severityEnabled(s model.Severity) bool {
	return s >= 0 && int(s) < len(o.Severities) && o.Severities[s]
}
