package decorate

import (
	"sort"
	"strings"
	"unicode"

	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/textutil"
)

const ellipsis = "…"

// MarkerFrame holds the marker ranges of one scan. Every group is non-nil,
// so applying a frame always overwrites what the previous one left behind.
type MarkerFrame struct {
	Badges [3][]Range `json:"badges"`
	Lines  [3][]Range `json:"lines"`
}

// DiagnosticFrame holds one annotation list per severity.
type DiagnosticFrame struct {
	Annotations [4][]Annotation `json:"annotations"`
}

// Frame is a complete projection of one document.
type Frame struct {
	Markers     MarkerFrame     `json:"markers"`
	Diagnostics DiagnosticFrame `json:"diagnostics"`
}

// EmptyMarkerFrame clears every marker key when applied.
func EmptyMarkerFrame() MarkerFrame {
	var f MarkerFrame
	for _, t := range model.MarkerTypes {
		f.Badges[t] = []Range{}
		f.Lines[t] = []Range{}
	}
	return f
}

// EmptyDiagnosticFrame clears every diagnostic key when applied.
func EmptyDiagnosticFrame() DiagnosticFrame {
	var f DiagnosticFrame
	for _, s := range model.Severities {
		f.Annotations[s] = []Annotation{}
	}
	return f
}

// Badge returns the badge ranges for t.
func (f MarkerFrame) Badge(t model.MarkerType) []Range {
	if t < 0 || int(t) >= len(f.Badges) {
		return nil
	}
	return f.Badges[t]
}

// Line returns the line tint ranges for t.
func (f MarkerFrame) Line(t model.MarkerType) []Range {
	if t < 0 || int(t) >= len(f.Lines) {
		return nil
	}
	return f.Lines[t]
}

// For returns the annotations for s.
func (f DiagnosticFrame) For(s model.Severity) []Annotation {
	if s < 0 || int(s) >= len(f.Annotations) {
		return nil
	}
	return f.Annotations[s]
}

// Project runs both halves of the projection. Diagnostics of disabled
// severities are dropped before badge selection so they never hide an
// enabled one on the same line.
func Project(occs []model.Occurrence, diags []model.Diagnostic, lines []string, opts Options) Frame {
	enabled := make([]model.Diagnostic, 0, len(diags))
	for _, d := range diags {
		if opts.severityEnabled(d.Severity) {
			enabled = append(enabled, d)
		}
	}
	return Frame{
		Markers:     ProjectMarkers(occs, lines, opts),
		Diagnostics: ProjectDiagnostics(SelectBadges(enabled), lines, opts),
	}
}

// ProjectMarkers groups occurrences by type. Badge ranges cover the marker
// token, line ranges run from the comment start to the end of the text.
// Occurrences on lines that no longer exist are dropped and columns are
// clamped to the current line length.
func ProjectMarkers(occs []model.Occurrence, lines []string, opts Options) MarkerFrame {
	f := EmptyMarkerFrame()
	badges, tint := opts.Style.Badges(), opts.Style.Lines()
	for _, occ := range occs {
		if !opts.markerEnabled(occ.Type) {
			continue
		}
		if badges {
			if r, ok := clampRange(lines, occ.Line, occ.MarkerStart, occ.MarkerEnd); ok {
				f.Badges[occ.Type] = append(f.Badges[occ.Type], r)
			}
		}
		if tint {
			if r, ok := clampRange(lines, occ.Line, occ.CommentStart, occ.LineEnd); ok {
				f.Lines[occ.Type] = append(f.Lines[occ.Type], r)
			}
		}
	}
	return f
}

// SelectBadges keeps one diagnostic per line: the most severe, or the first
// seen among equals. The result is ordered by line.
func SelectBadges(diags []model.Diagnostic) []model.Badge {
	best := make(map[int]int, len(diags))
	order := make([]int, 0, len(diags))
	for i, d := range diags {
		if d.Line < 0 {
			continue
		}
		j, ok := best[d.Line]
		if !ok {
			best[d.Line] = i
			order = append(order, d.Line)
			continue
		}
		if d.Severity.Outranks(diags[j].Severity) {
			best[d.Line] = i
		}
	}
	sort.Ints(order)
	out := make([]model.Badge, 0, len(order))
	for _, line := range order {
		d := diags[best[line]]
		out = append(out, model.Badge{Line: d.Line, Severity: d.Severity, Message: d.Message})
	}
	return out
}

// ProjectDiagnostics places each badge after the trimmed text of its line.
// The message's first line is cut to opts.MessageWidth cells with an ellipsis.
func ProjectDiagnostics(badges []model.Badge, lines []string, opts Options) DiagnosticFrame {
	f := EmptyDiagnosticFrame()
	for _, b := range badges {
		if !opts.severityEnabled(b.Severity) {
			continue
		}
		if b.Line < 0 || b.Line >= len(lines) {
			continue
		}
		col := textutil.UTF16Len(strings.TrimRightFunc(lines[b.Line], unicode.IsSpace))
		f.Annotations[b.Severity] = append(f.Annotations[b.Severity], Annotation{
			Line:     b.Line,
			Column:   col,
			Text:     Message(b, opts.MessageWidth),
			Severity: b.Severity,
		})
	}
	return f
}

// Message is the annotation text for b. An empty message falls back to the severity name.
func Message(b model.Badge, width int) string {
	msg := textutil.FirstLine(b.Message)
	if msg == "" {
		msg = b.Severity.String()
	}
	if width <= 0 {
		return msg
	}
	return textutil.TruncateByWidth(msg, width, ellipsis)
}

func clampRange(lines []string, line, start, end int) (Range, bool) {
	if line < 0 || line >= len(lines) {
		return Range{}, false
	}
	n := textutil.UTF16Len(lines[line])
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	if start == end {
		return Range{}, false
	}
	return Range{Line: line, Start: start, End: end}, true
}
