package decorate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/phyten/humanpp/internal/engine"
	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/textutil"
)

const sample = "package main\n\n// !! fix this\nfunc f() {} // ?? not a marker\n# TODO: later\n-- >> note\n"

func scanSample(t *testing.T, text string) ([]model.Occurrence, []string) {
	t.Helper()
	return engine.Scan(text, nil), textutil.SplitLines(text)
}

func narrowEllipsis(t *testing.T) {
	t.Helper()
	prev := runewidth.EastAsianWidth
	runewidth.EastAsianWidth = false
	runewidth.DefaultCondition = runewidth.NewCondition()
	t.Cleanup(func() {
		runewidth.EastAsianWidth = prev
		runewidth.DefaultCondition = runewidth.NewCondition()
	})
}

func TestProjectMarkersBoth(t *testing.T) {
	occs, lines := scanSample(t, sample)
	f := ProjectMarkers(occs, lines, DefaultOptions())

	if got, want := f.Badge(model.Intervention), []Range{{Line: 2, Start: 3, End: 6}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("intervention badges=%v want %v", got, want)
	}
	if got, want := f.Line(model.Intervention), []Range{{Line: 2, Start: 0, End: 14}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("intervention lines=%v want %v", got, want)
	}
	if got, want := f.Badge(model.Uncertainty), []Range{{Line: 4, Start: 2, End: 8}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("uncertainty badges=%v want %v", got, want)
	}
	if got, want := f.Badge(model.Directive), []Range{{Line: 5, Start: 3, End: 6}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("directive badges=%v want %v", got, want)
	}
}

func TestProjectMarkersStyleModes(t *testing.T) {
	occs, lines := scanSample(t, sample)
	cases := []struct {
		style  model.Style
		badges bool
		lines  bool
	}{
		{model.StyleBadge, true, false},
		{model.StyleLine, false, true},
		{model.StyleBoth, true, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.style), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Style = tc.style
			f := ProjectMarkers(occs, lines, opts)
			for _, typ := range model.MarkerTypes {
				if f.Badge(typ) == nil || f.Line(typ) == nil {
					t.Fatalf("%v: groups must never be nil", typ)
				}
				if got := len(f.Badge(typ)) > 0; got != tc.badges {
					t.Fatalf("%v badges present=%v want %v", typ, got, tc.badges)
				}
				if got := len(f.Line(typ)) > 0; got != tc.lines {
					t.Fatalf("%v lines present=%v want %v", typ, got, tc.lines)
				}
			}
		})
	}
}

func TestProjectMarkersは無効な種別を空にする(t *testing.T) {
	occs, lines := scanSample(t, sample)
	opts := DefaultOptions()
	opts.Markers[model.Uncertainty] = false
	f := ProjectMarkers(occs, lines, opts)
	if len(f.Badge(model.Uncertainty)) != 0 || len(f.Line(model.Uncertainty)) != 0 {
		t.Fatalf("disabled type must be empty: %+v", f)
	}
	if f.Badge(model.Uncertainty) == nil {
		t.Fatal("disabled type must still get an empty, non-nil list")
	}
	if len(f.Badge(model.Intervention)) != 1 {
		t.Fatal("other types must be unaffected")
	}
}

func TestProjectMarkersClampsToDocument(t *testing.T) {
	occs := []model.Occurrence{
		{Type: model.Intervention, Line: 0, CommentStart: 0, MarkerStart: 3, MarkerEnd: 6, LineEnd: 20},
		{Type: model.Directive, Line: 5, CommentStart: 0, MarkerStart: 3, MarkerEnd: 6, LineEnd: 10},
		{Type: model.Uncertainty, Line: 1, CommentStart: 0, MarkerStart: 9, MarkerEnd: 12, LineEnd: 14},
	}
	lines := []string{"// !! x", "ab"}
	f := ProjectMarkers(occs, lines, DefaultOptions())
	if got, want := f.Line(model.Intervention), []Range{{Line: 0, Start: 0, End: 7}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("line range not clamped: %v want %v", got, want)
	}
	if len(f.Badge(model.Directive)) != 0 || len(f.Line(model.Directive)) != 0 {
		t.Fatal("occurrence beyond the document must be dropped")
	}
	if len(f.Badge(model.Uncertainty)) != 0 {
		t.Fatalf("badge past the line end collapses and is dropped: %v", f.Badge(model.Uncertainty))
	}
	if got, want := f.Line(model.Uncertainty), []Range{{Line: 1, Start: 0, End: 2}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("line tint clamp=%v want %v", got, want)
	}
	for _, typ := range model.MarkerTypes {
		for _, r := range append(f.Badge(typ), f.Line(typ)...) {
			if r.Start > r.End || r.End > textutil.UTF16Len(lines[r.Line]) {
				t.Fatalf("range out of bounds: %+v", r)
			}
		}
	}
}

func TestSelectBadges(t *testing.T) {
	diags := []model.Diagnostic{
		{Line: 3, Severity: model.SeverityWarning, Message: "unused"},
		{Line: 1, Severity: model.SeverityInfo, Message: "first info"},
		{Line: 3, Severity: model.SeverityError, Message: "broken"},
		{Line: 1, Severity: model.SeverityInfo, Message: "second info"},
		{Line: 3, Severity: model.SeverityError, Message: "also broken"},
		{Line: -1, Severity: model.SeverityError, Message: "ignored"},
	}
	got := SelectBadges(diags)
	want := []model.Badge{
		{Line: 1, Severity: model.SeverityInfo, Message: "first info"},
		{Line: 3, Severity: model.SeverityError, Message: "broken"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SelectBadges=%+v want %+v", got, want)
	}
}

func TestProjectDiagnostics(t *testing.T) {
	narrowEllipsis(t)
	lines := []string{"x := 1   ", "y 😀", ""}
	badges := []model.Badge{
		{Line: 0, Severity: model.SeverityError, Message: "declared and not used\nsecond line"},
		{Line: 1, Severity: model.SeverityWarning, Message: strings.Repeat("w", 60)},
		{Line: 2, Severity: model.SeverityInfo},
		{Line: 9, Severity: model.SeverityError, Message: "stale"},
	}
	f := ProjectDiagnostics(badges, lines, DefaultOptions())

	if got, want := f.For(model.SeverityError), []Annotation{{Line: 0, Column: 6, Text: "declared and not used", Severity: model.SeverityError}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("error annotations=%+v want %+v", got, want)
	}
	warn := f.For(model.SeverityWarning)
	if len(warn) != 1 || warn[0].Column != 4 {
		t.Fatalf("warning annotation=%+v", warn)
	}
	if !strings.HasSuffix(warn[0].Text, "…") || textutil.VisibleWidth(warn[0].Text) > 50 {
		t.Fatalf("message not truncated to 50 cells: %q", warn[0].Text)
	}
	if info := f.For(model.SeverityInfo); len(info) != 1 || info[0].Text != "info" || info[0].Column != 0 {
		t.Fatalf("empty message should fall back to severity name: %+v", info)
	}
	if hint := f.For(model.SeverityHint); hint == nil || len(hint) != 0 {
		t.Fatalf("hint list must be empty, non-nil: %v", hint)
	}
}

func TestProjectは無効な重大度を選択前に除く(t *testing.T) {
	lines := []string{"a", "b"}
	diags := []model.Diagnostic{
		{Line: 0, Severity: model.SeverityWarning, Message: "warn"},
		{Line: 0, Severity: model.SeverityHint, Message: "hint"},
		{Line: 1, Severity: model.SeverityError, Message: "err"},
	}
	opts := DefaultOptions()
	opts.Severities[model.SeverityError] = false
	opts.Severities[model.SeverityHint] = true
	f := Project(nil, diags, lines, opts)
	if len(f.Diagnostics.For(model.SeverityError)) != 0 {
		t.Fatal("disabled error severity must be empty")
	}
	if got := f.Diagnostics.For(model.SeverityWarning); len(got) != 1 || got[0].Text != "warn" {
		t.Fatalf("warning should win line 0: %+v", got)
	}
	if len(f.Diagnostics.For(model.SeverityHint)) != 0 {
		t.Fatal("hint is outranked by the warning on the same line")
	}
}

func TestWarningAndErrorOnSameLine(t *testing.T) {
	lines := []string{"x"}
	diags := []model.Diagnostic{
		{Line: 0, Severity: model.SeverityWarning, Message: "w"},
		{Line: 0, Severity: model.SeverityError, Message: "e"},
	}
	f := Project(nil, diags, lines, DefaultOptions())
	if len(f.Diagnostics.For(model.SeverityWarning)) != 0 {
		t.Fatal("only the error badge should be rendered")
	}
	if got := f.Diagnostics.For(model.SeverityError); len(got) != 1 || got[0].Text != "e" {
		t.Fatalf("error annotations=%+v", got)
	}
}

func TestMessageWidth(t *testing.T) {
	narrowEllipsis(t)
	b := model.Badge{Severity: model.SeverityError, Message: "abcdefghij"}
	if got := Message(b, 5); got != "abcd…" {
		t.Fatalf("Message width 5=%q", got)
	}
	if got := Message(b, 10); got != "abcdefghij" {
		t.Fatalf("exact fit should not truncate: %q", got)
	}
	if got := Message(b, 0); got != "abcdefghij" {
		t.Fatalf("non-positive width disables truncation: %q", got)
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	occs, lines := scanSample(t, sample)
	a := Project(occs, nil, lines, DefaultOptions())
	b := Project(occs, nil, lines, DefaultOptions())
	if !reflect.DeepEqual(a, b) {
		t.Fatal("projection must be deterministic")
	}
}
