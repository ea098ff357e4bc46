package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/phyten/humanpp/internal/engine"
	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/textutil"
)

var sampleItems = []engine.Item{
	{
		Type:      model.Intervention,
		Token:     "!!",
		Lang:      "go",
		File:      "internal/app/main.go",
		Line:      42,
		Column:    4,
		EndColumn: 30,
		Text:      "refactor parser, handle \"quotes\"\nand commas",
	},
	{
		Type:      model.Directive,
		Token:     "NOTE:",
		Lang:      "python",
		File:      "pkg/util/helpers.py",
		Line:      7,
		Column:    3,
		EndColumn: 28,
		Text:      "escape pipes | for <markdown>",
	},
}

func sampleResult() *engine.Result {
	return &engine.Result{
		Items:      append([]engine.Item(nil), sampleItems...),
		Files:      3,
		Total:      2,
		Errors:     []engine.ItemError{{File: "bad.go", Stage: "read", Message: "permission denied"}},
		ErrorCount: 1,
	}
}

func mustFields(t *testing.T, raw string) FieldSelection {
	t.Helper()
	sel, err := ResolveFields(raw, false)
	if err != nil {
		t.Fatalf("ResolveFields(%q) failed: %v", raw, err)
	}
	return sel
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleItems, mustFields(t, "type,token,location,text")); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	want := "TYPE,TOKEN,LOCATION,TEXT\r\n" +
		"intervention,!!,internal/app/main.go:42:4,\"refactor parser, handle \"\"quotes\"\"\r\nand commas\"\r\n" +
		"directive,NOTE:,pkg/util/helpers.py:7:3,escape pipes | for <markdown>\r\n"
	if buf.String() != want {
		t.Fatalf("CSV mismatch:\nwant %q\ngot  %q", want, buf.String())
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, sampleItems, mustFields(t, "type,line,text")); err != nil {
		t.Fatalf("WriteTSV failed: %v", err)
	}
	want := "TYPE\tLINE\tTEXT\n" +
		"intervention\t42\trefactor parser, handle \"quotes\" and commas\n" +
		"directive\t7\tescape pipes | for <markdown>\n"
	if buf.String() != want {
		t.Fatalf("TSV mismatch:\nwant %q\ngot  %q", want, buf.String())
	}
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNDJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteNDJSON failed: %v", err)
	}
	output := buf.String()
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	if len(lines) != len(sampleItems)+1 {
		t.Fatalf("expected %d lines, got %d", len(sampleItems)+1, len(lines))
	}
	for i, line := range lines[:len(sampleItems)] {
		var item engine.Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			t.Fatalf("failed to decode line %d: %v", i, err)
		}
		if item.Type != sampleItems[i].Type || item.Line != sampleItems[i].Line {
			t.Fatalf("line %d decoded to %+v", i, item)
		}
	}
	if !strings.Contains(lines[len(lines)-1], `"error":{"file":"bad.go"`) {
		t.Fatalf("last line should carry the file error: %s", lines[len(lines)-1])
	}
	if strings.Contains(output, "\\u003c") {
		t.Fatal("HTML characters should not be escaped in NDJSON output")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	var res engine.Result
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Total != 2 || res.ErrorCount != 1 || res.Items[1].Type != model.Directive {
		t.Fatalf("round trip lost data: %+v", res)
	}
	if !strings.Contains(buf.String(), `"type": "intervention"`) {
		t.Fatal("marker type should be written by name")
	}
}

func TestWriteMarkdownTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdownTable(&buf, sampleItems, mustFields(t, "type,token,location,text")); err != nil {
		t.Fatalf("WriteMarkdownTable failed: %v", err)
	}
	want := "| TYPE | TOKEN | LOCATION | TEXT |\n" +
		"| --- | --- | --- | --- |\n" +
		"| intervention | !! | internal/app/main.go:42:4 | refactor parser, handle \"quotes\"<br>and commas |\n" +
		"| directive | NOTE: | pkg/util/helpers.py:7:3 | escape pipes \\| for <markdown> |\n"
	if buf.String() != want {
		t.Fatalf("markdown mismatch:\nwant %q\ngot  %q", want, buf.String())
	}
}

func TestWriteTableAlignsColumns(t *testing.T) {
	items := append(append([]engine.Item(nil), sampleItems...), engine.Item{
		Type: model.Uncertainty, Token: "??", Lang: "go", File: "日本語.go", Line: 1, Column: 1, Text: "幅の広い文字",
	})
	sel := mustFields(t, "type,location,text")

	var plain bytes.Buffer
	if err := WriteTable(&plain, items, sel, TableOptions{}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(plain.String(), "\n"), "\n")
	if len(lines) != len(items)+1 {
		t.Fatalf("expected %d lines, got %d", len(items)+1, len(lines))
	}
	textCol := -1
	for i, line := range lines {
		cells := strings.SplitN(line, "  ", 2)
		if len(cells) != 2 {
			t.Fatalf("line %d has no column gap: %q", i, line)
		}
		idx := strings.LastIndex(line, map[int]string{0: "TEXT", 1: "refactor", 2: "escape", 3: "幅"}[i])
		col := textutil.VisibleWidth(line[:idx])
		if textCol == -1 {
			textCol = col
		}
		if col != textCol {
			t.Fatalf("TEXT column misaligned on line %d: %d vs %d\n%s", i, col, textCol, plain.String())
		}
	}
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatal("plain table must not contain escapes")
	}

	var colored bytes.Buffer
	if err := WriteTable(&colored, items, sel, TableOptions{Color: true, Profile: termenv.TrueColor}); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	if !strings.Contains(colored.String(), "\x1b[1;"+termenv.TrueColor.Color("#f13b5f").Sequence(false)+"m") {
		t.Fatalf("intervention should use its badge color: %q", colored.String())
	}
	if textutil.StripANSI(colored.String()) != plain.String() {
		t.Fatal("color must not change the layout")
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", sampleResult(), mustFields(t, ""), TableOptions{}); err == nil {
		t.Fatal("unknown format should fail")
	}
}

func TestResolveFieldsDefaultUsesFlags(t *testing.T) {
	sel, err := ResolveFields("", true)
	if err != nil {
		t.Fatalf("ResolveFields failed: %v", err)
	}
	headers := []string{"TYPE", "LOCATION", "LANG", "TEXT"}
	if got := Headers(sel.Fields); strings.Join(got, ",") != strings.Join(headers, ",") {
		t.Fatalf("headers=%v want %v", got, headers)
	}
	if !sel.ShowText || !sel.NeedText {
		t.Fatalf("text flags mismatch: %+v", sel)
	}
}

func TestResolveFieldsOverridesFlags(t *testing.T) {
	sel, err := ResolveFields("Type, file", true)
	if err != nil {
		t.Fatalf("ResolveFields failed: %v", err)
	}
	if sel.ShowText || !sel.NeedText {
		t.Fatalf("explicit fields hide text but keep capturing it: %+v", sel)
	}
	if len(sel.Fields) != 2 || sel.Fields[0].Key != "type" || sel.Fields[1].Key != "file" {
		t.Fatalf("fields mismatch: %+v", sel.Fields)
	}
	sel, _ = ResolveFields("text", false)
	if !sel.ShowText || !sel.NeedText {
		t.Fatalf("text field should enable capture: %+v", sel)
	}
	for _, bad := range []string{"unknown", "type,,file"} {
		if _, err := ResolveFields(bad, false); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
}

func TestParseSortSpecNormalizesKeys(t *testing.T) {
	spec, err := ParseSortSpec("-type,location,col")
	if err != nil {
		t.Fatalf("ParseSortSpec failed: %v", err)
	}
	want := []SortKey{{Name: "type", Desc: true}, {Name: "file"}, {Name: "line"}, {Name: "column"}}
	if len(spec.Keys) != len(want) {
		t.Fatalf("unexpected key count: got=%v want=%v", spec.Keys, want)
	}
	for i, got := range spec.Keys {
		if got != want[i] {
			t.Fatalf("key %d mismatch: got=%+v want=%+v", i, got, want[i])
		}
	}
	for _, bad := range []string{"author", "type,,file", "-"} {
		if _, err := ParseSortSpec(bad); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
}

func TestApplySort種別降順に並ぶ(t *testing.T) {
	items := []engine.Item{
		{File: "b.go", Line: 10, Type: model.Intervention},
		{File: "a.go", Line: 5, Type: model.Intervention},
		{File: "c.go", Line: 1, Type: model.Directive},
		{File: "a.go", Line: 2, Type: model.Directive},
	}
	spec, _ := ParseSortSpec("-type")
	ApplySort(items, spec)
	want := []struct {
		file string
		line int
	}{{"a.go", 2}, {"c.go", 1}, {"a.go", 5}, {"b.go", 10}}
	for i, w := range want {
		if items[i].File != w.file || items[i].Line != w.line {
			t.Fatalf("unexpected order at %d: got=%s:%d want=%s:%d", i, items[i].File, items[i].Line, w.file, w.line)
		}
	}
}
