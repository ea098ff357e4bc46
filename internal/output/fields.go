package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phyten/humanpp/internal/engine"
)

// Field is one output column.
type Field struct {
	Key    string
	Header string
}

// FieldSelection is the resolved column list. NeedText reports whether the
// scan has to capture comment text.
type FieldSelection struct {
	Fields   []Field
	ShowText bool
	NeedText bool
}

type fieldMeta struct {
	header string
	isText bool
}

var fieldRegistry = map[string]fieldMeta{
	"type":       {header: "TYPE"},
	"token":      {header: "TOKEN"},
	"lang":       {header: "LANG"},
	"file":       {header: "FILE"},
	"line":       {header: "LINE"},
	"column":     {header: "COLUMN"},
	"end_column": {header: "END_COLUMN"},
	"location":   {header: "LOCATION"},
	"text":       {header: "TEXT", isText: true},
}

// ResolveFields parses a comma-separated field list. An empty list yields the
// default columns, with TEXT only when withText is set.
func ResolveFields(raw string, withText bool) (FieldSelection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		keys := []string{"type", "location", "lang"}
		if withText {
			keys = append(keys, "text")
		}
		sel := FieldSelection{ShowText: withText, NeedText: withText}
		for _, key := range keys {
			sel.Fields = append(sel.Fields, Field{Key: key, Header: fieldRegistry[key].header})
		}
		return sel, nil
	}

	parts := strings.Split(raw, ",")
	sel := FieldSelection{Fields: make([]Field, 0, len(parts))}
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return FieldSelection{}, fmt.Errorf("invalid fields: empty entry")
		}
		key := strings.ToLower(name)
		meta, ok := fieldRegistry[key]
		if !ok {
			return FieldSelection{}, fmt.Errorf("unknown field: %s", name)
		}
		sel.Fields = append(sel.Fields, Field{Key: key, Header: meta.header})
		if meta.isText {
			sel.ShowText = true
		}
	}
	sel.NeedText = withText || sel.ShowText
	return sel, nil
}

// Headers returns the header row for fields.
func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Header
	}
	return out
}

// RowValues returns the cells of it for fields.
func RowValues(it engine.Item, fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = formatFieldValue(it, f.Key)
	}
	return out
}

func formatFieldValue(it engine.Item, key string) string {
	switch key {
	case "type":
		return it.Type.String()
	case "token":
		return it.Token
	case "lang":
		return it.Lang
	case "file":
		return it.File
	case "line":
		return strconv.Itoa(it.Line)
	case "column":
		return strconv.Itoa(it.Column)
	case "end_column":
		return strconv.Itoa(it.EndColumn)
	case "location":
		return fmt.Sprintf("%s:%d:%d", it.File, it.Line, it.Column)
	case "text":
		return it.Text
	default:
		return ""
	}
}
