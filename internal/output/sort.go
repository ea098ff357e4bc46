package output

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/phyten/humanpp/internal/engine"
)

type SortKey struct {
	Name string
	Desc bool
}

type SortSpec struct {
	Keys []SortKey
}

// ParseSortSpec parses "-type,location". A leading '-' sorts descending.
func ParseSortSpec(raw string) (SortSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortSpec{}, nil
	}
	parts := strings.Split(raw, ",")
	keys := make([]SortKey, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: empty segment")
		}
		desc := false
		switch token[0] {
		case '+':
			token = token[1:]
		case '-':
			desc = true
			token = token[1:]
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: sign without name")
		}
		name := strings.ToLower(token)
		switch name {
		case "location":
			keys = append(keys, SortKey{Name: "file", Desc: desc}, SortKey{Name: "line", Desc: desc})
			continue
		case "col":
			name = "column"
		case "type", "lang", "file", "line", "column":
		default:
			return SortSpec{}, fmt.Errorf("invalid sort key: %s", token)
		}
		keys = append(keys, SortKey{Name: name, Desc: desc})
	}
	return SortSpec{Keys: keys}, nil
}

// ApplySort orders items by spec, then by file and line.
func ApplySort(items []engine.Item, spec SortSpec) {
	keys := append(slices.Clone(spec.Keys), SortKey{Name: "file"}, SortKey{Name: "line"})
	slices.SortStableFunc(items, func(a, b engine.Item) int {
		for _, key := range keys {
			var c int
			switch key.Name {
			case "type":
				c = cmp.Compare(a.Type, b.Type)
			case "lang":
				c = cmp.Compare(a.Lang, b.Lang)
			case "file":
				c = cmp.Compare(a.File, b.File)
			case "line":
				c = cmp.Compare(a.Line, b.Line)
			case "column":
				c = cmp.Compare(a.Column, b.Column)
			}
			if c != 0 {
				if key.Desc {
					return -c
				}
				return c
			}
		}
		return 0
	})
}
