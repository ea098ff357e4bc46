package render

import (
	"slices"
	"strings"

	"github.com/phyten/humanpp/internal/decorate"
	"github.com/phyten/humanpp/internal/textutil"
)

// Segment is a run of text drawn with one style. An empty Key is plain text.
type Segment struct {
	Text string
	Key  decorate.StyleKey
}

// Line is one document line split into styled segments.
type Line struct {
	Number     int
	Segments   []Segment
	Annotation *decorate.Annotation
	NoteKey    decorate.StyleKey
}

type span struct {
	start, end int
	key        decorate.StyleKey
	prio       int
}

// Layout splits lines by the ranges in st. Badges are drawn over line tints.
func Layout(lines []string, st decorate.State) []Line {
	spans := make(map[int][]span)
	for _, key := range decorate.Keys() {
		prio := 1
		if st.Styles[key].WholeLine || strings.HasPrefix(string(key), "line.") {
			prio = 0
		}
		for _, r := range st.Ranges[key] {
			if r.Line < 0 || r.Line >= len(lines) {
				continue
			}
			line := lines[r.Line]
			a := textutil.ByteOffset(line, r.Start)
			b := textutil.ByteOffset(line, r.End)
			if b <= a {
				continue
			}
			spans[r.Line] = append(spans[r.Line], span{start: a, end: b, key: key, prio: prio})
		}
	}
	notes := make(map[int]decorate.Annotation)
	noteKeys := make(map[int]decorate.StyleKey)
	for _, key := range decorate.Keys() {
		for _, a := range st.Annotations[key] {
			if _, seen := notes[a.Line]; seen {
				continue
			}
			notes[a.Line] = a
			noteKeys[a.Line] = key
		}
	}

	out := make([]Line, len(lines))
	for i, text := range lines {
		out[i] = Line{Number: i + 1, Segments: segment(text, spans[i])}
		if a, ok := notes[i]; ok {
			out[i].Annotation = &a
			out[i].NoteKey = noteKeys[i]
		}
	}
	return out
}

func segment(text string, spans []span) []Segment {
	if len(spans) == 0 {
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}
	cuts := []int{0, len(text)}
	for _, s := range spans {
		cuts = append(cuts, s.start, s.end)
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	var out []Segment
	for i := 0; i+1 < len(cuts); i++ {
		a, b := cuts[i], cuts[i+1]
		if a >= b {
			continue
		}
		var key decorate.StyleKey
		best := -1
		for _, s := range spans {
			if s.start <= a && b <= s.end && s.prio > best {
				key, best = s.key, s.prio
			}
		}
		if n := len(out); n > 0 && out[n-1].Key == key {
			out[n-1].Text += text[a:b]
			continue
		}
		out = append(out, Segment{Text: text[a:b], Key: key})
	}
	return out
}
