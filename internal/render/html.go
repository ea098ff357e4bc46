package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/phyten/humanpp/internal/colorutil"
	"github.com/phyten/humanpp/internal/decorate"
	"github.com/phyten/humanpp/internal/palette"
)

var (
	//go:embed templates/preview.html
	previewHTML string
	previewOnce sync.Once
	previewTmpl *template.Template
)

// HTMLOptions configures WriteHTML.
type HTMLOptions struct {
	Title      string
	Background string
}

type htmlPage struct {
	Title string
	CSS   template.CSS
	Lines []htmlLine
}

type htmlLine struct {
	Number    int
	Segments  []htmlSegment
	Note      string
	NoteClass string
}

type htmlSegment struct {
	Text  string
	Class string
}

// WriteHTML renders doc as a standalone HTML page.
func WriteHTML(w io.Writer, doc Document, opts HTMLOptions) error {
	title := opts.Title
	if title == "" {
		title = doc.Name
	}
	page := htmlPage{
		Title: title,
		CSS:   template.CSS(styleSheet(doc.State.Styles, opts.Background)),
	}
	for _, line := range Layout(doc.Lines, doc.State) {
		hl := htmlLine{Number: line.Number}
		for _, seg := range line.Segments {
			hl.Segments = append(hl.Segments, htmlSegment{Text: seg.Text, Class: className(seg.Key)})
		}
		if line.Annotation != nil {
			hl.Note = line.Annotation.Text
			hl.NoteClass = className(line.NoteKey)
		}
		page.Lines = append(page.Lines, hl)
	}
	return loadPreview().Execute(w, page)
}

func loadPreview() *template.Template {
	previewOnce.Do(func() {
		previewTmpl = template.Must(template.New("preview").Parse(previewHTML))
	})
	return previewTmpl
}

func className(key decorate.StyleKey) string {
	if key == "" {
		return ""
	}
	return "hpp-" + strings.ReplaceAll(string(key), ".", "-")
}

// styleSheet emits one rule per style. Colors that do not parse are skipped.
func styleSheet(styles map[decorate.StyleKey]decorate.StyleDef, background string) string {
	if !colorutil.ValidHex(background) {
		background = palette.DefaultBackground
	}
	var b strings.Builder
	fmt.Fprintf(&b, "body{background:%s}\n", background)
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		def := styles[decorate.StyleKey(k)]
		fmt.Fprintf(&b, ".%s{", className(def.Key))
		if colorutil.ValidHex(def.Background) {
			fmt.Fprintf(&b, "background:%s;", def.Background)
		}
		if colorutil.ValidHex(def.Foreground) {
			fmt.Fprintf(&b, "color:%s;", def.Foreground)
		}
		if def.Bold {
			b.WriteString("font-weight:bold;")
		}
		if def.Italic {
			b.WriteString("font-style:italic;")
		}
		b.WriteString("}\n")
	}
	return b.String()
}
