package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/phyten/humanpp/internal/decorate"
)

// Terminal draws documents with lipgloss styles reduced to a color profile.
type Terminal struct {
	renderer    *lipgloss.Renderer
	gutter      lipgloss.Style
	lineNumbers bool
}

// TerminalOptions configures NewTerminal.
type TerminalOptions struct {
	Profile     termenv.Profile
	LineNumbers bool
}

// NewTerminal returns a terminal renderer. termenv.Ascii disables color.
func NewTerminal(opts TerminalOptions) *Terminal {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(opts.Profile)
	return &Terminal{
		renderer:    r,
		gutter:      r.NewStyle().Faint(true),
		lineNumbers: opts.LineNumbers,
	}
}

func (t *Terminal) style(def decorate.StyleDef) lipgloss.Style {
	s := t.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if def.Background != "" {
		s = s.Background(lipgloss.Color(def.Background))
	}
	if def.Foreground != "" {
		s = s.Foreground(lipgloss.Color(def.Foreground))
	}
	return s.Bold(def.Bold).Italic(def.Italic)
}

// Render writes doc to w, one output line per document line.
func (t *Terminal) Render(w io.Writer, doc Document) error {
	styles := make(map[decorate.StyleKey]lipgloss.Style, len(doc.State.Styles))
	for key, def := range doc.State.Styles {
		styles[key] = t.style(def)
	}
	width := len(strconv.Itoa(len(doc.Lines)))
	var b strings.Builder
	for _, line := range Layout(doc.Lines, doc.State) {
		b.Reset()
		if t.lineNumbers {
			b.WriteString(t.gutter.Render(fmt.Sprintf("%*d │", width, line.Number)))
			b.WriteByte(' ')
		}
		for _, seg := range line.Segments {
			if s, ok := styles[seg.Key]; ok && seg.Key != "" {
				b.WriteString(s.Render(seg.Text))
				continue
			}
			b.WriteString(seg.Text)
		}
		if line.Annotation != nil {
			b.WriteString("  ")
			if s, ok := styles[line.NoteKey]; ok {
				b.WriteString(s.Render(line.Annotation.Text))
			} else {
				b.WriteString(line.Annotation.Text)
			}
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
