package decorate

import (
	"sync"

	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/palette"
)

// StyleDefs builds the style set for p.
func StyleDefs(p palette.Palette, generation int) []StyleDef {
	out := make([]StyleDef, 0, len(Keys()))
	for _, t := range model.MarkerTypes {
		sw := p.Badge(t)
		out = append(out, StyleDef{
			Key:        BadgeKey(t),
			Generation: generation,
			Background: sw.Background,
			Foreground: sw.Foreground,
			Bold:       true,
		})
	}
	for _, t := range model.MarkerTypes {
		out = append(out, StyleDef{
			Key:        LineKey(t),
			Generation: generation,
			Background: p.Line(t),
			WholeLine:  true,
		})
	}
	for _, s := range model.Severities {
		out = append(out, StyleDef{
			Key:        DiagnosticKey(s),
			Generation: generation,
			Foreground: p.Severity(s),
			Italic:     true,
		})
	}
	return out
}

// Manager owns the style handles of one surface. It is the only component
// that defines styles, and it always sends complete lists per key.
type Manager struct {
	mu         sync.Mutex
	surface    Surface
	palette    palette.Palette
	generation int
	markers    MarkerFrame
	diags      DiagnosticFrame
}

// NewManager defines the styles for p on surface.
func NewManager(surface Surface, p palette.Palette) *Manager {
	m := &Manager{
		surface: surface,
		palette: p,
		markers: EmptyMarkerFrame(),
		diags:   EmptyDiagnosticFrame(),
	}
	m.define()
	return m
}

func (m *Manager) define() {
	m.generation++
	m.surface.Define(StyleDefs(m.palette, m.generation))
}

// Palette returns the palette the current handles were built from.
func (m *Manager) Palette() palette.Palette {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.palette
}

// Generation counts how many times styles have been defined.
func (m *Manager) Generation() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Restyle replaces every handle with one built from p and re-applies the last frames.
func (m *Manager) Restyle(p palette.Palette) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.palette = p
	m.define()
	m.setMarkers(m.markers)
	m.setDiagnostics(m.diags)
}

// Render replaces all marker decorations.
func (m *Manager) Render(f MarkerFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMarkers(f)
}

// RenderDiagnostics replaces all diagnostic annotations.
func (m *Manager) RenderDiagnostics(f DiagnosticFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setDiagnostics(f)
}

// Apply renders both halves of f.
func (m *Manager) Apply(f Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMarkers(f.Markers)
	m.setDiagnostics(f.Diagnostics)
}

// Clear empties every key.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMarkers(EmptyMarkerFrame())
	m.setDiagnostics(EmptyDiagnosticFrame())
}

func (m *Manager) setMarkers(f MarkerFrame) {
	for _, t := range model.MarkerTypes {
		m.surface.Set(BadgeKey(t), nonNil(f.Badges[t]))
		m.surface.Set(LineKey(t), nonNil(f.Lines[t]))
	}
	m.markers = f
}

func (m *Manager) setDiagnostics(f DiagnosticFrame) {
	for _, s := range model.Severities {
		list := f.Annotations[s]
		if list == nil {
			list = []Annotation{}
		}
		m.surface.Annotate(DiagnosticKey(s), list)
	}
	m.diags = f
}

func nonNil(r []Range) []Range {
	if r == nil {
		return []Range{}
	}
	return r
}
