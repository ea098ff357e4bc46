package decorate

import (
	"slices"
	"sync"
)

// State is a copy of everything a MemorySurface currently shows.
type State struct {
	Styles      map[StyleKey]StyleDef
	Ranges      map[StyleKey][]Range
	Annotations map[StyleKey][]Annotation
}

// MemorySurface keeps the current decorations in memory. Renderers read
// it through Snapshot; tests use the call counters.
type MemorySurface struct {
	mu          sync.Mutex
	styles      map[StyleKey]StyleDef
	ranges      map[StyleKey][]Range
	annotations map[StyleKey][]Annotation
	defines     int
	sets        int
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{
		styles:      make(map[StyleKey]StyleDef),
		ranges:      make(map[StyleKey][]Range),
		annotations: make(map[StyleKey][]Annotation),
	}
}

func (s *MemorySurface) Define(styles []StyleDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.styles)
	for _, def := range styles {
		s.styles[def.Key] = def
	}
	s.defines++
}

func (s *MemorySurface) Set(key StyleKey, ranges []Range) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranges[key] = slices.Clone(ranges)
	s.sets++
}

func (s *MemorySurface) Annotate(key StyleKey, annotations []Annotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[key] = slices.Clone(annotations)
	s.sets++
}

// Ranges returns the current ranges for key.
func (s *MemorySurface) Ranges(key StyleKey) []Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ranges[key])
}

// Annotations returns the current annotations for key.
func (s *MemorySurface) Annotations(key StyleKey) []Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.annotations[key])
}

// Counts returns how many Define and Set/Annotate calls were made.
func (s *MemorySurface) Counts() (defines, sets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defines, s.sets
}

// Snapshot copies the current state.
func (s *MemorySurface) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Styles:      make(map[StyleKey]StyleDef, len(s.styles)),
		Ranges:      make(map[StyleKey][]Range, len(s.ranges)),
		Annotations: make(map[StyleKey][]Annotation, len(s.annotations)),
	}
	for k, v := range s.styles {
		st.Styles[k] = v
	}
	for k, v := range s.ranges {
		st.Ranges[k] = slices.Clone(v)
	}
	for k, v := range s.annotations {
		st.Annotations[k] = slices.Clone(v)
	}
	return st
}
