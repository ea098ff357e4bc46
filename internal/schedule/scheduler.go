// Package schedule keeps decorations live: it debounces text and diagnostic
// changes per editor and routes host events and user commands.
package schedule

import (
	"io"
	"log"
	"sync"

	"github.com/phyten/humanpp/internal/config"
	"github.com/phyten/humanpp/internal/decorate"
	"github.com/phyten/humanpp/internal/engine"
	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/palette"
	"github.com/phyten/humanpp/internal/textutil"
)

// State is the scheduler's position in its update cycle.
type State int

const (
	Idle State = iota
	PendingScan
	Scanning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingScan:
		return "pending"
	case Scanning:
		return "scanning"
	}
	return "unknown"
}

// Editor is one open document as seen by the host.
type Editor interface {
	ID() string
	Text() string
	Language() string
	Surface() decorate.Surface
}

// DiagnosticsSource returns the host's current diagnostics for an editor.
type DiagnosticsSource interface {
	Diagnostics(editorID string) []model.Diagnostic
}

// SettingsSource yields the current settings; *config.Store satisfies it.
type SettingsSource interface {
	Settings() config.Settings
}

type noDiagnostics struct{}

func (noDiagnostics) Diagnostics(string) []model.Diagnostic { return nil }

// Scheduler drives the decorations of one editor. Every transition runs under
// mu; timer callbacks carry the sequence number they were armed with and do
// nothing once a newer event has superseded them.
type Scheduler struct {
	mu       sync.Mutex
	editor   Editor
	settings SettingsSource
	diags    DiagnosticsSource
	clock    Clock
	logger   *log.Logger
	manager  *decorate.Manager
	onFrame  func()

	state     State
	textSeq   uint64
	diagSeq   uint64
	textTimer Timer
	diagTimer Timer
	cleared   bool
	closed    bool
	scans     int
	changed   bool
}

// Options are shared by every scheduler a Hub creates.
type Options struct {
	Clock       Clock
	Logger      *log.Logger
	Diagnostics DiagnosticsSource
	// OnFrame runs once after each event that changed the surface, after the
	// scheduler's lock is released.
	OnFrame func()
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = RealClock()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	if o.Diagnostics == nil {
		o.Diagnostics = noDiagnostics{}
	}
	return o
}

// NewScheduler defines styles on the editor's surface. It does not scan;
// call Focused or Refresh for the first render.
func NewScheduler(editor Editor, settings SettingsSource, opts Options) *Scheduler {
	opts = opts.withDefaults()
	s := &Scheduler{
		editor:   editor,
		settings: settings,
		diags:    opts.Diagnostics,
		clock:    opts.Clock,
		logger:   opts.Logger,
		onFrame:  opts.OnFrame,
		cleared:  true,
	}
	s.manager = decorate.NewManager(editor.Surface(), s.resolvePalette(settings.Settings(), palette.Default()))
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Scans counts completed marker scans.
func (s *Scheduler) Scans() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scans
}

// TextChanged restarts the text debounce timer.
func (s *Scheduler) TextChanged() {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return
	}
	st := s.settings.Settings()
	if !st.Enabled {
		s.disableLocked()
		return
	}
	s.stopTextLocked()
	seq := s.textSeq
	s.textTimer = s.clock.AfterFunc(st.Debounce(), func() { s.fireText(seq) })
	s.state = PendingScan
}

func (s *Scheduler) fireText(seq uint64) {
	s.mu.Lock()
	defer s.unlock()
	if s.closed || seq != s.textSeq || s.state != PendingScan {
		return
	}
	s.textTimer = nil
	st := s.settings.Settings()
	if !st.Enabled {
		s.disableLocked()
		return
	}
	s.scanLocked(st)
}

// Focused scans immediately and drops any pending text scan.
func (s *Scheduler) Focused() {
	s.mu.Lock()
	defer s.unlock()
	s.updateLocked(s.settings.Settings())
}

// Refresh forces an immediate full update without touching settings.
func (s *Scheduler) Refresh() {
	s.Focused()
}

// DiagnosticsChanged restarts the diagnostics debounce timer. Only the
// annotation half is recomputed when it fires.
func (s *Scheduler) DiagnosticsChanged() {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return
	}
	st := s.settings.Settings()
	if !st.Enabled {
		s.disableLocked()
		return
	}
	s.stopDiagLocked()
	seq := s.diagSeq
	s.diagTimer = s.clock.AfterFunc(st.Debounce(), func() { s.fireDiagnostics(seq) })
}

func (s *Scheduler) fireDiagnostics(seq uint64) {
	s.mu.Lock()
	defer s.unlock()
	if s.closed || seq != s.diagSeq {
		return
	}
	s.diagTimer = nil
	st := s.settings.Settings()
	if !st.Enabled {
		s.disableLocked()
		return
	}
	s.diagnosticsLocked(st, textutil.SplitLines(s.editor.Text()))
}

// ConfigChanged rebuilds the style handles from the new palette and rescans
// immediately, or clears everything when highlighting is now disabled.
func (s *Scheduler) ConfigChanged() {
	s.mu.Lock()
	defer s.unlock()
	if s.closed {
		return
	}
	st := s.settings.Settings()
	if !st.Enabled {
		s.disableLocked()
		return
	}
	s.manager.Restyle(s.resolvePalette(st, s.manager.Palette()))
	s.changed = true
	s.updateLocked(st)
}

// Close cancels every timer. Later events are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTextLocked()
	s.stopDiagLocked()
	s.state = Idle
	s.closed = true
}

// Settled runs fn while no update is in progress, so a surface snapshot
// taken inside fn holds one whole frame. fn must not call the Scheduler.
func (s *Scheduler) Settled(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// unlock releases mu and reports a finished frame if the surface changed.
func (s *Scheduler) unlock() {
	changed := s.changed
	s.changed = false
	s.mu.Unlock()
	if changed && s.onFrame != nil {
		s.onFrame()
	}
}

func (s *Scheduler) updateLocked(st config.Settings) {
	if s.closed {
		return
	}
	if !st.Enabled {
		s.disableLocked()
		return
	}
	s.stopTextLocked()
	lines := s.scanLocked(st)
	s.diagnosticsLocked(st, lines)
}

func (s *Scheduler) scanLocked(st config.Settings) []string {
	s.state = Scanning
	text := s.editor.Text()
	lines := textutil.SplitLines(text)
	scanner := engine.NewScanner(engine.PrefixMatcherFor(s.editor.Language()), st.Rules())
	frame := decorate.ProjectMarkers(scanner.Scan(text), lines, decorate.OptionsFrom(st))
	s.manager.Render(frame)
	s.cleared = false
	s.changed = true
	s.scans++
	s.state = Idle
	return lines
}

func (s *Scheduler) diagnosticsLocked(st config.Settings, lines []string) {
	opts := decorate.OptionsFrom(st)
	frame := decorate.Project(nil, s.diags.Diagnostics(s.editor.ID()), lines, opts)
	s.manager.RenderDiagnostics(frame.Diagnostics)
	s.cleared = false
	s.changed = true
}

func (s *Scheduler) disableLocked() {
	s.stopTextLocked()
	s.stopDiagLocked()
	s.state = Idle
	if !s.cleared {
		s.manager.Clear()
		s.cleared = true
		s.changed = true
	}
}

func (s *Scheduler) stopTextLocked() {
	s.textSeq++
	if s.textTimer != nil {
		s.textTimer.Stop()
		s.textTimer = nil
	}
	if s.state == PendingScan {
		s.state = Idle
	}
}

func (s *Scheduler) stopDiagLocked() {
	s.diagSeq++
	if s.diagTimer != nil {
		s.diagTimer.Stop()
		s.diagTimer = nil
	}
}

func (s *Scheduler) resolvePalette(st config.Settings, fallback palette.Palette) palette.Palette {
	p, err := palette.Resolve(st.PaletteOverrides())
	if err != nil {
		s.logger.Printf("%s: keep previous colors: %v", s.editor.ID(), err)
		return fallback
	}
	return p
}
