package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/phyten/humanpp/internal/config"
)

// Store is the configuration store the commands write through.
type Store interface {
	SettingsSource
	Set(key, value string) (config.Settings, error)
}

// Hub routes host events to per-editor schedulers and implements the
// toggle and refresh commands.
type Hub struct {
	mu      sync.Mutex
	store   Store
	opts    Options
	editors map[string]*Scheduler
	active  string
}

func NewHub(store Store, opts Options) *Hub {
	return &Hub{
		store:   store,
		opts:    opts.withDefaults(),
		editors: make(map[string]*Scheduler),
	}
}

// Open registers ed and renders it immediately. Re-opening an id replaces the old scheduler.
func (h *Hub) Open(ed Editor) *Scheduler {
	s := NewScheduler(ed, h.store, h.opts)
	h.mu.Lock()
	old := h.editors[ed.ID()]
	h.editors[ed.ID()] = s
	if h.active == "" {
		h.active = ed.ID()
	}
	h.mu.Unlock()
	if old != nil {
		old.Close()
	}
	s.Focused()
	h.opts.Logger.Printf("open %s (%s)", ed.ID(), ed.Language())
	return s
}

// Close forgets the editor and cancels its timers.
func (h *Hub) Close(id string) {
	h.mu.Lock()
	s := h.editors[id]
	delete(h.editors, id)
	if h.active == id {
		h.active = ""
	}
	h.mu.Unlock()
	if s != nil {
		s.Close()
		h.opts.Logger.Printf("close %s", id)
	}
}

// Focus makes id the active editor and scans it immediately.
func (h *Hub) Focus(id string) {
	h.mu.Lock()
	s := h.editors[id]
	if s != nil {
		h.active = id
	}
	h.mu.Unlock()
	if s != nil {
		s.Focused()
	}
}

// TextChanged debounces a rescan of id.
func (h *Hub) TextChanged(id string) {
	if s, ok := h.Scheduler(id); ok {
		s.TextChanged()
	}
}

// DiagnosticsChanged debounces annotation updates for ids, or for every editor when ids is empty.
func (h *Hub) DiagnosticsChanged(ids ...string) {
	targets := h.schedulers(ids)
	for _, s := range targets {
		s.DiagnosticsChanged()
	}
}

// ConfigChanged restyles and rescans every editor.
func (h *Hub) ConfigChanged() {
	for _, s := range h.schedulers(nil) {
		s.ConfigChanged()
	}
}

// Toggle flips and persists the enabled flag, then applies or clears
// decorations in every editor right away. It returns the new value.
func (h *Hub) Toggle() (bool, error) {
	next := !h.store.Settings().Enabled
	st, err := h.store.Set("enabled", strconv.FormatBool(next))
	if err != nil {
		return !next, fmt.Errorf("toggle: %w", err)
	}
	h.opts.Logger.Printf("highlighting enabled=%t", st.Enabled)
	h.ConfigChanged()
	return st.Enabled, nil
}

// Refresh rescans the active editor. It reports false when there is none.
func (h *Hub) Refresh() bool {
	h.mu.Lock()
	s := h.editors[h.active]
	h.mu.Unlock()
	if s == nil {
		return false
	}
	s.Refresh()
	return true
}

// Active returns the id of the focused editor.
func (h *Hub) Active() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Scheduler returns the scheduler for id.
func (h *Hub) Scheduler(id string) (*Scheduler, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.editors[id]
	return s, ok
}

// IDs lists open editors in sorted order.
func (h *Hub) IDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.editors))
	for id := range h.editors {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (h *Hub) schedulers(ids []string) []*Scheduler {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(ids) == 0 {
		ids = make([]string, 0, len(h.editors))
		for id := range h.editors {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}
	out := make([]*Scheduler, 0, len(ids))
	for _, id := range ids {
		if s, ok := h.editors[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
