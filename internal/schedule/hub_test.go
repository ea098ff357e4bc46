package schedule

import (
	"bytes"
	"log"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/phyten/humanpp/internal/config"
	"github.com/phyten/humanpp/internal/decorate"
	"github.com/phyten/humanpp/internal/model"
)

func TestHubOpenFocusClose(t *testing.T) {
	clock := &fakeClock{}
	hub := NewHub(newSettings(), Options{Clock: clock})
	a := newEditor("a", "go", "// !! a\n")
	b := newEditor("b", "go", "// ?? b\n")

	sa := hub.Open(a)
	hub.Open(b)
	if sa.Scans() != 1 || len(badges(a, model.Intervention)) != 1 {
		t.Fatal("Open must render immediately")
	}
	if hub.Active() != "a" {
		t.Fatalf("first opened editor becomes active, got %q", hub.Active())
	}
	hub.Focus("b")
	if hub.Active() != "b" {
		t.Fatalf("Active=%q want b", hub.Active())
	}
	if got := hub.IDs(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("IDs=%v", got)
	}

	hub.TextChanged("a")
	hub.Close("a")
	clock.Advance(time.Second)
	if sa.Scans() != 1 {
		t.Fatal("closed editor must not rescan")
	}
	if _, ok := hub.Scheduler("a"); ok {
		t.Fatal("closed editor still registered")
	}
	hub.Close("b")
	if hub.Active() != "" {
		t.Fatal("closing the active editor resets Active")
	}
	if hub.Refresh() {
		t.Fatal("Refresh without an active editor reports false")
	}
}

func TestHubReopenReplacesScheduler(t *testing.T) {
	clock := &fakeClock{}
	hub := NewHub(newSettings(), Options{Clock: clock})
	first := hub.Open(newEditor("a", "go", "// !! a\n"))
	first.TextChanged()
	second := hub.Open(newEditor("a", "go", "// ?? a\n"))
	clock.Advance(time.Second)
	if first.Scans() != 1 {
		t.Fatal("replaced scheduler must be closed")
	}
	if s, _ := hub.Scheduler("a"); s != second {
		t.Fatal("hub should hold the new scheduler")
	}
}

func TestHubRefreshRescansActive(t *testing.T) {
	hub := NewHub(newSettings(), Options{Clock: &fakeClock{}})
	ed := newEditor("a", "go", "x\n")
	s := hub.Open(ed)
	ed.SetText("// >> now\n")
	if !hub.Refresh() {
		t.Fatal("Refresh should report the active editor")
	}
	if s.Scans() != 2 || len(badges(ed, model.Directive)) != 1 {
		t.Fatalf("refresh did not rescan: scans=%d", s.Scans())
	}
}

func TestHubDiagnosticsChangedRoutesToEditors(t *testing.T) {
	clock := &fakeClock{}
	diags := &fakeDiagnostics{}
	hub := NewHub(newSettings(), Options{Clock: clock, Diagnostics: diags})
	a := newEditor("a", "go", "x\n")
	b := newEditor("b", "go", "y\n")
	hub.Open(a)
	hub.Open(b)
	diags.Put("a", model.Diagnostic{Line: 0, Severity: model.SeverityError, Message: "ea"})
	diags.Put("b", model.Diagnostic{Line: 0, Severity: model.SeverityError, Message: "eb"})

	hub.DiagnosticsChanged("a")
	clock.Advance(time.Second)
	if len(a.surface.Annotations(decorate.DiagnosticKey(model.SeverityError))) != 1 {
		t.Fatal("editor a should have its annotation")
	}
	if len(b.surface.Annotations(decorate.DiagnosticKey(model.SeverityError))) != 0 {
		t.Fatal("editor b was not targeted")
	}
	hub.DiagnosticsChanged()
	clock.Advance(time.Second)
	if len(b.surface.Annotations(decorate.DiagnosticKey(model.SeverityError))) != 1 {
		t.Fatal("no ids means every editor")
	}
}

func TestHubToggleWithStore(t *testing.T) {
	dir := t.TempDir()
	store, err := config.NewStore(config.StoreOptions{
		Dir:     dir,
		Home:    filepath.Join(dir, "home"),
		XDGHome: filepath.Join(dir, "xdg"),
		Getenv:  func(string) string { return "" },
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	var logs bytes.Buffer
	clock := &fakeClock{}
	hub := NewHub(store, Options{Clock: clock, Logger: log.New(&logs, "", 0)})
	ed := newEditor("a", "go", "// !! a\n")
	s := hub.Open(ed)
	s.TextChanged()

	enabled, err := hub.Toggle()
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if enabled {
		t.Fatal("first toggle disables")
	}
	if len(badges(ed, model.Intervention)) != 0 {
		t.Fatal("toggle off must clear decorations immediately")
	}
	if clock.pending() != 0 {
		t.Fatal("toggle off must cancel pending timers")
	}
	cfg, err := config.Load(filepath.Join(dir, ".humanpp.yaml"))
	if err != nil || cfg.Enabled == nil || *cfg.Enabled {
		t.Fatalf("enabled=false not persisted: %+v %v", cfg, err)
	}

	enabled, err = hub.Toggle()
	if err != nil || !enabled {
		t.Fatalf("second toggle: enabled=%v err=%v", enabled, err)
	}
	if len(badges(ed, model.Intervention)) != 1 {
		t.Fatal("toggle on must render immediately")
	}
	if !strings.Contains(logs.String(), "highlighting enabled=false") {
		t.Fatalf("toggle should be logged: %q", logs.String())
	}
}
