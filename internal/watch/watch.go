// Package watch keeps one file on disk decorated: fsnotify events on the file
// and on the configuration feed a Scheduler whose surface is re-rendered.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/phyten/humanpp/internal/config"
	"github.com/phyten/humanpp/internal/decorate"
	"github.com/phyten/humanpp/internal/detect"
	"github.com/phyten/humanpp/internal/render"
	"github.com/phyten/humanpp/internal/schedule"
	"github.com/phyten/humanpp/internal/textutil"
)

// Store is the configuration a Watcher reloads. *config.Store satisfies it.
type Store interface {
	schedule.SettingsSource
	Reload() (config.Settings, error)
	Path() (string, string)
}

// Options configures New.
type Options struct {
	Path        string
	Store       Store
	Clock       schedule.Clock
	Logger      *log.Logger
	Diagnostics schedule.DiagnosticsSource
	// OnRender receives the document after every batch of decoration changes.
	OnRender func(render.Document)
}

// fileEditor adapts a file on disk to schedule.Editor.
type fileEditor struct {
	path    string
	lang    string
	surface *decorate.MemorySurface

	mu   sync.Mutex
	text string
}

func (e *fileEditor) ID() string                { return e.path }
func (e *fileEditor) Language() string          { return e.lang }
func (e *fileEditor) Surface() decorate.Surface { return e.surface }

func (e *fileEditor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

func (e *fileEditor) setText(text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if text == e.text {
		return false
	}
	e.text = text
	return true
}

// Watcher owns the scheduler of one watched file.
type Watcher struct {
	editor   *fileEditor
	sched    *schedule.Scheduler
	store    Store
	logger   *log.Logger
	onRender func(render.Document)
	dirty    chan struct{}
}

// New reads the file once and prepares its scheduler. Nothing is scanned until Run.
func New(opts Options) (*Watcher, error) {
	if opts.Store == nil {
		return nil, errors.New("watch: nil store")
	}
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Path, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	w := &Watcher{
		store:    opts.Store,
		logger:   logger,
		onRender: opts.OnRender,
		dirty:    make(chan struct{}, 1),
	}
	w.editor = &fileEditor{
		path:    path,
		lang:    detect.FromPathAndContent(path, data).Name,
		surface: decorate.NewMemorySurface(),
		text:    string(data),
	}
	w.sched = schedule.NewScheduler(w.editor, opts.Store, schedule.Options{
		Clock:       opts.Clock,
		Logger:      logger,
		Diagnostics: opts.Diagnostics,
		OnFrame:     w.markDirty,
	})
	return w, nil
}

func (w *Watcher) markDirty() {
	select {
	case w.dirty <- struct{}{}:
	default:
	}
}

// Scheduler exposes the underlying scheduler.
func (w *Watcher) Scheduler() *schedule.Scheduler { return w.sched }

// Document returns the current text together with its decorations.
func (w *Watcher) Document() render.Document {
	doc := render.Document{Name: w.editor.path, Lang: w.editor.lang}
	w.sched.Settled(func() {
		doc.Lines = textutil.SplitLines(w.editor.Text())
		doc.State = w.editor.surface.Snapshot()
	})
	return doc
}

// Run scans immediately, then follows file and configuration changes until
// ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	for _, dir := range w.dirs() {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	defer w.sched.Close()

	w.sched.Focused()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if dir := w.Handle(ev); dir != "" {
				if err := fw.Add(dir); err != nil {
					w.logger.Printf("watch %s: %v", dir, err)
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Printf("fsnotify: %v", err)
		case <-w.dirty:
			if w.onRender != nil {
				w.onRender(w.Document())
			}
		}
	}
}

func (w *Watcher) dirs() []string {
	dirs := []string{filepath.Dir(w.editor.path)}
	if cfg, _ := w.store.Path(); cfg != "" {
		if d := filepath.Dir(cfg); d != dirs[0] {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// Handle applies one filesystem event. It returns a directory that should be
// watched from now on, or "" when nothing new needs watching.
func (w *Watcher) Handle(ev fsnotify.Event) string {
	name := filepath.Clean(ev.Name)
	switch {
	case name == w.editor.path:
		// Editors that save by rename produce Remove/Rename, then Create.
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return ""
		}
		data, err := os.ReadFile(name)
		if err != nil {
			w.logger.Printf("read %s: %v", name, err)
			return ""
		}
		if w.editor.setText(string(data)) {
			w.sched.TextChanged()
		}
	case w.isConfig(name):
		before, _ := w.store.Path()
		if _, err := w.store.Reload(); err != nil {
			w.logger.Printf("config: %v", err)
			return ""
		}
		w.logger.Printf("config reloaded (%s)", name)
		w.sched.ConfigChanged()
		if after, _ := w.store.Path(); after != "" && after != before {
			return filepath.Dir(after)
		}
	}
	return ""
}

func (w *Watcher) isConfig(name string) bool {
	if cfg, _ := w.store.Path(); cfg != "" && name == filepath.Clean(cfg) {
		return true
	}
	return filepath.Dir(name) == filepath.Dir(w.editor.path) && config.IsConfigFilename(filepath.Base(name))
}
