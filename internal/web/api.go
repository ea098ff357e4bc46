package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/phyten/humanpp/internal/engine"
	engineopts "github.com/phyten/humanpp/internal/engine/opts"
	"github.com/phyten/humanpp/internal/progress"
	"github.com/phyten/humanpp/internal/render"
)

const maxPreviewBytes = 4 << 20

func (a *App) scanOptions(r *http.Request) (engine.Options, error) {
	st := a.settings.Settings()
	o, err := engineopts.ApplyWebQueryToOptions(st.ScanOptions(a.root), r.URL.Query())
	if err != nil {
		return o, err
	}
	for _, p := range o.Paths {
		if !filepath.IsLocal(filepath.FromSlash(p)) {
			return o, fmt.Errorf("path must stay inside the root: %s", p)
		}
	}
	if err := engineopts.NormalizeAndValidate(&o); err != nil {
		return o, err
	}
	return o, nil
}

func (a *App) apiScanHandler(w http.ResponseWriter, r *http.Request) {
	o, err := a.scanOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := engine.Run(r.Context(), o)
	if err != nil {
		a.logger.Printf("api/scan: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(res)
}

// sseWriter serializes events; engine.Run publishes from worker goroutines.
type sseWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseWriter) event(name string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload)
	s.flusher.Flush()
}

func (a *App) apiScanStreamHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	o, err := a.scanOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	sse := &sseWriter{w: w, flusher: flusher}
	o.ProgressObserver = progress.ObserverFunc(func(s progress.Snapshot) {
		sse.event("progress", s)
	})
	res, err := engine.Run(r.Context(), o)
	if err != nil {
		sse.event("error", map[string]string{"message": err.Error()})
		return
	}
	sse.event("result", res)
}

func (a *App) previewHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(r.URL.Query().Get("file"))), "./")
	if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
		http.Error(w, "file must be a path inside the root", http.StatusBadRequest)
		return
	}
	data, err := readInRoot(a.root, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st := a.settings.Settings()
	doc, err := render.Decorate(name, string(data), "", nil, st)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, doc, render.HTMLOptions{Background: st.Colors.Background}); err != nil {
		a.logger.Printf("preview %s: %v", name, err)
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	securityHeaders(w.Header(), "default-src 'none'; style-src 'unsafe-inline'; base-uri 'none'")
	_, _ = w.Write(buf.Bytes())
}

// readInRoot reads name through os.Root so symlinks cannot leave root.
func readInRoot(root, name string) ([]byte, error) {
	dir, err := os.OpenRoot(root)
	if err != nil {
		return nil, err
	}
	defer dir.Close()
	f, err := dir.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", name)
	}
	if info.Size() > maxPreviewBytes {
		return nil, fmt.Errorf("%s is larger than %d bytes", name, maxPreviewBytes)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
