// Package web serves a small browser UI over the scanner: a scan form backed
// by /api/scan and a decorated preview of single files.
package web

import (
	_ "embed"
	"html/template"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/phyten/humanpp/internal/config"
)

const (
	stylesPath = "/assets/styles.css"
	scriptPath = "/assets/ui.js"
)

var (
	//go:embed templates/index.html
	indexHTML string
	indexOnce sync.Once
	indexTmpl *template.Template

	//go:embed assets/styles.css
	stylesCSS string

	//go:embed assets/ui.js
	scriptJS string
)

type indexData struct {
	Root       string
	StylesPath string
	ScriptPath string
}

// SettingsSource supplies the current settings for every request.
type SettingsSource interface {
	Settings() config.Settings
}

// Options configures New.
type Options struct {
	Root     string
	Settings SettingsSource
	Logger   *log.Logger
}

// App holds the handlers for one scanned root.
type App struct {
	root     string
	settings SettingsSource
	logger   *log.Logger
}

type staticSettings config.Settings

func (s staticSettings) Settings() config.Settings { return config.Settings(s).Clone() }

// New returns an App. A nil Settings uses config.Defaults.
func New(opts Options) *App {
	root := opts.Root
	if root == "" {
		root = "."
	}
	settings := opts.Settings
	if settings == nil {
		settings = staticSettings(config.Defaults())
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &App{root: root, settings: settings, logger: logger}
}

// Register attaches every handler to mux.
func (a *App) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", a.indexHandler)
	mux.HandleFunc(stylesPath, stylesHandler)
	mux.HandleFunc(scriptPath, scriptHandler)
	mux.HandleFunc("/api/scan", a.apiScanHandler)
	mux.HandleFunc("/api/scan/stream", a.apiScanStreamHandler)
	mux.HandleFunc("/preview", a.previewHandler)
}

// Handler returns a mux with every handler registered.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	a.Register(mux)
	return mux
}

func securityHeaders(h http.Header, csp string) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", csp)
}

func (a *App) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	tmpl := loadTemplate()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	securityHeaders(w.Header(), "default-src 'none'; style-src 'self'; script-src 'self'; img-src 'self'; connect-src 'self'; form-action 'self'; base-uri 'none'")
	if err := tmpl.Execute(w, indexData{Root: a.root, StylesPath: stylesPath, ScriptPath: scriptPath}); err != nil {
		a.logger.Printf("index: %v", err)
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
	}
}

func stylesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(stylesCSS))
}

func scriptHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(scriptJS))
}

func loadTemplate() *template.Template {
	indexOnce.Do(func() {
		indexTmpl = template.Must(template.New("index").Parse(indexHTML))
	})
	return indexTmpl
}
