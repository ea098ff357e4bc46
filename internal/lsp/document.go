package lsp

import (
	"sync"

	"github.com/phyten/humanpp/internal/decorate"
	"github.com/phyten/humanpp/internal/detect"
	"github.com/phyten/humanpp/internal/model"
)

// document is an open text buffer mirrored from the client.
type document struct {
	uri     string
	lang    string
	surface *surface

	mu   sync.Mutex
	text string
}

func newDocument(s *Server, item textDocumentItem) *document {
	lang := detect.NormalizeLangName(item.LanguageID)
	if lang == "" || lang == "plaintext" {
		lang = detect.FromPathAndContent(uriToPath(item.URI), []byte(item.Text)).Name
	}
	uri := canonicalURI(item.URI)
	return &document{
		uri:     uri,
		lang:    lang,
		text:    item.Text,
		surface: &surface{server: s, uri: uri},
	}
}

func (d *document) ID() string                { return d.uri }
func (d *document) Language() string          { return d.lang }
func (d *document) Surface() decorate.Surface { return d.surface }

func (d *document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

func (d *document) apply(changes []textDocumentContentChangeEvent) {
	d.mu.Lock()
	d.text = applyChanges(d.text, changes)
	d.mu.Unlock()
}

// surface forwards decorations to the client as notifications.
type surface struct {
	server *Server
	uri    string
}

func (s *surface) Define(styles []decorate.StyleDef) {
	s.server.notify(MethodDefineStyles, defineStylesParams{URI: s.uri, Styles: styles})
}

func (s *surface) Set(key decorate.StyleKey, ranges []decorate.Range) {
	out := make([]lspRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, lspRange{
			Start: position{Line: r.Line, Character: r.Start},
			End:   position{Line: r.Line, Character: r.End},
		})
	}
	s.server.notify(MethodSetDecorations, setDecorationsParams{URI: s.uri, Key: key, Ranges: out})
}

func (s *surface) Annotate(key decorate.StyleKey, annotations []decorate.Annotation) {
	out := make([]annotation, 0, len(annotations))
	for _, a := range annotations {
		out = append(out, annotation{
			Position: position{Line: a.Line, Character: a.Column},
			Text:     a.Text,
			Severity: a.Severity.LSPCode(),
		})
	}
	s.server.notify(MethodSetAnnotations, setAnnotationsParams{URI: s.uri, Key: key, Annotations: out})
}

// diagnosticStore holds the latest diagnostics the client pushed per document.
type diagnosticStore struct {
	mu    sync.Mutex
	byURI map[string][]model.Diagnostic
}

func (d *diagnosticStore) Diagnostics(uri string) []model.Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Diagnostic(nil), d.byURI[uri]...)
}

func (d *diagnosticStore) put(uri string, diags []model.Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.byURI == nil {
		d.byURI = make(map[string][]model.Diagnostic)
	}
	if len(diags) == 0 {
		delete(d.byURI, uri)
		return
	}
	d.byURI[uri] = diags
}

func (d *diagnosticStore) drop(uri string) {
	d.put(uri, nil)
}

func convertDiagnostics(in []lspDiagnostic) []model.Diagnostic {
	out := make([]model.Diagnostic, 0, len(in))
	for _, d := range in {
		sev := model.SeverityError
		if d.Severity != 0 {
			sev = model.SeverityFromLSP(d.Severity)
		}
		out = append(out, model.Diagnostic{Line: d.Range.Start.Line, Severity: sev, Message: d.Message})
	}
	return out
}
