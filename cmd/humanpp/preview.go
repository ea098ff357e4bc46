package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/render"
	"github.com/phyten/humanpp/internal/watch"
)

// openFile opens a local file in the default browser; tests replace it.
var openFile = browser.OpenFile

type previewFlags struct {
	lang        string
	diagnostics string
	html        bool
	open        bool
	out         string
	lineNumbers bool
}

func newPreviewCmd(a *app) *cobra.Command {
	var f previewFlags
	cmd := &cobra.Command{
		Use:   "preview <file|->",
		Short: "Show one file with its markers decorated",
		Long:  "preview prints the file with badges, line tints, and diagnostic notes applied.\n" +
			"With --html it writes a standalone page instead; --open shows that page in a browser.",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(a, &f, args[0])
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.lang, "lang", "", "language id (default: detect from name and shebang)")
	fl.StringVar(&f.diagnostics, "diagnostics", "", "JSON file of [{line, severity, message}] to annotate")
	fl.BoolVar(&f.html, "html", false, "write HTML instead of terminal output")
	fl.BoolVar(&f.open, "open", false, "write HTML to a temporary file and open it in a browser")
	fl.StringVar(&f.out, "out", "", "with --html, write to this file instead of stdout")
	fl.BoolVarP(&f.lineNumbers, "line-numbers", "n", false, "prefix terminal output with line numbers")
	return cmd
}

func runPreview(a *app, f *previewFlags, name string) error {
	terminal := !f.html && !f.open
	storeFor := a.store
	if terminal {
		storeFor = a.terminalStore
	}
	store, err := storeFor()
	if err != nil {
		return err
	}
	st := store.Settings()

	text, err := a.readInput(name)
	if err != nil {
		return err
	}
	diags, err := loadDiagnostics(a.abs(f.diagnostics))
	if err != nil {
		return err
	}
	doc, err := render.Decorate(name, text, f.lang, diags, st)
	if err != nil {
		return err
	}

	if terminal {
		return render.NewTerminal(render.TerminalOptions{
			Profile:     a.profile(st),
			LineNumbers: f.lineNumbers,
		}).Render(a.stdout, doc)
	}

	opts := render.HTMLOptions{Title: filepath.Base(name), Background: st.Colors.Background}
	switch {
	case f.open:
		tmp, err := os.CreateTemp("", "humanpp-*.html")
		if err != nil {
			return err
		}
		if err := render.WriteHTML(tmp, doc, opts); err != nil {
			_ = tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return err
		}
		fmt.Fprintln(a.stderr, tmp.Name())
		return openFile(tmp.Name())
	case f.out != "":
		file, err := os.Create(a.abs(f.out))
		if err != nil {
			return err
		}
		if err := render.WriteHTML(file, doc, opts); err != nil {
			_ = file.Close()
			return err
		}
		return file.Close()
	default:
		return render.WriteHTML(a.stdout, doc, opts)
	}
}

func (a *app) readInput(name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(a.stdin)
		return string(data), err
	}
	data, err := os.ReadFile(a.abs(name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadDiagnostics(path string) ([]model.Diagnostic, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return render.ReadDiagnostics(file)
}

// fileDiagnostics serves the same diagnostics for every document.
type fileDiagnostics []model.Diagnostic

func (d fileDiagnostics) Diagnostics(string) []model.Diagnostic { return d }

func newWatchCmd(a *app) *cobra.Command {
	var (
		diagnostics string
		lineNumbers bool
	)
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Redraw a file's decorations whenever it or the configuration changes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.terminalStore()
			if err != nil {
				return err
			}
			diags, err := loadDiagnostics(a.abs(diagnostics))
			if err != nil {
				return err
			}
			path := a.abs(args[0])
			profile := a.profile(store.Settings())
			term := render.NewTerminal(render.TerminalOptions{Profile: profile, LineNumbers: lineNumbers})
			w, err := watch.New(watch.Options{
				Path:        path,
				Store:       store,
				Logger:      a.logger(),
				Diagnostics: fileDiagnostics(diags),
				OnRender: func(doc render.Document) {
					fmt.Fprint(a.stdout, "\033[H\033[2J")
					if err := term.Render(a.stdout, doc); err != nil {
						fmt.Fprintf(a.stderr, "humanpp: %v\n", err)
					}
				},
			})
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&diagnostics, "diagnostics", "", "JSON file of [{line, severity, message}] to annotate")
	cmd.Flags().BoolVarP(&lineNumbers, "line-numbers", "n", false, "prefix lines with line numbers")
	return cmd
}
