package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/phyten/humanpp/internal/config"
	"github.com/phyten/humanpp/internal/termcolor"
)

// app は全サブコマンドが共有する入出力と永続フラグを保持します。
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    map[string]string
	dir    string

	configPath string
	verbose    bool
	color      termcolor.ColorMode
	colorSet   bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, environ []string) *app {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		env:    termcolor.EnvMap(environ),
		dir:    dir,
	}
}

func (a *app) getenv(key string) string { return a.env[key] }

// abs resolves p against the working directory. "" stays "".
func (a *app) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.dir, p)
}

// logger writes to stderr only with --verbose.
func (a *app) logger() *log.Logger {
	if !a.verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(a.stderr, "humanpp: ", 0)
}

// store resolves the configuration layers. --config wins over HUMANPP_CONFIG.
func (a *app) store() (*config.Store, error) {
	path := a.configPath
	if path == "" {
		path = a.getenv("HUMANPP_CONFIG")
	}
	store, err := config.NewStore(config.StoreOptions{
		Dir:     a.dir,
		Path:    a.abs(path),
		XDGHome: a.getenv("XDG_CONFIG_HOME"),
		Home:    a.getenv("HOME"),
		Getenv:  a.getenv,
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if p, source := store.Path(); p != "" {
		a.logger().Printf("config %s (%s)", p, source)
	}
	return store, nil
}

// terminalStore is store with the terminal's own background as the host
// layer when no background is configured, so line tints blend into it.
func (a *app) terminalStore() (*config.Store, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	if store.Settings().Colors.Background != "" {
		return store, nil
	}
	bg := termcolor.DetectScheme(a.env).Background()
	if _, err := store.Override(config.Config{Colors: config.ColorsConfig{Background: &bg}}); err != nil {
		return nil, err
	}
	return store, nil
}

// profile resolves the color profile for stdout. Without --color the
// scan.color setting decides.
func (a *app) profile(st config.Settings) termenv.Profile {
	mode := a.color
	if !a.colorSet {
		if m, err := termcolor.ParseMode(st.Scan.Color); err == nil {
			mode = m
		}
	}
	return termcolor.RendererProfile(mode, a.stdout, a.env)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "humanpp",
		Short:         "Highlight !! ?? >> comment markers",
		Long:          "humanpp finds Human++ comment markers (!! intervention, ?? uncertainty, >> directive)\nand decorates them in terminals, browsers, and editors.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.colorSet = cmd.Flags().Changed("color")
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "configuration file (default: search .humanpp.* upward, then XDG and home)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log configuration and reload events to stderr")
	pf.Var(&a.color, "color", "colorize output (auto|always|never)")

	root.AddCommand(
		newScanCmd(a),
		newPreviewCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
		newWebCmd(a),
		newConfigCmd(a),
	)
	return root
}

// execute は終了コードを返します。0 成功、1 実行時エラー、2 引数エラー。
func execute(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintf(a.stderr, "humanpp: %v\n", err)
	if isUsageError(err) {
		if cmd != nil {
			fmt.Fprintf(a.stderr, "Run '%s --help' for usage.\n", cmd.CommandPath())
		}
		return 2
	}
	return 1
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("%s: expected %d argument(s), got %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}
