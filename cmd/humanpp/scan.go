package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/phyten/humanpp/internal/engine"
	engineopts "github.com/phyten/humanpp/internal/engine/opts"
	"github.com/phyten/humanpp/internal/output"
	"github.com/phyten/humanpp/internal/progress"
)

type scanFlags struct {
	output        string
	fields        string
	sort          string
	types         []string
	excludes      []string
	detectLangs   []string
	jobs          int
	maxFileBytes  int
	withText      bool
	noKeywords    bool
	noTypical     bool
	forceProgress bool
	noProgress    bool
	root          string
}

func newScanCmd(a *app) *cobra.Command {
	var f scanFlags
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "List markers across a tree",
		Long:  "scan walks the given paths (globs allowed, default: everything under --root)\n" +
			"and prints one row per marker comment.",
		Example: "  humanpp scan\n  humanpp scan -t intervention --sort -type 'src/**/*.go'\n  humanpp scan -o json --with-text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, a, &f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "table|tsv|json|ndjson|csv|markdown (default: scan.output)")
	fl.StringVar(&f.fields, "fields", "", "comma-separated columns: type,token,lang,file,line,column,end_column,location,text")
	fl.StringVar(&f.sort, "sort", "", "sort keys, e.g. -type,location (keys: type,lang,file,line,column,location)")
	fl.StringSliceVarP(&f.types, "type", "t", nil, "marker types to report: intervention,uncertainty,directive (or !!,??,>>)")
	fl.StringSliceVarP(&f.excludes, "exclude", "x", nil, "glob patterns to skip (added to scan.exclude)")
	fl.StringSliceVar(&f.detectLangs, "detect-langs", nil, "only scan files detected as these languages")
	fl.IntVarP(&f.jobs, "jobs", "j", 0, "parallel workers (default: scan.jobs or CPU count)")
	fl.IntVar(&f.maxFileBytes, "max-file-bytes", 0, "skip files larger than this (0: no limit)")
	fl.BoolVar(&f.withText, "with-text", false, "add the comment text after the marker")
	fl.BoolVar(&f.noKeywords, "no-keywords", false, "only match !! ?? >>, not FIXME/TODO/NOTE aliases")
	fl.BoolVar(&f.noTypical, "no-typical-excludes", false, "scan vendor/, node_modules/, dist/ and similar too")
	fl.BoolVar(&f.forceProgress, "progress", false, "show progress even when stderr is not a terminal")
	fl.BoolVar(&f.noProgress, "no-progress", false, "never show progress")
	fl.StringVar(&f.root, "root", "", "directory to scan (default: current directory)")
	return cmd
}

func runScan(cmd *cobra.Command, a *app, f *scanFlags, args []string) error {
	store, err := a.store()
	if err != nil {
		return err
	}
	st := store.Settings()
	fl := cmd.Flags()

	root := f.root
	if root == "" {
		root = a.dir
	}
	o := st.ScanOptions(root)
	o.Paths = args
	if fl.Changed("type") {
		o.Types = engineopts.SplitMulti(f.types)
	}
	if fl.Changed("exclude") {
		o.Excludes = append(o.Excludes, engineopts.SplitMulti(f.excludes)...)
	}
	if fl.Changed("detect-langs") {
		o.DetectLangs = engineopts.SplitMulti(f.detectLangs)
	}
	if fl.Changed("jobs") {
		o.Jobs = f.jobs
	}
	if fl.Changed("max-file-bytes") {
		o.MaxFileBytes = f.maxFileBytes
	}
	if f.noTypical {
		o.ExcludeTypical = false
	}
	o.NoKeywords = f.noKeywords

	format := st.Scan.Output
	if fl.Changed("output") {
		format = f.output
	}
	if format, err = engineopts.NormalizeOutput(format); err != nil {
		return usageError{err: err}
	}
	fields := st.Scan.Fields
	if fl.Changed("fields") {
		fields = f.fields
	}
	sel, err := output.ResolveFields(fields, f.withText)
	if err != nil {
		return usageError{err: err}
	}
	o.WithText = sel.NeedText
	spec, err := output.ParseSortSpec(f.sort)
	if err != nil {
		return usageError{err: err}
	}
	if err := engineopts.NormalizeAndValidate(&o); err != nil {
		return usageError{err: err}
	}
	if progress.ShouldShowProgress(a.stderr, f.forceProgress, f.noProgress) {
		o.ProgressObserver = progress.NewReporter(a.stderr)
	}

	res, err := engine.Run(cmd.Context(), o)
	if err != nil {
		return err
	}
	output.ApplySort(res.Items, spec)
	profile := a.profile(st)
	topts := output.TableOptions{
		Color:   profile != termenv.Ascii,
		Profile: profile,
	}
	if err := output.Write(a.stdout, format, res, sel, topts); err != nil {
		return err
	}
	// JSON 系はエラーを本文に含めるため stderr には出さない。
	if format != "json" && format != "ndjson" {
		reportErrors(a.stderr, res)
	}
	return nil
}

// reportErrors は読み取りに失敗したファイルの概要を w に出力します。
func reportErrors(w io.Writer, res *engine.Result) {
	if res == nil || res.ErrorCount == 0 {
		return
	}
	fmt.Fprintf(w, "humanpp: %d error(s) while scanning\n", res.ErrorCount)
	for _, e := range res.Errors {
		file := e.File
		if strings.TrimSpace(file) == "" {
			file = "(unknown file)"
		}
		stage := e.Stage
		if stage == "" {
			stage = "scan"
		}
		fmt.Fprintf(w, "  %s [%s] %s\n", file, stage, e.Message)
	}
}
