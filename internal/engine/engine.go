package engine

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/phyten/humanpp/internal/detect"
	"github.com/phyten/humanpp/internal/progress"
	"github.com/phyten/humanpp/internal/textutil"
)

const maxJobs = 64

var typicalExcludePatterns = []string{
	".git/**",
	"**/.git/**",
	"**/vendor/**",
	"**/node_modules/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/*.min.*",
}

// Run は opts.Paths に一致するファイルを並列に走査し、見つかったマーカーを返します。
//
// ファイル単位の失敗は Result.Errors に集約され、走査は継続します。
// ctx が取り消された場合のみエラーを返します。
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	files, err := ExpandPaths(root, opts.Paths, opts.Excludes, opts.ExcludeTypical)
	if err != nil {
		return nil, err
	}
	observer := opts.ProgressObserver
	if observer == nil {
		observer = progress.NoopObserver{}
	}
	est := progress.NewEstimator(len(files), progress.Config{})
	observer.Publish(est.Snapshot())

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > maxJobs {
		jobs = maxJobs
	}
	perFile := make([][]Item, len(files))
	errs := make([]*ItemError, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, rel := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			items, itemErr := scanFile(root, rel, opts, rules)
			perFile[i] = items
			errs[i] = itemErr
			if snap, ok := est.Advance(1, len(items)); ok {
				observer.Publish(snap)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observer.Done(est.Snapshot())
		return nil, err
	}
	observer.Done(est.Snapshot())

	res := &Result{Files: len(files)}
	for i := range files {
		res.Items = append(res.Items, perFile[i]...)
		if errs[i] != nil {
			res.Errors = append(res.Errors, *errs[i])
		}
	}
	sort.SliceStable(res.Items, func(a, b int) bool {
		if res.Items[a].File != res.Items[b].File {
			return res.Items[a].File < res.Items[b].File
		}
		return res.Items[a].Line < res.Items[b].Line
	})
	res.Total = len(res.Items)
	res.ErrorCount = len(res.Errors)
	res.ElapsedMS = time.Since(start).Milliseconds()
	return res, nil
}

// ExpandPaths は root 配下で patterns に一致する通常ファイルを返します（スラッシュ区切りの相対パス）。
// パターンが既存のディレクトリを指す場合はその配下すべて、空なら root 全体を対象にします。
func ExpandPaths(root string, patterns, excludes []string, typical bool) ([]string, error) {
	fsys := os.DirFS(root)
	if len(patterns) == 0 {
		patterns = []string{"**/*"}
	}
	skip := make([]string, 0, len(excludes)+len(typicalExcludePatterns))
	for _, ex := range excludes {
		if ex = strings.TrimSpace(ex); ex != "" {
			skip = append(skip, filepath.ToSlash(ex))
		}
	}
	if typical {
		skip = append(skip, typicalExcludePatterns...)
	}
	for _, ex := range skip {
		if !doublestar.ValidatePattern(ex) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", ex)
		}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, raw := range patterns {
		pattern := strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(raw)), "./")
		if pattern == "" {
			continue
		}
		if info, err := fs.Stat(fsys, pattern); err == nil && info.IsDir() {
			pattern = strings.TrimSuffix(pattern, "/") + "/**/*"
		}
		if pattern == "." || pattern == "./**/*" {
			pattern = "**/*"
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", raw, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok || excluded(m, skip) {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func excluded(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

func scanFile(root, rel string, opts Options, rules *Rules) ([]Item, *ItemError) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, &ItemError{File: rel, Stage: "read", Message: err.Error()}
	}
	if opts.MaxFileBytes > 0 && len(data) > opts.MaxFileBytes {
		return nil, nil
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return nil, nil
	}
	info := detect.FromPathAndContent(rel, data)
	if len(opts.DetectLangs) > 0 && !detect.MatchesLang(info, opts.DetectLangs) {
		return nil, nil
	}
	return ScanDocument(rel, info.Name, string(data), rules, opts.WithText), nil
}

// ScanDocument は 1 文書を言語に合わせた導入子で走査し、Item に変換します。
func ScanDocument(file, lang, text string, rules *Rules, withText bool) []Item {
	scanner := NewScanner(PrefixMatcherFor(lang), rules)
	lines := textutil.SplitLines(text)
	var out []Item
	for i, line := range lines {
		occ, ok := scanner.ScanLine(i, line)
		if !ok {
			continue
		}
		it := Item{
			Type:      occ.Type,
			Token:     strings.TrimSpace(sliceUTF16(line, occ.MarkerStart, occ.MarkerEnd)),
			Lang:      lang,
			File:      file,
			Line:      occ.Line + 1,
			Column:    occ.MarkerStart + 1,
			EndColumn: occ.LineEnd + 1,
		}
		if withText {
			it.Text = strings.TrimSpace(sliceUTF16(line, occ.MarkerEnd, occ.LineEnd))
		}
		out = append(out, it)
	}
	return out
}

func sliceUTF16(line string, from, to int) string {
	a := textutil.ByteOffset(line, from)
	b := textutil.ByteOffset(line, to)
	if b < a {
		return ""
	}
	return line[a:b]
}
