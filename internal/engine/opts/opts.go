package opts

import (
	"fmt"
	"net/url"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/phyten/humanpp/internal/detect"
	"github.com/phyten/humanpp/internal/engine"
	"github.com/phyten/humanpp/internal/model"
)

const (
	maxJobs = 64
)

var (
	trueLiterals  = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}
	falseLiterals = map[string]struct{}{"0": {}, "false": {}, "no": {}, "off": {}}
)

// Outputs lists the accepted --output values in help order.
var Outputs = []string{"table", "tsv", "json", "ndjson", "csv", "markdown"}

// Defaults returns the shared baseline options for both CLI and Web inputs.
func Defaults(root string) engine.Options {
	jobs := runtime.NumCPU()
	if jobs < 1 {
		jobs = 1
	}
	if jobs > maxJobs {
		jobs = maxJobs
	}
	return engine.Options{
		Root:           root,
		Jobs:           jobs,
		ExcludeTypical: true,
		WithText:       true,
		Markers:        engine.RuleOptions{Keywords: true},
	}
}

// ApplyWebQueryToOptions copies recognised values from the query string into the
// provided options. Validation happens separately via NormalizeAndValidate.
func ApplyWebQueryToOptions(def engine.Options, q url.Values) (engine.Options, error) {
	out := def

	if raw := q["type"]; len(raw) > 0 {
		out.Types = SplitMulti(raw)
	}
	if raw := q["path"]; len(raw) > 0 {
		out.Paths = SplitMulti(raw)
	}
	if raw := q["exclude"]; len(raw) > 0 {
		out.Excludes = SplitMulti(raw)
	}
	if raw := q["detect_langs"]; len(raw) > 0 {
		out.DetectLangs = SplitMulti(raw)
	}
	if raw, ok := lastLiteralValue(q["exclude_typical"]); ok {
		v, err := ParseBool(raw, "exclude_typical")
		if err != nil {
			return out, err
		}
		out.ExcludeTypical = v
	}
	if raw, ok := lastLiteralValue(q["with_text"]); ok {
		v, err := ParseBool(raw, "with_text")
		if err != nil {
			return out, err
		}
		out.WithText = v
	}
	if raw, ok := lastLiteralValue(q["keywords"]); ok {
		v, err := ParseBool(raw, "keywords")
		if err != nil {
			return out, err
		}
		out.NoKeywords = !v
	}
	if raw, ok := lastLiteralValue(q["jobs"]); ok {
		n, err := ParseIntInRange(raw, "jobs", 1, maxJobs)
		if err != nil {
			return out, err
		}
		out.Jobs = n
	}
	if raw, ok := lastLiteralValue(q["max_file_bytes"]); ok {
		n, err := parseInt(raw, "max_file_bytes")
		if err != nil {
			return out, err
		}
		out.MaxFileBytes = n
	}

	return out, nil
}

// NormalizeAndValidate ensures the options are canonical and within the allowed ranges,
// and builds o.Rules from o.Markers and o.Types when it is not set yet.
func NormalizeAndValidate(o *engine.Options) error {
	if o.Jobs < 1 || o.Jobs > maxJobs {
		return fmt.Errorf("jobs must be between 1 and %d", maxJobs)
	}
	if o.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must be >= 0")
	}
	if strings.TrimSpace(o.Root) == "" {
		o.Root = "."
	}

	o.Paths = trimSlice(o.Paths)
	o.Excludes = trimSlice(o.Excludes)
	o.DetectLangs = trimSlice(o.DetectLangs)
	if len(o.DetectLangs) > 0 {
		o.DetectLangs = detect.CanonicalDetectLangs(o.DetectLangs)
	}

	types, err := ParseTypes(o.Types)
	if err != nil {
		return err
	}
	o.Types = o.Types[:0]
	for _, t := range types {
		o.Types = append(o.Types, t.String())
	}

	if o.Rules == nil {
		ro := o.Markers
		if o.NoKeywords {
			ro.Keywords = false
		}
		if len(types) > 0 {
			ro.Enabled = intersectTypes(ro.Enabled, types)
		}
		o.Rules = engine.NewRules(ro)
	}
	return nil
}

// ParseTypes parses marker type names or tokens, dropping duplicates. An empty input means all types.
func ParseTypes(values []string) ([]model.MarkerType, error) {
	var out []model.MarkerType
	for _, raw := range trimSlice(slices.Clone(values)) {
		t, err := model.ParseMarkerType(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --type: %w", err)
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func intersectTypes(enabled, want []model.MarkerType) []model.MarkerType {
	if enabled == nil {
		return want
	}
	out := []model.MarkerType{}
	for _, t := range want {
		if slices.Contains(enabled, t) {
			out = append(out, t)
		}
	}
	return out
}

// ParseBool converts a string literal into a boolean, accepting multiple synonyms.
func ParseBool(raw, key string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueLiterals[v]; ok {
		return true, nil
	}
	if _, ok := falseLiterals[v]; ok {
		return false, nil
	}
	return false, fmt.Errorf("invalid value for %s: %q", key, raw)
}

// ParseIntInRange parses a string into an int and ensures it falls within [min, max].
// If max < min, the upper bound is ignored.
func ParseIntInRange(raw, key string, min, max int) (int, error) {
	n, err := parseInt(raw, key)
	if err != nil {
		return 0, err
	}
	if n < min {
		if max >= min {
			return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
		}
		return 0, fmt.Errorf("%s must be >= %d", key, min)
	}
	if max >= min && n > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return n, nil
}

// NormalizeOutput validates and lower-cases the CLI/Web output format value.
func NormalizeOutput(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "md" {
		v = "markdown"
	}
	if slices.Contains(Outputs, v) {
		return v, nil
	}
	return "", fmt.Errorf("invalid --output: %s", value)
}

// SplitMulti turns repeated query parameters (and comma-separated values) into a flat slice.
func SplitMulti(vals []string) []string {
	var out []string
	for _, raw := range vals {
		for _, piece := range strings.Split(raw, ",") {
			part := strings.TrimSpace(piece)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

func parseInt(raw, key string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	return n, nil
}

func lastLiteralValue(vals []string) (string, bool) {
	flat := SplitMulti(vals)
	if len(flat) == 0 {
		return "", false
	}
	return flat[len(flat)-1], true
}

func trimSlice(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0]
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
