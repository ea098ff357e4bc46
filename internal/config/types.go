package config

import (
	"slices"
	"time"

	"github.com/phyten/humanpp/internal/engine"
	engineopts "github.com/phyten/humanpp/internal/engine/opts"
	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/palette"
)

// MarkersConfig is one layer of marker settings. nil fields leave lower layers untouched.
type MarkersConfig struct {
	Intervention *bool                `yaml:"intervention,omitempty" toml:"intervention,omitempty" json:"intervention,omitempty"`
	Uncertainty  *bool                `yaml:"uncertainty,omitempty" toml:"uncertainty,omitempty" json:"uncertainty,omitempty"`
	Directive    *bool                `yaml:"directive,omitempty" toml:"directive,omitempty" json:"directive,omitempty"`
	Keywords     *bool                `yaml:"keywords,omitempty" toml:"keywords,omitempty" json:"keywords,omitempty"`
	Aliases      *map[string][]string `yaml:"aliases,omitempty" toml:"aliases,omitempty" json:"aliases,omitempty"`
}

type DiagnosticsConfig struct {
	Error   *bool `yaml:"error,omitempty" toml:"error,omitempty" json:"error,omitempty"`
	Warning *bool `yaml:"warning,omitempty" toml:"warning,omitempty" json:"warning,omitempty"`
	Info    *bool `yaml:"info,omitempty" toml:"info,omitempty" json:"info,omitempty"`
	Hint    *bool `yaml:"hint,omitempty" toml:"hint,omitempty" json:"hint,omitempty"`
}

type ColorsConfig struct {
	Marker     *string `yaml:"marker,omitempty" toml:"marker,omitempty" json:"marker,omitempty"`
	MarkerText *string `yaml:"marker_text,omitempty" toml:"marker_text,omitempty" json:"marker_text,omitempty"`
	Background *string `yaml:"background,omitempty" toml:"background,omitempty" json:"background,omitempty"`
}

type ScanConfig struct {
	Excludes       *[]string `yaml:"exclude,omitempty" toml:"exclude,omitempty" json:"exclude,omitempty"`
	ExcludeTypical *bool     `yaml:"exclude_typical,omitempty" toml:"exclude_typical,omitempty" json:"exclude_typical,omitempty"`
	DetectLangs    *[]string `yaml:"detect_langs,omitempty" toml:"detect_langs,omitempty" json:"detect_langs,omitempty"`
	Jobs           *int      `yaml:"jobs,omitempty" toml:"jobs,omitempty" json:"jobs,omitempty"`
	MaxFileBytes   *int      `yaml:"max_file_bytes,omitempty" toml:"max_file_bytes,omitempty" json:"max_file_bytes,omitempty"`
	Output         *string   `yaml:"output,omitempty" toml:"output,omitempty" json:"output,omitempty"`
	Fields         *string   `yaml:"fields,omitempty" toml:"fields,omitempty" json:"fields,omitempty"`
	Color          *string   `yaml:"color,omitempty" toml:"color,omitempty" json:"color,omitempty"`
}

// Config is one configuration layer (file, environment, or host override).
type Config struct {
	Enabled      *bool             `yaml:"enabled,omitempty" toml:"enabled,omitempty" json:"enabled,omitempty"`
	DebounceMS   *int              `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty" json:"debounce_ms,omitempty"`
	Markers      MarkersConfig     `yaml:"markers,omitempty" toml:"markers,omitempty" json:"markers,omitzero"`
	Style        *string           `yaml:"style,omitempty" toml:"style,omitempty" json:"style,omitempty"`
	Diagnostics  DiagnosticsConfig `yaml:"diagnostics,omitempty" toml:"diagnostics,omitempty" json:"diagnostics,omitzero"`
	Colors       ColorsConfig      `yaml:"colors,omitempty" toml:"colors,omitempty" json:"colors,omitzero"`
	MessageWidth *int              `yaml:"message_width,omitempty" toml:"message_width,omitempty" json:"message_width,omitempty"`
	Scan         ScanConfig        `yaml:"scan,omitempty" toml:"scan,omitempty" json:"scan,omitzero"`
}

type MarkerSettings struct {
	Intervention bool                `yaml:"intervention" json:"intervention"`
	Uncertainty  bool                `yaml:"uncertainty" json:"uncertainty"`
	Directive    bool                `yaml:"directive" json:"directive"`
	Keywords     bool                `yaml:"keywords" json:"keywords"`
	Aliases      map[string][]string `yaml:"aliases,omitempty" json:"aliases,omitempty" validate:"omitempty,dive,keys,oneof=intervention uncertainty directive,endkeys,dive,markeralias"`
}

type DiagnosticSettings struct {
	Error   bool `yaml:"error" json:"error"`
	Warning bool `yaml:"warning" json:"warning"`
	Info    bool `yaml:"info" json:"info"`
	Hint    bool `yaml:"hint" json:"hint"`
}

type ColorSettings struct {
	Marker     string `yaml:"marker,omitempty" json:"marker,omitempty" validate:"omitempty,hexrgb"`
	MarkerText string `yaml:"marker_text,omitempty" json:"marker_text,omitempty" validate:"omitempty,hexrgb"`
	Background string `yaml:"background,omitempty" json:"background,omitempty" validate:"omitempty,hexrgb"`
}

type ScanSettings struct {
	Excludes       []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	ExcludeTypical bool     `yaml:"exclude_typical" json:"exclude_typical"`
	DetectLangs    []string `yaml:"detect_langs,omitempty" json:"detect_langs,omitempty"`
	Jobs           int      `yaml:"jobs" json:"jobs" validate:"gte=0,lte=64"`
	MaxFileBytes   int      `yaml:"max_file_bytes" json:"max_file_bytes" validate:"gte=0"`
	Output         string   `yaml:"output" json:"output" validate:"oneof=table tsv json ndjson csv markdown md"`
	Fields         string   `yaml:"fields,omitempty" json:"fields,omitempty"`
	Color          string   `yaml:"color" json:"color" validate:"oneof=auto always never"`
}

// Settings is the fully resolved configuration. Values are treated as immutable;
// Clone before mutating shared copies.
type Settings struct {
	Enabled      bool               `yaml:"enabled" json:"enabled"`
	DebounceMS   int                `yaml:"debounce_ms" json:"debounce_ms" validate:"gte=0,lte=10000"`
	Markers      MarkerSettings     `yaml:"markers" json:"markers"`
	Style        model.Style        `yaml:"style" json:"style" validate:"oneof=badge line both"`
	Diagnostics  DiagnosticSettings `yaml:"diagnostics" json:"diagnostics"`
	Colors       ColorSettings      `yaml:"colors" json:"colors"`
	MessageWidth int                `yaml:"message_width" json:"message_width" validate:"gte=1,lte=500"`
	Scan         ScanSettings       `yaml:"scan" json:"scan"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Enabled:    true,
		DebounceMS: 200,
		Markers: MarkerSettings{
			Intervention: true,
			Uncertainty:  true,
			Directive:    true,
			Keywords:     true,
		},
		Style: model.StyleBoth,
		Diagnostics: DiagnosticSettings{
			Error:   true,
			Warning: true,
			Info:    true,
			Hint:    false,
		},
		MessageWidth: 50,
		Scan: ScanSettings{
			ExcludeTypical: true,
			Output:         "table",
			Color:          "auto",
		},
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.Markers.Aliases = cloneAliases(s.Markers.Aliases)
	out.Scan.Excludes = cloneStrings(s.Scan.Excludes)
	out.Scan.DetectLangs = cloneStrings(s.Scan.DetectLangs)
	return out
}

func (s Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

func (s Settings) MarkerEnabled(t model.MarkerType) bool {
	switch t {
	case model.Intervention:
		return s.Markers.Intervention
	case model.Uncertainty:
		return s.Markers.Uncertainty
	case model.Directive:
		return s.Markers.Directive
	}
	return false
}

func (s Settings) SeverityEnabled(sev model.Severity) bool {
	switch sev {
	case model.SeverityError:
		return s.Diagnostics.Error
	case model.SeverityWarning:
		return s.Diagnostics.Warning
	case model.SeverityInfo:
		return s.Diagnostics.Info
	case model.SeverityHint:
		return s.Diagnostics.Hint
	}
	return false
}

// RuleOptions converts the marker settings into scanner rule options.
func (s Settings) RuleOptions() engine.RuleOptions {
	ro := engine.RuleOptions{Enabled: []model.MarkerType{}, Keywords: s.Markers.Keywords}
	for _, t := range model.MarkerTypes {
		if s.MarkerEnabled(t) {
			ro.Enabled = append(ro.Enabled, t)
		}
	}
	if len(s.Markers.Aliases) > 0 {
		ro.Aliases = make(map[model.MarkerType][]string, len(s.Markers.Aliases))
		for key, words := range s.Markers.Aliases {
			if t, err := model.ParseMarkerType(key); err == nil {
				ro.Aliases[t] = slices.Clone(words)
			}
		}
	}
	return ro
}

// Rules builds the scanner rules for these settings.
func (s Settings) Rules() *engine.Rules {
	return engine.NewRules(s.RuleOptions())
}

// ScanOptions starts from the shared scan defaults and applies the scan and
// marker settings. Rules stay nil so opts.NormalizeAndValidate can narrow them.
func (s Settings) ScanOptions(root string) engine.Options {
	o := engineopts.Defaults(root)
	o.Excludes = slices.Clone(s.Scan.Excludes)
	o.ExcludeTypical = s.Scan.ExcludeTypical
	o.DetectLangs = slices.Clone(s.Scan.DetectLangs)
	if s.Scan.Jobs > 0 {
		o.Jobs = s.Scan.Jobs
	}
	o.MaxFileBytes = s.Scan.MaxFileBytes
	o.Markers = s.RuleOptions()
	return o
}

// PaletteOverrides returns the color overrides for palette.Resolve.
func (s Settings) PaletteOverrides() palette.Overrides {
	return palette.Overrides{
		Marker:     s.Colors.Marker,
		MarkerText: s.Colors.MarkerText,
		Background: s.Colors.Background,
	}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneAliases(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = cloneStrings(v)
	}
	return out
}
