package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/phyten/humanpp/internal/model"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func stringsPtr(values ...string) *[]string {
	copied := append([]string(nil), values...)
	return &copied
}

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestMergePrecedence(t *testing.T) {
	fileCfg := Config{
		Style:      strPtr("line"),
		DebounceMS: intPtr(500),
		Markers:    MarkersConfig{Keywords: boolPtr(false)},
		Scan:       ScanConfig{Excludes: stringsPtr("file/**")},
	}
	envCfg := Config{
		DebounceMS: intPtr(100),
		Colors:     ColorsConfig{Marker: strPtr(" #00ff00 ")},
		Scan:       ScanConfig{Excludes: stringsPtr("env/**")},
	}
	hostCfg := Config{
		Style:   strPtr("BADGE"),
		Enabled: boolPtr(false),
	}

	merged := Merge(Defaults(), fileCfg, envCfg, hostCfg)

	if merged.Style != model.StyleBadge {
		t.Fatalf("Style=%q want badge", merged.Style)
	}
	if merged.DebounceMS != 100 {
		t.Fatalf("DebounceMS=%d want 100", merged.DebounceMS)
	}
	if merged.Markers.Keywords {
		t.Fatal("keywords should be disabled by the file layer")
	}
	if !merged.Markers.Intervention || !merged.Markers.Uncertainty || !merged.Markers.Directive {
		t.Fatalf("untouched markers must keep defaults: %+v", merged.Markers)
	}
	if merged.Colors.Marker != "#00ff00" {
		t.Fatalf("Colors.Marker=%q want trimmed #00ff00", merged.Colors.Marker)
	}
	if !reflect.DeepEqual(merged.Scan.Excludes, []string{"env/**"}) {
		t.Fatalf("Excludes=%v", merged.Scan.Excludes)
	}
	if merged.Enabled {
		t.Fatal("host layer should disable highlighting")
	}
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := Defaults()
	base.Scan.Excludes = []string{"a"}
	base.Markers.Aliases = map[string][]string{"directive": {"NOTE"}}
	_ = Merge(base, Config{
		Scan:    ScanConfig{Excludes: stringsPtr("b")},
		Markers: MarkersConfig{Aliases: &map[string][]string{"directive": {"SEE"}}},
	})
	if base.Scan.Excludes[0] != "a" || base.Markers.Aliases["directive"][0] != "NOTE" {
		t.Fatalf("base mutated: %+v", base)
	}
}

func TestResolveAliasesは種別ごとに置き換える(t *testing.T) {
	file := map[string][]string{"Uncertainty": {" TODO ", "LATER"}, "!!": {"FIXME"}}
	host := map[string][]string{"uncertainty": {}}
	got := ResolveAliases(nil, &file, &host)
	want := map[string][]string{
		"uncertainty":  {},
		"intervention": {"FIXME"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveAliases=%v want %v", got, want)
	}
}

func TestRuleOptionsFromSettings(t *testing.T) {
	s := Defaults()
	s.Markers.Uncertainty = false
	s.Markers.Aliases = map[string][]string{"directive": {"SEE"}}
	ro := s.RuleOptions()
	if !reflect.DeepEqual(ro.Enabled, []model.MarkerType{model.Intervention, model.Directive}) {
		t.Fatalf("Enabled=%v", ro.Enabled)
	}
	if !ro.Keywords {
		t.Fatal("keywords should be on by default")
	}
	if !reflect.DeepEqual(ro.Aliases[model.Directive], []string{"SEE"}) {
		t.Fatalf("Aliases=%v", ro.Aliases)
	}

	rules := s.Rules()
	if hit, ok := rules.MatchMarker(" SEE: docs"); !ok || hit.Type != model.Directive {
		t.Fatalf("override alias should match, got %+v ok=%v", hit, ok)
	}
	if _, ok := rules.MatchMarker(" NOTE: docs"); ok {
		t.Fatal("replaced alias NOTE must not match")
	}
	if _, ok := rules.MatchMarker(" ?? unsure"); ok {
		t.Fatal("disabled uncertainty token must not match")
	}
}

func TestSettingsHelpers(t *testing.T) {
	s := Defaults()
	if got := s.Debounce().Milliseconds(); got != 200 {
		t.Fatalf("Debounce=%dms want 200", got)
	}
	for _, sev := range model.Severities {
		want := sev != model.SeverityHint
		if s.SeverityEnabled(sev) != want {
			t.Fatalf("SeverityEnabled(%v)=%v want %v", sev, !want, want)
		}
	}
	s.Colors.Marker = "#112233"
	if o := s.PaletteOverrides(); o.Marker != "#112233" || o.MarkerText != "" {
		t.Fatalf("PaletteOverrides=%+v", o)
	}
}

func TestScanOptionsFromSettings(t *testing.T) {
	s := Defaults()
	s.Scan.Excludes = []string{"gen/**"}
	s.Scan.ExcludeTypical = false
	s.Scan.Jobs = 3
	s.Markers.Uncertainty = false

	o := s.ScanOptions("/repo")
	if o.Root != "/repo" || o.Jobs != 3 || o.ExcludeTypical || !reflect.DeepEqual(o.Excludes, []string{"gen/**"}) {
		t.Fatalf("unexpected options: %+v", o)
	}
	if o.Rules != nil {
		t.Fatal("rules must be left for NormalizeAndValidate")
	}
	if len(o.Markers.Enabled) != 2 || !o.Markers.Keywords {
		t.Fatalf("markers=%+v", o.Markers)
	}
	s.Scan.Excludes[0] = "changed"
	if o.Excludes[0] != "gen/**" {
		t.Fatal("ScanOptions must copy slices")
	}
	s.Scan.Jobs = 0
	if got := s.ScanOptions(".").Jobs; got < 1 {
		t.Fatalf("zero jobs should keep the default, got %d", got)
	}
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"HUMANPP_ENABLED":                     "false",
		"HUMANPP_DEBOUNCE_MS":                 "50",
		"HUMANPP_STYLE":                       "line",
		"HUMANPP_MARKERS_KEYWORDS":            "0",
		"HUMANPP_MARKERS_ALIASES_UNCERTAINTY": "TODO,LATER",
		"HUMANPP_DIAGNOSTICS_HINT":            "yes",
		"HUMANPP_COLORS_MARKER":               "#abcdef",
		"HUMANPP_EXCLUDE":                     "dist/**, gen/**",
		"HUMANPP_JOBS":                        "4",
	}))
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	merged := Merge(Defaults(), cfg)
	if merged.Enabled || merged.DebounceMS != 50 || merged.Style != model.StyleLine {
		t.Fatalf("unexpected top-level values: %+v", merged)
	}
	if merged.Markers.Keywords {
		t.Fatal("keywords should be disabled")
	}
	if !reflect.DeepEqual(merged.Markers.Aliases["uncertainty"], []string{"TODO", "LATER"}) {
		t.Fatalf("aliases=%v", merged.Markers.Aliases)
	}
	if !merged.Diagnostics.Hint {
		t.Fatal("hint should be enabled")
	}
	if merged.Colors.Marker != "#abcdef" {
		t.Fatalf("marker color=%q", merged.Colors.Marker)
	}
	if !reflect.DeepEqual(merged.Scan.Excludes, []string{"dist/**", "gen/**"}) {
		t.Fatalf("excludes=%v", merged.Scan.Excludes)
	}
	if merged.Scan.Jobs != 4 {
		t.Fatalf("jobs=%d", merged.Scan.Jobs)
	}
}

func TestFromEnvは不正値をまとめて返す(t *testing.T) {
	_, err := FromEnv(envMap(map[string]string{
		"HUMANPP_ENABLED":     "maybe",
		"HUMANPP_DEBOUNCE_MS": "soon",
	}))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "HUMANPP_ENABLED") || !strings.Contains(msg, "HUMANPP_DEBOUNCE_MS") {
		t.Fatalf("both variables should be reported: %v", msg)
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		body string
	}{
		{".humanpp.yaml", "style: line\nmarkers:\n  keywords: false\n  aliases:\n    directive: [SEE, NOTE]\ncolors:\n  marker: \"#ff0000\"\n"},
		{".humanpp.toml", "style = \"line\"\n[markers]\nkeywords = false\n[markers.aliases]\ndirective = [\"SEE\", \"NOTE\"]\n[colors]\nmarker = \"#ff0000\"\n"},
		{".humanpp.json", `{"style":"line","markers":{"keywords":false,"aliases":{"directive":"SEE,NOTE"}},"colors":{"marker":"#ff0000"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, dir, tc.name, tc.body)
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			merged := Merge(Defaults(), cfg)
			if merged.Style != model.StyleLine || merged.Markers.Keywords {
				t.Fatalf("unexpected settings: %+v", merged)
			}
			if !reflect.DeepEqual(merged.Markers.Aliases["directive"], []string{"SEE", "NOTE"}) {
				t.Fatalf("aliases=%v", merged.Markers.Aliases)
			}
			if merged.Colors.Marker != "#ff0000" {
				t.Fatalf("marker=%q", merged.Colors.Marker)
			}
		})
	}
}

func TestLoadRejectsUnknownKeysAndTypes(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(writeConfig(t, dir, "a.yaml", "colour: red\n")); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
	if _, err := Load(writeConfig(t, dir, "b.yaml", "debounce_ms: [1]\n")); err == nil {
		t.Fatal("expected type error for debounce_ms")
	}
	if _, err := Load(writeConfig(t, dir, "c.ini", "x=1\n")); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	if cfg, err := Load(""); err != nil || cfg.Enabled != nil {
		t.Fatalf("empty path should yield empty layer, got %+v %v", cfg, err)
	}
}

func TestDecodeMapAcceptsHostSpellings(t *testing.T) {
	cfg, err := DecodeMap(map[string]any{
		"debounceMs":           float64(300),
		"message-width":        "40",
		"markers.intervention": false,
		"diagnostics":          map[string]any{"warn": false},
		"markerColor":          "#010203",
		"colors":               map[string]any{"markerText": "#fefefe"},
	})
	if err != nil {
		t.Fatalf("DecodeMap error: %v", err)
	}
	merged := Merge(Defaults(), cfg)
	if merged.DebounceMS != 300 || merged.MessageWidth != 40 {
		t.Fatalf("numbers not decoded: %+v", merged)
	}
	if merged.Markers.Intervention {
		t.Fatal("dotted key should disable intervention")
	}
	if merged.Diagnostics.Warning {
		t.Fatal("warn alias should disable warnings")
	}
	if merged.Colors.Marker != "#010203" || merged.Colors.MarkerText != "#fefefe" {
		t.Fatalf("colors=%+v", merged.Colors)
	}
	if _, err := DecodeMap(map[string]any{"debounce_ms": 1.5}); err == nil {
		t.Fatal("fractional debounce should be rejected")
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"debounceMs":           "debounce_ms",
		"message-width":        "message_width",
		"markers.markerText":   "markers.marker_text",
		" MessageWidth ":       "message_width",
		"scan.maxFileBytes":    "scan.max_file_bytes",
		"already_snake.case_1": "already_snake.case_1",
	}
	for in, want := range cases {
		if got := normalizeKey(in); got != want {
			t.Fatalf("normalizeKey(%q)=%q want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	cases := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"style", func(s *Settings) { s.Style = "glow" }, "style"},
		{"debounce", func(s *Settings) { s.DebounceMS = -1 }, "debounce_ms"},
		{"width", func(s *Settings) { s.MessageWidth = 0 }, "message_width"},
		{"color", func(s *Settings) { s.Colors.Marker = "red" }, "colors.marker"},
		{"aliasKey", func(s *Settings) { s.Markers.Aliases = map[string][]string{"todo": {"X"}} }, "markers.aliases"},
		{"aliasWord", func(s *Settings) { s.Markers.Aliases = map[string][]string{"directive": {"TWO WORDS"}} }, "alias must be a single"},
		{"jobs", func(s *Settings) { s.Scan.Jobs = 65 }, "scan.jobs"},
		{"output", func(s *Settings) { s.Scan.Output = "xml" }, "scan.output"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			tc.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should mention %q", err, tc.want)
			}
		})
	}
}

func TestFindOrder(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "project")
	nested := filepath.Join(project, "a", "b")
	home := filepath.Join(root, "home")
	xdg := filepath.Join(root, "xdg")
	for _, dir := range []string{nested, home, filepath.Join(xdg, "humanpp")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	if path, source, err := Find(nested, "", xdg, home); err != nil || path != "" || source != "" {
		t.Fatalf("nothing should be found yet: %q %q %v", path, source, err)
	}

	homeCfg := writeConfig(t, home, ".humanpp.yaml", "style: line\n")
	if path, source, _ := Find(nested, "", xdg, home); path != homeCfg || source != "home" {
		t.Fatalf("home: got %q %q", path, source)
	}

	xdgCfg := writeConfig(t, filepath.Join(xdg, "humanpp"), "config.toml", "style = \"line\"\n")
	if path, source, _ := Find(nested, "", xdg, home); path != xdgCfg || source != "xdg" {
		t.Fatalf("xdg: got %q %q", path, source)
	}

	projectCfg := writeConfig(t, project, ".humanpp.json", "{}")
	if path, source, _ := Find(nested, "", xdg, home); path != projectCfg || source != "cwd-up" {
		t.Fatalf("cwd-up: got %q %q", path, source)
	}

	explicit := writeConfig(t, root, "custom.yml", "enabled: false\n")
	if path, source, _ := Find(nested, explicit, xdg, home); path != explicit || source != "explicit" {
		t.Fatalf("explicit: got %q %q", path, source)
	}
	if _, _, err := Find(nested, filepath.Join(root, "missing.yaml"), xdg, home); err == nil {
		t.Fatal("missing explicit path should be an error")
	}
}

func TestSetValueは新規ファイルを作成して保存する(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".humanpp.yaml")

	canonical, err := SetValue(path, "debounceMs", "350")
	if err != nil {
		t.Fatalf("SetValue error: %v", err)
	}
	if canonical != "debounce_ms" {
		t.Fatalf("canonical=%q", canonical)
	}
	if _, err := SetValue(path, "markers.aliases.uncertainty", "TODO, LATER"); err != nil {
		t.Fatalf("SetValue aliases error: %v", err)
	}
	if _, err := SetValue(path, "enabled", "false"); err != nil {
		t.Fatalf("SetValue enabled error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	merged := Merge(Defaults(), cfg)
	if merged.DebounceMS != 350 || merged.Enabled {
		t.Fatalf("persisted values lost: %+v", merged)
	}
	if !reflect.DeepEqual(merged.Markers.Aliases["uncertainty"], []string{"TODO", "LATER"}) {
		t.Fatalf("aliases=%v", merged.Markers.Aliases)
	}
}

func TestSetValueRejectsInvalidInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".humanpp.toml")
	if _, err := SetValue(path, "nope", "1"); err == nil {
		t.Fatal("unknown key should fail")
	}
	if _, err := SetValue(path, "style", "glow"); err == nil {
		t.Fatal("invalid style should fail validation")
	}
	if _, err := SetValue(path, "markers.aliases.todo", "X"); err == nil {
		t.Fatal("unknown marker type in alias key should fail")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no file should be written on failure, stat err=%v", err)
	}
}

func TestSaveRoundTripAllFormats(t *testing.T) {
	dir := t.TempDir()
	aliases := map[string][]string{"directive": {"SEE"}}
	cfg := Config{
		Enabled:    boolPtr(false),
		DebounceMS: intPtr(10),
		Markers:    MarkersConfig{Aliases: &aliases},
		Colors:     ColorsConfig{Marker: strPtr("#123456")},
	}
	for _, name := range []string{"c.yaml", "c.toml", "c.json"} {
		path := filepath.Join(dir, name)
		if err := Save(path, cfg); err != nil {
			t.Fatalf("Save(%s) error: %v", name, err)
		}
		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", name, err)
		}
		got := Merge(Defaults(), loaded)
		if got.Enabled || got.DebounceMS != 10 || got.Colors.Marker != "#123456" {
			t.Fatalf("%s: unexpected settings %+v", name, got)
		}
		if !reflect.DeepEqual(got.Markers.Aliases["directive"], []string{"SEE"}) {
			t.Fatalf("%s: aliases=%v", name, got.Markers.Aliases)
		}
	}
}

func newTestStore(t *testing.T, dir string, env map[string]string) *Store {
	t.Helper()
	home := filepath.Join(dir, "home")
	store, err := NewStore(StoreOptions{
		Dir:     dir,
		XDGHome: filepath.Join(home, ".config"),
		Home:    home,
		Getenv:  envMap(env),
	})
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	return store
}

func TestStoreLayers(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".humanpp.yaml", "style: line\ndebounce_ms: 400\n")
	store := newTestStore(t, dir, map[string]string{"HUMANPP_DEBOUNCE_MS": "20"})

	s := store.Settings()
	if s.Style != model.StyleLine || s.DebounceMS != 20 {
		t.Fatalf("file+env not applied: %+v", s)
	}
	if path, source := store.Path(); path != filepath.Join(dir, ".humanpp.yaml") || source != "cwd-up" {
		t.Fatalf("Path()=%q %q", path, source)
	}

	s, err := store.Override(Config{Style: strPtr("badge")})
	if err != nil {
		t.Fatalf("Override error: %v", err)
	}
	if s.Style != model.StyleBadge || s.DebounceMS != 20 {
		t.Fatalf("override not applied: %+v", s)
	}
	if _, err := store.Override(Config{Style: strPtr("glow")}); err == nil {
		t.Fatal("invalid override should fail")
	}
	if store.Settings().Style != model.StyleBadge {
		t.Fatal("failed override must keep previous settings")
	}
}

func TestStoreSettingsReturnsCopy(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".humanpp.yaml", "scan:\n  exclude: [gen/**]\n")
	store := newTestStore(t, dir, nil)
	s := store.Settings()
	s.Scan.Excludes[0] = "changed"
	if store.Settings().Scan.Excludes[0] != "gen/**" {
		t.Fatal("Settings must return an independent copy")
	}
}

func TestStoreSetPersistsAndShadowsOverride(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, dir, nil)
	if _, err := store.Override(Config{Enabled: boolPtr(true)}); err != nil {
		t.Fatalf("Override error: %v", err)
	}
	s, err := store.Set("enabled", "false")
	if err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if s.Enabled {
		t.Fatal("Set must take effect over the host layer")
	}
	path, _ := store.Path()
	if path != filepath.Join(dir, ".humanpp.yaml") {
		t.Fatalf("Set should create the default file, Path()=%q", path)
	}
	cfg, err := Load(path)
	if err != nil || cfg.Enabled == nil || *cfg.Enabled {
		t.Fatalf("enabled=false not persisted: %+v %v", cfg, err)
	}
}

func TestStoreReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ".humanpp.yaml", "style: line\n")
	store := newTestStore(t, dir, nil)

	writeConfig(t, dir, ".humanpp.yaml", "style: glow\n")
	if _, err := store.Reload(); err == nil {
		t.Fatal("expected validation error on reload")
	}
	if store.Settings().Style != model.StyleLine {
		t.Fatal("previous settings must survive a bad reload")
	}

	if err := os.WriteFile(path, []byte("style: badge\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := store.Reload()
	if err != nil || s.Style != model.StyleBadge {
		t.Fatalf("reload after fix: %+v %v", s, err)
	}
}

func TestSettingsLookup(t *testing.T) {
	st := Defaults()
	st.Markers.Aliases = map[string][]string{"directive": {"NOTE"}}
	cases := []struct {
		key  string
		want any
	}{
		{key: "debounce", want: 200},
		{key: "diagnostics.warn", want: true},
		{key: "diagnostics.hints", want: false},
		{key: "scan.output", want: "table"},
		{key: "markerColor", want: nil},
		{key: "markers.aliases.directive", want: []any{"NOTE"}},
		{key: "markers.aliases.uncertainty", want: nil},
	}
	for _, tc := range cases {
		got, err := st.Lookup(tc.key)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.key, err)
		}
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Fatalf("Lookup(%q)=%#v want %#v", tc.key, got, tc.want)
		}
	}
	section, err := st.Lookup("markers")
	if err != nil {
		t.Fatalf("Lookup(markers): %v", err)
	}
	if m, ok := section.(map[string]any); !ok || m["keywords"] != true {
		t.Fatalf("section=%#v", section)
	}
	if _, err := st.Lookup("nope"); err == nil {
		t.Fatal("unknown key should fail")
	}
}
