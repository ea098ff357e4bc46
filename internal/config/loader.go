package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	engineopts "github.com/phyten/humanpp/internal/engine/opts"
)

// keyMap maps accepted spellings (after normalizeKey) to canonical dotted keys.
var keyMap = map[string]string{
	"enabled":                 "enabled",
	"enable":                  "enabled",
	"debounce_ms":             "debounce_ms",
	"debounce":                "debounce_ms",
	"style":                   "style",
	"message_width":           "message_width",
	"markers.intervention":    "markers.intervention",
	"markers.uncertainty":     "markers.uncertainty",
	"markers.directive":       "markers.directive",
	"markers.keywords":        "markers.keywords",
	"markers.aliases":         "markers.aliases",
	"diagnostics.error":       "diagnostics.error",
	"diagnostics.warning":     "diagnostics.warning",
	"diagnostics.warn":        "diagnostics.warning",
	"diagnostics.info":        "diagnostics.info",
	"diagnostics.information": "diagnostics.info",
	"diagnostics.hint":        "diagnostics.hint",
	"colors.marker":           "colors.marker",
	"colors.marker_text":      "colors.marker_text",
	"colors.background":       "colors.background",
	"scan.exclude":            "scan.exclude",
	"scan.excludes":           "scan.exclude",
	"scan.exclude_typical":    "scan.exclude_typical",
	"scan.detect_langs":       "scan.detect_langs",
	"scan.detect_languages":   "scan.detect_langs",
	"scan.jobs":               "scan.jobs",
	"scan.max_file_bytes":     "scan.max_file_bytes",
	"scan.max_bytes":          "scan.max_file_bytes",
	"scan.output":             "scan.output",
	"scan.fields":             "scan.fields",
	"scan.color":              "scan.color",
	"marker_color":            "colors.marker",
	"marker_text_color":       "colors.marker_text",
	"keywords":                "markers.keywords",
	"diagnostics.hints":       "diagnostics.hint",
}

var sections = map[string]struct{}{
	"markers":     {},
	"diagnostics": {},
	"colors":      {},
	"scan":        {},
}

// Keys returns the canonical keys accepted by Set, sorted.
func Keys() []string {
	seen := make(map[string]struct{}, len(keyMap))
	out := make([]string, 0, len(keyMap))
	for _, canonical := range keyMap {
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

// Load reads one configuration file. An empty path yields an empty layer.
func Load(path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	raw, err := decodeFile(path, data)
	if err != nil {
		return cfg, err
	}
	if raw == nil {
		return cfg, nil
	}
	decoded, err := DecodeMap(raw)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return decoded, nil
}

func decodeFile(path string, data []byte) (map[string]any, error) {
	var raw map[string]any
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return raw, nil
}

// DecodeMap converts a generic settings object (file contents or a host
// configuration payload) into a layer. Keys may be nested or dotted and may
// use snake_case, kebab-case, or camelCase.
func DecodeMap(raw map[string]any) (Config, error) {
	var cfg Config
	flat := make(map[string]any)
	if err := flatten(raw, "", flat); err != nil {
		return cfg, err
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		canonical, ok := keyMap[key]
		if !ok {
			return cfg, fmt.Errorf("unknown config key: %s", key)
		}
		if err := assign(&cfg, canonical, flat[key]); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func flatten(raw map[string]any, prefix string, dst map[string]any) error {
	for key, value := range raw {
		norm := normalizeKey(key)
		full := norm
		if prefix != "" {
			full = prefix + "." + norm
		}
		if _, isSection := sections[full]; isSection {
			sub, err := toStringKeyMap(value)
			if err != nil {
				return fmt.Errorf("%s: %w", full, err)
			}
			if err := flatten(sub, full, dst); err != nil {
				return err
			}
			continue
		}
		dst[full] = value
	}
	return nil
}

func assign(dst *Config, key string, value any) error {
	switch key {
	case "enabled":
		return setBool(&dst.Enabled, value, key)
	case "debounce_ms":
		return setInt(&dst.DebounceMS, value, key)
	case "style":
		return setString(&dst.Style, value, key)
	case "message_width":
		return setInt(&dst.MessageWidth, value, key)
	case "markers.intervention":
		return setBool(&dst.Markers.Intervention, value, key)
	case "markers.uncertainty":
		return setBool(&dst.Markers.Uncertainty, value, key)
	case "markers.directive":
		return setBool(&dst.Markers.Directive, value, key)
	case "markers.keywords":
		return setBool(&dst.Markers.Keywords, value, key)
	case "markers.aliases":
		aliases, err := expectAliases(value, key)
		if err != nil {
			return err
		}
		dst.Markers.Aliases = &aliases
		return nil
	case "diagnostics.error":
		return setBool(&dst.Diagnostics.Error, value, key)
	case "diagnostics.warning":
		return setBool(&dst.Diagnostics.Warning, value, key)
	case "diagnostics.info":
		return setBool(&dst.Diagnostics.Info, value, key)
	case "diagnostics.hint":
		return setBool(&dst.Diagnostics.Hint, value, key)
	case "colors.marker":
		return setString(&dst.Colors.Marker, value, key)
	case "colors.marker_text":
		return setString(&dst.Colors.MarkerText, value, key)
	case "colors.background":
		return setString(&dst.Colors.Background, value, key)
	case "scan.exclude":
		return setList(&dst.Scan.Excludes, value, key)
	case "scan.exclude_typical":
		return setBool(&dst.Scan.ExcludeTypical, value, key)
	case "scan.detect_langs":
		return setList(&dst.Scan.DetectLangs, value, key)
	case "scan.jobs":
		return setInt(&dst.Scan.Jobs, value, key)
	case "scan.max_file_bytes":
		return setInt(&dst.Scan.MaxFileBytes, value, key)
	case "scan.output":
		return setString(&dst.Scan.Output, value, key)
	case "scan.fields":
		return setString(&dst.Scan.Fields, value, key)
	case "scan.color":
		return setString(&dst.Scan.Color, value, key)
	}
	return fmt.Errorf("unknown key: %s", key)
}

func setBool(target **bool, value any, field string) error {
	b, err := expectBool(value, field)
	if err != nil {
		return err
	}
	*target = &b
	return nil
}

func setInt(target **int, value any, field string) error {
	n, err := expectInt(value, field)
	if err != nil {
		return err
	}
	*target = &n
	return nil
}

func setString(target **string, value any, field string) error {
	str, err := expectString(value, field)
	if err != nil {
		return err
	}
	trimmed := strings.TrimSpace(str)
	*target = &trimmed
	return nil
}

func setList(target **[]string, value any, field string) error {
	list, err := expectStringList(value, field)
	if err != nil {
		return err
	}
	*target = &list
	return nil
}

func expectString(value any, field string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%s cannot be null", field)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string for %s, got %T", field, value)
}

func expectBool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return engineopts.ParseBool(v, field)
	default:
		return false, fmt.Errorf("expected bool for %s, got %T", field, value)
	}
}

func expectInt(value any, field string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected integer for %s, got %v", field, value)
		}
		return int(v), nil
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %v", field, value)
		}
		return n, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("invalid integer value for %s: %q", field, v)
		}
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %q", field, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer for %s, got %T", field, value)
	}
}

func expectStringList(value any, field string) ([]string, error) {
	switch v := value.(type) {
	case string:
		parts := engineopts.SplitMulti([]string{v})
		return normalizeList(parts), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, err := expectString(item, field)
			if err != nil {
				return nil, err
			}
			out = append(out, str)
		}
		return normalizeList(out), nil
	case []string:
		return normalizeList(v), nil
	default:
		return nil, fmt.Errorf("expected string or list for %s, got %T", field, value)
	}
}

// expectAliases accepts {type: [words]} or {type: "A,B"}.
func expectAliases(value any, field string) (map[string][]string, error) {
	m, err := toStringKeyMap(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	out := make(map[string][]string, len(m))
	for k, v := range m {
		list, err := expectStringList(v, field+"."+k)
		if err != nil {
			return nil, err
		}
		out[strings.ToLower(strings.TrimSpace(k))] = list
	}
	return out, nil
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func toStringKeyMap(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, value := range typed {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key: %v", k)
			}
			out[key] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
}

// normalizeKey lower-cases a key and turns kebab-case and camelCase into snake_case.
// Dots are kept so "markers.keywords" stays addressable.
func normalizeKey(key string) string {
	var b strings.Builder
	trimmed := strings.TrimSpace(key)
	prevLower := false
	for _, r := range trimmed {
		switch {
		case r == '-':
			b.WriteByte('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}
