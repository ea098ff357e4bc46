package config

import (
	"errors"
	"math"
	"strings"

	engineopts "github.com/phyten/humanpp/internal/engine/opts"
	"github.com/phyten/humanpp/internal/model"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "HUMANPP_"

// FromEnv builds the environment layer. getenv is injectable for tests.
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	var cfg Config
	var errs []error

	setString := func(target **string, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		value := raw
		*target = &value
	}
	setList := func(target **[]string, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		list := engineopts.SplitMulti([]string{raw})
		if len(list) == 0 {
			empty := make([]string, 0)
			*target = &empty
			return
		}
		copyVals := make([]string, len(list))
		copy(copyVals, list)
		*target = &copyVals
	}
	setBool := func(target **bool, key string) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		v, err := engineopts.ParseBool(raw, key)
		if err != nil {
			errs = append(errs, err)
			return
		}
		value := v
		*target = &value
	}
	setInt := func(target **int, key string, min, max int) {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return
		}
		v, err := engineopts.ParseIntInRange(raw, key, min, max)
		if err != nil {
			errs = append(errs, err)
			return
		}
		value := v
		*target = &value
	}

	setBool(&cfg.Enabled, EnvPrefix+"ENABLED")
	setInt(&cfg.DebounceMS, EnvPrefix+"DEBOUNCE_MS", 0, math.MaxInt)
	setString(&cfg.Style, EnvPrefix+"STYLE")
	setInt(&cfg.MessageWidth, EnvPrefix+"MESSAGE_WIDTH", 1, math.MaxInt)

	setBool(&cfg.Markers.Intervention, EnvPrefix+"MARKERS_INTERVENTION")
	setBool(&cfg.Markers.Uncertainty, EnvPrefix+"MARKERS_UNCERTAINTY")
	setBool(&cfg.Markers.Directive, EnvPrefix+"MARKERS_DIRECTIVE")
	setBool(&cfg.Markers.Keywords, EnvPrefix+"MARKERS_KEYWORDS")
	aliases := make(map[string][]string)
	for _, t := range model.MarkerTypes {
		var list *[]string
		setList(&list, EnvPrefix+"MARKERS_ALIASES_"+strings.ToUpper(t.String()))
		if list != nil {
			aliases[t.String()] = *list
		}
	}
	if len(aliases) > 0 {
		cfg.Markers.Aliases = &aliases
	}

	setBool(&cfg.Diagnostics.Error, EnvPrefix+"DIAGNOSTICS_ERROR")
	setBool(&cfg.Diagnostics.Warning, EnvPrefix+"DIAGNOSTICS_WARNING")
	setBool(&cfg.Diagnostics.Info, EnvPrefix+"DIAGNOSTICS_INFO")
	setBool(&cfg.Diagnostics.Hint, EnvPrefix+"DIAGNOSTICS_HINT")

	setString(&cfg.Colors.Marker, EnvPrefix+"COLORS_MARKER")
	setString(&cfg.Colors.MarkerText, EnvPrefix+"COLORS_MARKER_TEXT")
	setString(&cfg.Colors.Background, EnvPrefix+"COLORS_BACKGROUND")

	setList(&cfg.Scan.Excludes, EnvPrefix+"EXCLUDE")
	setBool(&cfg.Scan.ExcludeTypical, EnvPrefix+"EXCLUDE_TYPICAL")
	setList(&cfg.Scan.DetectLangs, EnvPrefix+"DETECT_LANGS")
	// Allow large values here and rely on validation to enforce the
	// canonical upper bound so every input path shares the same error message.
	setInt(&cfg.Scan.Jobs, EnvPrefix+"JOBS", 0, math.MaxInt)
	setInt(&cfg.Scan.MaxFileBytes, EnvPrefix+"MAX_FILE_BYTES", 0, math.MaxInt)
	setString(&cfg.Scan.Output, EnvPrefix+"OUTPUT")
	setString(&cfg.Scan.Fields, EnvPrefix+"FIELDS")
	setString(&cfg.Scan.Color, EnvPrefix+"COLOR")

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}
