package termcolor

import (
	"strconv"
	"strings"
)

type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeDark
	SchemeLight
)

// Background is the assumed editor background for the scheme, used to blend line tints.
func (s Scheme) Background() string {
	if s == SchemeLight {
		return "#ffffff"
	}
	return "#1a1c22"
}

// DetectScheme は COLORFGBG と TERM から端末の明暗を推定します。
func DetectScheme(env map[string]string) Scheme {
	if env == nil {
		return SchemeDark
	}
	raw := strings.TrimSpace(env["COLORFGBG"])
	if raw != "" {
		parts := strings.Split(raw, ";")
		bgRaw := strings.TrimSpace(parts[len(parts)-1])
		if bgRaw == "" && len(parts) >= 2 {
			bgRaw = strings.TrimSpace(parts[len(parts)-2])
		}
		if bg, err := strconv.Atoi(bgRaw); err == nil {
			if bg >= 7 {
				return SchemeLight
			}
			if bg >= 0 {
				return SchemeDark
			}
		}
	}
	termName := strings.ToLower(strings.TrimSpace(env["TERM"]))
	if strings.Contains(termName, "light") {
		return SchemeLight
	}
	return SchemeDark
}
