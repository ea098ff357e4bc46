package config

import (
	"strings"

	"github.com/phyten/humanpp/internal/model"
)

func ResolveString(def string, values ...*string) string {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveInt(def int, values ...*int) int {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveBool(def bool, values ...*bool) bool {
	result := def
	for _, v := range values {
		if v != nil {
			result = *v
		}
	}
	return result
}

func ResolveStrings(def []string, values ...*[]string) []string {
	result := cloneStrings(def)
	for _, v := range values {
		if v != nil {
			if len(*v) == 0 {
				result = []string{}
				continue
			}
			result = cloneStrings(*v)
		}
	}
	return result
}

func ResolveAndTrim(def string, values ...*string) string {
	value := ResolveString(def, values...)
	return strings.TrimSpace(value)
}

// ResolveAliases merges alias overrides per marker type. A type present in a
// layer replaces that type's list; an empty list disables its aliases.
// Keys are canonicalized to type names; unknown keys are kept for validation to report.
func ResolveAliases(def map[string][]string, values ...*map[string][]string) map[string][]string {
	result := cloneAliases(def)
	for _, v := range values {
		if v == nil {
			continue
		}
		if result == nil {
			result = make(map[string][]string, len(*v))
		}
		for key, words := range *v {
			canonical := strings.ToLower(strings.TrimSpace(key))
			if t, err := model.ParseMarkerType(canonical); err == nil {
				canonical = t.String()
			}
			list := normalizeList(words)
			result[canonical] = list
		}
	}
	return result
}
