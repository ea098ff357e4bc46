package model

import (
	"fmt"
	"strings"
)

// Style は装飾の見た目の種類です。
type Style string

const (
	StyleBadge Style = "badge"
	StyleLine  Style = "line"
	StyleBoth  Style = "both"
)

// ParseStyle は設定値を Style に変換します。空文字は both です。
func ParseStyle(raw string) (Style, error) {
	switch v := Style(strings.ToLower(strings.TrimSpace(raw))); v {
	case "":
		return StyleBoth, nil
	case StyleBadge, StyleLine, StyleBoth:
		return v, nil
	}
	return StyleBoth, fmt.Errorf("invalid style: %s", raw)
}

// Badges reports whether marker tokens get badge ranges.
func (s Style) Badges() bool { return s == StyleBadge || s == StyleBoth }

// Lines reports whether whole comment lines get tint ranges.
func (s Style) Lines() bool { return s == StyleLine || s == StyleBoth }
