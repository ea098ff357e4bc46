package colorutil

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	black = colorful.Color{R: 0, G: 0, B: 0}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

// ParseHex は "#rgb" / "#rrggbb"（# は省略可）を解釈します。
func ParseHex(s string) (colorful.Color, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return colorful.Color{}, fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	c, err := colorful.Hex(strings.ToLower(v))
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// MustHex is ParseHex for compile-time constants.
func MustHex(s string) colorful.Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ValidHex reports whether s parses as a hex color.
func ValidHex(s string) bool {
	_, err := ParseHex(s)
	return err == nil
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.Clamped().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio は WCAG のコントラスト比（1〜21）を返します。
func ContrastRatio(fg, bg colorful.Color) float64 {
	l1 := luminance(fg)
	l2 := luminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func AutoTextColor(bg colorful.Color) colorful.Color {
	crBlack := ContrastRatio(black, bg)
	crWhite := ContrastRatio(white, bg)
	if crBlack >= 4.5 || crBlack >= crWhite {
		return black
	}
	return white
}

func EnsureContrast(fg, bg colorful.Color, minRatio float64) colorful.Color {
	if minRatio <= 0 {
		minRatio = 4.5
	}
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}
	return AutoTextColor(bg)
}

// Tint は base の上に over を alpha（0〜1）の不透明度で重ねた色を返します。
func Tint(base, over colorful.Color, alpha float64) colorful.Color {
	if alpha <= 0 {
		return base
	}
	if alpha >= 1 {
		return over
	}
	return base.BlendRgb(over, alpha).Clamped()
}
