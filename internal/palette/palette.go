// Package palette resolves marker and severity colors from defaults and overrides.
package palette

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/phyten/humanpp/internal/colorutil"
	"github.com/phyten/humanpp/internal/model"
)

const (
	// DefaultBackground is the editor background line tints are blended onto.
	DefaultBackground = "#1a1c22"
	lineTintAlpha     = 0.18
	minTextContrast   = 4.5
)

// Swatch は 1 つの装飾の背景色と文字色（#rrggbb）です。
type Swatch struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

// Overrides は設定から来る色の上書きです。空文字は既定値を使います。
type Overrides struct {
	// Marker replaces the badge background of every marker type.
	Marker string
	// MarkerText replaces the badge text color of every marker type.
	MarkerText string
	// Background is the surface background used for line tints.
	Background string
}

// Palette は解決済みの色一式です。値型で比較できます。
type Palette struct {
	badges     [3]Swatch
	lines      [3]string
	severities [4]string
}

// Default は上書きなしのパレットです。
func Default() Palette {
	p, err := Resolve(Overrides{})
	if err != nil {
		panic(err)
	}
	return p
}

// Resolve は既定色に o を重ねたパレットを返します。
func Resolve(o Overrides) (Palette, error) {
	var p Palette
	bgHex := strings.TrimSpace(o.Background)
	if bgHex == "" {
		bgHex = DefaultBackground
	}
	surface, err := colorutil.ParseHex(bgHex)
	if err != nil {
		return p, fmt.Errorf("background: %w", err)
	}
	var markerBG, markerFG *colorful.Color
	if strings.TrimSpace(o.Marker) != "" {
		c, err := colorutil.ParseHex(o.Marker)
		if err != nil {
			return p, fmt.Errorf("marker color: %w", err)
		}
		markerBG = &c
	}
	if strings.TrimSpace(o.MarkerText) != "" {
		c, err := colorutil.ParseHex(o.MarkerText)
		if err != nil {
			return p, fmt.Errorf("marker text color: %w", err)
		}
		markerFG = &c
	}

	for _, t := range model.MarkerTypes {
		defBG, defFG := t.Colors()
		bg := colorutil.MustHex(defBG)
		if markerBG != nil {
			bg = *markerBG
		}
		fg := colorutil.MustHex(defFG)
		switch {
		case markerFG != nil:
			fg = *markerFG
		case markerBG != nil:
			fg = colorutil.EnsureContrast(fg, bg, minTextContrast)
		}
		p.badges[t] = Swatch{Background: bg.Hex(), Foreground: fg.Hex()}
		p.lines[t] = colorutil.Tint(surface, bg, lineTintAlpha).Hex()
	}
	for _, s := range model.Severities {
		p.severities[s] = s.Color()
	}
	return p, nil
}

// Badge はマーカー種別のバッジ色です。
func (p Palette) Badge(t model.MarkerType) Swatch {
	if t < 0 || int(t) >= len(p.badges) {
		return Swatch{}
	}
	return p.badges[t]
}

// Line はマーカー種別の行背景色です。
func (p Palette) Line(t model.MarkerType) string {
	if t < 0 || int(t) >= len(p.lines) {
		return ""
	}
	return p.lines[t]
}

// Severity は診断注釈の文字色です。
func (p Palette) Severity(s model.Severity) string {
	if s < 0 || int(s) >= len(p.severities) {
		return ""
	}
	return p.severities[s]
}
