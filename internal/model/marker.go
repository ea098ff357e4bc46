package model

import (
	"fmt"
	"strings"
)

// MarkerType はコメント先頭のマーカーが示す人間の判断カテゴリです。
type MarkerType int

const (
	Intervention MarkerType = iota
	Uncertainty
	Directive
)

// MarkerTypes は全マーカー種別を優先順で返します。
var MarkerTypes = []MarkerType{Intervention, Uncertainty, Directive}

type markerInfo struct {
	name       string
	token      string
	aliases    []string
	background string
	foreground string
}

var markerTable = [...]markerInfo{
	Intervention: {name: "intervention", token: "!!", aliases: []string{"FIXME", "BUG", "XXX"}, background: "#f13b5f", foreground: "#1a1c22"},
	Uncertainty:  {name: "uncertainty", token: "??", aliases: []string{"TODO", "HACK", "QUESTION"}, background: "#f5a524", foreground: "#1a1c22"},
	Directive:    {name: "directive", token: ">>", aliases: []string{"NOTE", "NB", "INFO"}, background: "#3fc1d0", foreground: "#1a1c22"},
}

func (t MarkerType) valid() bool {
	return t >= Intervention && t <= Directive
}

// String は設定キーと同じ小文字名を返します。
func (t MarkerType) String() string {
	if !t.valid() {
		return fmt.Sprintf("MarkerType(%d)", int(t))
	}
	return markerTable[t].name
}

// Token は種別ごとの句読点トークン（!!, ??, >>）です。
func (t MarkerType) Token() string {
	if !t.valid() {
		return ""
	}
	return markerTable[t].token
}

// Aliases は既定のキーワード別名を優先順で返します。戻り値は呼び出し側で変更して構いません。
func (t MarkerType) Aliases() []string {
	if !t.valid() {
		return nil
	}
	return append([]string(nil), markerTable[t].aliases...)
}

// Colors は既定のバッジ背景色と文字色を返します。
func (t MarkerType) Colors() (background, foreground string) {
	if !t.valid() {
		return "", ""
	}
	info := markerTable[t]
	return info.background, info.foreground
}

// ParseMarkerType は設定キーまたはトークンから種別を解決します。
func ParseMarkerType(raw string) (MarkerType, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range MarkerTypes {
		if v == markerTable[t].name || v == markerTable[t].token {
			return t, nil
		}
	}
	return Intervention, fmt.Errorf("unknown marker type: %s", raw)
}

// MarshalText implements encoding.TextMarshaler.
func (t MarkerType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("invalid marker type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *MarkerType) UnmarshalText(b []byte) error {
	parsed, err := ParseMarkerType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Severity は診断の重大度です。値が小さいほど重大です。
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// Severities は重大度を強い順に並べたものです。
var Severities = []Severity{SeverityError, SeverityWarning, SeverityInfo, SeverityHint}

var severityTable = [...]struct {
	name  string
	color string
}{
	SeverityError:   {name: "error", color: "#f13b5f"},
	SeverityWarning: {name: "warning", color: "#f5a524"},
	SeverityInfo:    {name: "info", color: "#3fc1d0"},
	SeverityHint:    {name: "hint", color: "#9a9ca6"},
}

func (s Severity) valid() bool {
	return s >= SeverityError && s <= SeverityHint
}

func (s Severity) String() string {
	if !s.valid() {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityTable[s].name
}

// Color は注釈の既定文字色です。
func (s Severity) Color() string {
	if !s.valid() {
		return ""
	}
	return severityTable[s].color
}

// Outranks は s が other より重大なら true を返します。
func (s Severity) Outranks(other Severity) bool {
	return s < other
}

// LSPCode は LSP の DiagnosticSeverity (1..4) に変換します。
func (s Severity) LSPCode() int {
	return int(s) + 1
}

// SeverityFromLSP は LSP の数値コードを変換します。範囲外は Hint とみなします。
func SeverityFromLSP(code int) Severity {
	s := Severity(code - 1)
	if !s.valid() {
		return SeverityHint
	}
	return s
}

func ParseSeverity(raw string) (Severity, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "warn":
		return SeverityWarning, nil
	case "information":
		return SeverityInfo, nil
	}
	for _, s := range Severities {
		if v == severityTable[s].name {
			return s, nil
		}
	}
	return SeverityHint, fmt.Errorf("unknown severity: %s", raw)
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	parsed, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
