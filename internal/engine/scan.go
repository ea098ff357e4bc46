package engine

import (
	"strings"
	"unicode"

	"github.com/phyten/humanpp/internal/model"
	"github.com/phyten/humanpp/internal/textutil"
)

// Scanner は文書全体を 1 行ずつ走査してマーカーを集めます。
// 状態を持たないため、同じ入力には常に同じ結果を返します。
type Scanner struct {
	prefixes *PrefixMatcher
	rules    *Rules
}

// NewScanner は prefixes と rules を組み合わせた Scanner を作ります。nil は既定値で補います。
func NewScanner(prefixes *PrefixMatcher, rules *Rules) *Scanner {
	if prefixes == nil {
		prefixes = DefaultPrefixMatcher()
	}
	if rules == nil {
		rules = DefaultRules()
	}
	return &Scanner{prefixes: prefixes, rules: rules}
}

// Scan は text を改行で分割し、行ごとに導入子とマーカーを 1 回ずつだけ判定します。
func (s *Scanner) Scan(text string) []model.Occurrence {
	var out []model.Occurrence
	for i, line := range textutil.SplitLines(text) {
		if occ, ok := s.ScanLine(i, line); ok {
			out = append(out, occ)
		}
	}
	return out
}

// ScanLine は 1 行だけを判定します。line には改行を含めません。
func (s *Scanner) ScanLine(lineNo int, line string) (model.Occurrence, bool) {
	pm, ok := s.prefixes.MatchPrefix(line)
	if !ok {
		return model.Occurrence{}, false
	}
	hit, ok := s.rules.MatchMarker(line[pm.Length:])
	if !ok {
		return model.Occurrence{}, false
	}
	lineEnd := textutil.UTF16Offset(line, len(strings.TrimRightFunc(line, unicode.IsSpace)))
	markerEnd := textutil.UTF16Offset(line, pm.Length+hit.End)
	if markerEnd > lineEnd {
		markerEnd = lineEnd
	}
	return model.Occurrence{
		Type:         hit.Type,
		Line:         lineNo,
		CommentStart: textutil.UTF16Offset(line, pm.Indent),
		MarkerStart:  textutil.UTF16Offset(line, pm.Length+hit.Start),
		MarkerEnd:    markerEnd,
		LineEnd:      lineEnd,
	}, true
}

// Scan は全系統の導入子で text を走査する簡易版です。
func Scan(text string, rules *Rules) []model.Occurrence {
	return NewScanner(nil, rules).Scan(text)
}
