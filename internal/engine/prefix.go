package engine

import (
	"regexp"
	"strings"
)

// Family はコメント導入子の系統（言語ファミリー）です。
type Family int

const (
	FamilySlash     Family = iota // ///, //!, //
	FamilyHash                    // ##, #
	FamilyDash                    // --
	FamilySemicolon               // ;;, ;
	FamilyBlock                   // /**, /*, *
	FamilyMarkup                  // <!--
	FamilyPercent                 // %%, %
	FamilyBatch                   // REM, ::
	FamilyParen                   // (*
	FamilyBrace                   // {-
)

type prefixPattern struct {
	family Family
	intro  string
	re     *regexp.Regexp
	// 導入子の直後がこの文字列なら一致させない（空なら制約なし）。
	notBefore string
}

func newPrefixPattern(family Family, intro string) prefixPattern {
	return prefixPattern{
		family: family,
		intro:  intro,
		re:     regexp.MustCompile(`^(\s*)(` + intro + `)`),
	}
}

func (p prefixPattern) except(next string) prefixPattern {
	p.notBefore = next
	return p
}

// 長い導入子は、その接頭辞になっている短い導入子より先に試す。
var prefixPatterns = []prefixPattern{
	newPrefixPattern(FamilySlash, `///`),
	newPrefixPattern(FamilySlash, `//!`).except("!"),
	newPrefixPattern(FamilySlash, `//`),
	newPrefixPattern(FamilyHash, `##`),
	newPrefixPattern(FamilyHash, `#`),
	newPrefixPattern(FamilyDash, `--`),
	newPrefixPattern(FamilySemicolon, `;;`),
	newPrefixPattern(FamilySemicolon, `;`),
	newPrefixPattern(FamilyBlock, `/\*\*`),
	newPrefixPattern(FamilyBlock, `/\*`),
	newPrefixPattern(FamilyBlock, `\*`),
	newPrefixPattern(FamilyMarkup, `<!--`),
	newPrefixPattern(FamilyPercent, `%%`),
	newPrefixPattern(FamilyPercent, `%`),
	newPrefixPattern(FamilyBatch, `(?i:REM)\s`),
	newPrefixPattern(FamilyBatch, `::`),
	newPrefixPattern(FamilyParen, `\(\*`),
	newPrefixPattern(FamilyBrace, `\{-`),
}

// PrefixMatch は行頭コメント導入子の位置です（バイト単位）。
// Indent は先頭空白の長さ、Length は空白と導入子を合わせた長さです。
type PrefixMatch struct {
	Indent int
	Length int
}

// PrefixMatcher は優先順に並んだ導入子パターンの集合です。ゼロ値は何にも一致しません。
type PrefixMatcher struct {
	patterns []prefixPattern
}

var allPrefixes = &PrefixMatcher{patterns: prefixPatterns}

// DefaultPrefixMatcher はすべての系統を対象にする PrefixMatcher を返します。
func DefaultPrefixMatcher() *PrefixMatcher {
	return allPrefixes
}

// NewPrefixMatcher は指定した系統だけを対象にする PrefixMatcher を作ります。
// 優先順は系統の指定順ではなく既定の順序に従います。系統が空なら全系統を対象にします。
func NewPrefixMatcher(families ...Family) *PrefixMatcher {
	if len(families) == 0 {
		return allPrefixes
	}
	want := make(map[Family]struct{}, len(families))
	for _, f := range families {
		want[f] = struct{}{}
	}
	out := make([]prefixPattern, 0, len(prefixPatterns))
	for _, p := range prefixPatterns {
		if _, ok := want[p.family]; ok {
			out = append(out, p)
		}
	}
	return &PrefixMatcher{patterns: out}
}

// MatchPrefix は line がコメント導入子で始まるかを判定します。
// 最初に一致したパターンだけを採用し、後続のパターンは試しません。
// 1 桁目から始まる shebang（#! の直後が ! でないもの）はコメントとみなしません。
// //!! は //! ではなく // と !! に分けて解釈します。
func (m *PrefixMatcher) MatchPrefix(line string) (PrefixMatch, bool) {
	if m == nil || isShebang(line) {
		return PrefixMatch{}, false
	}
	for _, p := range m.patterns {
		loc := p.re.FindStringSubmatchIndex(line)
		if loc == nil || (p.notBefore != "" && strings.HasPrefix(line[loc[1]:], p.notBefore)) {
			continue
		}
		return PrefixMatch{Indent: loc[3], Length: loc[5]}, true
	}
	return PrefixMatch{}, false
}

func isShebang(line string) bool {
	return strings.HasPrefix(line, "#!") && !strings.HasPrefix(line, "#!!")
}
