package engine

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phyten/humanpp/internal/model"
)

// RuleOptions はマーカー判定規則の入力です。
type RuleOptions struct {
	// Enabled が nil ならすべての種別を有効にする。空スライスはすべて無効。
	Enabled []model.MarkerType
	// Keywords が false ならキーワード別名を使わない。
	Keywords bool
	// Aliases は種別ごとの別名の上書き。キーが無い種別は既定の別名を使う。
	Aliases map[model.MarkerType][]string
}

type aliasRule struct {
	typ  model.MarkerType
	word string
}

// Rules は不変のマーカー判定規則です。複数の goroutine から同時に使えます。
//
// 句読点トークンは常にキーワード別名より先に試します。別名同士は
// 種別の順（Intervention, Uncertainty, Directive）、次に別名リストの順で試し、
// 最初に成立したものを採用します。
type Rules struct {
	enabled [3]bool
	tokens  []model.MarkerType
	aliases []aliasRule
}

// HitSpan はコメント本文内でのマーカー位置です（バイト単位）。
type HitSpan struct {
	Type  model.MarkerType
	Start int
	End   int
}

// NewRules は opts から Rules を組み立てます。
func NewRules(opts RuleOptions) *Rules {
	r := &Rules{}
	enabled := opts.Enabled
	if enabled == nil {
		enabled = model.MarkerTypes
	}
	for _, t := range enabled {
		if int(t) >= 0 && int(t) < len(r.enabled) {
			r.enabled[t] = true
		}
	}
	for _, t := range model.MarkerTypes {
		if !r.enabled[t] {
			continue
		}
		r.tokens = append(r.tokens, t)
	}
	if !opts.Keywords {
		return r
	}
	for _, t := range r.tokens {
		words, ok := opts.Aliases[t]
		if !ok {
			words = t.Aliases()
		}
		for _, w := range words {
			w = strings.TrimSpace(w)
			if w == "" || strings.IndexFunc(w, unicode.IsSpace) >= 0 {
				continue
			}
			r.aliases = append(r.aliases, aliasRule{typ: t, word: w})
		}
	}
	return r
}

// DefaultRules は全種別と既定の別名を有効にした Rules です。
func DefaultRules() *Rules {
	return NewRules(RuleOptions{Keywords: true})
}

// Enabled は種別が有効かを返します。
func (r *Rules) Enabled(t model.MarkerType) bool {
	if r == nil || int(t) < 0 || int(t) >= len(r.enabled) {
		return false
	}
	return r.enabled[t]
}

// MatchMarker は commentText の先頭（空白は読み飛ばす）にマーカーがあるかを判定します。
// マーカーの直後は空白か文字列末尾でなければなりません。別名は大文字小文字を区別せず、
// 直後にコロンを 1 つ置けます。End は直後の空白を最大 1 文字含みます。
func (r *Rules) MatchMarker(commentText string) (HitSpan, bool) {
	if r == nil {
		return HitSpan{}, false
	}
	start := len(commentText) - len(strings.TrimLeftFunc(commentText, unicode.IsSpace))
	rest := commentText[start:]
	if rest == "" {
		return HitSpan{}, false
	}
	for _, t := range r.tokens {
		tok := t.Token()
		if !strings.HasPrefix(rest, tok) {
			continue
		}
		if end, ok := boundary(commentText, start+len(tok)); ok {
			return HitSpan{Type: t, Start: start, End: end}, true
		}
	}
	for _, a := range r.aliases {
		n := len(a.word)
		if len(rest) < n || !strings.EqualFold(rest[:n], a.word) {
			continue
		}
		pos := start + n
		if pos < len(commentText) && commentText[pos] == ':' {
			pos++
		}
		if end, ok := boundary(commentText, pos); ok {
			return HitSpan{Type: a.typ, Start: start, End: end}, true
		}
	}
	return HitSpan{}, false
}

// boundary は pos が文字列末尾か空白の手前であることを確かめ、
// 空白 1 文字ぶん進めた終端を返します。
func boundary(s string, pos int) (int, bool) {
	if pos >= len(s) {
		return len(s), true
	}
	r, size := utf8.DecodeRuneInString(s[pos:])
	if !unicode.IsSpace(r) {
		return 0, false
	}
	return pos + size, true
}
