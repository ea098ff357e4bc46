package engine

import "strings"

var (
	familiesC        = []Family{FamilySlash, FamilyBlock}
	familiesHash     = []Family{FamilyHash}
	familiesSQL      = []Family{FamilyDash, FamilyBlock}
	familiesMarkup   = []Family{FamilyMarkup}
	familiesCSS      = []Family{FamilyBlock}
	familiesIni      = []Family{FamilySemicolon, FamilyHash}
	familiesHCL      = []Family{FamilySlash, FamilyHash, FamilyBlock}
	familiesLisp     = []Family{FamilySemicolon}
	familiesHaskell  = []Family{FamilyDash, FamilyBrace}
	familiesML       = []Family{FamilyParen, FamilyBlock}
	familiesPascal   = []Family{FamilySlash, FamilyParen}
	familiesPercent  = []Family{FamilyPercent}
	familiesBatch    = []Family{FamilyBatch}
	familiesDash     = []Family{FamilyDash}
	familiesTemplate = []Family{FamilyMarkup, FamilyBlock}
	familiesPHP      = []Family{FamilySlash, FamilyHash, FamilyBlock}
)

// 言語 ID（LSP の languageId と同じ表記）ごとのコメント系統。
var languageFamilies = map[string][]Family{
	"c":               familiesC,
	"cpp":             familiesC,
	"objective-c":     familiesC,
	"objective-cpp":   familiesC,
	"go":              familiesC,
	"java":            familiesC,
	"csharp":          familiesC,
	"fsharp":          familiesML,
	"scala":           familiesC,
	"kotlin":          familiesC,
	"swift":           familiesC,
	"groovy":          familiesC,
	"dart":            familiesC,
	"rust":            familiesC,
	"zig":             familiesC,
	"typescript":      familiesC,
	"typescriptreact": familiesC,
	"javascript":      familiesC,
	"javascriptreact": familiesC,
	"php":             familiesPHP,
	"proto":           familiesC,
	"thrift":          familiesC,
	"gradle":          familiesC,
	"apex":            familiesC,
	"verilog":         familiesC,
	"systemverilog":   familiesC,
	"jsonc":           familiesC,
	"hcl":             familiesHCL,
	"terraform":       familiesHCL,
	"python":          familiesHash,
	"cython":          familiesHash,
	"starlark":        familiesHash,
	"ruby":            familiesHash,
	"perl":            familiesHash,
	"shell":           familiesHash,
	"fish":            familiesHash,
	"powershell":      familiesHash,
	"r":               familiesHash,
	"julia":           familiesHash,
	"nim":             familiesHash,
	"elixir":          familiesHash,
	"crystal":         familiesHash,
	"coffeescript":    familiesHash,
	"yaml":            familiesHash,
	"toml":            familiesHash,
	"dotenv":          familiesHash,
	"make":            familiesHash,
	"cmake":           familiesHash,
	"dockerfile":      familiesHash,
	"graphql":         familiesHash,
	"cue":             familiesC,
	"ini":             familiesIni,
	"properties":      familiesIni,
	"sql":             familiesSQL,
	"lua":             familiesDash,
	"ada":             familiesDash,
	"elm":             familiesHaskell,
	"haskell":         familiesHaskell,
	"ocaml":           familiesML,
	"pascal":          familiesPascal,
	"erlang":          familiesPercent,
	"latex":           familiesPercent,
	"matlab":          familiesPercent,
	"prolog":          familiesPercent,
	"batch":           familiesBatch,
	"common-lisp":     familiesLisp,
	"scheme":          familiesLisp,
	"racket":          familiesLisp,
	"clojure":         familiesLisp,
	"asm":             familiesLisp,
	"html":            familiesMarkup,
	"xml":             familiesMarkup,
	"markdown":        familiesMarkup,
	"vue":             familiesTemplate,
	"svelte":          familiesTemplate,
	"css":             familiesCSS,
	"scss":            familiesC,
	"less":            familiesC,
}

// FamiliesFor は言語のコメント系統を返します。未知の言語では ok=false です。
func FamiliesFor(lang string) ([]Family, bool) {
	fams, ok := languageFamilies[strings.ToLower(strings.TrimSpace(lang))]
	return fams, ok
}

// PrefixMatcherFor は言語に合わせて絞り込んだ PrefixMatcher を返します。
// 未知または空の言語ではすべての系統を試します。
func PrefixMatcherFor(lang string) *PrefixMatcher {
	fams, ok := FamiliesFor(lang)
	if !ok {
		return DefaultPrefixMatcher()
	}
	return NewPrefixMatcher(fams...)
}

// KnownLanguage は言語別のコメント系統が登録済みかを返します。
func KnownLanguage(lang string) bool {
	_, ok := FamiliesFor(lang)
	return ok
}
