package detect

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Info は検出した言語 ID を保持します。空文字は未検出を表します。
type Info struct {
	Name string
}

// FromPathAndContent はファイル名、拡張子、shebang の順に言語を推定します。
func FromPathAndContent(p string, data []byte) Info {
	if name := detectByPath(p); name != "" {
		if name == "objective-c" && strings.EqualFold(filepath.Ext(p), ".m") && looksLikeMatlab(data) {
			return Info{Name: "matlab"}
		}
		return Info{Name: name}
	}
	return Info{Name: detectByShebang(data)}
}

func detectByPath(p string) string {
	base := strings.ToLower(filepath.Base(p))
	if lang, ok := basenameLanguages[base]; ok {
		return lang
	}
	ext := filepath.Ext(base)
	if ext == "" {
		return ""
	}
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	// Dockerfile.dev, Makefile.common など
	stem := strings.TrimSuffix(base, ext)
	if lang, ok := basenameLanguages[stem]; ok {
		return lang
	}
	return ""
}

func detectByShebang(data []byte) string {
	if !bytes.HasPrefix(data, []byte("#!")) {
		return ""
	}
	end := bytes.IndexByte(data, '\n')
	if end == -1 {
		end = len(data)
	}
	fields := strings.Fields(strings.ToLower(string(data[2:end])))
	if len(fields) == 0 {
		return ""
	}
	interp := filepath.Base(fields[0])
	if interp == "env" {
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") {
				interp = f
				break
			}
		}
	}
	interp = strings.TrimRight(interp, "0123456789.")
	return shebangLanguages[interp]
}

// NormalizeLangName は別名を正規の言語 ID に揃えます。
func NormalizeLangName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := langAliases[n]; ok {
		return canon
	}
	return n
}

// MatchesLang は info が allow のいずれかに一致するかを返します。allow が空なら常に true です。
func MatchesLang(info Info, allow []string) bool {
	if len(allow) == 0 {
		return true
	}
	detected := NormalizeLangName(info.Name)
	if detected == "" {
		return false
	}
	for _, raw := range allow {
		if NormalizeLangName(raw) == detected {
			return true
		}
	}
	return false
}

// CanonicalDetectLangs は言語リストを正規化し、順序を保って重複を除きます。
func CanonicalDetectLangs(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, raw := range values {
		norm := NormalizeLangName(raw)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

func looksLikeMatlab(data []byte) bool {
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	for _, line := range strings.Split(string(sample), "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if lower == "" || strings.HasPrefix(lower, "%") {
			continue
		}
		if strings.HasPrefix(lower, "@interface") || strings.HasPrefix(lower, "@implementation") || strings.HasPrefix(lower, "#import") {
			return false
		}
		if strings.HasPrefix(lower, "function") || strings.HasPrefix(lower, "classdef") {
			return true
		}
	}
	return false
}

var basenameLanguages = map[string]string{
	"makefile":       "make",
	"gnumakefile":    "make",
	"justfile":       "make",
	"cmakelists.txt": "cmake",
	"dockerfile":     "dockerfile",
	"containerfile":  "dockerfile",
	"gemfile":        "ruby",
	"rakefile":       "ruby",
	"podfile":        "ruby",
	"vagrantfile":    "ruby",
	"jenkinsfile":    "groovy",
	"build":          "starlark",
	"workspace":      "starlark",
	".bashrc":        "shell",
	".zshrc":         "shell",
	".profile":       "shell",
	".env":           "dotenv",
	".gitignore":     "dotenv",
	".editorconfig":  "ini",
}

var extensionLanguages = map[string]string{
	".c":          "c",
	".h":          "c",
	".cc":         "cpp",
	".cpp":        "cpp",
	".cxx":        "cpp",
	".hh":         "cpp",
	".hpp":        "cpp",
	".hxx":        "cpp",
	".m":          "objective-c",
	".mm":         "objective-cpp",
	".go":         "go",
	".js":         "javascript",
	".mjs":        "javascript",
	".cjs":        "javascript",
	".jsx":        "javascriptreact",
	".ts":         "typescript",
	".mts":        "typescript",
	".cts":        "typescript",
	".tsx":        "typescriptreact",
	".py":         "python",
	".pyi":        "python",
	".pyw":        "python",
	".pyx":        "cython",
	".rb":         "ruby",
	".rake":       "ruby",
	".gemspec":    "ruby",
	".php":        "php",
	".cs":         "csharp",
	".fs":         "fsharp",
	".fsx":        "fsharp",
	".java":       "java",
	".kt":         "kotlin",
	".kts":        "kotlin",
	".scala":      "scala",
	".groovy":     "groovy",
	".gradle":     "gradle",
	".swift":      "swift",
	".rs":         "rust",
	".dart":       "dart",
	".zig":        "zig",
	".erl":        "erlang",
	".hrl":        "erlang",
	".ex":         "elixir",
	".exs":        "elixir",
	".hs":         "haskell",
	".elm":        "elm",
	".ml":         "ocaml",
	".mli":        "ocaml",
	".clj":        "clojure",
	".cljs":       "clojure",
	".edn":        "clojure",
	".lisp":       "common-lisp",
	".cl":         "common-lisp",
	".el":         "common-lisp",
	".scm":        "scheme",
	".rkt":        "racket",
	".pas":        "pascal",
	".pp":         "pascal",
	".adb":        "ada",
	".ads":        "ada",
	".lua":        "lua",
	".r":          "r",
	".jl":         "julia",
	".nim":        "nim",
	".cr":         "crystal",
	".pl":         "perl",
	".pm":         "perl",
	".sh":         "shell",
	".bash":       "shell",
	".zsh":        "shell",
	".ksh":        "shell",
	".fish":       "fish",
	".ps1":        "powershell",
	".psm1":       "powershell",
	".bat":        "batch",
	".cmd":        "batch",
	".sql":        "sql",
	".psql":       "sql",
	".yaml":       "yaml",
	".yml":        "yaml",
	".toml":       "toml",
	".ini":        "ini",
	".cfg":        "ini",
	".properties": "properties",
	".jsonc":      "jsonc",
	".json5":      "jsonc",
	".md":         "markdown",
	".markdown":   "markdown",
	".tex":        "latex",
	".sty":        "latex",
	".html":       "html",
	".htm":        "html",
	".xml":        "xml",
	".svg":        "xml",
	".vue":        "vue",
	".svelte":     "svelte",
	".css":        "css",
	".scss":       "scss",
	".less":       "less",
	".proto":      "proto",
	".thrift":     "thrift",
	".graphql":    "graphql",
	".gql":        "graphql",
	".hcl":        "hcl",
	".tf":         "terraform",
	".tfvars":     "terraform",
	".cue":        "cue",
	".bzl":        "starlark",
	".star":       "starlark",
	".mk":         "make",
	".cmake":      "cmake",
	".v":          "verilog",
	".sv":         "systemverilog",
	".asm":        "asm",
	".s":          "asm",
	".pro":        "prolog",
	".coffee":     "coffeescript",
}

var langAliases = map[string]string{
	"c#":          "csharp",
	"cs":          "csharp",
	"c++":         "cpp",
	"js":          "javascript",
	"jsx":         "javascriptreact",
	"ts":          "typescript",
	"tsx":         "typescriptreact",
	"kt":          "kotlin",
	"rb":          "ruby",
	"py":          "python",
	"ps1":         "powershell",
	"bash":        "shell",
	"sh":          "shell",
	"zsh":         "shell",
	"tf":          "terraform",
	"yml":         "yaml",
	"md":          "markdown",
	"tex":         "latex",
	"elisp":       "common-lisp",
	"lisp":        "common-lisp",
	"hs":          "haskell",
	"shellscript": "shell",
	"bat":         "batch",
	"makefile":    "make",
}

var shebangLanguages = map[string]string{
	"python":  "python",
	"pypy":    "python",
	"node":    "javascript",
	"deno":    "typescript",
	"bun":     "javascript",
	"perl":    "perl",
	"ruby":    "ruby",
	"php":     "php",
	"bash":    "shell",
	"sh":      "shell",
	"dash":    "shell",
	"zsh":     "shell",
	"ksh":     "shell",
	"fish":    "fish",
	"pwsh":    "powershell",
	"lua":     "lua",
	"luajit":  "lua",
	"rscript": "r",
	"julia":   "julia",
	"guile":   "scheme",
	"racket":  "racket",
	"escript": "erlang",
	"elixir":  "elixir",
	"make":    "make",
}
