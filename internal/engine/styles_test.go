package engine

import "testing"

func TestPrefixMatcherForLanguage(t *testing.T) {
	cases := []struct {
		lang string
		line string
		want bool
	}{
		{"python", "# c", true},
		{"python", "// c", false},
		{"go", "// c", true},
		{"go", " * c", true},
		{"go", "# c", false},
		{"sql", "-- c", true},
		{"sql", "/* c", true},
		{"sql", "# c", false},
		{"haskell", "{- c", true},
		{"ocaml", "(* c", true},
		{"batch", "REM c", true},
		{"batch", ":: c", true},
		{"html", "<!-- c", true},
		{"latex", "% c", true},
		{"common-lisp", ";; c", true},
		{"PYTHON", "# c", true},
		{"unknown-lang", "-- c", true},
		{"", "%% c", true},
	}
	for _, tc := range cases {
		if _, ok := PrefixMatcherFor(tc.lang).MatchPrefix(tc.line); ok != tc.want {
			t.Fatalf("PrefixMatcherFor(%q).MatchPrefix(%q)=%v want %v", tc.lang, tc.line, ok, tc.want)
		}
	}
}

func TestKnownLanguage(t *testing.T) {
	if !KnownLanguage(" Go ") {
		t.Fatal("go should be known")
	}
	if KnownLanguage("brainfuck") {
		t.Fatal("brainfuck should be unknown")
	}
	if _, ok := FamiliesFor(""); ok {
		t.Fatal("empty language should be unknown")
	}
}
