package colorutil

import "testing"

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "#F13B5F", want: "#f13b5f"},
		{in: "3fc1d0", want: "#3fc1d0"},
		{in: "#fff", want: "#ffffff"},
		{in: " #1a1c22 ", want: "#1a1c22"},
		{in: "", err: true},
		{in: "#12345", err: true},
		{in: "red", err: true},
	}
	for _, tc := range cases {
		got, err := ParseHex(tc.in)
		if tc.err {
			if err == nil {
				t.Fatalf("ParseHex(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseHex(%q) unexpected error: %v", tc.in, err)
		}
		if got.Hex() != tc.want {
			t.Fatalf("ParseHex(%q)=%s want %s", tc.in, got.Hex(), tc.want)
		}
	}
}

func TestContrastRatio(t *testing.T) {
	cases := []struct {
		name     string
		fg, bg   string
		minRatio float64
	}{
		{"blackOnWhite", "#000000", "#ffffff", 20.9},
		{"whiteOnBlack", "#ffffff", "#000000", 20.9},
		{"darkRedOnWhite", "#b91c1c", "#ffffff", 4.5},
		{"badgeText", "#1a1c22", "#f5a524", 4.5},
	}
	for _, tc := range cases {
		ratio := ContrastRatio(MustHex(tc.fg), MustHex(tc.bg))
		if ratio < tc.minRatio {
			t.Fatalf("%s contrast ratio %.2f < %.2f", tc.name, ratio, tc.minRatio)
		}
	}
}

func TestAutoTextColor(t *testing.T) {
	cases := []struct {
		name string
		bg   string
		want string
	}{
		{"lightBackground", "#fff7ed", "#000000"},
		{"darkBackground", "#0f172a", "#ffffff"},
		{"medium", "#78716c", "#ffffff"},
	}
	for _, tc := range cases {
		got := AutoTextColor(MustHex(tc.bg))
		if got.Hex() != tc.want {
			t.Fatalf("%s AutoTextColor=%s want %s", tc.name, got.Hex(), tc.want)
		}
	}
}

func TestEnsureContrastPrefersAutoWhenNeeded(t *testing.T) {
	bg := MustHex("#ffffff")
	fg := MustHex("#ff0000")
	ensured := EnsureContrast(fg, bg, 4.5)
	if ContrastRatio(ensured, bg) < 4.5 {
		t.Fatalf("expected EnsureContrast to meet ratio, got %.2f", ContrastRatio(ensured, bg))
	}
	keep := MustHex("#1a1c22")
	if got := EnsureContrast(keep, MustHex("#3fc1d0"), 0); got != keep {
		t.Fatalf("sufficient contrast should keep fg, got %s", got.Hex())
	}
}

func TestTint(t *testing.T) {
	base := MustHex("#000000")
	over := MustHex("#ffffff")
	if got := Tint(base, over, 0); got.Hex() != "#000000" {
		t.Fatalf("alpha=0 should keep base, got %s", got.Hex())
	}
	if got := Tint(base, over, 1); got.Hex() != "#ffffff" {
		t.Fatalf("alpha=1 should yield over, got %s", got.Hex())
	}
	r, g, b := Tint(base, over, 0.5).RGB255()
	if r != g || g != b || r < 120 || r > 135 {
		t.Fatalf("half blend should be mid grey, got %d,%d,%d", r, g, b)
	}
}
