package termcolor

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/termenv"
)

// ColorMode is the --color setting.
type ColorMode int

const (
	ModeAuto ColorMode = iota
	ModeAlways
	ModeNever
)

var modeNames = [...]string{ModeAuto: "auto", ModeAlways: "always", ModeNever: "never"}

func (m ColorMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return modeNames[ModeAuto]
	}
	return modeNames[m]
}

// Set implements pflag.Value so the mode can be bound to --color directly.
func (m *ColorMode) Set(v string) error {
	parsed, err := ParseMode(v)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m *ColorMode) Type() string { return strings.Join(modeNames[:], "|") }

// ParseMode accepts auto, always or never in any case. Empty means auto.
func ParseMode(v string) (ColorMode, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ModeAuto, nil
	}
	for i, name := range modeNames {
		if v == name {
			return ColorMode(i), nil
		}
	}
	return ModeAuto, fmt.Errorf("unknown color mode: %s", v)
}

// EnvMap turns KEY=VALUE pairs into a map. Later entries win.
func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		k, v, _ := strings.Cut(entry, "=")
		env[k] = v
	}
	return env
}

// environ lets termenv read a captured environment instead of the process one.
type environ map[string]string

func (e environ) Environ() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func (e environ) Getenv(key string) string { return e[key] }

// RendererProfile resolves the color profile for output written to w.
//
// ModeNever yields termenv.Ascii. ModeAlways uses the profile TERM and
// COLORTERM describe, at least ANSI. ModeAuto follows termenv (NO_COLOR,
// CLICOLOR and whether w is a terminal), except that TERM=dumb always
// disables color and FORCE_COLOR or CLICOLOR_FORCE behave like ModeAlways.
func RendererProfile(mode ColorMode, w io.Writer, env map[string]string) termenv.Profile {
	switch mode {
	case ModeNever:
		return termenv.Ascii
	case ModeAlways:
		return forcedProfile(w, env)
	}
	if strings.EqualFold(strings.TrimSpace(env["TERM"]), "dumb") {
		return termenv.Ascii
	}
	out := termenv.NewOutput(w, termenv.WithEnvironment(environ(env)))
	if out.EnvNoColor() {
		return termenv.Ascii
	}
	if forceColor(env["FORCE_COLOR"]) || forceColor(env["CLICOLOR_FORCE"]) {
		return forcedProfile(w, env)
	}
	return out.EnvColorProfile()
}

func forcedProfile(w io.Writer, env map[string]string) termenv.Profile {
	out := termenv.NewOutput(w, termenv.WithEnvironment(environ(env)), termenv.WithTTY(true))
	if p := out.ColorProfile(); p != termenv.Ascii {
		return p
	}
	return termenv.ANSI
}

func forceColor(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0"
}
