package termcolor

import (
	"github.com/muesli/termenv"

	"github.com/phyten/humanpp/internal/colorutil"
)

// Paint styles text with the hex foreground reduced to profile.
// termenv.Ascii leaves text unchanged; an unparsable color keeps only bold.
func Paint(text, hex string, profile termenv.Profile, bold bool) string {
	if text == "" || profile == termenv.Ascii {
		return text
	}
	s := profile.String(text)
	if bold {
		s = s.Bold()
	}
	if c, err := colorutil.ParseHex(hex); err == nil {
		s = s.Foreground(profile.Color(c.Hex()))
	}
	return s.String()
}
