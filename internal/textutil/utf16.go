package textutil

import (
	"strings"
	"unicode/utf8"
)

// UTF16Len returns the number of UTF-16 code units needed to encode s.
func UTF16Len(s string) int {
	return UTF16Offset(s, len(s))
}

// UTF16Offset converts a byte index within s to a UTF-16 column.
// Indices outside s are clamped.
func UTF16Offset(s string, byteIdx int) int {
	if byteIdx <= 0 {
		return 0
	}
	if byteIdx > len(s) {
		byteIdx = len(s)
	}
	units := 0
	for i := 0; i < byteIdx; {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return units
}

// ByteOffset converts a UTF-16 column within s to a byte index. A column
// that falls inside a surrogate pair resolves to the start of that rune.
func ByteOffset(s string, col int) int {
	if col <= 0 {
		return 0
	}
	units := 0
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > col {
			break
		}
		units += need
		i += size
		if units == col {
			break
		}
	}
	return i
}

// SplitLines splits text on '\n' and drops one trailing '\r' per line.
// An empty text yields a single empty line, matching how editors count lines.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
