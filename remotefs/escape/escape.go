// Package escape renders remote file names for display, escaping
// control characters and the space the way a shell listing would, and
// provides its exact inverse — grounded on the original tool's
// there/string_escape.py, supplemented into this repo because the
// spec.md distillation dropped it without naming it a Non-goal
// (spec.md §8: "names with spaces and control characters ... the
// escape helper used for display preserves round-trip via its
// inverse").
package escape

import (
	"fmt"
	"strconv"
	"strings"
)

var named = map[byte]string{
	0:  `\0`,
	7:  `\a`,
	8:  `\b`,
	9:  `\t`,
	10: `\n`,
	11: `\v`,
	12: `\f`,
	13: `\r`,
	32: `\ `,
	'\\': `\\`,
}

// Escaped escapes control characters and the literal space so the
// result is safe to print on one line and to split on whitespace.
func Escaped(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if rep, ok := named[c]; ok {
			sb.WriteString(rep)
			continue
		}
		if c < 0x20 || c == 0x7f {
			fmt.Fprintf(&sb, `\x%02x`, c)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// Unescape inverts Escaped, understanding \\, \0, \a, \b, \t, \n, \v,
// \f, \r, a literal escaped space, and \xNN.
func Unescape(text string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(text) {
			return "", fmt.Errorf("escape: dangling backslash at end of %q", text)
		}
		switch text[i] {
		case '\\':
			sb.WriteByte('\\')
		case '0':
			sb.WriteByte(0)
		case 'a':
			sb.WriteByte(7)
		case 'b':
			sb.WriteByte(8)
		case 't':
			sb.WriteByte(9)
		case 'n':
			sb.WriteByte(10)
		case 'v':
			sb.WriteByte(11)
		case 'f':
			sb.WriteByte(12)
		case 'r':
			sb.WriteByte(13)
		case ' ':
			sb.WriteByte(32)
		case 'x':
			if i+2 >= len(text) {
				return "", fmt.Errorf("escape: truncated \\x escape in %q", text)
			}
			n, err := strconv.ParseUint(text[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("escape: bad \\x escape in %q: %w", text, err)
			}
			sb.WriteByte(byte(n))
			i += 2
		default:
			return "", fmt.Errorf("escape: invalid escape '\\%c' in %q", text[i], text)
		}
	}
	return sb.String(), nil
}
