// SPDX-License-Identifier: GPL-3.0-or-later

package dbgp

import "strings"

// QuoteArg quotes v for use as a DBGp command argument value if it
// contains whitespace, a double quote, or a backslash. A quoted value is
// wrapped in double quotes with inner backslashes and quotes
// backslash-escaped; an unquoted value is returned unchanged.
func QuoteArg(v string) string {
	if !needsQuoting(v) {
		return v
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range []byte(v) {
		if c == '\\' || c == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuoting(v string) bool {
	for _, c := range []byte(v) {
		switch c {
		case ' ', '\t', '\n', '\r', '"', '\\':
			return true
		}
	}
	return false
}

// UnquoteArg reverses [QuoteArg]: given a possibly-quoted argument value
// as it appears on the wire, it returns the original value.
func UnquoteArg(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	inner := v[1 : len(v)-1]
	var b strings.Builder
	escaped := false
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if !escaped && c == '\\' {
			escaped = true
			continue
		}
		b.WriteByte(c)
		escaped = false
	}
	return b.String()
}
