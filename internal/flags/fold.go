package flags

import (
	"unicode"
	"unicode/utf8"
)

// IndexFold returns the byte span [start, end) of the first case-insensitive
// occurrence of sub in s, or (-1, -1). The search runs on s itself rather
// than on a lowercased copy, so the offsets are valid for the original text
// even when case folding changes a rune's encoded width.
func IndexFold(s, sub string) (int, int) {
	if sub == "" {
		return 0, 0
	}
	for i := 0; i < len(s); {
		if n := prefixFold(s[i:], sub); n > 0 {
			return i, i + n
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, -1
}

// prefixFold reports how many bytes of s match sub case-insensitively, or 0
// when s does not start with sub.
func prefixFold(s, sub string) int {
	i, j := 0, 0
	for j < len(sub) {
		if i >= len(s) {
			return 0
		}
		r1, n1 := utf8.DecodeRuneInString(s[i:])
		r2, n2 := utf8.DecodeRuneInString(sub[j:])
		if r1 != r2 && !equalFoldRune(r1, r2) {
			return 0
		}
		i += n1
		j += n2
	}
	return i
}

func equalFoldRune(a, b rune) bool {
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}
