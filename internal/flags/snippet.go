package flags

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// SnippetWindow is the target width of the context window.
	SnippetWindow = 260
	// SnippetLead is how much context is shown before the match.
	SnippetLead = 120
	// SnippetMax is the hard cap on a rendered snippet, markers included.
	SnippetMax = 300

	ellipsis = "..."
)

var dotRun = regexp.MustCompile(`\.{4,}`)

// ExtractSnippet renders the evidence window around text[start:end].
//
// The window is SnippetWindow bytes wide and starts SnippetLead bytes before
// the match. When it reaches the end of the document it is slid back so it
// stays full width. An ellipsis marks each side where the window stops short
// of the document edge. The result never exceeds SnippetMax bytes, is valid
// UTF-8 and never contains four or more consecutive dots.
//
// Offsets are byte offsets; out-of-range values are clamped.
func ExtractSnippet(text string, start, end int) string {
	n := len(text)
	start = clamp(start, 0, n)
	end = clamp(end, start, n)

	winStart := max(0, start-SnippetLead)
	winEnd := min(n, winStart+SnippetWindow)
	if winEnd == n {
		winStart = max(0, n-SnippetWindow)
	}
	winStart = runeStartAtOrBefore(text, winStart)
	winEnd = runeStartAtOrAfter(text, winEnd)

	snippet := strings.TrimSpace(text[winStart:winEnd])
	if winStart > 0 {
		snippet = ensurePrefixEllipsis(snippet)
	}
	if winEnd < n {
		snippet = ensureSuffixEllipsis(snippet)
	}
	snippet = dotRun.ReplaceAllString(snippet, ellipsis)

	if len(snippet) > SnippetMax {
		cut := runeStartAtOrBefore(snippet, SnippetMax-len(ellipsis))
		snippet = ensureSuffixEllipsis(strings.TrimSpace(snippet[:cut]))
	}
	return snippet
}

// ensurePrefixEllipsis adds a leading marker unless one is already present.
// Stray dots at the edge are folded into the marker.
func ensurePrefixEllipsis(s string) string {
	if strings.HasPrefix(s, ellipsis) {
		return s
	}
	return ellipsis + strings.TrimLeft(s, ".")
}

// ensureSuffixEllipsis is the trailing counterpart of ensurePrefixEllipsis.
func ensureSuffixEllipsis(s string) string {
	if strings.HasSuffix(s, ellipsis) {
		return s
	}
	return strings.TrimRight(s, ".") + ellipsis
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func runeStartAtOrBefore(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func runeStartAtOrAfter(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
