package normalize

import (
	"strings"

	"github.com/gonkalabs/termsplain/internal/flags"
)

const (
	searchLead  = 40
	searchTrail = 60
	// MaxCitation caps a single grounding citation.
	MaxCitation = 120
)

// ExtractBasedOnSnippets locates the earliest case-insensitive occurrence of
// any keyword in text and returns the surrounding excerpt, capped at
// MaxCitation bytes by plain truncation. The first keyword scanned wins a
// tie. It returns nil when no keyword occurs.
func ExtractBasedOnSnippets(text string, keywords []string) []string {
	start, end := -1, -1
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		s, e := flags.IndexFold(text, kw)
		if s >= 0 && (start == -1 || s < start) {
			start, end = s, e
		}
	}
	if start == -1 {
		return nil
	}

	from := max(0, start-searchLead)
	to := min(len(text), end+searchTrail)
	for from > 0 && !isRuneStart(text, from) {
		from--
	}
	for to < len(text) && !isRuneStart(text, to) {
		to++
	}
	snippet := truncate(strings.TrimSpace(text[from:to]), MaxCitation)
	return []string{snippet}
}

func isRuneStart(s string, i int) bool {
	return runeCut(s, i) == i
}
