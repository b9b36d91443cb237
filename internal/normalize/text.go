package normalize

import (
	"strings"
	"unicode/utf8"
)

// SafeTrim trims surrounding whitespace and truncates to at most max bytes,
// never splitting a UTF-8 sequence. No marker is added.
func SafeTrim(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:runeCut(s, max)]
}

// IsEmpty reports whether s is empty or whitespace only.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// truncate cuts s to max bytes and trims the result. It is the plain cap
// applied to generated fields.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:runeCut(s, max)])
}

// runeCut returns the largest rune boundary <= i.
func runeCut(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// cleanItems trims every item, drops empty ones and caps each at max bytes.
func cleanItems(items []string, max int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, truncate(item, max))
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyContainsFold(items []string, sub string) bool {
	for _, item := range items {
		if containsFold(item, sub) {
			return true
		}
	}
	return false
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
