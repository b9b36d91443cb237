// Package redact replaces personal contact details in lease text with stable
// placeholder tokens before the text is sent to a model, and restores the
// originals in whatever comes back.
//
// Usage:
//
//	r := redact.New(redact.ContactClassifiers()...)
//	safe, tm := r.Redact(lease)
//	// send safe to the model
//	reply = tm.Restore(reply)
package redact

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync/atomic"
)

// globalCounter generates unique token IDs across all requests in the process.
var globalCounter atomic.Uint64

// TokenMap holds the bidirectional mapping for one request lifecycle.
// It is safe to read from multiple goroutines once Redact has returned.
type TokenMap struct {
	toToken   map[string]string // original value → «TOKEN_XXXXXX»
	fromToken map[string]string // «TOKEN_XXXXXX» → original value
}

func newTokenMap() *TokenMap {
	return &TokenMap{
		toToken:   make(map[string]string),
		fromToken: make(map[string]string),
	}
}

// register records a mapping and returns the placeholder token.
// If the original was already registered, the existing token is returned.
func (m *TokenMap) register(original string) string {
	if tok, ok := m.toToken[original]; ok {
		return tok
	}
	tok := fmt.Sprintf("«TOKEN_%06d»", globalCounter.Add(1))
	m.toToken[original] = tok
	m.fromToken[tok] = original
	return tok
}

// Restore replaces all placeholder tokens in text with their original values.
// A nil TokenMap returns text unchanged.
func (m *TokenMap) Restore(text string) string {
	if m == nil {
		return text
	}
	for tok, orig := range m.fromToken {
		text = strings.ReplaceAll(text, tok, orig)
	}
	return text
}

// Count returns the number of distinct values that were redacted.
func (m *TokenMap) Count() int {
	if m == nil {
		return 0
	}
	return len(m.toToken)
}

// tokenPlaceholderRe matches our own markers so they are never re-redacted.
var tokenPlaceholderRe = regexp.MustCompile(`«TOKEN_\d+»`)

// Redactor applies an ordered list of classifiers.
type Redactor struct {
	classifiers []Classifier
}

// New creates a Redactor.
func New(classifiers ...Classifier) *Redactor {
	return &Redactor{classifiers: classifiers}
}

// Redact replaces every detected span with a placeholder token.
func (r *Redactor) Redact(original string) (string, *TokenMap) {
	tm := newTokenMap()

	var spans []Span
	for _, c := range r.classifiers {
		spans = append(spans, c.Classify(original)...)
	}
	if len(spans) == 0 {
		return original, tm
	}

	spans = validSpans(original, spans)
	slices.SortFunc(spans, func(a, b Span) int { return b.Start - a.Start })
	spans = deduplicateSpans(spans)

	text := original
	for _, sp := range spans {
		tok := tm.register(text[sp.Start:sp.End])
		slog.Debug("redact: replaced", "label", sp.Label, "token", tok)
		text = text[:sp.Start] + tok + text[sp.End:]
	}
	return text, tm
}

// wordBoundaryBytes are bytes that delimit tokens/words.
var wordBoundaryBytes = func() [256]bool {
	var t [256]bool
	for _, b := range []byte(" \t\n\r<>(),;:[]{}\"'`.!?") {
		t[b] = true
	}
	return t
}()

// validSpans filters out spans with invalid offsets, placeholder tokens, or
// spans that land in the middle of a larger word.
func validSpans(text string, spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, sp := range spans {
		if sp.Start < 0 || sp.End > len(text) || sp.Start >= sp.End {
			continue
		}
		if !isRuneBoundary(text, sp.Start) || !isRuneBoundary(text, sp.End) {
			continue
		}
		if tokenPlaceholderRe.MatchString(text[sp.Start:sp.End]) {
			continue
		}
		if sp.Start > 0 && !wordBoundaryBytes[text[sp.Start-1]] {
			continue
		}
		if sp.End < len(text) && !wordBoundaryBytes[text[sp.End]] {
			continue
		}
		out = append(out, sp)
	}
	return out
}

// deduplicateSpans removes overlapping spans (assumes sorted descending by Start).
func deduplicateSpans(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	lastStart := -1
	for _, sp := range spans {
		if lastStart == -1 || sp.End <= lastStart {
			out = append(out, sp)
			lastStart = sp.Start
		}
	}
	return out
}

func isRuneBoundary(s string, i int) bool {
	if i == 0 || i == len(s) {
		return true
	}
	return s[i]&0xC0 != 0x80
}
