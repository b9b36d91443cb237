package redact

import "regexp"

// Span describes a sensitive substring detected within a text.
type Span struct {
	Start int    // byte offset of the first character (UTF-8)
	End   int    // byte offset one past the last character
	Label string // e.g. "EMAIL", "PHONE"
}

// Classifier detects sensitive spans in a text string.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(text string) []Span
}

// PatternClassifier reports every match of a regular expression.
type PatternClassifier struct {
	Label string
	Re    *regexp.Regexp
}

func (c PatternClassifier) Classify(text string) []Span {
	locs := c.Re.FindAllStringIndex(text, -1)
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, Span{Start: loc[0], End: loc[1], Label: c.Label})
	}
	return spans
}

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// 3-3-4 digit groups with separators; dates and amounts do not fit.
	phoneRe = regexp.MustCompile(`(?:\+?1[\s.-]?)?\(?\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}`)
)

// ContactClassifiers returns the built-in e-mail and phone detectors.
func ContactClassifiers() []Classifier {
	return []Classifier{
		PatternClassifier{Label: "EMAIL", Re: emailRe},
		PatternClassifier{Label: "PHONE", Re: phoneRe},
	}
}
