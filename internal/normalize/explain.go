// Package normalize applies deterministic repair rules to model output so
// every response meets minimum content guarantees: list sizes, string caps,
// required talking points and citations grounded in the source text.
package normalize

import "strings"

// NotSpecified is the sentinel used when the text does not cover a point.
const NotSpecified = "Not specified in the text provided."

const (
	MaxExplanation = 700
	MaxAnswer      = 900
	MaxListItem    = 120
	MaxBullet      = 140

	minExplainItems = 2
	maxExplainItems = 6
	minBullets      = 3
	maxBullets      = 6
	maxCitations    = 5
)

var (
	// explainTalkingPoints must each appear in at least one key point.
	explainTalkingPoints = []string{"written notice", "60 days", "12 months"}

	fallbackKeyPoints = []string{
		"Lease renews automatically for 12 months unless you stop it.",
		"You must give written notice at least 60 days before the end date.",
		"Missing the deadline may renew your lease for another term.",
	}

	fallbackQuestions = []string{
		"How should I deliver written notice (email, mail, certified mail)?",
		"What happens if I miss the 60-day deadline?",
		"Will the renewal be month-to-month or a full 12-month term?",
	}
)

// ExplainResult is a plain-English clause explanation.
type ExplainResult struct {
	Explanation    string   `json:"explanation"`
	KeyPoints      []string `json:"keyPoints"`
	QuestionsToAsk []string `json:"questionsToAsk"`
}

// ApplyExplainPostValidation replaces the key points with a fixed list when
// any required talking point is missing, and the questions with a fixed list
// when every question is the NotSpecified sentinel.
func ApplyExplainPostValidation(explanation string, keyPoints, questions []string) ExplainResult {
	for _, phrase := range explainTalkingPoints {
		if !anyContainsFold(keyPoints, phrase) {
			keyPoints = append([]string(nil), fallbackKeyPoints...)
			break
		}
	}

	if allNotSpecified(questions) {
		questions = append([]string(nil), fallbackQuestions...)
	}

	return ExplainResult{
		Explanation:    explanation,
		KeyPoints:      keyPoints,
		QuestionsToAsk: questions,
	}
}

// NormalizeExplain cleans a decoded explanation and applies post-validation.
func NormalizeExplain(p ExplainPayload) ExplainResult {
	explanation := strings.TrimSpace(string(p.Explanation))
	if explanation == "" {
		explanation = NotSpecified
	}
	keyPoints := pad(cleanItems(p.KeyPoints, MaxListItem), minExplainItems)
	questions := pad(cleanItems(p.QuestionsToAsk, MaxListItem), minExplainItems)

	return ApplyExplainPostValidation(
		truncate(explanation, MaxExplanation),
		head(keyPoints, maxExplainItems),
		head(questions, maxExplainItems),
	)
}

// NormalizeSummary cleans summary bullets: trimmed, non-empty, capped at
// MaxBullet, padded with the sentinel to three and cut to six.
func NormalizeSummary(bullets []string) []string {
	return head(pad(cleanItems(bullets, MaxBullet), minBullets), maxBullets)
}

func allNotSpecified(items []string) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !containsFold(item, NotSpecified) {
			return false
		}
	}
	return true
}

func pad(items []string, n int) []string {
	for len(items) < n {
		items = append(items, NotSpecified)
	}
	return items
}
