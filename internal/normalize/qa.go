package normalize

import "strings"

// Confidence is how directly the lease answers a question.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// NoClauseFound is the citation used when nothing in the text applies.
const NoClauseFound = "No clause found about this in provided text"

var (
	terminationVocabulary = []string{"early termination fee", "termination fee", "early termination"}

	earlyDepartureIntents = []string{
		"leave early",
		"early termination",
		"terminate early",
		"break the lease",
		"breaking the lease",
	}

	earlyTerminationMarkers = []string{"early termination", "termination fee"}
)

const earlyTerminationFee = "early termination fee"

// QAResult is a grounded answer to a question about the lease.
type QAResult struct {
	Answer     string     `json:"answer"`
	Confidence Confidence `json:"confidence"`
	BasedOn    []string   `json:"basedOn"`
}

// ParseConfidence maps anything other than low, medium or high to low.
func ParseConfidence(s string) Confidence {
	switch c := Confidence(s); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c
	}
	return ConfidenceLow
}

// NormalizeQA cleans a decoded answer and grounds its citations in text.
//
// Citations that are missing or consist only of the NotSpecified sentinel
// are replaced by a deterministic search for termination-fee wording. An
// unanswered question with no citation gets NoClauseFound. A question about
// leaving early, asked of a lease that mentions early termination, is
// answered with high confidence and its citations are re-grounded around the
// most specific termination phrase. The first 120 bytes of the text are the
// citation of last resort.
func NormalizeQA(question, text string, p QAPayload) QAResult {
	answer := strings.TrimSpace(string(p.Answer))
	if answer == "" {
		answer = NotSpecified
	}
	answer = truncate(answer, MaxAnswer)
	confidence := ParseConfidence(string(p.Confidence))
	basedOn := head(cleanItems(p.BasedOn, MaxCitation), maxCitations)

	if len(basedOn) == 0 || allNotSpecified(basedOn) {
		if snippets := ExtractBasedOnSnippets(text, terminationVocabulary); len(snippets) > 0 {
			basedOn = head(snippets, maxCitations)
		}
	}

	if containsFold(answer, NotSpecified) && len(basedOn) == 0 {
		basedOn = []string{NoClauseFound}
	}

	if isEarlyDepartureQuestion(question) && mentionsEarlyTermination(text) {
		confidence = ConfidenceHigh
		basedOn = regroundEarlyTermination(text, basedOn)
	}

	if len(basedOn) == 0 && strings.TrimSpace(text) != "" {
		basedOn = []string{strings.TrimSpace(text[:runeCut(text, MaxCitation)])}
	}

	return QAResult{
		Answer:     answer,
		Confidence: confidence,
		BasedOn:    head(basedOn, maxCitations),
	}
}

func isEarlyDepartureQuestion(question string) bool {
	for _, intent := range earlyDepartureIntents {
		if containsFold(question, intent) {
			return true
		}
	}
	return false
}

func mentionsEarlyTermination(text string) bool {
	for _, m := range earlyTerminationMarkers {
		if containsFold(text, m) {
			return true
		}
	}
	return false
}

// regroundEarlyTermination puts a termination-fee excerpt in front of the
// existing citations. An excerpt naming the exact fee replaces them.
func regroundEarlyTermination(text string, basedOn []string) []string {
	snippets := ExtractBasedOnSnippets(text, terminationVocabulary)
	switch {
	case len(snippets) == 0:
		return basedOn
	case anyContainsFold(snippets, earlyTerminationFee):
		return head(snippets, maxCitations)
	case len(basedOn) == 0:
		return head(snippets, maxCitations)
	case !anyContainsFold(basedOn, earlyTerminationFee):
		merged := append(append([]string(nil), snippets[0]), basedOn...)
		return head(merged, maxCitations)
	}
	return basedOn
}
