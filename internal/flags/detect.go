package flags

// MatchSource records which strategy produced a match.
type MatchSource int

const (
	MatchKeyword MatchSource = iota + 1
	MatchRegex
)

func (s MatchSource) String() string {
	switch s {
	case MatchKeyword:
		return "keyword"
	case MatchRegex:
		return "regex"
	}
	return "none"
}

// Match is a half-open byte span [Start, End) into the scanned text.
type Match struct {
	Start  int
	End    int
	Source MatchSource
}

// Finding is the evidence-backed result of one rule matching.
type Finding struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Severity        Severity `json:"severity"`
	EvidenceSnippet string   `json:"evidenceSnippet"`
	WhyItMatters    string   `json:"whyItMatters"`
}

// regexLead is how much earlier (in bytes) a regex match must start than
// the best keyword match before it is preferred as evidence.
const regexLead = 30

// Detect runs the default rules over text.
func Detect(text string) []Finding {
	return DefaultRules().Detect(text)
}

// Detect runs every rule over text and returns one finding per matching
// rule, in rule declaration order. A text that matches nothing yields an
// empty, non-nil slice.
func (rs *RuleSet) Detect(text string) []Finding {
	findings := make([]Finding, 0, len(rs.rules))
	for i := range rs.rules {
		r := &rs.rules[i]
		m, ok := r.match(text)
		if !ok {
			continue
		}
		findings = append(findings, Finding{
			ID:              r.ID,
			Label:           r.Label,
			Severity:        r.Severity,
			EvidenceSnippet: ExtractSnippet(text, m.Start, m.End),
			WhyItMatters:    r.WhyItMatters,
		})
	}
	return findings
}

// match picks the evidence span for r in text.
func (r *Rule) match(text string) (Match, bool) {
	kw, kwOK := r.keywordMatch(text)
	re, reOK := r.regexMatch(text)
	switch {
	case kwOK && reOK:
		if re.Start <= kw.Start-regexLead {
			return re, true
		}
		return kw, true
	case kwOK:
		return kw, true
	case reOK:
		return re, true
	}
	return Match{}, false
}

// keywordMatch returns the earliest keyword occurrence. On equal start
// offsets the longer match wins.
func (r *Rule) keywordMatch(text string) (Match, bool) {
	best := Match{Start: -1}
	for _, kw := range r.Keywords {
		if kw == "" {
			continue
		}
		start, end := IndexFold(text, kw)
		if start < 0 {
			continue
		}
		if best.Start == -1 || start < best.Start || (start == best.Start && end-start > best.End-best.Start) {
			best = Match{Start: start, End: end, Source: MatchKeyword}
		}
	}
	return best, best.Start >= 0
}

// regexMatch returns the first pattern match on the original-case text.
func (r *Rule) regexMatch(text string) (Match, bool) {
	if r.re == nil {
		return Match{}, false
	}
	loc := r.re.FindStringIndex(text)
	if loc == nil {
		return Match{}, false
	}
	return Match{Start: loc[0], End: loc[1], Source: MatchRegex}, true
}
