package normalize

import "encoding/json"

// LooseString decodes any JSON value; non-strings become "".
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		*s = ""
		return nil
	}
	*s = LooseString(v)
	return nil
}

// LooseStrings decodes a JSON array whose non-string elements become "".
// Anything other than an array decodes to nil.
type LooseStrings []string

func (s *LooseStrings) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*s = nil
		return nil
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		var v string
		if json.Unmarshal(r, &v) == nil {
			out[i] = v
		}
	}
	*s = out
	return nil
}

// SummaryPayload is the decoded model output for a lease summary.
type SummaryPayload struct {
	SummaryBullets LooseStrings `json:"summaryBullets"`
}

// ExplainPayload is the decoded model output for a clause explanation.
type ExplainPayload struct {
	Explanation    LooseString  `json:"explanation"`
	KeyPoints      LooseStrings `json:"keyPoints"`
	QuestionsToAsk LooseStrings `json:"questionsToAsk"`
}

// QAPayload is the decoded model output for a lease question.
type QAPayload struct {
	Answer     LooseString  `json:"answer"`
	Confidence LooseString  `json:"confidence"`
	BasedOn    LooseStrings `json:"basedOn"`
}
