package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBasedOnSnippets(t *testing.T) {
	t.Run("returns snippet containing match keyword", func(t *testing.T) {
		text := "The tenant agrees to an Early termination fee of two months rent if leaving early."
		snippets := ExtractBasedOnSnippets(text, []string{"early termination fee"})
		require.Len(t, snippets, 1)
		assert.Contains(t, strings.ToLower(snippets[0]), "early termination fee")
		assert.LessOrEqual(t, len(snippets[0]), MaxCitation)
	})

	t.Run("no keyword yields nothing", func(t *testing.T) {
		assert.Empty(t, ExtractBasedOnSnippets("Rent is due monthly.", []string{"termination fee"}))
	})

	t.Run("earliest occurrence wins, first keyword breaks ties", func(t *testing.T) {
		text := "Termination fee is $500. Late fee is $50."
		got := ExtractBasedOnSnippets(text, []string{"late fee", "termination", "termination fee"})
		require.Len(t, got, 1)
		assert.Equal(t, text, got[0])
	})

	t.Run("window is bounded and capped", func(t *testing.T) {
		text := strings.Repeat("a", 100) + " early termination fee " + strings.Repeat("b", 100)
		got := ExtractBasedOnSnippets(text, []string{"early termination fee"})
		require.Len(t, got, 1)
		assert.LessOrEqual(t, len(got[0]), MaxCitation)
		assert.True(t, strings.HasPrefix(got[0], strings.Repeat("a", 39)))
		assert.Contains(t, got[0], "early termination fee")
	})
}

func TestApplyExplainPostValidation(t *testing.T) {
	t.Run("replaces Not specified lists with deterministic content", func(t *testing.T) {
		result := ApplyExplainPostValidation(NotSpecified, []string{NotSpecified}, []string{NotSpecified})

		assert.Equal(t, []string{
			"Lease renews automatically for 12 months unless you stop it.",
			"You must give written notice at least 60 days before the end date.",
			"Missing the deadline may renew your lease for another term.",
		}, result.KeyPoints)
		assert.Equal(t, []string{
			"How should I deliver written notice (email, mail, certified mail)?",
			"What happens if I miss the 60-day deadline?",
			"Will the renewal be month-to-month or a full 12-month term?",
		}, result.QuestionsToAsk)
		assert.Equal(t, NotSpecified, result.Explanation)
	})

	t.Run("keeps complete key points and real questions", func(t *testing.T) {
		keyPoints := []string{
			"Send Written Notice to end the lease.",
			"Notice is due 60 days before the end date.",
			"Otherwise it renews for 12 months.",
		}
		questions := []string{"Can notice be sent by email?", NotSpecified}

		result := ApplyExplainPostValidation("x", keyPoints, questions)
		assert.Equal(t, keyPoints, result.KeyPoints)
		assert.Equal(t, questions, result.QuestionsToAsk)
	})

	t.Run("one missing talking point replaces the list", func(t *testing.T) {
		result := ApplyExplainPostValidation("x", []string{"written notice, 60 days"}, nil)
		assert.Equal(t, fallbackKeyPoints, result.KeyPoints)
		assert.Nil(t, result.QuestionsToAsk)
	})
}

func TestNormalizeExplain(t *testing.T) {
	var p ExplainPayload
	require.NoError(t, json.Unmarshal([]byte(`{
		"explanation": "  `+strings.Repeat("e", 800)+`  ",
		"keyPoints": ["  written notice required  ", "", 42, "60 days before end", "renews for 12 months", "a", "b", "c", "d"],
		"questionsToAsk": ["`+strings.Repeat("q", 200)+`"]
	}`), &p))

	result := NormalizeExplain(p)
	assert.Len(t, result.Explanation, MaxExplanation)
	assert.Equal(t, []string{"written notice required", "60 days before end", "renews for 12 months", "a", "b", "c"}, result.KeyPoints)
	require.Len(t, result.QuestionsToAsk, 2)
	assert.Len(t, result.QuestionsToAsk[0], MaxListItem)
	assert.Equal(t, NotSpecified, result.QuestionsToAsk[1])
}

func TestNormalizeExplain_EmptyPayload(t *testing.T) {
	result := NormalizeExplain(ExplainPayload{})
	assert.Equal(t, NotSpecified, result.Explanation)
	assert.Equal(t, fallbackKeyPoints, result.KeyPoints)
	assert.Equal(t, fallbackQuestions, result.QuestionsToAsk)
}

func TestNormalizeSummary(t *testing.T) {
	assert.Equal(t, []string{"One", NotSpecified, NotSpecified}, NormalizeSummary([]string{" One ", "  "}))

	long := strings.Repeat("s", 200)
	got := NormalizeSummary([]string{long, "2", "3", "4", "5", "6", "7"})
	require.Len(t, got, 6)
	assert.Len(t, got[0], MaxBullet)
}

func TestParseConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ParseConfidence("high"))
	assert.Equal(t, ConfidenceMedium, ParseConfidence("medium"))
	assert.Equal(t, ConfidenceLow, ParseConfidence("HIGH"))
	assert.Equal(t, ConfidenceLow, ParseConfidence(""))
}

func TestNormalizeQA(t *testing.T) {
	feeText := "Section 9. The tenant agrees to an early termination fee of two months rent if leaving early."

	tests := []struct {
		name     string
		question string
		text     string
		payload  QAPayload
		want     QAResult
	}{
		{
			name:     "grounded answer passes through",
			question: "When is rent due?",
			text:     "Rent is due on the first of each month.",
			payload:  QAPayload{Answer: "On the first.", Confidence: "high", BasedOn: LooseStrings{"Rent is due on the first of each month."}},
			want:     QAResult{Answer: "On the first.", Confidence: ConfidenceHigh, BasedOn: []string{"Rent is due on the first of each month."}},
		},
		{
			name:     "sentinel citations are replaced by deterministic search",
			question: "What does it cost to end the lease?",
			text:     feeText,
			payload:  QAPayload{Answer: "Two months rent.", Confidence: "medium", BasedOn: LooseStrings{NotSpecified}},
			want: QAResult{Answer: "Two months rent.", Confidence: ConfidenceMedium, BasedOn: []string{
				feeText,
			}},
		},
		{
			name:     "unanswered with nothing to cite",
			question: "Are pets allowed?",
			text:     "Rent is due on the first.",
			payload:  QAPayload{Answer: NotSpecified, Confidence: "bogus"},
			want:     QAResult{Answer: NotSpecified, Confidence: ConfidenceLow, BasedOn: []string{NoClauseFound}},
		},
		{
			name:     "last resort cites the start of the text",
			question: "Are pets allowed?",
			text:     "  " + strings.Repeat("w", 150),
			payload:  QAPayload{Answer: "Maybe."},
			want:     QAResult{Answer: "Maybe.", Confidence: ConfidenceLow, BasedOn: []string{strings.Repeat("w", 118)}},
		},
		{
			name:     "early departure question forces high confidence and the fee excerpt",
			question: "Can I leave early?",
			text:     feeText,
			payload:  QAPayload{Answer: "Yes, with a fee.", Confidence: "low", BasedOn: LooseStrings{"two months rent"}},
			want: QAResult{Answer: "Yes, with a fee.", Confidence: ConfidenceHigh, BasedOn: []string{
				feeText,
			}},
		},
		{
			name:     "early departure merges broader excerpt in front",
			question: "What if I break the lease?",
			text:     "Any early termination requires notice.",
			payload:  QAPayload{Answer: "Notice is required.", Confidence: "medium", BasedOn: LooseStrings{"requires notice"}},
			want: QAResult{Answer: "Notice is required.", Confidence: ConfidenceHigh, BasedOn: []string{
				"Any early termination requires notice.",
				"requires notice",
			}},
		},
		{
			name:     "early departure question without termination wording is untouched",
			question: "Can I terminate early?",
			text:     "Rent is due on the first.",
			payload:  QAPayload{Answer: "Not covered.", Confidence: "medium", BasedOn: LooseStrings{"Rent is due on the first."}},
			want:     QAResult{Answer: "Not covered.", Confidence: ConfidenceMedium, BasedOn: []string{"Rent is due on the first."}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQA(tt.question, tt.text, tt.payload))
		})
	}
}

func TestNormalizeQA_Caps(t *testing.T) {
	items := make(LooseStrings, 0, 8)
	for i := 0; i < 8; i++ {
		items = append(items, strings.Repeat("c", 130))
	}
	result := NormalizeQA("q", "text", QAPayload{Answer: LooseString(strings.Repeat("a", 1000)), BasedOn: items})

	assert.Len(t, result.Answer, MaxAnswer)
	require.Len(t, result.BasedOn, 5)
	for _, b := range result.BasedOn {
		assert.Len(t, b, MaxCitation)
	}
}

func TestLooseDecoding(t *testing.T) {
	var p QAPayload
	require.NoError(t, json.Unmarshal([]byte(`{"answer": 7, "confidence": null, "basedOn": "not a list"}`), &p))
	assert.Equal(t, LooseString(""), p.Answer)
	assert.Equal(t, LooseString(""), p.Confidence)
	assert.Nil(t, p.BasedOn)
}

func TestSafeTrim(t *testing.T) {
	assert.Equal(t, "", SafeTrim("   ", 10))
	assert.Equal(t, "abc", SafeTrim("  abc  ", 10))
	assert.Equal(t, "abcde", SafeTrim("abcdefgh", 5))
	assert.Equal(t, "é", SafeTrim("éé", 3))
	assert.True(t, IsEmpty(" \n\t"))
	assert.False(t, IsEmpty(" x "))
}
