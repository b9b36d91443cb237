package gemini

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/termsplain/internal/cache"
	"github.com/gonkalabs/termsplain/internal/flags"
	"github.com/gonkalabs/termsplain/internal/normalize"
	"github.com/gonkalabs/termsplain/internal/redact"
)

// fakeModel returns canned responses and records prompts.
type fakeModel struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) Generate(_ context.Context, _, prompt string, _ Schema) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func TestGenerator_AnalyzeSummary(t *testing.T) {
	m := &fakeModel{reply: "```json\n{\"summaryBullets\":[\" Rent is $1,500. \",\"\"]}\n```"}
	g := NewGenerator(m, "", WithCache(cache.NewMemory(16, time.Minute)))

	text := "A late fee is 5% after the due date."
	findings := flags.Detect(text)
	require.NotEmpty(t, findings)

	bullets, err := g.AnalyzeSummary(context.Background(), text, findings)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rent is $1,500.", normalize.NotSpecified, normalize.NotSpecified}, bullets)

	require.Equal(t, 1, m.calls())
	assert.Contains(t, m.prompts[0], "late-fee-charges | Late fee charges")
	assert.Contains(t, m.prompts[0], text)

	// Same inputs hit the cache.
	bullets[0] = "mutated"
	again, err := g.AnalyzeSummary(context.Background(), "  "+text+"  ", findings)
	require.NoError(t, err)
	assert.Equal(t, "Rent is $1,500.", again[0])
	assert.Equal(t, 1, m.calls())
}

func TestGenerator_ExplainClause(t *testing.T) {
	m := &fakeModel{reply: `{"explanation":"It renews.","keyPoints":["Not specified in the text provided."],"questionsToAsk":["Not specified in the text provided."]}`}
	g := NewGenerator(m, DefaultModel)

	res, err := g.ExplainClause(context.Background(), "This lease renews for 12 months unless written notice is given 60 days before.")
	require.NoError(t, err)
	assert.Equal(t, "It renews.", res.Explanation)
	assert.Len(t, res.KeyPoints, 3)
	assert.Contains(t, res.KeyPoints[1], "written notice")
	assert.Len(t, res.QuestionsToAsk, 3)
	assert.Contains(t, m.prompts[0], "CLAUSE:\nThis lease renews")
}

func TestGenerator_LeaseQA(t *testing.T) {
	text := "Section 9. The tenant agrees to an early termination fee of two months rent if leaving early."
	m := &fakeModel{reply: `{"answer":"You pay two months rent.","confidence":"medium","basedOn":[]}`}
	g := NewGenerator(m, DefaultModel, WithCache(cache.NewMemory(16, time.Minute)))

	res, err := g.LeaseQA(context.Background(), "Can I leave early?", text)
	require.NoError(t, err)
	assert.Equal(t, normalize.ConfidenceHigh, res.Confidence)
	assert.Equal(t, []string{text}, res.BasedOn)
	assert.Contains(t, m.prompts[0], "QUESTION:\nCan I leave early?")

	_, err = g.LeaseQA(context.Background(), "Can I leave early?", text)
	require.NoError(t, err)
	assert.Equal(t, 1, m.calls())

	_, err = g.LeaseQA(context.Background(), "Are pets allowed?", text)
	require.NoError(t, err)
	assert.Equal(t, 2, m.calls())
}

func TestGenerator_Errors(t *testing.T) {
	t.Run("invalid JSON is reported", func(t *testing.T) {
		g := NewGenerator(&fakeModel{reply: "I cannot help with that."}, "")
		_, err := g.ExplainClause(context.Background(), "clause")
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})

	t.Run("model errors propagate and are not cached", func(t *testing.T) {
		boom := errors.New("boom")
		m := &fakeModel{err: boom}
		g := NewGenerator(m, "", WithCache(cache.NewMemory(16, time.Minute)))

		_, err := g.LeaseQA(context.Background(), "q", "text")
		assert.ErrorIs(t, err, boom)
		_, err = g.LeaseQA(context.Background(), "q", "text")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, m.calls())
	})
}

// echoModel answers with a reply built from the prompt it receives.
type echoModel func(prompt string) string

func (e echoModel) Generate(_ context.Context, _, prompt string, _ Schema) (string, error) {
	return e(prompt), nil
}

func TestGenerator_Redaction(t *testing.T) {
	text := "Send written notice to landlord@example.com. The early termination fee is $900."

	var seen string
	m := echoModel(func(prompt string) string {
		seen = prompt
		start := strings.Index(prompt, "«TOKEN_")
		if start < 0 {
			return `{"answer":"no token","confidence":"low","basedOn":[]}`
		}
		end := start + strings.Index(prompt[start:], "»") + len("»")
		token := prompt[start:end]
		return `{"answer":"Email ` + token + `.","confidence":"high","basedOn":["Send written notice to ` + token + `."]}`
	})
	g := NewGenerator(m, "", WithRedactor(redact.New(redact.ContactClassifiers()...)))

	res, err := g.LeaseQA(context.Background(), "How do I give notice?", text)
	require.NoError(t, err)
	assert.NotContains(t, seen, "landlord@example.com")
	assert.Equal(t, "Email landlord@example.com.", res.Answer)
	assert.Equal(t, normalize.ConfidenceHigh, res.Confidence)
	assert.Equal(t, []string{"Send written notice to landlord@example.com."}, res.BasedOn)
}
