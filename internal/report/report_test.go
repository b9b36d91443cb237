package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/termsplain/internal/flags"
)

func TestFindings(t *testing.T) {
	var buf bytes.Buffer
	findings := flags.Detect("An early termination fee applies. A late fee is $50.")
	require.NoError(t, NewFormatter(true).Findings(&buf, findings))

	out := buf.String()
	assert.Contains(t, out, "[RED] Early termination penalty (early-termination-penalty)")
	assert.Contains(t, out, "[RED] Late fee charges (late-fee-charges)")
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "2 flags: 2 red, 0 yellow, 0 green")
}

func TestFindings_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(true).Findings(&buf, nil))
	assert.Equal(t, "No risk flags found.\n", buf.String())
}

func TestRules(t *testing.T) {
	rs, err := flags.NewRuleSet([]flags.Rule{
		{ID: "ok", Label: "Fine", Severity: flags.SeverityLow, Keywords: []string{"x"}},
		{ID: "bad", Label: "Broken", Severity: flags.SeverityCaution, Pattern: "(x"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(true).Rules(&buf, rs))
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "[GREEN] ok")
	assert.Contains(t, string(lines[1]), "invalid pattern")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, flags.Detect("A late fee is $50.")))

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "late-fee-charges", got[0]["id"])
	assert.Equal(t, "red", got[0]["severity"])
	assert.NotEmpty(t, got[0]["evidenceSnippet"])
}
