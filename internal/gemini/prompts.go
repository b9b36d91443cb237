package gemini

import (
	"fmt"
	"strings"

	"github.com/gonkalabs/termsplain/internal/flags"
)

// Schema is a Gemini responseSchema (OpenAPI subset).
type Schema map[string]any

func stringArray(min, max int) Schema {
	return Schema{
		"type":     "ARRAY",
		"items":    Schema{"type": "STRING"},
		"minItems": min,
		"maxItems": max,
	}
}

var (
	summarySchema = Schema{
		"type": "OBJECT",
		"properties": Schema{
			"summaryBullets": stringArray(3, 6),
		},
		"required": []string{"summaryBullets"},
	}

	explainSchema = Schema{
		"type": "OBJECT",
		"properties": Schema{
			"explanation":    Schema{"type": "STRING"},
			"keyPoints":      stringArray(2, 6),
			"questionsToAsk": stringArray(2, 6),
		},
		"required": []string{"explanation", "keyPoints", "questionsToAsk"},
	}

	qaSchema = Schema{
		"type": "OBJECT",
		"properties": Schema{
			"answer":     Schema{"type": "STRING"},
			"confidence": Schema{"type": "STRING", "enum": []string{"low", "medium", "high"}},
			"basedOn":    stringArray(1, 5),
		},
		"required": []string{"answer", "confidence", "basedOn"},
	}
)

const preamble = `You are Termsplain, a renter-friendly lease explainer.
You are not a lawyer and you do not give legal advice.
`

const sentinelRule = `If something is not specified in the text, say: "Not specified in the text provided."
`

func summaryPrompt(text string, findings []flags.Finding) string {
	var lines []string
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("- %s | %s | %s | %s", f.ID, f.Label, f.Severity, f.WhyItMatters))
	}
	if len(lines) == 0 {
		lines = []string{"- None"}
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("Only use the provided lease text.\n")
	b.WriteString(sentinelRule)
	b.WriteString("\nLEASE TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nDETECTED FLAGS:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nTASK:\nGenerate 3–6 short summary bullets (max 140 chars each) explaining the most important points for a renter.\nReturn JSON only.")
	return b.String()
}

func explainPrompt(clause string) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("Only use the provided clause text.\n")
	b.WriteString(sentinelRule)
	b.WriteString(`Do not mention AI or tools.
You MUST fill keyPoints and questionsToAsk using only the clause text provided.
Do NOT output "Not specified in the text provided." unless the clause truly lacks the requested info.
keyPoints must include:
1) notice method requirement (written notice)
2) notice timing (60 days before end)
3) renewal length (12 months)
questionsToAsk should be practical and clause-grounded:
- "How must written notice be delivered (email, mail, certified)?"
- "What happens if I miss the 60-day deadline?"
- "Can I switch to month-to-month instead of a new 12-month term?"
`)
	b.WriteString("\nCLAUSE:\n")
	b.WriteString(clause)
	b.WriteString("\n\nTASK:\nExplain the clause in plain English for a renter. Provide key points and questions to ask.\nReturn JSON only.")
	return b.String()
}

func qaPrompt(question, text string) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("Only use the provided lease text.\n")
	b.WriteString(sentinelRule)
	b.WriteString(`Do not mention AI or tools.
Answer using ONLY the provided lease text.
If the lease text explicitly answers the question, confidence MUST be "high".
If partially answered, "medium".
If not answered, answer must be "Not specified in the text provided." and confidence "low".
basedOn MUST contain 1–3 short direct snippets copied from the lease text (<=120 chars each).
NEVER put "Not specified..." inside basedOn when there is matching text.
If not answered, basedOn can include: "No clause found about this in provided text".
`)
	b.WriteString("\nLEASE TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n\nQUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nTASK:\nAnswer the question using only the lease text. Provide confidence and short supporting snippets.\nReturn JSON only.")
	return b.String()
}
