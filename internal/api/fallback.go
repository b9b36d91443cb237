package api

import "github.com/gonkalabs/termsplain/internal/normalize"

// Static content served when generation is unavailable or fails.

var fallbackSummaryBullets = []string{
	"Early termination may result in fees if you leave before the lease term ends.",
	"Automatic renewal applies unless you provide advance written notice.",
	"You may be responsible for minor repairs under a specified dollar amount.",
	"Security deposit return timelines and conditions are specified in your lease.",
}

func fallbackExplain() normalize.ExplainResult {
	return normalize.ExplainResult{
		Explanation: "This clause outlines the conditions under which the lease may be renewed or terminated. " +
			"It typically requires written notice within a specific timeframe to avoid automatic renewal. " +
			"Understanding these terms helps you plan your move-out timeline and avoid unintended lease extensions.",
		KeyPoints: []string{
			"Written notice is required to terminate or avoid renewal.",
			"Notice must be provided within the specified timeframe (e.g., 30, 60, or 90 days).",
			"Failure to provide notice may result in automatic renewal for another term.",
		},
		QuestionsToAsk: []string{
			"What is the exact notice period required in days?",
			"Does the notice need to be sent via certified mail or email?",
			"What happens if I miss the notice deadline?",
			"Is there a fee for breaking the lease early?",
		},
	}
}

func fallbackQA() normalize.QAResult {
	return normalize.QAResult{
		Answer: "Based on the lease text you provided, early termination appears to be permitted but may involve a financial penalty or fee. " +
			"The specific amount and conditions would depend on the exact wording in your lease. " +
			"It's recommended to review the termination clause carefully and consider discussing it with your landlord if you're planning to leave early.",
		Confidence: normalize.ConfidenceMedium,
		BasedOn: []string{
			"Early termination clause mentioning fees",
			"Notice requirements section",
			"Lease duration and renewal terms",
		},
	}
}
