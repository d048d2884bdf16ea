package llm

import (
	"strings"
)

// costPer1KTokens maps model name prefixes to approximate USD cost per 1000
// tokens. Prices are blended input/output approximations, good enough for
// the usage-stats endpoint, not for billing.
var costPer1KTokens = map[string]float64{
	"gpt-4":         0.03,
	"gpt-3.5-turbo": 0.002,
	"claude-3":      0.025,
}

// defaultCostPer1K is used for models missing from the table
const defaultCostPer1K = 0.01

// CostPer1KTokens returns the per-1K-token price for a model, matching by
// longest known prefix so versioned names ("gpt-4-turbo",
// "claude-3-5-sonnet-20241022") resolve to their family price.
func CostPer1KTokens(model string) float64 {
	model = strings.ToLower(strings.TrimSpace(model))

	bestLen := 0
	price := defaultCostPer1K
	for prefix, p := range costPer1KTokens {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			bestLen = len(prefix)
			price = p
		}
	}
	return price
}

// EstimateCost approximates the USD cost of a completion
func EstimateCost(model string, totalTokens int) float64 {
	return CostPer1KTokens(model) * float64(totalTokens) / 1000.0
}
