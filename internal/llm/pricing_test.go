package llm

import (
	"testing"
)

func TestCostPer1KTokens(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  float64
	}{
		{"gpt-4 family", "gpt-4", 0.03},
		{"gpt-4 versioned", "gpt-4-turbo-2024-04-09", 0.03},
		{"gpt-3.5 family", "gpt-3.5-turbo", 0.002},
		{"claude-3 family", "claude-3", 0.025},
		{"claude-3 versioned", "claude-3-5-sonnet-20241022", 0.025},
		{"unknown model falls back", "some-local-model", defaultCostPer1K},
		{"case insensitive", "GPT-4", 0.03},
		{"whitespace trimmed", "  gpt-4  ", 0.03},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CostPer1KTokens(tt.model); got != tt.want {
				t.Errorf("CostPer1KTokens(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		tokens int
		want   float64
	}{
		{"zero tokens", "gpt-4", 0, 0},
		{"one thousand tokens gpt-4", "gpt-4", 1000, 0.03},
		{"two thousand tokens gpt-3.5", "gpt-3.5-turbo", 2000, 0.004},
		{"five hundred tokens claude-3", "claude-3", 500, 0.0125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateCost(tt.model, tt.tokens); got != tt.want {
				t.Errorf("EstimateCost(%q, %d) = %v, want %v", tt.model, tt.tokens, got, tt.want)
			}
		})
	}
}
