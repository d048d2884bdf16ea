// Package agents implements the prompt-templated model agents and the
// deterministic rule layers applied to their output. Every agent follows the
// same shape: render a prompt, call the model client, parse the JSON reply
// into a typed result with a safe fallback, then merge rule findings on top.
// Rule findings always take precedence over model judgments.
package agents

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/llm"
)

// ModelClient is the slice of the model client the agents depend on.
// Tests substitute a scripted fake.
type ModelClient interface {
	Complete(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// decodeModelJSON parses a model reply into v, tolerating markdown code
// fences and prose around the JSON object.
func decodeModelJSON(text string, v interface{}) error {
	cleaned := strings.TrimSpace(text)
	if i := strings.Index(cleaned, "{"); i >= 0 {
		if j := strings.LastIndex(cleaned, "}"); j > i {
			cleaned = cleaned[i : j+1]
		}
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return domain.NewParseError("model output", err)
	}
	return nil
}

// normalizeUrgency maps free-form model urgency strings onto the enum
func normalizeUrgency(s string) domain.Urgency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return domain.UrgencyCritical
	case "high":
		return domain.UrgencyHigh
	case "medium", "moderate":
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// normalizeEvidence maps free-form model evidence strings onto the enum
func normalizeEvidence(s string) domain.EvidenceLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return domain.EvidenceHigh
	case "medium", "moderate":
		return domain.EvidenceMedium
	case "low":
		return domain.EvidenceLow
	default:
		return domain.EvidenceUnknown
	}
}
