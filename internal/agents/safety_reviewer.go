package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/llm"
)

// SafetyReviewer validates a case against HIPAA, FDA, and ethics policy
type SafetyReviewer struct {
	model ModelClient
	log   *logrus.Logger
}

// NewSafetyReviewer creates a safety reviewer
func NewSafetyReviewer(model ModelClient, logger *logrus.Logger) *SafetyReviewer {
	return &SafetyReviewer{model: model, log: logger}
}

// Passed flags are pointers so a reply that omits them defaults to passing
// rather than silently flagging a failure.
type safetyPayload struct {
	Compliant       bool `json:"compliant"`
	HIPAACompliance struct {
		Passed *bool    `json:"passed"`
		Issues []string `json:"issues"`
	} `json:"hipaa_compliance"`
	FDACompliance struct {
		Passed                *bool    `json:"passed"`
		UnapprovedMedications []string `json:"unapproved_medications"`
	} `json:"fda_compliance"`
	EthicalConcerns []string `json:"ethical_concerns"`
	Recommendations []string `json:"recommendations"`
	RiskLevel       string   `json:"risk_level"`
}

func passedOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

// fallbackSafetyReview is the conservative default when the model reply
// cannot be parsed: non-compliant, high risk, manual review required.
func fallbackSafetyReview(reason string) domain.SafetyReview {
	return domain.SafetyReview{
		Compliant:       false,
		HIPAACompliance: domain.ComplianceCheck{Passed: false, Issues: []string{reason}},
		FDACompliance:   domain.FDACompliance{Passed: false},
		EthicalConcerns: []string{"Review failed"},
		Recommendations: []string{"Manual review required"},
		RiskLevel:       domain.RiskHigh,
	}
}

// Review asks the model for a compliance judgment and then layers the
// deterministic rules on top. Rules add findings but never clear a failure
// the model asserted.
func (a *SafetyReviewer) Review(ctx context.Context, diagnosis domain.Diagnosis, plan domain.TreatmentPlan, patient domain.PatientProfile) (*domain.SafetyResult, error) {
	a.log.WithField("diagnosis", diagnosis.Name).Info("Conducting safety review")

	demographics := map[string]interface{}{
		"age":                 patient.Age,
		"gender":              patient.Gender,
		"has_medical_history": len(patient.MedicalHistory) > 0,
	}
	prompt := fmt.Sprintf(safetyReviewPrompt,
		mustJSON(diagnosis),
		mustJSON(plan),
		mustJSON(demographics),
	)

	resp, err := a.model.Complete(ctx, &llm.Request{
		Prompt:      prompt,
		Temperature: 0.1,
		MaxTokens:   2000,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("safety review: %w", err)
	}

	var review domain.SafetyReview
	var payload safetyPayload
	if err := decodeModelJSON(resp.Text, &payload); err != nil {
		a.log.WithError(err).Error("Failed to parse safety review response")
		review = fallbackSafetyReview("Failed to parse response")
	} else {
		review = domain.SafetyReview{
			Compliant: payload.Compliant,
			HIPAACompliance: domain.ComplianceCheck{
				Passed: passedOrDefault(payload.HIPAACompliance.Passed),
				Issues: payload.HIPAACompliance.Issues,
			},
			FDACompliance: domain.FDACompliance{
				Passed:                passedOrDefault(payload.FDACompliance.Passed),
				UnapprovedMedications: payload.FDACompliance.UnapprovedMedications,
			},
			EthicalConcerns: payload.EthicalConcerns,
			Recommendations: payload.Recommendations,
			RiskLevel:       normalizeRisk(payload.RiskLevel),
		}
	}

	ApplyComplianceRules(&review, plan, patient)

	a.log.WithFields(logrus.Fields{
		"compliant":  review.Compliant,
		"risk_level": review.RiskLevel,
	}).Info("Safety review complete")

	return &domain.SafetyResult{Review: review, CompletedAt: time.Now().UTC()}, nil
}

func normalizeRisk(s string) domain.RiskLevel {
	switch s {
	case "high":
		return domain.RiskHigh
	case "medium":
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
