package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/llm"
)

// TreatmentPlanner generates a treatment plan for the primary diagnosis
type TreatmentPlanner struct {
	model ModelClient
	log   *logrus.Logger
}

// NewTreatmentPlanner creates a treatment planner
func NewTreatmentPlanner(model ModelClient, logger *logrus.Logger) *TreatmentPlanner {
	return &TreatmentPlanner{model: model, log: logger}
}

type treatmentPayload struct {
	Medications []struct {
		Name        string   `json:"name"`
		Dosage      string   `json:"dosage"`
		Frequency   string   `json:"frequency"`
		Duration    string   `json:"duration"`
		Route       string   `json:"route"`
		Precautions []string `json:"precautions"`
	} `json:"medications"`
	NonPharmacological []string `json:"non_pharmacological"`
	Monitoring         struct {
		VitalSigns []string `json:"vital_signs"`
		LabTests   []string `json:"lab_tests"`
		Frequency  string   `json:"frequency"`
	} `json:"monitoring"`
	FollowUp         string   `json:"follow_up"`
	PatientEducation []string `json:"patient_education"`
}

// fallbackTreatmentPlan is returned when the model reply cannot be parsed
func fallbackTreatmentPlan() domain.TreatmentPlan {
	return domain.TreatmentPlan{
		Medications: []domain.Medication{},
		Monitoring:  domain.MonitoringPlan{Frequency: "unknown"},
		FollowUp:    "Consult healthcare provider",
	}
}

// Recommend generates a treatment plan for the diagnosis and applies the
// allergy cross-check on top of whatever the model proposed
func (a *TreatmentPlanner) Recommend(ctx context.Context, diagnosis domain.Diagnosis, patient domain.PatientProfile, research *domain.ResearchResult) (*domain.TreatmentResult, error) {
	a.log.WithField("diagnosis", diagnosis.Name).Info("Generating treatment plan")

	prompt := fmt.Sprintf(treatmentPrompt,
		diagnosis.Name,
		patient.Age,
		joinOrNone(patient.Allergies),
		joinOrNone(patient.MedicalHistory),
		joinOrNone(patient.CurrentMedications),
	)

	if research != nil {
		var recommendations []string
		for _, v := range research.Validations {
			recommendations = append(recommendations, v.Recommendations...)
		}
		if len(recommendations) > 0 {
			prompt += "\n\nEvidence-Based Recommendations:\n" + strings.Join(recommendations, "\n")
		}
	}

	prompt += "\n\nIMPORTANT: Consider the following contraindications:"
	if len(patient.Allergies) > 0 {
		prompt += fmt.Sprintf("\n- Patient is allergic to: %s", strings.Join(patient.Allergies, ", "))
	}
	if historyMentionsPregnancy(patient.MedicalHistory) {
		prompt += "\n- Patient may be pregnant - avoid teratogenic medications"
	}

	resp, err := a.model.Complete(ctx, &llm.Request{
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   2000,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("treatment planning: %w", err)
	}

	var plan domain.TreatmentPlan
	var payload treatmentPayload
	if err := decodeModelJSON(resp.Text, &payload); err != nil {
		a.log.WithError(err).Error("Failed to parse treatment response")
		plan = fallbackTreatmentPlan()
	} else {
		plan = domain.TreatmentPlan{
			NonPharmacological: payload.NonPharmacological,
			Monitoring: domain.MonitoringPlan{
				VitalSigns: payload.Monitoring.VitalSigns,
				LabTests:   payload.Monitoring.LabTests,
				Frequency:  payload.Monitoring.Frequency,
			},
			FollowUp:         payload.FollowUp,
			PatientEducation: payload.PatientEducation,
		}
		for _, m := range payload.Medications {
			plan.Medications = append(plan.Medications, domain.Medication{
				Name:        m.Name,
				Dosage:      m.Dosage,
				Frequency:   m.Frequency,
				Duration:    m.Duration,
				Route:       m.Route,
				Precautions: m.Precautions,
			})
		}
	}

	ApplyAllergyCrossCheck(&plan, patient.Allergies)

	a.log.WithFields(logrus.Fields{
		"diagnosis":        diagnosis.Name,
		"medications":      len(plan.Medications),
		"allergy_warnings": len(plan.AllergyWarnings),
	}).Info("Treatment plan generated")

	return &domain.TreatmentResult{Plan: plan, CompletedAt: time.Now().UTC()}, nil
}

func historyMentionsPregnancy(history []string) bool {
	for _, h := range history {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "pregnan") {
			return true
		}
	}
	return false
}
