package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/llm"
)

// SymptomAnalyzer generates a differential diagnosis from a symptom set
type SymptomAnalyzer struct {
	model ModelClient
	log   *logrus.Logger
}

// NewSymptomAnalyzer creates a symptom analyzer
func NewSymptomAnalyzer(model ModelClient, logger *logrus.Logger) *SymptomAnalyzer {
	return &SymptomAnalyzer{model: model, log: logger}
}

type symptomAnalysisPayload struct {
	Diagnoses []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
		ICD10Code  string  `json:"icd10_code"`
		Reasoning  string  `json:"reasoning"`
		Urgency    string  `json:"urgency"`
	} `json:"diagnoses"`
	RecommendedTests []string `json:"recommended_tests"`
	RedFlags         []string `json:"red_flags"`
}

// Analyze produces candidate diagnoses ordered as the model emitted them.
// Unparseable model output yields an empty result rather than an error;
// provider failures propagate after the client's retry policy is exhausted.
func (a *SymptomAnalyzer) Analyze(ctx context.Context, patient domain.PatientProfile, symptoms domain.SymptomSet) (*domain.SymptomAnalysisResult, error) {
	a.log.WithField("patient_id", patient.ID).Info("Analyzing symptoms")

	prompt := fmt.Sprintf(symptomAnalysisPrompt,
		formatSymptoms(symptoms.Symptoms),
		joinOrNone(patient.MedicalHistory),
		patient.Age,
		patient.Gender,
		symptoms.Onset,
	)

	resp, err := a.model.Complete(ctx, &llm.Request{
		Prompt:      prompt,
		Temperature: 0.3,
		MaxTokens:   2000,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("symptom analysis: %w", err)
	}

	var payload symptomAnalysisPayload
	if err := decodeModelJSON(resp.Text, &payload); err != nil {
		a.log.WithError(err).Error("Failed to parse diagnosis response")
		return &domain.SymptomAnalysisResult{CompletedAt: time.Now().UTC()}, nil
	}

	result := &domain.SymptomAnalysisResult{
		RecommendedTests: payload.RecommendedTests,
		RedFlags:         payload.RedFlags,
		CompletedAt:      time.Now().UTC(),
	}
	for _, d := range payload.Diagnoses {
		result.Diagnoses = append(result.Diagnoses, domain.Diagnosis{
			Name:       d.Name,
			ICD10Code:  d.ICD10Code,
			Confidence: d.Confidence,
			Reasoning:  d.Reasoning,
			Urgency:    normalizeUrgency(d.Urgency),
		})
	}

	a.log.WithFields(logrus.Fields{
		"patient_id": patient.ID,
		"diagnoses":  len(result.Diagnoses),
	}).Info("Differential diagnosis generated")

	return result, nil
}
