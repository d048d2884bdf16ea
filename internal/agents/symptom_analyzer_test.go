package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain-agent-server/internal/domain"
)

const diagnosesReply = `{
	"diagnoses": [
		{"name": "Influenza", "confidence": 0.85, "icd10_code": "J11.1", "reasoning": "Fever with myalgia", "urgency": "medium"},
		{"name": "COVID-19", "confidence": 0.70, "icd10_code": "U07.1", "reasoning": "Overlapping presentation", "urgency": "high"},
		{"name": "Common cold", "confidence": 0.40, "icd10_code": "J00", "reasoning": "Less likely given fever", "urgency": "low"}
	],
	"recommended_tests": ["Rapid influenza test", "SARS-CoV-2 PCR"],
	"red_flags": ["Dyspnea"]
}`

func testPatient() domain.PatientProfile {
	return domain.PatientProfile{
		ID:             "patient-1",
		Name:           "Jo Doe",
		Age:            34,
		Gender:         domain.GenderFemale,
		MedicalHistory: []string{"asthma"},
		ConsentOnFile:  true,
	}
}

func testSymptoms() domain.SymptomSet {
	return domain.SymptomSet{
		Symptoms: []domain.Symptom{
			{Name: "fever", Severity: 7, DurationDays: 2},
			{Name: "cough", Severity: 5, DurationDays: 3},
		},
		ChiefComplaint: "fever and cough",
		Onset:          "2 days ago",
	}
}

func TestSymptomAnalyzerParsesDiagnosesInOrder(t *testing.T) {
	model := &scriptedModel{replies: []string{diagnosesReply}}
	analyzer := NewSymptomAnalyzer(model, quietLogger())

	result, err := analyzer.Analyze(context.Background(), testPatient(), testSymptoms())

	require.NoError(t, err)
	require.Len(t, result.Diagnoses, 3)
	assert.Equal(t, "Influenza", result.Diagnoses[0].Name)
	assert.Equal(t, "J11.1", result.Diagnoses[0].ICD10Code)
	assert.Equal(t, 0.85, result.Diagnoses[0].Confidence)
	assert.Equal(t, domain.UrgencyMedium, result.Diagnoses[0].Urgency)
	assert.Equal(t, "COVID-19", result.Diagnoses[1].Name)
	assert.Equal(t, []string{"Rapid influenza test", "SARS-CoV-2 PCR"}, result.RecommendedTests)
	assert.Equal(t, []string{"Dyspnea"}, result.RedFlags)
}

func TestSymptomAnalyzerPromptCarriesPatientContext(t *testing.T) {
	model := &scriptedModel{replies: []string{diagnosesReply}}
	analyzer := NewSymptomAnalyzer(model, quietLogger())

	_, err := analyzer.Analyze(context.Background(), testPatient(), testSymptoms())

	require.NoError(t, err)
	require.Len(t, model.requests, 1)
	req := model.requests[0]
	assert.Contains(t, req.Prompt, "- fever: Severity 7/10, Duration 2 days")
	assert.Contains(t, req.Prompt, "asthma")
	assert.Contains(t, req.Prompt, "Age: 34")
	assert.True(t, req.JSONMode)
	assert.Equal(t, 0.3, req.Temperature)
}

func TestSymptomAnalyzerUnparseableReplyYieldsEmptyResult(t *testing.T) {
	model := &scriptedModel{replies: []string{"I am not able to provide diagnoses."}}
	analyzer := NewSymptomAnalyzer(model, quietLogger())

	result, err := analyzer.Analyze(context.Background(), testPatient(), testSymptoms())

	require.NoError(t, err)
	assert.Empty(t, result.Diagnoses)
	assert.Empty(t, result.RecommendedTests)
}

func TestSymptomAnalyzerProviderErrorPropagates(t *testing.T) {
	model := &scriptedModel{
		replies: []string{""},
		errs:    []error{&domain.ProviderError{Provider: "fake", Message: "boom"}},
	}
	analyzer := NewSymptomAnalyzer(model, quietLogger())

	_, err := analyzer.Analyze(context.Background(), testPatient(), testSymptoms())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "symptom analysis")
}
