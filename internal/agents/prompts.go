package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medichain-agent-server/internal/domain"
)

// Prompt templates for each agent. The JSON shapes embedded here are the
// contracts the parse layer expects; changing one requires changing the
// matching payload struct.

const symptomAnalysisPrompt = `You are an expert medical diagnostician with years of experience in clinical medicine.

Given the following patient information:
Symptoms:
%s
Patient History: %s
Age: %d
Gender: %s
Duration: %s

Analyze the symptoms and generate a differential diagnosis with confidence scores.

Return your analysis in the following JSON format:
{
    "diagnoses": [
        {
            "name": "Disease Name",
            "confidence": 0.85,
            "icd10_code": "A00.0",
            "reasoning": "Explanation for this diagnosis",
            "urgency": "high/medium/low"
        }
    ],
    "recommended_tests": ["Test 1", "Test 2"],
    "red_flags": ["Flag 1", "Flag 2"]
}

Provide at least 3 differential diagnoses ordered by likelihood.`

const medicalResearchPrompt = `You are a medical research specialist with expertise in evidence-based medicine and literature review.

Research the following medical query:
Query: %s
Diagnosis: %s

Assess the available medical literature and clinical guidelines supporting or refining the diagnosis.

Return your findings in the following JSON format:
{
    "supported": true,
    "evidence_level": "high/medium/low/unknown",
    "key_findings": ["Finding 1", "Finding 2"],
    "recommendations": ["Recommendation 1", "Recommendation 2"]
}`

const treatmentPrompt = `You are a clinical treatment specialist with expertise in evidence-based medicine.

Based on the following information:
Diagnosis: %s
Patient Age: %d
Patient Allergies: %s
Comorbidities: %s
Current Medications: %s

Generate an evidence-based treatment plan.

Return your treatment plan in the following JSON format:
{
    "medications": [
        {
            "name": "Medication Name",
            "dosage": "Dosage information",
            "frequency": "How often",
            "duration": "Treatment duration",
            "route": "oral/IV/topical",
            "precautions": ["Precaution 1", "Precaution 2"]
        }
    ],
    "non_pharmacological": ["Lifestyle change 1", "Lifestyle change 2"],
    "monitoring": {
        "vital_signs": ["Signs to monitor"],
        "lab_tests": ["Tests to perform"],
        "frequency": "How often to monitor"
    },
    "follow_up": "Follow-up schedule",
    "patient_education": ["Education point 1", "Education point 2"]
}`

const safetyReviewPrompt = `You are a medical ethics and safety officer responsible for ensuring compliance with healthcare regulations.

Review the following medical case for ethical and safety compliance:
Diagnosis: %s
Treatment Plan: %s
Patient Demographics: %s
Data Privacy Concerns: Standard HIPAA compliance required

Validate compliance with:
- HIPAA regulations
- FDA approvals for medications
- Medical ethics guidelines
- Patient consent requirements

Return your review in the following JSON format:
{
    "compliant": true,
    "hipaa_compliance": {
        "passed": true,
        "issues": ["Issue 1", "Issue 2"]
    },
    "fda_compliance": {
        "passed": true,
        "unapproved_medications": ["Med 1", "Med 2"]
    },
    "ethical_concerns": ["Concern 1", "Concern 2"],
    "recommendations": ["Recommendation 1", "Recommendation 2"],
    "risk_level": "low/medium/high"
}`

const vitalsMonitoringPrompt = `You are a clinical monitoring specialist with expertise in patient vitals analysis.

Analyze the following patient vital signs:
Patient ID: %s
Current Vitals: %s
Baseline Vitals: %s
Medical Conditions: %s
Age: %s

Identify any anomalies or concerning trends.

Return your analysis in the following JSON format:
{
    "status": "normal/warning/critical",
    "alerts": [
        {
            "type": "urgent/routine",
            "message": "Alert message",
            "action_required": "Recommended action"
        }
    ],
    "observations": ["Observation 1", "Observation 2"]
}`

// formatSymptoms renders one symptom per line for the analysis prompt
func formatSymptoms(symptoms []domain.Symptom) string {
	lines := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		lines = append(lines, fmt.Sprintf("- %s: Severity %d/10, Duration %d days", s.Name, s.Severity, s.DurationDays))
	}
	return strings.Join(lines, "\n")
}

// formatVitals renders the measured vitals of a reading, skipping absent ones
func formatVitals(v *domain.VitalsReading) string {
	if v == nil {
		return "Not available"
	}
	var parts []string
	if v.HeartRate != nil {
		parts = append(parts, fmt.Sprintf("Heart Rate: %g bpm", *v.HeartRate))
	}
	if v.BloodPressureSystolic != nil && v.BloodPressureDiastolic != nil {
		parts = append(parts, fmt.Sprintf("Blood Pressure: %g/%g mmHg", *v.BloodPressureSystolic, *v.BloodPressureDiastolic))
	}
	if v.Temperature != nil {
		parts = append(parts, fmt.Sprintf("Temperature: %g°C", *v.Temperature))
	}
	if v.RespiratoryRate != nil {
		parts = append(parts, fmt.Sprintf("Respiratory Rate: %g /min", *v.RespiratoryRate))
	}
	if v.OxygenSaturation != nil {
		parts = append(parts, fmt.Sprintf("O2 Saturation: %g%%", *v.OxygenSaturation))
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}

// joinOrNone joins list entries or returns "None" for empty lists
func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// mustJSON renders v as indented JSON for prompt interpolation
func mustJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
