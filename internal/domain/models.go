package domain

import (
	"time"
)

// Core Enums and Types

// Gender represents patient sex as recorded at intake
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// CaseStatus represents the lifecycle state of a clinical case.
// Transitions are forward-only; StatusError is reachable from in_progress.
type CaseStatus string

const (
	StatusPending    CaseStatus = "pending"
	StatusInProgress CaseStatus = "in_progress"
	StatusCompleted  CaseStatus = "completed"
	StatusReviewed   CaseStatus = "reviewed"
	StatusError      CaseStatus = "error"
)

// CanTransitionTo reports whether a case may move from its current status to next
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted || next == StatusError
	case StatusCompleted:
		return next == StatusReviewed
	default:
		return false
	}
}

// Urgency classifies how quickly a diagnosis demands attention
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// EvidenceLevel is the coarse literature-support bucket assigned to a diagnosis
type EvidenceLevel string

const (
	EvidenceHigh    EvidenceLevel = "high"
	EvidenceMedium  EvidenceLevel = "medium"
	EvidenceLow     EvidenceLevel = "low"
	EvidenceUnknown EvidenceLevel = "unknown"
)

// RiskLevel is the overall safety-review risk classification
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Core Data Models

// PatientProfile represents a patient record. Profiles are treated as
// immutable during a workflow run; every stage receives them by value.
type PatientProfile struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Age                int      `json:"age"`
	Gender             Gender   `json:"gender"`
	MedicalHistory     []string `json:"medical_history,omitempty"`
	Allergies          []string `json:"allergies,omitempty"`
	CurrentMedications []string `json:"current_medications,omitempty"`
	ConsentOnFile      bool     `json:"consent_on_file"`
}

// Symptom is a single reported symptom with severity on a 1-10 scale
type Symptom struct {
	Name         string `json:"name"`
	Severity     int    `json:"severity"`
	DurationDays int    `json:"duration_days"`
	Description  string `json:"description,omitempty"`
}

// SymptomSet is the full symptom presentation for one case, created once per
// case and never mutated
type SymptomSet struct {
	Symptoms       []Symptom `json:"symptoms"`
	ChiefComplaint string    `json:"chief_complaint"`
	Onset          string    `json:"onset,omitempty"`
}

// Diagnosis is a model-generated candidate diagnosis. Cases hold diagnoses in
// the order the model emitted them; no re-sorting is performed.
type Diagnosis struct {
	Name       string  `json:"name"`
	ICD10Code  string  `json:"icd10_code"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
	Urgency    Urgency `json:"urgency"`
}

// Medication is a single prescribed drug within a treatment plan
type Medication struct {
	Name        string   `json:"name"`
	Dosage      string   `json:"dosage"`
	Frequency   string   `json:"frequency"`
	Duration    string   `json:"duration"`
	Route       string   `json:"route"`
	Precautions []string `json:"precautions,omitempty"`
}

// MonitoringPlan describes follow-up observation for a treatment plan
type MonitoringPlan struct {
	VitalSigns []string `json:"vital_signs,omitempty"`
	LabTests   []string `json:"lab_tests,omitempty"`
	Frequency  string   `json:"frequency,omitempty"`
}

// TreatmentPlan is the recommended course of treatment for a case.
// AllergyWarnings is populated by the deterministic allergy cross-check,
// never by the model.
type TreatmentPlan struct {
	Medications        []Medication   `json:"medications"`
	NonPharmacological []string       `json:"non_pharmacological,omitempty"`
	Monitoring         MonitoringPlan `json:"monitoring"`
	FollowUp           string         `json:"follow_up,omitempty"`
	PatientEducation   []string       `json:"patient_education,omitempty"`
	AllergyWarnings    []string       `json:"allergy_warnings,omitempty"`
}

// ComplianceCheck holds the pass/fail outcome of one regulatory check
type ComplianceCheck struct {
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

// FDACompliance holds the medication allowlist check outcome
type FDACompliance struct {
	Passed                bool     `json:"passed"`
	UnapprovedMedications []string `json:"unapproved_medications,omitempty"`
	Issues                []string `json:"issues,omitempty"`
}

// SafetyReview is the stage-four output. Rule-based findings override the
// model's own compliance judgment wherever the two disagree.
type SafetyReview struct {
	Compliant       bool            `json:"compliant"`
	HIPAACompliance ComplianceCheck `json:"hipaa_compliance"`
	FDACompliance   FDACompliance   `json:"fda_compliance"`
	EthicalConcerns []string        `json:"ethical_concerns,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`
	RiskLevel       RiskLevel       `json:"risk_level"`
}

// Case tracks one patient encounter through the diagnostic workflow
type Case struct {
	ID        string         `json:"id"`
	PatientID string         `json:"patient_id"`
	Symptoms  SymptomSet     `json:"symptoms"`
	Diagnoses []Diagnosis    `json:"diagnoses,omitempty"`
	Treatment *TreatmentPlan `json:"treatment,omitempty"`
	Status    CaseStatus     `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// VitalsReading is one timestamped set of vital-sign measurements. Every
// measurement is optional; nil means not taken.
type VitalsReading struct {
	PatientID              string    `json:"patient_id"`
	Timestamp              time.Time `json:"timestamp"`
	HeartRate              *float64  `json:"heart_rate,omitempty"`
	BloodPressureSystolic  *float64  `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *float64  `json:"blood_pressure_diastolic,omitempty"`
	Temperature            *float64  `json:"temperature,omitempty"`
	RespiratoryRate        *float64  `json:"respiratory_rate,omitempty"`
	OxygenSaturation       *float64  `json:"oxygen_saturation,omitempty"`
}

// Article is a single literature search hit
type Article struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// CaseHistoryEntry is one element of a patient's graph-store case history
type CaseHistoryEntry struct {
	CaseID         string    `json:"case_id"`
	Status         string    `json:"status"`
	DiagnosisNames []string  `json:"diagnosis_names"`
	CreatedAt      time.Time `json:"created_at"`
}
