package domain

import (
	"time"
)

// Workflow step keys. Absent keys mean the stage never ran.
const (
	StepSymptomAnalysis   = "symptom_analysis"
	StepMedicalResearch   = "medical_research"
	StepTreatmentPlanning = "treatment_planning"
	StepSafetyReview      = "safety_review"
	StepDataStorage       = "data_storage"
)

// WorkflowStatus is the outcome of one diagnostic workflow run. It is
// distinct from CaseStatus: a failed run maps to the case status "error".
type WorkflowStatus string

const (
	WorkflowInProgress WorkflowStatus = "in_progress"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowFailed     WorkflowStatus = "failed"
)

// SymptomAnalysisResult is the stage-one output
type SymptomAnalysisResult struct {
	Diagnoses        []Diagnosis `json:"diagnoses"`
	RecommendedTests []string    `json:"recommended_tests,omitempty"`
	RedFlags         []string    `json:"red_flags,omitempty"`
	CompletedAt      time.Time   `json:"completed_at"`
}

// DiagnosisValidation is the literature verdict for one diagnosis
type DiagnosisValidation struct {
	Diagnosis       string        `json:"diagnosis"`
	Supported       bool          `json:"supported"`
	EvidenceLevel   EvidenceLevel `json:"evidence_level"`
	KeyFindings     []string      `json:"key_findings,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
	Sources         []Article     `json:"sources,omitempty"`
}

// ResearchResult is the stage-two output covering the top diagnoses
type ResearchResult struct {
	Validations     []DiagnosisValidation `json:"validations"`
	EvidenceSummary EvidenceSummary       `json:"evidence_summary"`
	CompletedAt     time.Time             `json:"completed_at"`
}

// EvidenceSummary aggregates literature support across validated diagnoses
type EvidenceSummary struct {
	TotalSources     int           `json:"total_sources"`
	AvgEvidenceLevel EvidenceLevel `json:"avg_evidence_level"`
}

// TreatmentResult is the stage-three output
type TreatmentResult struct {
	Plan        TreatmentPlan `json:"plan"`
	CompletedAt time.Time     `json:"completed_at"`
}

// SafetyResult is the stage-four output
type SafetyResult struct {
	Review      SafetyReview `json:"review"`
	CompletedAt time.Time    `json:"completed_at"`
}

// StorageResult is the stage-five output. A failed write is recorded here
// rather than failing the workflow.
type StorageResult struct {
	RelationalStored bool      `json:"relational_stored"`
	GraphStored      bool      `json:"graph_stored"`
	Error            string    `json:"error,omitempty"`
	CompletedAt      time.Time `json:"completed_at"`
}

// WorkflowSteps holds per-stage results. A nil pointer means the stage was
// never reached; its key is omitted from the serialized response.
type WorkflowSteps struct {
	SymptomAnalysis   *SymptomAnalysisResult `json:"symptom_analysis,omitempty"`
	MedicalResearch   *ResearchResult        `json:"medical_research,omitempty"`
	TreatmentPlanning *TreatmentResult       `json:"treatment_planning,omitempty"`
	SafetyReview      *SafetyResult          `json:"safety_review,omitempty"`
	DataStorage       *StorageResult         `json:"data_storage,omitempty"`
}

// WorkflowSummary condenses a completed workflow for the API response
type WorkflowSummary struct {
	PrimaryDiagnosis     string   `json:"primary_diagnosis"`
	ICD10Code            string   `json:"icd10_code"`
	Confidence           float64  `json:"confidence"`
	TreatmentMedications []string `json:"treatment_medications"`
	SafetyCompliant      bool     `json:"safety_compliant"`
	ResearchSources      int      `json:"research_sources"`
}

// WorkflowResult is the full record of one diagnostic workflow run,
// including partial step output when the run fails midway.
type WorkflowResult struct {
	CaseID    string           `json:"case_id"`
	PatientID string           `json:"patient_id"`
	Status    WorkflowStatus   `json:"status"`
	Steps     WorkflowSteps    `json:"steps"`
	Errors    []string         `json:"errors"`
	Summary   *WorkflowSummary `json:"summary,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   time.Time        `json:"ended_at"`
}

// Monitoring

// AlertSeverity classifies a monitoring alert
type AlertSeverity string

const (
	AlertInfo    AlertSeverity = "info"
	AlertWarning AlertSeverity = "warning"
	AlertUrgent  AlertSeverity = "urgent"
)

// MonitoringStatus is the overall classification of one vitals reading
type MonitoringStatus string

const (
	MonitoringNormal   MonitoringStatus = "normal"
	MonitoringConcern  MonitoringStatus = "concern"
	MonitoringCritical MonitoringStatus = "critical"
)

// VitalAlert is one alert raised against a vitals reading
type VitalAlert struct {
	Severity       AlertSeverity `json:"severity"`
	Message        string        `json:"message"`
	ActionRequired string        `json:"action_required,omitempty"`
}

// MonitoringResult is the outcome of a single-reading monitoring run
type MonitoringResult struct {
	PatientID                  string           `json:"patient_id"`
	Status                     MonitoringStatus `json:"status"`
	Alerts                     []VitalAlert     `json:"alerts"`
	Observations               []string         `json:"observations,omitempty"`
	CriticalAlertsCount        int              `json:"critical_alerts_count"`
	RequiresImmediateAttention bool             `json:"requires_immediate_attention"`
	AnalyzedAt                 time.Time        `json:"analyzed_at"`
}

// TrendDirection classifies the movement of a vital across readings
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// VitalTrend is the first-versus-last comparison for one vital sign
type VitalTrend struct {
	Trend  TrendDirection `json:"trend"`
	Change float64        `json:"change"`
}

// TrendReport is the outcome of trend analysis over historical readings.
// With fewer than two readings only Note is set.
type TrendReport struct {
	PatientID    string                `json:"patient_id"`
	ReadingCount int                   `json:"reading_count"`
	Trends       map[string]VitalTrend `json:"trends,omitempty"`
	Note         string                `json:"note,omitempty"`
}
