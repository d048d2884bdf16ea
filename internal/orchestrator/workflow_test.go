package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain-agent-server/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type fakeAnalyzer struct {
	result *domain.SymptomAnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, patient domain.PatientProfile, symptoms domain.SymptomSet) (*domain.SymptomAnalysisResult, error) {
	return f.result, f.err
}

type fakeValidator struct {
	result *domain.ResearchResult
	err    error
	got    []domain.Diagnosis
}

func (f *fakeValidator) ValidateDiagnoses(ctx context.Context, diagnoses []domain.Diagnosis, patient domain.PatientProfile) (*domain.ResearchResult, error) {
	f.got = diagnoses
	return f.result, f.err
}

type fakePlanner struct {
	result *domain.TreatmentResult
	err    error
	got    domain.Diagnosis
}

func (f *fakePlanner) Recommend(ctx context.Context, diagnosis domain.Diagnosis, patient domain.PatientProfile, research *domain.ResearchResult) (*domain.TreatmentResult, error) {
	f.got = diagnosis
	return f.result, f.err
}

type fakeReviewer struct {
	result *domain.SafetyResult
	err    error
}

func (f *fakeReviewer) Review(ctx context.Context, diagnosis domain.Diagnosis, plan domain.TreatmentPlan, patient domain.PatientProfile) (*domain.SafetyResult, error) {
	return f.result, f.err
}

type fakeCaseRepo struct {
	statuses  []domain.CaseStatus
	updated   *domain.Case
	updateErr error
	statusErr error
}

func (f *fakeCaseRepo) Create(ctx context.Context, c *domain.Case) error { return nil }
func (f *fakeCaseRepo) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeCaseRepo) Update(ctx context.Context, c *domain.Case) error {
	f.updated = c
	return f.updateErr
}
func (f *fakeCaseRepo) UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error {
	f.statuses = append(f.statuses, status)
	return f.statusErr
}

type fakeGraph struct {
	caseNodes  []string
	diagnoses  []domain.Diagnosis
	caseErr    error
	addDiagErr error
}

func (f *fakeGraph) CreatePatientNode(ctx context.Context, p *domain.PatientProfile) error {
	return nil
}
func (f *fakeGraph) CreateCaseNode(ctx context.Context, c *domain.Case) error {
	f.caseNodes = append(f.caseNodes, c.ID)
	return f.caseErr
}
func (f *fakeGraph) AddDiagnosis(ctx context.Context, caseID string, d domain.Diagnosis) error {
	f.diagnoses = append(f.diagnoses, d)
	return f.addDiagErr
}
func (f *fakeGraph) GetPatientHistory(ctx context.Context, patientID string) ([]domain.CaseHistoryEntry, error) {
	return nil, nil
}
func (f *fakeGraph) Close(ctx context.Context) error { return nil }

func workflowPatient() domain.PatientProfile {
	return domain.PatientProfile{ID: "patient-1", Name: "Jo Doe", Age: 34, Gender: domain.GenderFemale, ConsentOnFile: true}
}

func workflowCase() *domain.Case {
	return &domain.Case{
		ID:        "case-1",
		PatientID: "patient-1",
		Status:    domain.StatusPending,
		Symptoms: domain.SymptomSet{
			ChiefComplaint: "fever and cough",
			Symptoms:       []domain.Symptom{{Name: "fever", Severity: 7, DurationDays: 2}},
		},
	}
}

func happyPathWorkflow(repo *fakeCaseRepo, graph *fakeGraph) (*DiagnosticWorkflow, *fakeValidator, *fakePlanner) {
	analyzer := &fakeAnalyzer{result: &domain.SymptomAnalysisResult{
		Diagnoses: []domain.Diagnosis{
			{Name: "Influenza", ICD10Code: "J11.1", Confidence: 0.85},
			{Name: "Common cold", ICD10Code: "J00", Confidence: 0.4},
		},
	}}
	validator := &fakeValidator{result: &domain.ResearchResult{
		Validations: []domain.DiagnosisValidation{
			{Diagnosis: "Influenza", Supported: true, EvidenceLevel: domain.EvidenceHigh, Sources: []domain.Article{{Title: "A"}, {Title: "B"}}},
		},
		EvidenceSummary: domain.EvidenceSummary{TotalSources: 2, AvgEvidenceLevel: domain.EvidenceHigh},
	}}
	planner := &fakePlanner{result: &domain.TreatmentResult{
		Plan: domain.TreatmentPlan{Medications: []domain.Medication{{Name: "Oseltamivir"}}},
	}}
	reviewer := &fakeReviewer{result: &domain.SafetyResult{
		Review: domain.SafetyReview{Compliant: true, RiskLevel: domain.RiskLow},
	}}
	var graphStore domain.GraphStore
	if graph != nil {
		graphStore = graph
	}
	return NewDiagnosticWorkflow(analyzer, validator, planner, reviewer, repo, graphStore, quietLogger()), validator, planner
}

func TestWorkflowCompletesAllStages(t *testing.T) {
	repo := &fakeCaseRepo{}
	graph := &fakeGraph{}
	workflow, _, planner := happyPathWorkflow(repo, graph)

	result := workflow.Run(context.Background(), workflowCase(), workflowPatient())

	assert.Equal(t, domain.WorkflowCompleted, result.Status)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.Steps.SymptomAnalysis)
	require.NotNil(t, result.Steps.MedicalResearch)
	require.NotNil(t, result.Steps.TreatmentPlanning)
	require.NotNil(t, result.Steps.SafetyReview)
	require.NotNil(t, result.Steps.DataStorage)
	assert.Equal(t, "Influenza", planner.got.Name)

	require.NotNil(t, result.Summary)
	assert.Equal(t, "Influenza", result.Summary.PrimaryDiagnosis)
	assert.Equal(t, "J11.1", result.Summary.ICD10Code)
	assert.Equal(t, []string{"Oseltamivir"}, result.Summary.TreatmentMedications)
	assert.True(t, result.Summary.SafetyCompliant)
	assert.Equal(t, 2, result.Summary.ResearchSources)
}

func TestWorkflowPersistsCompletedCase(t *testing.T) {
	repo := &fakeCaseRepo{}
	graph := &fakeGraph{}
	workflow, _, _ := happyPathWorkflow(repo, graph)

	result := workflow.Run(context.Background(), workflowCase(), workflowPatient())

	require.NotNil(t, repo.updated)
	assert.Equal(t, domain.StatusCompleted, repo.updated.Status)
	assert.Len(t, repo.updated.Diagnoses, 2)
	require.NotNil(t, repo.updated.Treatment)
	assert.Equal(t, []domain.CaseStatus{domain.StatusInProgress}, repo.statuses)

	assert.Equal(t, []string{"case-1"}, graph.caseNodes)
	assert.Len(t, graph.diagnoses, 2)
	assert.True(t, result.Steps.DataStorage.RelationalStored)
	assert.True(t, result.Steps.DataStorage.GraphStored)
}

func TestWorkflowEmptyDiagnosesShortCircuits(t *testing.T) {
	repo := &fakeCaseRepo{}
	analyzer := &fakeAnalyzer{result: &domain.SymptomAnalysisResult{}}
	workflow := NewDiagnosticWorkflow(analyzer, &fakeValidator{}, &fakePlanner{}, &fakeReviewer{}, repo, nil, quietLogger())

	result := workflow.Run(context.Background(), workflowCase(), workflowPatient())

	assert.Equal(t, domain.WorkflowFailed, result.Status)
	assert.Equal(t, []string{"No diagnoses generated"}, result.Errors)
	assert.NotNil(t, result.Steps.SymptomAnalysis)
	assert.Nil(t, result.Steps.MedicalResearch)
	assert.Nil(t, result.Steps.TreatmentPlanning)
	assert.Nil(t, result.Steps.SafetyReview)
	assert.Nil(t, result.Steps.DataStorage)
	assert.Contains(t, repo.statuses, domain.StatusError)
}

func TestWorkflowAnalyzerErrorFails(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("symptom analysis: provider unavailable")}
	workflow := NewDiagnosticWorkflow(analyzer, &fakeValidator{}, &fakePlanner{}, &fakeReviewer{}, nil, nil, quietLogger())

	result := workflow.Run(context.Background(), workflowCase(), workflowPatient())

	assert.Equal(t, domain.WorkflowFailed, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "provider unavailable")
	assert.Nil(t, result.Steps.SymptomAnalysis)
}

func TestWorkflowTreatmentErrorKeepsEarlierSteps(t *testing.T) {
	repo := &fakeCaseRepo{}
	workflow, _, _ := happyPathWorkflow(repo, nil)
	failing := &fakePlanner{err: errors.New("treatment planning: provider unavailable")}
	workflow.planner = failing

	result := workflow.Run(context.Background(), workflowCase(), workflowPatient())

	assert.Equal(t, domain.WorkflowFailed, result.Status)
	assert.NotNil(t, result.Steps.SymptomAnalysis)
	assert.NotNil(t, result.Steps.MedicalResearch)
	assert.Nil(t, result.Steps.TreatmentPlanning)
	assert.Nil(t, result.Steps.SafetyReview)
	assert.Nil(t, result.Summary)
}

func TestWorkflowNonCompliantSafetyDoesNotHalt(t *testing.T) {
	repo := &fakeCaseRepo{}
	workflow, _, _ := happyPathWorkflow(repo, nil)
	workflow.reviewer = &fakeReviewer{result: &domain.SafetyResult{
		Review: domain.SafetyReview{Compliant: false, RiskLevel: domain.RiskHigh},
	}}

	result := workflow.Run(context.Background(), workflowCase(), workflowPatient())

	assert.Equal(t, domain.WorkflowCompleted, result.Status)
	assert.Contains(t, result.Errors, "Safety compliance issues detected. Manual review required.")
	require.NotNil(t, result.Summary)
	assert.False(t, result.Summary.SafetyCompliant)
	require.NotNil(t, repo.updated)
	assert.Equal(t, domain.StatusCompleted, repo.updated.Status)
}

func TestWorkflowPersistenceFailureDoesNotDowngradeStatus(t *testing.T) {
	repo := &fakeCaseRepo{updateErr: errors.New("connection refused")}
	workflow, _, _ := happyPathWorkflow(repo, nil)

	result := workflow.Run(context.Background(), workflowCase(), workflowPatient())

	assert.Equal(t, domain.WorkflowCompleted, result.Status)
	require.NotNil(t, result.Steps.DataStorage)
	assert.False(t, result.Steps.DataStorage.RelationalStored)
	assert.Equal(t, "connection refused", result.Steps.DataStorage.Error)
	assert.Empty(t, result.Errors)
}

func TestWorkflowGraphMirrorsTopThreeDiagnoses(t *testing.T) {
	graph := &fakeGraph{}
	analyzer := &fakeAnalyzer{result: &domain.SymptomAnalysisResult{
		Diagnoses: []domain.Diagnosis{
			{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"},
		},
	}}
	workflow, _, _ := happyPathWorkflow(&fakeCaseRepo{}, graph)
	workflow.analyzer = analyzer

	workflow.Run(context.Background(), workflowCase(), workflowPatient())

	require.Len(t, graph.diagnoses, 3)
	assert.Equal(t, "C", graph.diagnoses[2].Name)
}

func TestWorkflowGraphFailureRecordedInStorageStep(t *testing.T) {
	graph := &fakeGraph{caseErr: errors.New("neo4j down")}
	workflow, _, _ := happyPathWorkflow(&fakeCaseRepo{}, graph)

	result := workflow.Run(context.Background(), workflowCase(), workflowPatient())

	assert.Equal(t, domain.WorkflowCompleted, result.Status)
	assert.True(t, result.Steps.DataStorage.RelationalStored)
	assert.False(t, result.Steps.DataStorage.GraphStored)
	assert.Equal(t, "neo4j down", result.Steps.DataStorage.Error)
}

func TestWorkflowValidatorReceivesAllDiagnoses(t *testing.T) {
	workflow, validator, _ := happyPathWorkflow(&fakeCaseRepo{}, nil)

	workflow.Run(context.Background(), workflowCase(), workflowPatient())

	assert.Len(t, validator.got, 2)
}
