package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
)

// SymptomAnalyzer generates candidate diagnoses from a symptom presentation
type SymptomAnalyzer interface {
	Analyze(ctx context.Context, patient domain.PatientProfile, symptoms domain.SymptomSet) (*domain.SymptomAnalysisResult, error)
}

// DiagnosisValidator validates diagnoses against medical literature
type DiagnosisValidator interface {
	ValidateDiagnoses(ctx context.Context, diagnoses []domain.Diagnosis, patient domain.PatientProfile) (*domain.ResearchResult, error)
}

// TreatmentPlanner produces a treatment plan for the primary diagnosis
type TreatmentPlanner interface {
	Recommend(ctx context.Context, diagnosis domain.Diagnosis, patient domain.PatientProfile, research *domain.ResearchResult) (*domain.TreatmentResult, error)
}

// SafetyReviewer checks a plan against HIPAA, FDA, and ethics policy
type SafetyReviewer interface {
	Review(ctx context.Context, diagnosis domain.Diagnosis, plan domain.TreatmentPlan, patient domain.PatientProfile) (*domain.SafetyResult, error)
}

// topDiagnosesToMirror caps the diagnosis nodes written to the graph store
const topDiagnosesToMirror = 3

// DiagnosticWorkflow runs the five-stage diagnostic pipeline:
// symptom analysis, literature validation, treatment planning, safety
// review, and persistence. Stages run strictly in sequence; a failure
// returns the partial step results accumulated so far.
type DiagnosticWorkflow struct {
	analyzer  SymptomAnalyzer
	validator DiagnosisValidator
	planner   TreatmentPlanner
	reviewer  SafetyReviewer
	cases     domain.CaseRepository
	graph     domain.GraphStore
	logger    *logrus.Logger
}

// NewDiagnosticWorkflow creates a diagnostic workflow. cases and graph may be
// nil, in which case the persistence stage records the stores as skipped.
func NewDiagnosticWorkflow(
	analyzer SymptomAnalyzer,
	validator DiagnosisValidator,
	planner TreatmentPlanner,
	reviewer SafetyReviewer,
	cases domain.CaseRepository,
	graph domain.GraphStore,
	logger *logrus.Logger,
) *DiagnosticWorkflow {
	return &DiagnosticWorkflow{
		analyzer:  analyzer,
		validator: validator,
		planner:   planner,
		reviewer:  reviewer,
		cases:     cases,
		graph:     graph,
		logger:    logger,
	}
}

// Run executes the pipeline for one case. Anticipated failures are recorded
// in the result rather than returned: the error list carries stage messages
// and the status distinguishes completed from failed runs.
func (w *DiagnosticWorkflow) Run(ctx context.Context, c *domain.Case, patient domain.PatientProfile) *domain.WorkflowResult {
	w.logger.WithFields(logrus.Fields{
		"case_id":    c.ID,
		"patient_id": patient.ID,
	}).Info("Starting diagnostic workflow")

	result := &domain.WorkflowResult{
		CaseID:    c.ID,
		PatientID: patient.ID,
		Status:    domain.WorkflowInProgress,
		Errors:    []string{},
		StartedAt: time.Now().UTC(),
	}

	w.markInProgress(ctx, c)

	// Step 1: Symptom Analysis
	w.logger.WithField("case_id", c.ID).Info("Step 1/5: Symptom Analysis")
	analysis, err := w.analyzer.Analyze(ctx, patient, c.Symptoms)
	if err != nil {
		return w.fail(result, err.Error())
	}
	result.Steps.SymptomAnalysis = analysis

	if len(analysis.Diagnoses) == 0 {
		return w.fail(result, "No diagnoses generated")
	}
	primary := analysis.Diagnoses[0]

	// Step 2: Literature Validation
	w.logger.WithField("case_id", c.ID).Info("Step 2/5: Literature Validation")
	research, err := w.validator.ValidateDiagnoses(ctx, analysis.Diagnoses, patient)
	if err != nil {
		return w.fail(result, err.Error())
	}
	result.Steps.MedicalResearch = research

	// Step 3: Treatment Recommendation
	w.logger.WithField("case_id", c.ID).Info("Step 3/5: Treatment Recommendation")
	treatment, err := w.planner.Recommend(ctx, primary, patient, research)
	if err != nil {
		return w.fail(result, err.Error())
	}
	result.Steps.TreatmentPlanning = treatment

	// Step 4: Safety Review
	w.logger.WithField("case_id", c.ID).Info("Step 4/5: Safety Review")
	safety, err := w.reviewer.Review(ctx, primary, treatment.Plan, patient)
	if err != nil {
		return w.fail(result, err.Error())
	}
	result.Steps.SafetyReview = safety

	// Non-compliance is a warning, not a pipeline halt.
	if !safety.Review.Compliant {
		result.Errors = append(result.Errors, "Safety compliance issues detected. Manual review required.")
		w.logger.WithField("case_id", c.ID).Warn("Safety compliance issues detected")
	}

	// Step 5: Persistence. Failures are recorded in the step result and the
	// workflow still completes.
	w.logger.WithField("case_id", c.ID).Info("Step 5/5: Storing Results")
	result.Steps.DataStorage = w.store(ctx, c, patient, analysis, treatment)

	result.Status = domain.WorkflowCompleted
	result.EndedAt = time.Now().UTC()

	medications := make([]string, 0, len(treatment.Plan.Medications))
	for _, med := range treatment.Plan.Medications {
		medications = append(medications, med.Name)
	}
	result.Summary = &domain.WorkflowSummary{
		PrimaryDiagnosis:     primary.Name,
		ICD10Code:            primary.ICD10Code,
		Confidence:           primary.Confidence,
		TreatmentMedications: medications,
		SafetyCompliant:      safety.Review.Compliant,
		ResearchSources:      research.EvidenceSummary.TotalSources,
	}

	w.logger.WithFields(logrus.Fields{
		"case_id":           c.ID,
		"primary_diagnosis": primary.Name,
		"compliant":         safety.Review.Compliant,
	}).Info("Diagnostic workflow completed")

	return result
}

// fail finalizes a result after an unrecoverable stage error. Partial step
// results stay in place and the case row is marked errored.
func (w *DiagnosticWorkflow) fail(result *domain.WorkflowResult, msg string) *domain.WorkflowResult {
	w.logger.WithFields(logrus.Fields{
		"case_id": result.CaseID,
		"error":   msg,
	}).Warn("Diagnostic workflow failed")

	result.Status = domain.WorkflowFailed
	result.Errors = append(result.Errors, msg)
	result.EndedAt = time.Now().UTC()

	if w.cases != nil {
		if err := w.cases.UpdateStatus(context.Background(), result.CaseID, domain.StatusError); err != nil {
			w.logger.WithError(err).Error("Failed to mark case as errored")
		}
	}
	return result
}

// markInProgress moves the case out of pending. A persistence error here is
// logged and the run continues; the final store step retries the write.
func (w *DiagnosticWorkflow) markInProgress(ctx context.Context, c *domain.Case) {
	c.Status = domain.StatusInProgress
	if w.cases == nil {
		return
	}
	if err := w.cases.UpdateStatus(ctx, c.ID, domain.StatusInProgress); err != nil {
		w.logger.WithError(err).Error("Failed to mark case in progress")
	}
}

// store writes the completed case to the relational store and mirrors the
// case plus its top diagnoses to the graph store
func (w *DiagnosticWorkflow) store(ctx context.Context, c *domain.Case, patient domain.PatientProfile, analysis *domain.SymptomAnalysisResult, treatment *domain.TreatmentResult) *domain.StorageResult {
	storage := &domain.StorageResult{CompletedAt: time.Now().UTC()}

	c.Diagnoses = analysis.Diagnoses
	c.Treatment = &treatment.Plan
	c.Status = domain.StatusCompleted
	c.UpdatedAt = time.Now().UTC()

	if w.cases != nil {
		if err := w.cases.Update(ctx, c); err != nil {
			storage.Error = err.Error()
			w.logger.WithFields(logrus.Fields{
				"case_id": c.ID,
				"error":   err,
			}).Error("Failed to store case")
		} else {
			storage.RelationalStored = true
		}
	}

	if w.graph != nil {
		if err := w.mirrorToGraph(ctx, c); err != nil {
			if storage.Error == "" {
				storage.Error = err.Error()
			}
			w.logger.WithFields(logrus.Fields{
				"case_id": c.ID,
				"error":   err,
			}).Error("Failed to mirror case to graph store")
		} else {
			storage.GraphStored = true
		}
	}

	return storage
}

func (w *DiagnosticWorkflow) mirrorToGraph(ctx context.Context, c *domain.Case) error {
	if err := w.graph.CreateCaseNode(ctx, c); err != nil {
		return err
	}
	top := c.Diagnoses
	if len(top) > topDiagnosesToMirror {
		top = top[:topDiagnosesToMirror]
	}
	for _, diagnosis := range top {
		if err := w.graph.AddDiagnosis(ctx, c.ID, diagnosis); err != nil {
			return err
		}
	}
	return nil
}
