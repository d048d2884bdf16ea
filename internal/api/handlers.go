package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/review"
)

// respondError maps application errors onto HTTP responses. Validation
// failures are client errors; unknown failures never leak internals.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrValidation, validationErr.Message, validationErr.Field, requestID))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			"NOT_FOUND", "resource not found", err.Error(), requestID))
	case errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusConflict, domain.NewAPIError(
			domain.ErrInvalidInput, "invalid status transition", err.Error(), requestID))
	default:
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       c.FullPath(),
		}).WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrInternalServer, "internal server error", "", requestID))
	}
}

func (s *Server) bindError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")
	c.JSON(http.StatusBadRequest, domain.NewAPIError(
		domain.ErrInvalidInput, "invalid request body", err.Error(), requestID))
}

// Patients

// handleCreatePatient registers a new patient profile
func (s *Server) handleCreatePatient(c *gin.Context) {
	var profile domain.PatientProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		s.bindError(c, err)
		return
	}

	if err := profile.Validate(); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.deps.Patients.Create(c.Request.Context(), &profile); err != nil {
		s.respondError(c, err)
		return
	}

	// Graph mirror is best-effort
	if s.deps.Graph != nil {
		if err := s.deps.Graph.CreatePatientNode(c.Request.Context(), &profile); err != nil {
			s.log.WithError(err).WithField("patient_id", profile.ID).Warn("Failed to mirror patient to graph")
		}
	}

	c.JSON(http.StatusCreated, profile)
}

// handleGetPatient retrieves a patient profile by ID
func (s *Server) handleGetPatient(c *gin.Context) {
	profile, err := s.deps.Patients.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleGetPatientHistory returns the patient's case history from the graph
func (s *Server) handleGetPatientHistory(c *gin.Context) {
	patientID := c.Param("id")

	history, err := s.deps.Graph.GetPatientHistory(c.Request.Context(), patientID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if history == nil {
		history = []domain.CaseHistoryEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"patient_id": patientID,
		"cases":      history,
		"count":      len(history),
	})
}

// Cases

type createCaseRequest struct {
	PatientID string            `json:"patient_id"`
	Symptoms  domain.SymptomSet `json:"symptoms"`
}

// handleCreateCase opens a new diagnostic case for a patient
func (s *Server) handleCreateCase(c *gin.Context) {
	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	if req.PatientID == "" {
		s.respondError(c, domain.NewValidationError("patient_id", "patient id is required", req.PatientID))
		return
	}
	if err := req.Symptoms.Validate(); err != nil {
		s.respondError(c, err)
		return
	}

	// The patient must exist before a case can reference it
	if _, err := s.deps.Patients.GetByID(c.Request.Context(), req.PatientID); err != nil {
		s.respondError(c, err)
		return
	}

	clinicalCase := &domain.Case{
		PatientID: req.PatientID,
		Symptoms:  req.Symptoms,
	}
	if err := s.deps.Cases.Create(c.Request.Context(), clinicalCase); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clinicalCase)
}

// handleAnalyzeCase runs the diagnostic workflow synchronously. A workflow
// that fails midway is still a successful HTTP exchange: the partial result
// is returned with status failed.
func (s *Server) handleAnalyzeCase(c *gin.Context) {
	caseID := c.Param("id")
	ctx := c.Request.Context()

	clinicalCase, err := s.deps.Cases.GetByID(ctx, caseID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// Analysis only starts from pending; completed, reviewed, and errored
	// cases keep their terminal status.
	if clinicalCase.Status != domain.StatusPending {
		s.respondError(c, fmt.Errorf("case %s is %s: %w",
			caseID, clinicalCase.Status, domain.ErrInvalidStatus))
		return
	}

	patient, err := s.deps.Patients.GetByID(ctx, clinicalCase.PatientID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result := s.deps.Workflow.Run(ctx, clinicalCase, *patient)
	c.JSON(http.StatusOK, result)
}

// handleGetCase retrieves a full case record
func (s *Server) handleGetCase(c *gin.Context) {
	clinicalCase, err := s.deps.Cases.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clinicalCase)
}

// handleGetCaseStatus returns just the lifecycle status of a case
func (s *Server) handleGetCaseStatus(c *gin.Context) {
	clinicalCase, err := s.deps.Cases.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"case_id":    clinicalCase.ID,
		"status":     clinicalCase.Status,
		"updated_at": clinicalCase.UpdatedAt,
	})
}

// Reviews

type submitReviewRequest struct {
	Reviewer string          `json:"reviewer"`
	Decision review.Decision `json:"decision"`
	Comments string          `json:"comments"`
}

// handleSubmitReview records a clinician's verdict on a case. Reviewing a
// completed case advances it to reviewed.
func (s *Server) handleSubmitReview(c *gin.Context) {
	caseID := c.Param("id")
	ctx := c.Request.Context()

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	if req.Reviewer == "" {
		s.respondError(c, domain.NewValidationError("reviewer", "reviewer is required", req.Reviewer))
		return
	}
	if !review.ValidDecision(req.Decision) {
		s.respondError(c, domain.NewValidationError("decision", "decision must be one of approved, needs_revision, rejected", req.Decision))
		return
	}

	clinicalCase, err := s.deps.Cases.GetByID(ctx, caseID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rv := &review.Review{
		CaseID:   caseID,
		Reviewer: req.Reviewer,
		Decision: req.Decision,
		Comments: req.Comments,
	}
	if err := s.deps.Reviews.Save(ctx, rv); err != nil {
		s.respondError(c, err)
		return
	}

	if clinicalCase.Status == domain.StatusCompleted {
		if err := s.deps.Cases.UpdateStatus(ctx, caseID, domain.StatusReviewed); err != nil {
			s.log.WithError(err).WithField("case_id", caseID).Warn("Failed to mark case reviewed")
		}
	}

	c.JSON(http.StatusCreated, rv)
}

// handleListReviews returns all reviews for a case
func (s *Server) handleListReviews(c *gin.Context) {
	caseID := c.Param("id")

	reviews, err := s.deps.Reviews.ListByCase(c.Request.Context(), caseID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []*review.Review{}
	}

	c.JSON(http.StatusOK, gin.H{
		"case_id": caseID,
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// Monitoring

// handleMonitorVitals analyzes a single vitals reading
func (s *Server) handleMonitorVitals(c *gin.Context) {
	var reading domain.VitalsReading
	if err := c.ShouldBindJSON(&reading); err != nil {
		s.bindError(c, err)
		return
	}

	if err := reading.Validate(); err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.deps.Monitoring.AnalyzeVitals(c.Request.Context(), reading)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type trendsRequest struct {
	PatientID string                 `json:"patient_id"`
	Readings  []domain.VitalsReading `json:"readings"`
}

// handleMonitorTrends computes per-vital trends over historical readings
func (s *Server) handleMonitorTrends(c *gin.Context) {
	var req trendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}

	if req.PatientID == "" {
		s.respondError(c, domain.NewValidationError("patient_id", "patient id is required", req.PatientID))
		return
	}

	report := s.deps.Monitoring.AnalyzeTrends(req.PatientID, req.Readings)
	c.JSON(http.StatusOK, report)
}

// Usage stats

// handleUsageStats returns cumulative model usage
func (s *Server) handleUsageStats(c *gin.Context) {
	if s.deps.Usage == nil {
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			"NOT_FOUND", "usage accounting is not configured", "", c.GetString("request_id")))
		return
	}
	c.JSON(http.StatusOK, s.deps.Usage.UsageStats())
}

// handleResetUsageStats zeroes the usage counters
func (s *Server) handleResetUsageStats(c *gin.Context) {
	if s.deps.Usage == nil {
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			"NOT_FOUND", "usage accounting is not configured", "", c.GetString("request_id")))
		return
	}
	s.deps.Usage.ResetUsageStats()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
