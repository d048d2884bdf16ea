package orchestrator

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
)

// VitalsAnalyzer analyzes vitals readings and trends
type VitalsAnalyzer interface {
	AnalyzeVitals(ctx context.Context, reading domain.VitalsReading, baseline *domain.VitalsReading, patient *domain.PatientProfile) (*domain.MonitoringResult, error)
	AnalyzeTrends(patientID string, readings []domain.VitalsReading) *domain.TrendReport
}

// MonitoringWorkflow runs the single-step vitals analysis and the trend
// computation over historical readings. Patient context is loaded from the
// repository when the caller does not supply it.
type MonitoringWorkflow struct {
	monitor  VitalsAnalyzer
	patients domain.PatientRepository
	logger   *logrus.Logger
}

// NewMonitoringWorkflow creates a monitoring workflow. patients may be nil
// when no patient lookup is available.
func NewMonitoringWorkflow(monitor VitalsAnalyzer, patients domain.PatientRepository, logger *logrus.Logger) *MonitoringWorkflow {
	return &MonitoringWorkflow{monitor: monitor, patients: patients, logger: logger}
}

// AnalyzeVitals evaluates one reading. A missing patient record is not an
// error: the analysis proceeds without demographic context.
func (w *MonitoringWorkflow) AnalyzeVitals(ctx context.Context, reading domain.VitalsReading) (*domain.MonitoringResult, error) {
	w.logger.WithField("patient_id", reading.PatientID).Info("Starting monitoring workflow")

	var patient *domain.PatientProfile
	if w.patients != nil {
		found, err := w.patients.GetByID(ctx, reading.PatientID)
		switch {
		case err == nil:
			patient = found
		case errors.Is(err, domain.ErrNotFound):
			w.logger.WithField("patient_id", reading.PatientID).Debug("No patient record, analyzing without context")
		default:
			w.logger.WithError(err).Warn("Patient lookup failed, analyzing without context")
		}
	}

	return w.monitor.AnalyzeVitals(ctx, reading, nil, patient)
}

// AnalyzeTrends computes per-vital trends across the given readings
func (w *MonitoringWorkflow) AnalyzeTrends(patientID string, readings []domain.VitalsReading) *domain.TrendReport {
	return w.monitor.AnalyzeTrends(patientID, readings)
}
