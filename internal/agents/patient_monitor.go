package agents

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/llm"
)

// PatientMonitor analyzes vitals readings for anomalies and trends
type PatientMonitor struct {
	model ModelClient
	log   *logrus.Logger
}

// NewPatientMonitor creates a patient monitor
func NewPatientMonitor(model ModelClient, logger *logrus.Logger) *PatientMonitor {
	return &PatientMonitor{model: model, log: logger}
}

type monitoringPayload struct {
	Status string `json:"status"`
	Alerts []struct {
		Type           string `json:"type"`
		Message        string `json:"message"`
		ActionRequired string `json:"action_required"`
	} `json:"alerts"`
	Observations []string `json:"observations"`
}

// AnalyzeVitals runs the model-driven anomaly analysis and then the critical
// threshold layer. The rule layer can only upgrade severity: any urgent
// threshold breach forces the overall status to critical no matter what the
// model concluded.
func (m *PatientMonitor) AnalyzeVitals(ctx context.Context, reading domain.VitalsReading, baseline *domain.VitalsReading, patient *domain.PatientProfile) (*domain.MonitoringResult, error) {
	m.log.WithField("patient_id", reading.PatientID).Info("Analyzing vitals")

	conditions := "None reported"
	age := "unknown"
	if patient != nil {
		conditions = joinOrNone(patient.MedicalHistory)
		age = strconv.Itoa(patient.Age)
	}

	prompt := fmt.Sprintf(vitalsMonitoringPrompt,
		reading.PatientID,
		formatVitals(&reading),
		formatVitals(baseline),
		conditions,
		age,
	)

	resp, err := m.model.Complete(ctx, &llm.Request{
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   2000,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("vitals analysis: %w", err)
	}

	result := &domain.MonitoringResult{
		PatientID: reading.PatientID,
		Status:    domain.MonitoringNormal,
	}

	var payload monitoringPayload
	if err := decodeModelJSON(resp.Text, &payload); err != nil {
		m.log.WithError(err).Error("Failed to parse monitoring response")
	} else {
		result.Status = normalizeMonitoringStatus(payload.Status)
		result.Observations = payload.Observations
		for _, alert := range payload.Alerts {
			result.Alerts = append(result.Alerts, domain.VitalAlert{
				Severity:       normalizeAlertSeverity(alert.Type),
				Message:        alert.Message,
				ActionRequired: alert.ActionRequired,
			})
		}
	}

	ApplyCriticalThresholds(result, reading)
	result.AnalyzedAt = time.Now().UTC()

	m.log.WithFields(logrus.Fields{
		"patient_id":      reading.PatientID,
		"status":          result.Status,
		"critical_alerts": result.CriticalAlertsCount,
	}).Info("Vitals analysis complete")

	return result, nil
}

// AnalyzeTrends computes per-vital trends across historical readings.
// No model call is involved; the computation is fully deterministic.
func (m *PatientMonitor) AnalyzeTrends(patientID string, readings []domain.VitalsReading) *domain.TrendReport {
	m.log.WithFields(logrus.Fields{
		"patient_id": patientID,
		"readings":   len(readings),
	}).Info("Analyzing vitals trends")

	return ComputeTrends(patientID, readings)
}

func normalizeAlertSeverity(s string) domain.AlertSeverity {
	switch s {
	case "urgent":
		return domain.AlertUrgent
	case "warning":
		return domain.AlertWarning
	default:
		return domain.AlertInfo
	}
}

func normalizeMonitoringStatus(s string) domain.MonitoringStatus {
	switch s {
	case "critical":
		return domain.MonitoringCritical
	case "warning", "concern":
		return domain.MonitoringConcern
	default:
		return domain.MonitoringNormal
	}
}
