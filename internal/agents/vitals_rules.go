package agents

import (
	"fmt"

	"github.com/medichain-agent-server/internal/domain"
)

// Critical vital-sign thresholds. A breach always produces an urgent alert.
const (
	criticalHeartRateLow   = 50.0
	criticalHeartRateHigh  = 120.0
	criticalSystolicLow    = 90.0
	criticalSystolicHigh   = 180.0
	criticalDiastolicHigh  = 120.0
	criticalTemperatureLow = 35.0
	criticalTemperatureHigh = 39.5
	criticalOxygenSatLow   = 90.0
)

// ApplyCriticalThresholds appends urgent alerts for any vital outside its
// critical range and upgrades the overall status to critical when at least
// one urgent alert exists. It never downgrades severity.
func ApplyCriticalThresholds(result *domain.MonitoringResult, reading domain.VitalsReading) {
	var urgent []domain.VitalAlert

	if hr := reading.HeartRate; hr != nil {
		if *hr > criticalHeartRateHigh {
			urgent = append(urgent, domain.VitalAlert{
				Severity:       domain.AlertUrgent,
				Message:        fmt.Sprintf("Critical: Tachycardia detected (HR: %g)", *hr),
				ActionRequired: "Immediate medical evaluation required",
			})
		} else if *hr < criticalHeartRateLow {
			urgent = append(urgent, domain.VitalAlert{
				Severity:       domain.AlertUrgent,
				Message:        fmt.Sprintf("Critical: Bradycardia detected (HR: %g)", *hr),
				ActionRequired: "Immediate medical evaluation required",
			})
		}
	}

	if sys := reading.BloodPressureSystolic; sys != nil {
		dia := reading.BloodPressureDiastolic
		if *sys > criticalSystolicHigh || (dia != nil && *dia > criticalDiastolicHigh) {
			diaVal := 0.0
			if dia != nil {
				diaVal = *dia
			}
			urgent = append(urgent, domain.VitalAlert{
				Severity:       domain.AlertUrgent,
				Message:        fmt.Sprintf("Critical: Hypertensive crisis (BP: %g/%g)", *sys, diaVal),
				ActionRequired: "Immediate medical intervention required",
			})
		} else if *sys < criticalSystolicLow {
			urgent = append(urgent, domain.VitalAlert{
				Severity:       domain.AlertUrgent,
				Message:        fmt.Sprintf("Critical: Hypotension detected (SBP: %g)", *sys),
				ActionRequired: "Immediate medical evaluation required",
			})
		}
	}

	if temp := reading.Temperature; temp != nil {
		if *temp > criticalTemperatureHigh {
			urgent = append(urgent, domain.VitalAlert{
				Severity:       domain.AlertUrgent,
				Message:        fmt.Sprintf("Critical: High fever (Temp: %g°C)", *temp),
				ActionRequired: "Antipyretic treatment and evaluation",
			})
		} else if *temp < criticalTemperatureLow {
			urgent = append(urgent, domain.VitalAlert{
				Severity:       domain.AlertUrgent,
				Message:        fmt.Sprintf("Critical: Hypothermia (Temp: %g°C)", *temp),
				ActionRequired: "Warming measures required",
			})
		}
	}

	if o2 := reading.OxygenSaturation; o2 != nil && *o2 < criticalOxygenSatLow {
		urgent = append(urgent, domain.VitalAlert{
			Severity:       domain.AlertUrgent,
			Message:        fmt.Sprintf("Critical: Hypoxemia (O2 Sat: %g%%)", *o2),
			ActionRequired: "Oxygen therapy and immediate evaluation",
		})
	}

	if len(urgent) > 0 {
		result.Alerts = append(result.Alerts, urgent...)
		result.Status = domain.MonitoringCritical
		result.RequiresImmediateAttention = true
	}
	result.CriticalAlertsCount = len(urgent)
}

// trendedVitals are the measurements tracked by trend analysis
var trendedVitals = []string{
	"heart_rate",
	"blood_pressure_systolic",
	"temperature",
	"oxygen_saturation",
}

// vitalValue extracts a named measurement from a reading, nil when absent
func vitalValue(r domain.VitalsReading, vital string) *float64 {
	switch vital {
	case "heart_rate":
		return r.HeartRate
	case "blood_pressure_systolic":
		return r.BloodPressureSystolic
	case "temperature":
		return r.Temperature
	case "oxygen_saturation":
		return r.OxygenSaturation
	default:
		return nil
	}
}

// ComputeTrends classifies the movement of each tracked vital by comparing
// the first and last recorded value. Fewer than two readings yields an
// explicit insufficient-data note instead of trends.
func ComputeTrends(patientID string, readings []domain.VitalsReading) *domain.TrendReport {
	report := &domain.TrendReport{
		PatientID:    patientID,
		ReadingCount: len(readings),
	}

	if len(readings) < 2 {
		report.Note = "Insufficient data for trend analysis (minimum 2 readings required)"
		return report
	}

	trends := make(map[string]domain.VitalTrend)
	for _, vital := range trendedVitals {
		var values []float64
		for _, r := range readings {
			if v := vitalValue(r, vital); v != nil {
				values = append(values, *v)
			}
		}
		if len(values) < 2 {
			continue
		}

		first, last := values[0], values[len(values)-1]
		direction := domain.TrendStable
		if last > first {
			direction = domain.TrendIncreasing
		} else if last < first {
			direction = domain.TrendDecreasing
		}
		trends[vital] = domain.VitalTrend{Trend: direction, Change: last - first}
	}

	if len(trends) > 0 {
		report.Trends = trends
	}
	return report
}
