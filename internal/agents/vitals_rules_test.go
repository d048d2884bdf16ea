package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain-agent-server/internal/domain"
)

func normalResult() *domain.MonitoringResult {
	return &domain.MonitoringResult{PatientID: "p1", Status: domain.MonitoringNormal}
}

func TestCriticalThresholdsTachycardia(t *testing.T) {
	result := normalResult()

	ApplyCriticalThresholds(result, domain.VitalsReading{HeartRate: f64(125)})

	require.Len(t, result.Alerts, 1)
	assert.Equal(t, domain.AlertUrgent, result.Alerts[0].Severity)
	assert.Equal(t, "Critical: Tachycardia detected (HR: 125)", result.Alerts[0].Message)
	assert.Equal(t, domain.MonitoringCritical, result.Status)
	assert.True(t, result.RequiresImmediateAttention)
	assert.Equal(t, 1, result.CriticalAlertsCount)
}

func TestCriticalThresholdsBradycardia(t *testing.T) {
	result := normalResult()

	ApplyCriticalThresholds(result, domain.VitalsReading{HeartRate: f64(45)})

	require.Len(t, result.Alerts, 1)
	assert.Contains(t, result.Alerts[0].Message, "Bradycardia")
	assert.Equal(t, domain.MonitoringCritical, result.Status)
}

func TestCriticalThresholdsHypertensiveCrisis(t *testing.T) {
	tests := []struct {
		name string
		sys  float64
		dia  float64
	}{
		{"systolic above 180", 185, 95},
		{"diastolic above 120", 160, 125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalResult()

			ApplyCriticalThresholds(result, domain.VitalsReading{
				BloodPressureSystolic:  f64(tt.sys),
				BloodPressureDiastolic: f64(tt.dia),
			})

			require.Len(t, result.Alerts, 1)
			assert.Contains(t, result.Alerts[0].Message, "Hypertensive crisis")
		})
	}
}

func TestCriticalThresholdsHypotension(t *testing.T) {
	result := normalResult()

	ApplyCriticalThresholds(result, domain.VitalsReading{BloodPressureSystolic: f64(85)})

	require.Len(t, result.Alerts, 1)
	assert.Contains(t, result.Alerts[0].Message, "Hypotension")
}

func TestCriticalThresholdsTemperature(t *testing.T) {
	result := normalResult()
	ApplyCriticalThresholds(result, domain.VitalsReading{Temperature: f64(40.1)})
	require.Len(t, result.Alerts, 1)
	assert.Contains(t, result.Alerts[0].Message, "High fever")

	result = normalResult()
	ApplyCriticalThresholds(result, domain.VitalsReading{Temperature: f64(34.2)})
	require.Len(t, result.Alerts, 1)
	assert.Contains(t, result.Alerts[0].Message, "Hypothermia")
}

func TestCriticalThresholdsHypoxemia(t *testing.T) {
	result := normalResult()

	ApplyCriticalThresholds(result, domain.VitalsReading{OxygenSaturation: f64(88)})

	require.Len(t, result.Alerts, 1)
	assert.Contains(t, result.Alerts[0].Message, "Hypoxemia")
}

func TestCriticalThresholdsNormalVitalsProduceNoAlerts(t *testing.T) {
	result := normalResult()

	ApplyCriticalThresholds(result, domain.VitalsReading{
		HeartRate:              f64(75),
		BloodPressureSystolic:  f64(120),
		BloodPressureDiastolic: f64(80),
		Temperature:            f64(37.0),
		OxygenSaturation:       f64(98),
	})

	assert.Empty(t, result.Alerts)
	assert.Equal(t, domain.MonitoringNormal, result.Status)
	assert.False(t, result.RequiresImmediateAttention)
	assert.Zero(t, result.CriticalAlertsCount)
}

func TestCriticalThresholdsUpgradeOnly(t *testing.T) {
	// A critical status from the model must survive a normal reading.
	result := &domain.MonitoringResult{PatientID: "p1", Status: domain.MonitoringCritical}

	ApplyCriticalThresholds(result, domain.VitalsReading{HeartRate: f64(75)})

	assert.Equal(t, domain.MonitoringCritical, result.Status)
}

func TestCriticalThresholdsAbsentVitalsAreSkipped(t *testing.T) {
	result := normalResult()

	ApplyCriticalThresholds(result, domain.VitalsReading{})

	assert.Empty(t, result.Alerts)
	assert.Equal(t, domain.MonitoringNormal, result.Status)
}

func readingsHR(values ...float64) []domain.VitalsReading {
	readings := make([]domain.VitalsReading, len(values))
	for i, v := range values {
		readings[i] = domain.VitalsReading{HeartRate: f64(v)}
	}
	return readings
}

func TestComputeTrendsInsufficientData(t *testing.T) {
	report := ComputeTrends("p1", readingsHR(70))

	assert.Equal(t, 1, report.ReadingCount)
	assert.Empty(t, report.Trends)
	assert.Equal(t, "Insufficient data for trend analysis (minimum 2 readings required)", report.Note)
}

func TestComputeTrendsStable(t *testing.T) {
	report := ComputeTrends("p1", readingsHR(70, 70))

	require.Contains(t, report.Trends, "heart_rate")
	assert.Equal(t, domain.TrendStable, report.Trends["heart_rate"].Trend)
	assert.Zero(t, report.Trends["heart_rate"].Change)
	assert.Empty(t, report.Note)
}

func TestComputeTrendsIncreasing(t *testing.T) {
	report := ComputeTrends("p1", readingsHR(60, 90))

	require.Contains(t, report.Trends, "heart_rate")
	assert.Equal(t, domain.TrendIncreasing, report.Trends["heart_rate"].Trend)
	assert.Equal(t, 30.0, report.Trends["heart_rate"].Change)
}

func TestComputeTrendsDecreasing(t *testing.T) {
	report := ComputeTrends("p1", readingsHR(90, 85, 60))

	require.Contains(t, report.Trends, "heart_rate")
	assert.Equal(t, domain.TrendDecreasing, report.Trends["heart_rate"].Trend)
	assert.Equal(t, -30.0, report.Trends["heart_rate"].Change)
}

func TestComputeTrendsComparesFirstAndLastOnly(t *testing.T) {
	// Intermediate values never influence the classification.
	report := ComputeTrends("p1", readingsHR(70, 120, 40, 70))

	assert.Equal(t, domain.TrendStable, report.Trends["heart_rate"].Trend)
	assert.Zero(t, report.Trends["heart_rate"].Change)
}

func TestComputeTrendsPerVitalIndependence(t *testing.T) {
	readings := []domain.VitalsReading{
		{HeartRate: f64(60), Temperature: f64(38.0)},
		{HeartRate: f64(90), Temperature: f64(36.5)},
	}

	report := ComputeTrends("p1", readings)

	assert.Equal(t, domain.TrendIncreasing, report.Trends["heart_rate"].Trend)
	assert.Equal(t, domain.TrendDecreasing, report.Trends["temperature"].Trend)
	assert.NotContains(t, report.Trends, "oxygen_saturation")
}

func TestComputeTrendsSkipsVitalsWithSingleValue(t *testing.T) {
	readings := []domain.VitalsReading{
		{HeartRate: f64(60), OxygenSaturation: f64(97)},
		{HeartRate: f64(80)},
	}

	report := ComputeTrends("p1", readings)

	assert.Contains(t, report.Trends, "heart_rate")
	assert.NotContains(t, report.Trends, "oxygen_saturation")
}
