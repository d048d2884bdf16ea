package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain-agent-server/internal/domain"
)

func dialStream(t *testing.T) (*websocket.Conn, func()) {
	t.Helper()

	env := newTestEnv()
	srv := httptest.NewServer(env.server.Handler())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/monitor/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestMonitorStream_NormalReading(t *testing.T) {
	conn, cleanup := dialStream(t)
	defer cleanup()

	hr := 75.0
	require.NoError(t, conn.WriteJSON(domain.VitalsReading{PatientID: "p1", HeartRate: &hr}))

	var result domain.MonitoringResult
	require.NoError(t, conn.ReadJSON(&result))

	assert.Equal(t, "p1", result.PatientID)
	assert.Equal(t, domain.MonitoringNormal, result.Status)
	assert.Empty(t, result.Alerts)
	assert.Zero(t, result.CriticalAlertsCount)
}

func TestMonitorStream_CriticalReading(t *testing.T) {
	conn, cleanup := dialStream(t)
	defer cleanup()

	spo2 := 85.0
	require.NoError(t, conn.WriteJSON(domain.VitalsReading{PatientID: "p1", OxygenSaturation: &spo2}))

	var result domain.MonitoringResult
	require.NoError(t, conn.ReadJSON(&result))

	assert.Equal(t, domain.MonitoringCritical, result.Status)
	assert.True(t, result.RequiresImmediateAttention)
	require.Len(t, result.Alerts, 1)
	assert.Equal(t, "Critical: Hypoxemia (O2 Sat: 85%)", result.Alerts[0].Message)
}

func TestMonitorStream_InvalidReading(t *testing.T) {
	conn, cleanup := dialStream(t)
	defer cleanup()

	hr := 500.0
	require.NoError(t, conn.WriteJSON(domain.VitalsReading{PatientID: "p1", HeartRate: &hr}))

	var errMsg streamError
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Contains(t, errMsg.Error, "heart rate")

	// Connection stays open for subsequent readings
	ok := 80.0
	require.NoError(t, conn.WriteJSON(domain.VitalsReading{PatientID: "p1", HeartRate: &ok}))

	var result domain.MonitoringResult
	require.NoError(t, conn.ReadJSON(&result))
	assert.Equal(t, domain.MonitoringNormal, result.Status)
}
