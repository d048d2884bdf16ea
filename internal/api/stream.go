package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/medichain-agent-server/internal/agents"
	"github.com/medichain-agent-server/internal/domain"
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	streamWriteWait = 10 * time.Second
	streamReadLimit = 64 * 1024
)

// streamError is sent to the client when a frame cannot be processed
type streamError struct {
	Error string `json:"error"`
}

// handleMonitorStream upgrades the connection to a websocket. Each inbound
// frame is one vitals reading; the reply is the threshold evaluation for
// that reading. Only the deterministic rule layer runs here so the stream
// stays low-latency regardless of model availability.
func (s *Server) handleMonitorStream(c *gin.Context) {
	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(streamReadLimit)
	s.log.WithField("remote", conn.RemoteAddr().String()).Info("Vitals stream opened")

	for {
		var reading domain.VitalsReading
		if err := conn.ReadJSON(&reading); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Debug("Vitals stream closed unexpectedly")
			}
			return
		}

		conn.SetWriteDeadline(time.Now().Add(streamWriteWait))

		if err := reading.Validate(); err != nil {
			if writeErr := conn.WriteJSON(streamError{Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		result := &domain.MonitoringResult{
			PatientID:  reading.PatientID,
			Status:     domain.MonitoringNormal,
			Alerts:     []domain.VitalAlert{},
			AnalyzedAt: time.Now().UTC(),
		}
		agents.ApplyCriticalThresholds(result, reading)

		if err := conn.WriteJSON(result); err != nil {
			return
		}
	}
}
