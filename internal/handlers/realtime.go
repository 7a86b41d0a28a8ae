// internal/handlers/realtime.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sapmusicgroup/sap-backend/internal/realtime"
)

type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// GET /realtime
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	conn, err := realtime.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logrus.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	h.hub.ServeWS(conn, a.ID, a.IsAdmin())
}
