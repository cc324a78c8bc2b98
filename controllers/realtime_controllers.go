package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/gourmet-house/middlewares"
	"github.com/yeremiapane/gourmet-house/realtime"
	"github.com/yeremiapane/gourmet-house/utils"
)

type RealtimeController struct {
	Hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeController accepts upgrades from the given origins; "*" or an
// empty list accepts any.
func NewRealtimeController(hub *realtime.Hub, origins []string) *RealtimeController {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return &RealtimeController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
	}
}

// BookingFeed handles GET /ws/bookings
func (rc *RealtimeController) BookingFeed(c *gin.Context) {
	subject := c.GetString(middlewares.SubjectKey)

	ws, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	rc.Hub.Register(ws, subject)

	// the feed is one-way; reads only detect disconnects
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	rc.Hub.Unregister(ws)
}
