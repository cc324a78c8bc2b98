package controllers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/gourmet-house/config"
	"github.com/yeremiapane/gourmet-house/database"
	"github.com/yeremiapane/gourmet-house/realtime"
)

type HealthController struct {
	Store   *database.Store
	Config  *config.Config
	Hub     *realtime.Hub
	Started time.Time
}

func NewHealthController(store *database.Store, cfg *config.Config, hub *realtime.Hub) *HealthController {
	return &HealthController{Store: store, Config: cfg, Hub: hub, Started: time.Now()}
}

func (hc *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health handles GET /api/health and reports 503 when the database is down.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hc.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
		"uptime":   time.Since(hc.Started).Round(time.Second).String(),
	})
}

// Test handles GET /api/test
func (hc *HealthController) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "API is working",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": hc.Config.App.Env,
	})
}

// Debug handles GET /api/debug. It is only routed outside production.
func (hc *HealthController) Debug(c *gin.Context) {
	stats := hc.Store.Stats()
	clients := 0
	if hc.Hub != nil {
		clients = hc.Hub.Count()
	}
	c.JSON(http.StatusOK, gin.H{
		"environment": hc.Config.App.Env,
		"goVersion":   runtime.Version(),
		"database": gin.H{
			"driver":          hc.Config.Database.Driver,
			"host":            hc.Config.Database.Host,
			"name":            hc.Config.Database.Name,
			"user":            hc.Config.Database.MaskedUser(),
			"hasPassword":     hc.Config.Database.Password != "",
			"openConnections": stats.OpenConnections,
			"inUse":           stats.InUse,
			"idle":            stats.Idle,
		},
		"redisConfigured":    hc.Config.Redis.Addr != "",
		"rabbitmqConfigured": hc.Config.Queue.URL != "",
		"realtimeClients":    clients,
	})
}
