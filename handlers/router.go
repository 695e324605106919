// Package handlers exposes the dashboard over HTTP and WebSocket.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/middleware"
	"github.com/Faarae/dashboard-SmartEcoBin/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(cfg *config.Config, monitor *services.Monitor, hub *services.Hub, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.SetupCORS(cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"message": "Eco-bin dashboard is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	dashboard := NewDashboardHandler(monitor, log)
	api := router.Group("/api")
	{
		api.GET("/status", dashboard.GetStatus)
		api.GET("/telemetry", dashboard.GetTelemetry)
		api.GET("/thresholds", dashboard.GetThresholds)
		api.PUT("/thresholds", dashboard.UpdateThresholds)
		api.POST("/reset", dashboard.Reset)
		api.GET("/export.csv", dashboard.ExportCSV)
	}

	router.GET("/ws", LiveWebSocket(hub, monitor, log))
	return router
}
