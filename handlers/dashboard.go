package handlers

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/models"
	"github.com/Faarae/dashboard-SmartEcoBin/services"

	"github.com/gin-gonic/gin"
)

const (
	exportFilename   = "ecobin_telemetry.csv"
	exportTimeLayout = "2006-01-02 15:04:05"
)

var exportHeader = []string{"Waktu", "Gas", "Jarak", "Status"}

type DashboardHandler struct {
	monitor *services.Monitor
	log     *slog.Logger
}

func NewDashboardHandler(monitor *services.Monitor, log *slog.Logger) *DashboardHandler {
	return &DashboardHandler{monitor: monitor, log: log}
}

func (h *DashboardHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.View())
}

func (h *DashboardHandler) GetTelemetry(c *gin.Context) {
	samples := h.monitor.Telemetry(ParseLimit(c))
	c.JSON(http.StatusOK, gin.H{
		"data":  samples,
		"count": len(samples),
	})
}

func (h *DashboardHandler) GetThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"thresholds": h.monitor.Thresholds(),
		"bounds":     h.monitor.Bounds(),
	})
}

type thresholdsRequest struct {
	Gas      *int `json:"gas"`
	Distance *int `json:"distance"`
}

// UpdateThresholds accepts either threshold or both; an omitted one keeps its
// current value.
func (h *DashboardHandler) UpdateThresholds(c *gin.Context) {
	var req thresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Gas == nil && req.Distance == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gas or distance is required"})
		return
	}

	th := h.monitor.Thresholds()
	if req.Gas != nil {
		th.Gas = *req.Gas
	}
	if req.Distance != nil {
		th.Distance = *req.Distance
	}

	if err := h.monitor.SetThresholds(th); err != nil {
		if errors.Is(err, config.ErrThresholdOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  err.Error(),
				"bounds": h.monitor.Bounds(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update thresholds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"thresholds": th,
		"bounds":     h.monitor.Bounds(),
	})
}

func (h *DashboardHandler) Reset(c *gin.Context) {
	h.monitor.Reset(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	samples := h.monitor.Telemetry(0)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, s := range samples {
		_ = w.Write(exportRow(s))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.Warn("csv export failed", "err", err)
	}
}

func exportRow(s models.TelemetrySample) []string {
	return []string{
		s.Time.Format(exportTimeLayout),
		strconv.Itoa(s.Gas),
		strconv.Itoa(s.Distance),
		s.Status,
	}
}
