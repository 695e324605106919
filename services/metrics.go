package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	readingsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobin_readings_received_total",
		Help: "Total number of new sensor readings processed by the render loop.",
	}, []string{"source"})
	sourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobin_source_failures_total",
		Help: "Total number of failed reads from the ingestion source.",
	}, []string{"source"})
	classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobin_classifications_total",
		Help: "Total number of new readings classified, by status.",
	}, []string{"status"})
	modelFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecobin_model_fallbacks_total",
		Help: "Total number of model votes replaced by normal after an error.",
	})
	alertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecobin_alerts_total",
		Help: "Total number of status-change alerts raised.",
	}, []string{"status"})

	deviceOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecobin_device_online",
		Help: "1 while the sensor reported within the staleness window.",
	})
	gasReading = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecobin_gas_reading",
		Help: "Last raw gas reading.",
	})
	distanceReading = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecobin_distance_cm",
		Help: "Last distance to the waste surface in centimetres.",
	})
	decayRisk = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecobin_decay_risk_percent",
		Help: "Decay risk derived from the last gas reading.",
	})
	telemetrySamples = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecobin_telemetry_samples",
		Help: "Samples currently held in the telemetry buffer.",
	})
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecobin_render_tick_seconds",
		Help:    "Time spent in one render pass.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
)
