package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/ingest"
	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

// Monitor is the render loop. Each pass pulls at most one reading from the
// source, updates the derived state and broadcasts a fresh View.
type Monitor struct {
	source     ingest.Source
	extractor  *FeatureExtractor
	classifier *Classifier
	buffer     *TelemetryBuffer
	state      *LiveState
	alerts     *AlertGate
	hub        *Hub
	feed       *LiveFeed

	sensor   config.SensorConfig
	bounds   config.ThresholdBounds
	interval time.Duration
	window   time.Duration
	log      *slog.Logger
	now      func() time.Time

	mu         sync.RWMutex
	thresholds models.Thresholds
	features   models.FeatureVector
	view       models.View
}

// NewMonitor wires a monitor from cfg. feed may be nil.
func NewMonitor(cfg *config.Config, source ingest.Source, classifier *Classifier, hub *Hub, feed *LiveFeed, log *slog.Logger) *Monitor {
	m := &Monitor{
		source:     source,
		extractor:  NewFeatureExtractor(),
		classifier: classifier,
		buffer:     NewTelemetryBuffer(cfg.Dashboard.TelemetryCapacity),
		state:      NewLiveState(),
		alerts:     NewAlertGate(),
		hub:        hub,
		feed:       feed,
		sensor:     cfg.Sensor,
		bounds:     cfg.Classifier.Bounds,
		interval:   cfg.Dashboard.RenderInterval,
		window:     cfg.Dashboard.StalenessWindow,
		log:        log,
		now:        time.Now,
		thresholds: cfg.Classifier.Thresholds(),
	}
	m.view = m.emptyView(m.now())
	return m
}

func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("monitor running", "source", m.source.Name(), "interval", m.interval, "staleness_window", m.window)

	m.Tick(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopped")
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick runs one render pass.
func (m *Monitor) Tick(ctx context.Context) {
	start := time.Now()
	defer func() { tickDuration.Observe(time.Since(start).Seconds()) }()

	now := m.now()
	r, err := m.source.Next(ctx)
	switch {
	case err == nil:
		m.accept(r, now)
	case errors.Is(err, ingest.ErrNoUpdate):
	default:
		sourceFailures.WithLabelValues(m.source.Name()).Inc()
		if m.state.MarkOffline() {
			m.log.Warn("sensor unreachable, keeping last values", "source", m.source.Name(), "err", err)
		} else {
			m.log.Debug("sensor still unreachable", "source", m.source.Name(), "err", err)
		}
	}

	view, alert, raised := m.render(now)

	m.hub.Publish(Message{Type: MessageView, Data: view})
	if err := m.feed.Publish(ctx, Message{Type: MessageView, Data: view}); err != nil {
		m.log.Debug("live feed publish failed", "err", err)
	}

	if raised {
		alertsRaised.WithLabelValues(alert.Status).Inc()
		m.log.Info("status alert", "status", alert.Status, "message", alert.Message)
		m.hub.Publish(Message{Type: MessageAlert, Data: alert})
		if err := m.feed.Publish(ctx, Message{Type: MessageAlert, Data: alert}); err != nil {
			m.log.Debug("live feed publish failed", "err", err)
		}
	}
}

// accept runs extraction, classification and buffering exactly once for a
// new reading.
func (m *Monitor) accept(r models.Reading, now time.Time) {
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = now
	}

	fv := m.extractor.Extract(r)
	m.state.Update(r, r.ReceivedAt)
	status := m.classifier.Classify(fv, m.Thresholds())

	m.buffer.Append(models.TelemetrySample{
		Time:     r.ReceivedAt,
		Gas:      r.Gas,
		Distance: r.Distance,
		Status:   status.Key,
	})

	m.mu.Lock()
	m.features = fv
	m.mu.Unlock()

	readingsReceived.WithLabelValues(m.source.Name()).Inc()
	classifications.WithLabelValues(status.Key).Inc()
	gasReading.Set(float64(r.Gas))
	distanceReading.Set(float64(r.Distance))
	decayRisk.Set(float64(DecayRisk(r.Gas, m.sensor)))
	telemetrySamples.Set(float64(m.buffer.Len()))

	m.log.Debug("reading accepted", "gas", r.Gas, "distance", r.Distance, "delta_gas", fv.DeltaGas, "status", status.Key)
}

// render rebuilds the view from the latest reading and the current
// thresholds, so threshold changes show up without a new reading.
func (m *Monitor) render(now time.Time) (models.View, models.Alert, bool) {
	snap := m.state.Snapshot()
	th := m.Thresholds()

	m.mu.RLock()
	fv := m.features
	m.mu.RUnlock()

	view := m.emptyView(now)
	view.Thresholds = th
	view.Connectivity.Connected = snap.Connected
	view.Connectivity.LastUpdate = snap.LastUpdate
	view.Connectivity.Online = snap.Live(now, m.window)
	if !snap.LastUpdate.IsZero() {
		view.Connectivity.SecondsSinceUpdate = int(now.Sub(snap.LastUpdate).Seconds())
	}

	if view.Connectivity.Online {
		deviceOnline.Set(1)
	} else {
		deviceOnline.Set(0)
	}

	var (
		alert  models.Alert
		raised bool
	)
	if snap.HasReading {
		view.HasReading = true
		view.Reading = snap.Reading
		view.Features = fv
		view.Status = m.classifier.Classify(fv, th)
		view.Indicators = BuildIndicators(snap.Reading, th, m.sensor)
		alert, raised = m.alerts.Observe(view.Status, now)
	}

	m.mu.Lock()
	m.view = view
	m.mu.Unlock()
	return view, alert, raised
}

func (m *Monitor) emptyView(now time.Time) models.View {
	return models.View{
		Time:        now,
		Status:      models.StatusFor(models.LabelNormal),
		Thresholds:  m.Thresholds(),
		ModelLoaded: m.classifier.ModelLoaded(),
		Connectivity: models.Connectivity{
			Source: m.source.Name(),
		},
	}
}

func (m *Monitor) View() models.View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view
}

func (m *Monitor) Thresholds() models.Thresholds {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.thresholds
}

func (m *Monitor) Bounds() config.ThresholdBounds {
	return m.bounds
}

// SetThresholds takes effect on the next render pass.
func (m *Monitor) SetThresholds(th models.Thresholds) error {
	if err := m.bounds.Check(th); err != nil {
		return err
	}

	m.mu.Lock()
	prev := m.thresholds
	m.thresholds = th
	m.mu.Unlock()

	m.log.Info("thresholds updated", "gas", th.Gas, "distance", th.Distance, "previous_gas", prev.Gas, "previous_distance", prev.Distance)
	return nil
}

func (m *Monitor) Telemetry(limit int) []models.TelemetrySample {
	return m.buffer.Last(limit)
}

// Reset empties the telemetry history. The current reading and the delta
// baseline are kept.
func (m *Monitor) Reset(ctx context.Context) {
	m.buffer.Clear()
	telemetrySamples.Set(0)
	if err := m.feed.Clear(ctx); err != nil {
		m.log.Warn("clearing live feed failed", "err", err)
	}
	m.log.Info("telemetry history cleared")
}
