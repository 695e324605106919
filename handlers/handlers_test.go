package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/ingest"
	"github.com/Faarae/dashboard-SmartEcoBin/models"
	"github.com/Faarae/dashboard-SmartEcoBin/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type queueSource struct {
	mu       sync.Mutex
	readings []models.Reading
}

func (s *queueSource) Name() string                    { return "test" }
func (s *queueSource) Start(ctx context.Context) error { return nil }
func (s *queueSource) Close() error                    { return nil }

func (s *queueSource) Next(ctx context.Context) (models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readings) == 0 {
		return models.Reading{}, ingest.ErrNoUpdate
	}
	r := s.readings[0]
	s.readings = s.readings[1:]
	return r, nil
}

type fixture struct {
	router  *gin.Engine
	monitor *services.Monitor
	hub     *services.Hub
	source  *queueSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Classifier: config.ClassifierConfig{
			GasThreshold:      800,
			DistanceThreshold: 5,
			Bounds:            config.ThresholdBounds{GasMin: 300, GasMax: 1500, DistanceMin: 2, DistanceMax: 15},
		},
		Sensor:    config.SensorConfig{GasMax: 1500, BinDepthCM: 28, DecayBaseline: 300, DecaySpan: 800},
		Dashboard: config.DashboardConfig{RenderInterval: time.Second, StalenessWindow: 15 * time.Second, TelemetryCapacity: 50},
		CORS:      config.CORSConfig{AllowedOrigins: "*"},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := &queueSource{}
	hub := services.NewHub()
	monitor := services.NewMonitor(cfg, src, services.NewClassifier(nil, log), hub, nil, log)

	return &fixture{
		router:  SetupRouter(cfg, monitor, hub, log),
		monitor: monitor,
		hub:     hub,
		source:  src,
	}
}

func (f *fixture) feed(readings ...models.Reading) {
	for _, r := range readings {
		f.source.mu.Lock()
		f.source.readings = append(f.source.readings, r)
		f.source.mu.Unlock()
		f.monitor.Tick(context.Background())
	}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	if w := f.do(http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/metrics", ""); w.Code != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", w.Code)
	}
}

func TestGetStatus(t *testing.T) {
	f := newFixture(t)
	f.feed(models.Reading{Gas: 1200, Distance: 20})

	w := f.do(http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var view models.View
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Status.Key != "decomposing" || view.Reading.Gas != 1200 {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestGetTelemetry(t *testing.T) {
	f := newFixture(t)
	f.feed(
		models.Reading{Gas: 500, Distance: 20},
		models.Reading{Gas: 510, Distance: 19},
		models.Reading{Gas: 520, Distance: 18},
	)

	tests := []struct {
		query string
		count int
		first int
	}{
		{"", 3, 500},
		{"?limit=2", 2, 510},
		{"?limit=abc", 3, 500},
		{"?limit=-4", 3, 500},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := f.do(http.MethodGet, "/api/telemetry"+tt.query, "")
			var resp struct {
				Data  []models.TelemetrySample `json:"data"`
				Count int                      `json:"count"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Count != tt.count || resp.Data[0].Gas != tt.first {
				t.Errorf("got %d samples starting at %d, want %d starting at %d", resp.Count, resp.Data[0].Gas, tt.count, tt.first)
			}
		})
	}
}

func TestUpdateThresholds(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		code     int
		gas      int
		distance int
	}{
		{"both", `{"gas": 1000, "distance": 7}`, http.StatusOK, 1000, 7},
		{"gas only", `{"gas": 600}`, http.StatusOK, 600, 5},
		{"distance only", `{"distance": 2}`, http.StatusOK, 800, 2},
		{"gas too high", `{"gas": 2000}`, http.StatusBadRequest, 800, 5},
		{"distance too low", `{"distance": 1}`, http.StatusBadRequest, 800, 5},
		{"empty", `{}`, http.StatusBadRequest, 800, 5},
		{"not json", `gas=1`, http.StatusBadRequest, 800, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(http.MethodPut, "/api/thresholds", tt.body)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
			if got := f.monitor.Thresholds(); got.Gas != tt.gas || got.Distance != tt.distance {
				t.Errorf("thresholds = %+v, want gas=%d distance=%d", got, tt.gas, tt.distance)
			}
		})
	}
}

func TestGetThresholds(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/thresholds", "")
	var resp struct {
		Thresholds models.Thresholds      `json:"thresholds"`
		Bounds     config.ThresholdBounds `json:"bounds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Thresholds.Gas != 800 || resp.Bounds.DistanceMax != 15 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestResetAndExport(t *testing.T) {
	f := newFixture(t)
	f.feed(models.Reading{Gas: 500, Distance: 20}, models.Reading{Gas: 100, Distance: 3})

	w := f.do(http.MethodGet, "/api/export.csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "Waktu,Gas,Jarak,Status" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][1] != "100" || records[2][2] != "3" || records[2][3] != "full" {
		t.Errorf("row = %v", records[2])
	}

	if w := f.do(http.MethodPost, "/api/reset", ""); w.Code != http.StatusOK {
		t.Fatalf("reset returned %d", w.Code)
	}
	records, _ = csv.NewReader(f.do(http.MethodGet, "/api/export.csv", "").Body).ReadAll()
	if len(records) != 1 {
		t.Errorf("export after reset has %d records, want header only", len(records))
	}
}

func TestLiveWebSocket(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var first services.Message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial view: %v", err)
	}
	if first.Type != services.MessageView {
		t.Errorf("first message type = %q", first.Type)
	}

	deadline := time.Now().Add(2 * time.Second)
	for f.hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	f.feed(models.Reading{Gas: 100, Distance: 3})

	var got []string
	for len(got) < 2 {
		var m services.Message
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		got = append(got, m.Type)
	}
	if got[0] != services.MessageView || got[1] != services.MessageAlert {
		t.Errorf("messages = %v, want [view alert]", got)
	}
}
