package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

const maxBodyBytes = 64 << 10

var errMissingField = errors.New("missing field")

// HTTPPoller fetches one reading per Next call. Failures are returned as is;
// the render loop decides how to surface them and polls again next pass.
type HTTPPoller struct {
	url    string
	client *http.Client
	log    *slog.Logger
	now    func() time.Time
}

func NewHTTPPoller(cfg config.SourceConfig, log *slog.Logger) *HTTPPoller {
	return &HTTPPoller{
		url:    cfg.PollURL,
		client: &http.Client{Timeout: cfg.PollTimeout},
		log:    log,
		now:    time.Now,
	}
}

func (p *HTTPPoller) Name() string { return config.SourceHTTP }

func (p *HTTPPoller) Start(ctx context.Context) error {
	p.log.Info("polling sensor over http", "url", p.url, "timeout", p.client.Timeout)
	return nil
}

func (p *HTTPPoller) Next(ctx context.Context) (models.Reading, error) {
	r, err := p.poll(ctx)
	if err != nil {
		pollFailures.Inc()
		return models.Reading{}, err
	}
	msgsReceived.WithLabelValues(config.SourceHTTP).Inc()
	return r, nil
}

func (p *HTTPPoller) poll(ctx context.Context) (models.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return models.Reading{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return models.Reading{}, fmt.Errorf("poll %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Reading{}, fmt.Errorf("poll %s: unexpected status %d", p.url, resp.StatusCode)
	}

	var body map[string]any
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		msgsRejected.WithLabelValues(config.SourceHTTP).Inc()
		return models.Reading{}, fmt.Errorf("decode reading: %w", err)
	}

	gas, err := coerceInt(body["gas"])
	if err != nil {
		msgsRejected.WithLabelValues(config.SourceHTTP).Inc()
		return models.Reading{}, fmt.Errorf("gas: %w", err)
	}

	rawDistance := body["distance"]
	if rawDistance == nil {
		rawDistance = body["jarak"]
	}
	distance, err := coerceInt(rawDistance)
	if err != nil {
		msgsRejected.WithLabelValues(config.SourceHTTP).Inc()
		return models.Reading{}, fmt.Errorf("distance: %w", err)
	}

	status, _ := body["status"].(string)
	return models.Reading{
		Gas:          gas,
		Distance:     distance,
		DeviceStatus: status,
		ReceivedAt:   p.now(),
	}, nil
}

func (p *HTTPPoller) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// coerceInt accepts JSON numbers and numeric strings. Fractions are truncated.
func coerceInt(v any) (int, error) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, errMissingField
	case json.Number:
		if i, err := x.Int64(); err == nil {
			f = float64(i)
			break
		}
		parsed, err := x.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not numeric", x)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("value %v out of range", f)
	}
	return int(f), nil
}
