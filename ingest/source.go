// Package ingest reads bin sensor readings from the device, either by polling
// its HTTP endpoint or by subscribing to its MQTT topic.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

// ErrNoUpdate means nothing new arrived since the previous Next call.
var ErrNoUpdate = errors.New("no new reading")

type Source interface {
	Name() string
	// Start begins receiving. A returned error is not fatal for sources
	// that keep retrying in the background.
	Start(ctx context.Context) error
	// Next returns the newest reading, ErrNoUpdate, or a transport error.
	Next(ctx context.Context) (models.Reading, error)
	Close() error
}

func New(cfg *config.Config, log *slog.Logger) (Source, error) {
	switch cfg.Source.Kind {
	case config.SourceHTTP:
		return NewHTTPPoller(cfg.Source, log), nil
	case config.SourceMQTT:
		return NewMQTTSubscriber(cfg.MQTT, log), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}
