package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/config"
	"github.com/Faarae/dashboard-SmartEcoBin/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MQTTSubscriber listens on one topic. Only the newest reading is kept
// between render passes.
type MQTTSubscriber struct {
	cfg     config.MQTTConfig
	client  mqtt.Client
	updates chan models.Reading
	log     *slog.Logger
	now     func() time.Time
}

func NewMQTTSubscriber(cfg config.MQTTConfig, log *slog.Logger) *MQTTSubscriber {
	s := &MQTTSubscriber{
		cfg:     cfg,
		updates: make(chan models.Reading, 1),
		log:     log,
		now:     time.Now,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID + "-" + uuid.NewString()[:8])
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.OnConnect = s.onConnect
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		s.log.Warn("mqtt connection lost", "broker", cfg.BrokerURL, "err", err)
	}

	s.client = mqtt.NewClient(opts)
	return s
}

func (s *MQTTSubscriber) Name() string { return config.SourceMQTT }

// Start connects to the broker. If the broker is not reachable within the
// connect timeout the client keeps retrying in the background.
func (s *MQTTSubscriber) Start(ctx context.Context) error {
	token := s.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.ConnectTimeout):
		return fmt.Errorf("mqtt connect to %s: no answer after %s, retrying in background", s.cfg.BrokerURL, s.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", s.cfg.BrokerURL, err)
	}
	return nil
}

func (s *MQTTSubscriber) onConnect(c mqtt.Client) {
	token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		s.log.Error("mqtt subscribe failed", "topic", s.cfg.Topic, "err", err)
		return
	}
	s.log.Info("mqtt subscribed", "broker", s.cfg.BrokerURL, "topic", s.cfg.Topic)
}

func (s *MQTTSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	gas, distance, err := ParsePayload(msg.Payload())
	if err != nil {
		msgsRejected.WithLabelValues(config.SourceMQTT).Inc()
		s.log.Debug("discarding payload", "topic", msg.Topic(), "err", err)
		return
	}
	msgsReceived.WithLabelValues(config.SourceMQTT).Inc()
	s.offer(models.Reading{Gas: gas, Distance: distance, ReceivedAt: s.now()})
}

// offer replaces any reading the render loop has not consumed yet.
func (s *MQTTSubscriber) offer(r models.Reading) {
	for {
		select {
		case s.updates <- r:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func (s *MQTTSubscriber) Next(ctx context.Context) (models.Reading, error) {
	select {
	case r := <-s.updates:
		return r, nil
	default:
		return models.Reading{}, ErrNoUpdate
	}
}

func (s *MQTTSubscriber) Close() error {
	s.client.Disconnect(250)
	return nil
}
