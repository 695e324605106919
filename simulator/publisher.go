package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const publishTimeout = 5 * time.Second

// Publisher sends one simulated reading per interval to the device topic.
type Publisher struct {
	cfg      config.MQTTConfig
	client   mqtt.Client
	bin      *Bin
	interval time.Duration
	log      *slog.Logger
}

func NewPublisher(cfg config.MQTTConfig, bin *Bin, interval time.Duration, log *slog.Logger) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID("ecobin-sim-" + uuid.NewString()[:8])
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)

	return &Publisher{
		cfg:      cfg,
		client:   mqtt.NewClient(opts),
		bin:      bin,
		interval: interval,
		log:      log,
	}
}

func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(p.cfg.ConnectTimeout) {
		return fmt.Errorf("mqtt connect to %s: timed out after %s", p.cfg.BrokerURL, p.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", p.cfg.BrokerURL, err)
	}
	return nil
}

// Run publishes until ctx is cancelled. Failed publishes are logged and the
// loop carries on, like the device does.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("simulator publishing", "broker", p.cfg.BrokerURL, "topic", p.cfg.Topic, "interval", p.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.PublishOnce(); err != nil {
				p.log.Warn("publish failed", "err", err)
			}
		}
	}
}

func (p *Publisher) PublishOnce() error {
	gas, distance, spike := p.bin.Step()
	payload := Payload(gas, distance)

	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %q: timed out", payload)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %q: %w", payload, err)
	}
	p.log.Debug("published", "payload", payload, "spike", spike)
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
