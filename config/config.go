package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Faarae/dashboard-SmartEcoBin/models"
)

const (
	SourceMQTT = "mqtt"
	SourceHTTP = "http"
)

var ErrThresholdOutOfRange = errors.New("threshold out of range")

type Config struct {
	Server     ServerConfig
	Source     SourceConfig
	MQTT       MQTTConfig
	Classifier ClassifierConfig
	Sensor     SensorConfig
	Dashboard  DashboardConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
}

type SourceConfig struct {
	Kind        string
	PollURL     string
	PollTimeout time.Duration
}

type MQTTConfig struct {
	BrokerURL      string
	Topic          string
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	ConnectTimeout time.Duration
}

type ClassifierConfig struct {
	ModelPath         string
	GasThreshold      int
	DistanceThreshold int
	Bounds            ThresholdBounds
}

// ThresholdBounds limits what the dashboard sliders may set.
type ThresholdBounds struct {
	GasMin      int `json:"gas_min"`
	GasMax      int `json:"gas_max"`
	DistanceMin int `json:"distance_min"`
	DistanceMax int `json:"distance_max"`
}

// SensorConfig describes the deployed hardware. Gas ranges differ between
// sensor boards (0-1500 vs 0-4095) so none of this is inferred.
type SensorConfig struct {
	GasMax        int
	BinDepthCM    int
	DecayBaseline int
	DecaySpan     int
}

type DashboardConfig struct {
	RenderInterval    time.Duration
	StalenessWindow   time.Duration
	TelemetryCapacity int
}

type RedisConfig struct {
	URL     string
	Channel string
	Key     string
}

type CORSConfig struct {
	AllowedOrigins string
}

type LogConfig struct {
	Level string
}

func (c ClassifierConfig) Thresholds() models.Thresholds {
	return models.Thresholds{Gas: c.GasThreshold, Distance: c.DistanceThreshold}
}

func (b ThresholdBounds) Check(th models.Thresholds) error {
	if th.Gas < b.GasMin || th.Gas > b.GasMax {
		return fmt.Errorf("%w: gas threshold %d outside [%d, %d]", ErrThresholdOutOfRange, th.Gas, b.GasMin, b.GasMax)
	}
	if th.Distance < b.DistanceMin || th.Distance > b.DistanceMax {
		return fmt.Errorf("%w: distance threshold %d outside [%d, %d]", ErrThresholdOutOfRange, th.Distance, b.DistanceMin, b.DistanceMax)
	}
	return nil
}

func LoadConfig() (*Config, error) {
	var errs []error
	intEnv := func(key string, fallback int) int {
		v, err := getIntEnv(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}
	durationEnv := func(key string, fallback time.Duration) time.Duration {
		v, err := getDurationEnv(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}

	gasMax := intEnv("SENSOR_GAS_MAX", 1500)

	qos := intEnv("MQTT_QOS", 0)
	if qos < 0 || qos > 2 {
		errs = append(errs, fmt.Errorf("invalid MQTT_QOS: must be 0, 1 or 2, got %d", qos))
		qos = 0
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: intEnv("SERVER_PORT", 8080),
		},
		Source: SourceConfig{
			Kind:        strings.ToLower(getEnv("SOURCE_KIND", SourceMQTT)),
			PollURL:     getEnv("POLL_URL", "http://192.168.4.1/data"),
			PollTimeout: durationEnv("POLL_TIMEOUT", 2*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerURL:      getEnv("MQTT_BROKER_URL", "tcp://broker.hivemq.com:1883"),
			Topic:          getEnv("MQTT_TOPIC", "rinoya/sic7/data"),
			ClientID:       getEnv("MQTT_CLIENT_ID", "ecobin-dashboard"),
			Username:       os.Getenv("MQTT_USERNAME"),
			Password:       os.Getenv("MQTT_PASSWORD"),
			QoS:            byte(qos),
			ConnectTimeout: durationEnv("MQTT_CONNECT_TIMEOUT", 10*time.Second),
		},
		Classifier: ClassifierConfig{
			ModelPath:         getEnv("MODEL_PATH", "model_sampah.json"),
			GasThreshold:      intEnv("GAS_THRESHOLD", 800),
			DistanceThreshold: intEnv("DISTANCE_THRESHOLD", 5),
			Bounds: ThresholdBounds{
				GasMin:      intEnv("GAS_THRESHOLD_MIN", 300),
				GasMax:      intEnv("GAS_THRESHOLD_MAX", gasMax),
				DistanceMin: intEnv("DISTANCE_THRESHOLD_MIN", 2),
				DistanceMax: intEnv("DISTANCE_THRESHOLD_MAX", 15),
			},
		},
		Sensor: SensorConfig{
			GasMax:        gasMax,
			BinDepthCM:    intEnv("BIN_DEPTH_CM", 28),
			DecayBaseline: intEnv("DECAY_BASELINE", 300),
			DecaySpan:     intEnv("DECAY_SPAN", 800),
		},
		Dashboard: DashboardConfig{
			RenderInterval:    durationEnv("RENDER_INTERVAL", time.Second),
			StalenessWindow:   durationEnv("STALENESS_WINDOW", 15*time.Second),
			TelemetryCapacity: intEnv("TELEMETRY_CAPACITY", 50),
		},
		Redis: RedisConfig{
			URL:     os.Getenv("REDIS_URL"),
			Channel: getEnv("REDIS_CHANNEL", "ecobin:live"),
			Key:     getEnv("REDIS_KEY", "ecobin:status"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceMQTT:
		if c.MQTT.BrokerURL == "" || c.MQTT.Topic == "" {
			return errors.New("mqtt source requires MQTT_BROKER_URL and MQTT_TOPIC")
		}
		if c.MQTT.QoS > 2 {
			return fmt.Errorf("MQTT_QOS must be 0, 1 or 2, got %d", c.MQTT.QoS)
		}
		if c.MQTT.ConnectTimeout <= 0 {
			return errors.New("MQTT_CONNECT_TIMEOUT must be positive")
		}
	case SourceHTTP:
		if c.Source.PollURL == "" {
			return errors.New("http source requires POLL_URL")
		}
		if c.Source.PollTimeout <= 0 {
			return errors.New("POLL_TIMEOUT must be positive")
		}
	default:
		return fmt.Errorf("unknown SOURCE_KIND %q (want %q or %q)", c.Source.Kind, SourceMQTT, SourceHTTP)
	}

	b := c.Classifier.Bounds
	if b.GasMin > b.GasMax || b.DistanceMin > b.DistanceMax {
		return fmt.Errorf("threshold bounds are inverted: %+v", b)
	}
	if b.GasMax > c.Sensor.GasMax {
		return fmt.Errorf("GAS_THRESHOLD_MAX %d exceeds SENSOR_GAS_MAX %d", b.GasMax, c.Sensor.GasMax)
	}
	if err := b.Check(c.Classifier.Thresholds()); err != nil {
		return err
	}

	if c.Sensor.BinDepthCM <= 0 || c.Sensor.DecaySpan <= 0 {
		return errors.New("BIN_DEPTH_CM and DECAY_SPAN must be positive")
	}
	if c.Dashboard.RenderInterval <= 0 || c.Dashboard.StalenessWindow <= 0 {
		return errors.New("RENDER_INTERVAL and STALENESS_WINDOW must be positive")
	}
	if c.Dashboard.TelemetryCapacity <= 0 {
		return errors.New("TELEMETRY_CAPACITY must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// getDurationEnv accepts Go durations ("1500ms") or whole seconds ("2").
func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(value)
}
