package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoChannels     = errors.New("config: no channels configured")
	ErrInvalidChannel = errors.New("config: invalid channel")
)

// Config is loaded from YAML; secrets and endpoints can be overridden from
// EXTACLIMATE_* environment variables.
type Config struct {
	EntryID  string          `yaml:"entry_id"`
	HTTP     HTTPConfig      `yaml:"http"`
	Logging  LoggingConfig   `yaml:"logging"`
	MQTT     MQTTConfig      `yaml:"mqtt"`
	Channels []ChannelConfig `yaml:"channels"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

type MQTTConfig struct {
	Broker          string        `yaml:"broker"`
	ClientID        string        `yaml:"client_id"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	TopicPrefix     string        `yaml:"topic_prefix"`
	QoS             int           `yaml:"qos"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	ResponseTimeout time.Duration `yaml:"response_timeout"`
	Retries         int           `yaml:"retries"`
}

// ChannelConfig seeds one heat controller channel. Temperatures are in
// tenths of a degree, as reported by the controller.
type ChannelConfig struct {
	ID                   string `yaml:"id"`
	Alias                string `yaml:"alias"`
	WorkMode             bool   `yaml:"work_mode"`
	Value                *int   `yaml:"value"`
	Temperature          *int   `yaml:"temperature"`
	WaitingToSynchronize *bool  `yaml:"waiting_to_synchronize"`
	TemperatureOld       *int   `yaml:"temperature_old"`
}

func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		EntryID: "extalife",
		HTTP: HTTPConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		MQTT: MQTTConfig{
			Broker:          "tcp://localhost:1883",
			ClientID:        "extaclimate",
			TopicPrefix:     "extalife",
			QoS:             1,
			ConnectTimeout:  10 * time.Second,
			ResponseTimeout: 500 * time.Millisecond,
			Retries:         5,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EXTACLIMATE_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("EXTACLIMATE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("EXTACLIMATE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("EXTACLIMATE_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = port
		}
	}
	if v := os.Getenv("EXTACLIMATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	var errs []string

	if c.EntryID == "" {
		errs = append(errs, "entry_id is required")
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "http.port must be between 1 and 65535")
	}
	if c.MQTT.Broker == "" {
		errs = append(errs, "mqtt.broker is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Retries < 0 {
		errs = append(errs, "mqtt.retries must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	if len(c.Channels) == 0 {
		return ErrNoChannels
	}
	seen := make(map[string]bool, len(c.Channels))
	for i, ch := range c.Channels {
		if ch.ID == "" {
			return fmt.Errorf("%w: channels[%d] has no id", ErrInvalidChannel, i)
		}
		if seen[ch.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidChannel, ch.ID)
		}
		seen[ch.ID] = true
	}
	return nil
}
