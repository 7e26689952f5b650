package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Publisher selects where submission events go.
const (
	PublisherNone    = "none"
	PublisherChannel = "channel"
	PublisherKafka   = "kafka"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Assessment struct {
		TTL string `yaml:"ttl"`
		// CaptureSequences lets learners answer matching and ordering questions.
		CaptureSequences bool `yaml:"capture_sequences"`
	} `yaml:"assessment"`
	Events struct {
		Publisher    string   `yaml:"publisher"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
		Topic        string   `yaml:"topic"`
	} `yaml:"events"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Load reads YAML config from path. ${VAR} references are expanded from the
// environment before parsing.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Events.Publisher {
	case "", PublisherNone, PublisherChannel:
	case PublisherKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return fmt.Errorf("events: kafka publisher needs kafka_brokers")
		}
	default:
		return fmt.Errorf("events: unknown publisher %q", c.Events.Publisher)
	}
	return nil
}

// EventsTopic returns the configured topic or the default one.
func (c Config) EventsTopic() string {
	if c.Events.Topic == "" {
		return "assessment.submitted"
	}
	return c.Events.Topic
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
