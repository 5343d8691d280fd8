package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for wololo.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Wake     WakeConfig     `yaml:"wake"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StorageConfig selects the device repository backend.
type StorageConfig struct {
	// Backend is "file" (durable) or "memory" (volatile).
	Backend string `yaml:"backend"`

	// Path is the YAML records file used by the file backend.
	Path string `yaml:"path"`

	// CreateIfMissing creates an empty records file on first start.
	CreateIfMissing bool `yaml:"create_if_missing"`
}

// WakeConfig contains magic packet and liveness check settings.
type WakeConfig struct {
	// BroadcastAddr is the UDP destination for magic packets.
	BroadcastAddr string `yaml:"broadcast_addr"`

	// CheckInterval is the wait before each liveness probe.
	CheckInterval time.Duration `yaml:"check_interval"`

	// CheckRetries is the number of probes before a host is reported down.
	CheckRetries int `yaml:"check_retries"`

	// DialTimeout bounds a single TCP probe.
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// TopicPrefix is the root of every topic the service uses.
	TopicPrefix string `yaml:"topic_prefix"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"` // seconds
	MaxDelay     int `yaml:"max_delay"`     // seconds
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing file is not an error: the CLI works out of the box with defaults
// and environment variables. Any other read or parse failure is.
//
// Environment variables follow the pattern: WOLOLO_SECTION_KEY
// For example: WOLOLO_STORAGE_PATH, WOLOLO_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults + environment only
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:         "file",
			Path:            "devices.yml",
			CreateIfMissing: true,
		},
		Wake: WakeConfig{
			BroadcastAddr: "255.255.255.255:9",
			CheckInterval: 5 * time.Second,
			CheckRetries:  6,
			DialTimeout:   2 * time.Second,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "wololo",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			TopicPrefix: "wololo",
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: WOLOLO_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	// Storage
	if v := os.Getenv("WOLOLO_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("WOLOLO_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	// Wake
	if v := os.Getenv("WOLOLO_WAKE_BROADCAST_ADDR"); v != "" {
		cfg.Wake.BroadcastAddr = v
	}

	// MQTT
	if v := os.Getenv("WOLOLO_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("WOLOLO_MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing WOLOLO_MQTT_PORT: %w", err)
		}
		cfg.MQTT.Broker.Port = port
	}
	if v := os.Getenv("WOLOLO_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("WOLOLO_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("WOLOLO_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("WOLOLO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	// Storage validation
	switch c.Storage.Backend {
	case "file":
		if c.Storage.Path == "" {
			errs = append(errs, "storage.path is required for the file backend")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("storage.backend must be \"file\" or \"memory\", got %q", c.Storage.Backend))
	}

	// Wake validation
	if c.Wake.BroadcastAddr == "" {
		errs = append(errs, "wake.broadcast_addr is required")
	}
	if c.Wake.CheckRetries < 0 {
		errs = append(errs, "wake.check_retries cannot be negative")
	}
	if c.Wake.CheckInterval < 0 || c.Wake.DialTimeout < 0 {
		errs = append(errs, "wake durations cannot be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.TopicPrefix == "" || strings.ContainsAny(c.MQTT.TopicPrefix, "+#") {
		errs = append(errs, "mqtt.topic_prefix must be non-empty and free of wildcards")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
