package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	MQTTBrokerURL  string
	TopicPrefix    string
	LogLevel       string
	Postgres       DBConfig
	RedisAddr      string
	RedisPassword  string
	AdapterID      string
	AdapterVersion string
	// DevicesFile is the static bulb configuration (YAML); empty means no
	// statically configured bulbs.
	DevicesFile string
	// AutomaticAdd enables periodic network scans for unconfigured bulbs.
	AutomaticAdd        bool
	PollInterval        time.Duration
	NetworkScanInterval time.Duration
	// EffectSpeed is the global preset effect speed (0..100), overridable
	// per device.
	EffectSpeed int
}

type DBConfig struct {
	User     string
	Password string
	DBName   string
	Host     string
	Port     string
}

const (
	DefaultEffectSpeed         = 50
	DefaultPollInterval        = 5 * time.Second
	DefaultNetworkScanInterval = 120 * time.Second
)

func Load() *Config {
	cfg := &Config{
		Port:                getEnv("FLUX_ADAPTER_PORT", "8094"),
		MQTTBrokerURL:       getEnv("MQTT_BROKER_URL", "mqtt://mosquitto:1883"),
		TopicPrefix:         getEnv("HDP_TOPIC_PREFIX", "smarthome"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AdapterID:           getEnv("FLUX_ADAPTER_ID", "flux"),
		AdapterVersion:      getEnv("FLUX_ADAPTER_VERSION", "dev"),
		DevicesFile:         getEnv("FLUX_DEVICES_FILE", ""),
		AutomaticAdd:        parseBool(getEnv("FLUX_AUTOMATIC_ADD", "false")),
		PollInterval:        parseDuration(getEnv("FLUX_POLL_INTERVAL", ""), DefaultPollInterval),
		NetworkScanInterval: parseDuration(getEnv("FLUX_SCAN_INTERVAL", ""), DefaultNetworkScanInterval),
		EffectSpeed:         parseSpeed(getEnv("FLUX_EFFECT_SPEED", ""), DefaultEffectSpeed),
		Postgres: DBConfig{
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   getEnv("POSTGRES_DB", "smarthome"),
			Host:     getEnv("POSTGRES_HOST", "postgres"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
		},
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
	slog.Info("flux-adapter config loaded",
		"port", cfg.Port, "mqtt", cfg.MQTTBrokerURL, "adapter_id", cfg.AdapterID,
		"devices_file", cfg.DevicesFile, "automatic_add", cfg.AutomaticAdd)
	return cfg
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseBool(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func parseDuration(val string, def time.Duration) time.Duration {
	if val == "" {
		return def
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "value", val, "default", def)
		return def
	}
	return d
}

func parseSpeed(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 || n > 100 {
		slog.Warn("invalid effect speed, using default", "value", val, "default", def)
		return def
	}
	return n
}
