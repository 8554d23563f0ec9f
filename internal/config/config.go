// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Profile persistence.
	SQLitePath string

	// Telephony provider (Twilio-compatible REST voice API).
	TelephonyAccountSID string
	TelephonyAuthToken  string
	TelephonyFromNumber string
	TargetNumber        string
	// PublicBaseURL is the externally reachable base URL for IVR
	// webhooks. When empty the service places inline-announcement calls
	// only: the whole script is rendered up front and no callback is
	// registered.
	PublicBaseURL string

	// Conversation budgets.
	MaxConversationTurns int
	MaxCallDuration      time.Duration

	// TomTom routing/geocoding/places.
	TomTomKey        string
	TomTomEnabled    bool
	TomTomTimeout    time.Duration
	GeocodeCacheSize int

	// Call-context store: in-process map by default, Redis when an
	// address is configured (required for multi-instance deployments).
	RedisAddr string

	// Emergency-event audit publishing.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	tomtomTimeout, err := parseDuration("TOMTOM_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	maxCallDuration, err := parseDuration("MAX_CALL_DURATION", "10m")
	if err != nil {
		return nil, err
	}

	maxTurns, err := parsePositiveInt("MAX_CONVERSATION_TURNS", 10)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parsePositiveInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	tomtomKey := os.Getenv("TOMTOM_KEY")
	tomtomEnabled := tomtomKey != ""
	if v := os.Getenv("TOMTOM_ENABLED"); v != "" {
		tomtomEnabled = v == "true"
	}

	kafkaBrokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(kafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SQLitePath: envOrDefault("SQLITE_PATH", "data/profiles.db"),

		TelephonyAccountSID: os.Getenv("TELEPHONY_ACCOUNT_SID"),
		TelephonyAuthToken:  os.Getenv("TELEPHONY_AUTH_TOKEN"),
		TelephonyFromNumber: os.Getenv("TELEPHONY_FROM_NUMBER"),
		TargetNumber:        envOrDefault("TARGET_PHONE_NUMBER", "+13614259843"),
		PublicBaseURL:       strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		MaxConversationTurns: maxTurns,
		MaxCallDuration:      maxCallDuration,

		TomTomKey:        tomtomKey,
		TomTomEnabled:    tomtomEnabled,
		TomTomTimeout:    tomtomTimeout,
		GeocodeCacheSize: cacheSize,

		RedisAddr: os.Getenv("REDIS_ADDR"),

		KafkaBrokers: kafkaBrokers,
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "emergency-events"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.TomTomEnabled && cfg.TomTomKey == "" {
		return nil, errors.New("TOMTOM_ENABLED is true but TOMTOM_KEY is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if (cfg.TelephonyAccountSID == "") != (cfg.TelephonyAuthToken == "") {
		return nil, errors.New("TELEPHONY_ACCOUNT_SID and TELEPHONY_AUTH_TOKEN must be set together")
	}

	return cfg, nil
}

// TelephonyEnabled reports whether outbound calling is configured.
func (c *Config) TelephonyEnabled() bool {
	return c.TelephonyAccountSID != "" && c.TelephonyAuthToken != ""
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
