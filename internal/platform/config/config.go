package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. All values come from the
// environment so main stays lean.
type Config struct {
	Addr       string
	AdminToken string

	// PostgresDSN selects the postgres-backed stores when set; the service
	// falls back to in-memory stores otherwise (local development).
	PostgresDSN string

	// KafkaBrokers and KafkaTopic configure the registration-event publisher.
	// Publishing is disabled when no brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string

	// RedisURL enables the vehicle read cache when set.
	RedisURL string

	// DistinguishedYear is the model year that triggers event emission on
	// vehicle registration.
	DistinguishedYear int
}

// PlateCacheTTL bounds how long cached vehicle lookups may be served.
var PlateCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("MOTOFLEET_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	adminToken := os.Getenv("MOTOFLEET_ADMIN_TOKEN")
	if adminToken == "" {
		// Development default - override in production.
		adminToken = "dev-admin-token"
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "motorcycle_events"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	year := 2024
	if raw := os.Getenv("DISTINGUISHED_MODEL_YEAR"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			year = parsed
		}
	}

	return Config{
		Addr:              addr,
		AdminToken:        adminToken,
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		KafkaBrokers:      brokers,
		KafkaTopic:        topic,
		RedisURL:          os.Getenv("REDIS_URL"),
		DistinguishedYear: year,
	}
}
