package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Service captures process-level configuration for the enricher.
type Service struct {
	Addr string

	DatabaseURL string
	RedisURL    string

	CompaniesHouseAPIKey string
	CompaniesHouseURL    string
	AnthropicAPIKey      string
	AnthropicURL         string

	KafkaBrokers []string
	OutcomeTopic string

	// Workers > 1 enables the parallel batch mode.
	Workers int
}

// SearchCacheTTL bounds how long registry search results may be reused.
var SearchCacheTTL = 24 * time.Hour

// FromEnv builds a Service config from environment variables so main stays lean.
func FromEnv() Service {
	addr := os.Getenv("ENRICHER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	chURL := os.Getenv("COMPANIES_HOUSE_URL")
	if chURL == "" {
		chURL = "https://api.company-information.service.gov.uk"
	}

	anthropicURL := os.Getenv("ANTHROPIC_URL")
	if anthropicURL == "" {
		anthropicURL = "https://api.anthropic.com"
	}

	topic := os.Getenv("KAFKA_OUTCOME_TOPIC")
	if topic == "" {
		topic = "enrichment.outcomes"
	}

	workers := 1
	if raw := os.Getenv("ENRICHER_WORKERS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			workers = n
		}
	}

	var brokers []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return Service{
		Addr:                 addr,
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		CompaniesHouseAPIKey: os.Getenv("COMPANIES_HOUSE_API_KEY"),
		CompaniesHouseURL:    chURL,
		AnthropicAPIKey:      os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicURL:         anthropicURL,
		KafkaBrokers:         brokers,
		OutcomeTopic:         topic,
		Workers:              workers,
	}
}
