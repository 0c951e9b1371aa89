// Package config centralizes environment configuration for the harvester.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Harvest Constants
const (
	// DefaultBatchCapacity is the maximum number of records per delivery batch
	DefaultBatchCapacity = 50

	// DefaultPageCap stops pagination even if a resumption token is still present
	DefaultPageCap = 1000

	// DefaultPageDelay is the fixed throttle between successive page fetches
	DefaultPageDelay = 1 * time.Second

	// DefaultHTTPTimeout bounds a single OAI-PMH round trip
	DefaultHTTPTimeout = 30 * time.Second
)

// Config holds everything main needs to wire the service.
type Config struct {
	// HTTP API
	ListenAddr string

	// Kafka
	KafkaBrokers  []string
	WorkItemTopic string
	DeliveryTopic string
	ConsumerGroup string

	// S3
	S3Bucket       string
	S3Prefix       string
	S3Region       string
	S3Profile      string
	S3UsePathStyle bool

	// Harvest tuning
	BatchCapacity int
	PageCap       int
	PageDelay     time.Duration
}

// Load reads configuration from the environment, applying defaults.
// Required: S3_BUCKET, KAFKA_BROKERS.
func Load() Config {
	return Config{
		ListenAddr:     ":" + GetEnvOrDefault("PORT", "8080"),
		KafkaBrokers:   splitAndTrim(GetEnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		WorkItemTopic:  GetEnvOrDefault("WORK_ITEM_TOPIC", "harvest-work-items"),
		DeliveryTopic:  GetEnvOrDefault("DELIVERY_TOPIC", "harvest-records"),
		ConsumerGroup:  GetEnvOrDefault("CONSUMER_GROUP", "harvestbot"),
		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Prefix:       strings.TrimSpace(os.Getenv("S3_PREFIX")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),
		BatchCapacity:  getEnvInt("BATCH_CAPACITY", DefaultBatchCapacity),
		PageCap:        getEnvInt("PAGE_CAP", DefaultPageCap),
		PageDelay:      time.Duration(getEnvInt("PAGE_DELAY_MS", int(DefaultPageDelay/time.Millisecond))) * time.Millisecond,
	}
}

// GetEnvOrDefault returns the trimmed env value or a fallback.
func GetEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
