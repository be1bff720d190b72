// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds everything the server needs at startup. It is built once in
// main and passed down explicitly.
type Settings struct {
	MainURL     string
	Port        string
	Environment string

	RatingsPath string
	BooksPath   string
	TemplateDir string

	LogLevel string
	LogFile  string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	CacheTTL      time.Duration

	RateLimit float64 // requests per second per client, 0 disables
	RateBurst int

	OTelEnabled      bool
	OTelEndpoint     string
	OTelSamplingRate float64

	AWSRegion string
}

// Load reads Settings from environment variables, applying defaults for
// anything unset or empty.
// Optional environment variables:
// - MAIN_URL: route of the book selection page (default "/")
// - RATINGS_PATH / BOOKS_PATH: local path or s3://bucket/key
// - REDIS_HOST: enables the JSON response cache. With it set, /api/v1
// answers may be up to CACHE_TTL old instead of being recomputed from
// freshly read files on every request. HTML pages are never cached.
func Load() (*Settings, error) {
	v := newEnv()

	s := &Settings{
		MainURL:       v.GetString("MAIN_URL"),
		Port:          v.GetString("PORT"),
		Environment:   v.GetString("ENVIRONMENT"),
		RatingsPath:   v.GetString("RATINGS_PATH"),
		BooksPath:     v.GetString("BOOKS_PATH"),
		TemplateDir:   v.GetString("TEMPLATE_DIR"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFile:       v.GetString("LOG_FILE"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		OTelEndpoint:  v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AWSRegion:     v.GetString("AWS_REGION"),
	}

	// viper's typed getters swallow parse errors, so typed values are
	// parsed here to report the offending variable.
	var err error
	if s.CacheTTL, err = time.ParseDuration(v.GetString("CACHE_TTL")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if s.RateLimit, err = strconv.ParseFloat(v.GetString("RATE_LIMIT"), 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	if s.RateBurst, err = strconv.Atoi(v.GetString("RATE_BURST")); err != nil {
		return nil, fmt.Errorf("invalid RATE_BURST: %w", err)
	}
	if s.OTelEnabled, err = strconv.ParseBool(v.GetString("OTEL_ENABLED")); err != nil {
		return nil, fmt.Errorf("invalid OTEL_ENABLED: %w", err)
	}
	if s.OTelSamplingRate, err = strconv.ParseFloat(v.GetString("OTEL_SAMPLING_RATE"), 64); err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLING_RATE: %w", err)
	}

	if !strings.HasPrefix(s.MainURL, "/") {
		s.MainURL = "/" + s.MainURL
	}
	if s.RateLimit < 0 {
		return nil, fmt.Errorf("RATE_LIMIT must not be negative, got %v", s.RateLimit)
	}
	if s.OTelSamplingRate < 0 || s.OTelSamplingRate > 1 {
		return nil, fmt.Errorf("OTEL_SAMPLING_RATE must be within [0, 1], got %v", s.OTelSamplingRate)
	}

	return s, nil
}

var defaults = map[string]string{
	"MAIN_URL":                    "/",
	"PORT":                        "8000",
	"ENVIRONMENT":                 "development",
	"RATINGS_PATH":                "data/BX-Book-Ratings.csv",
	"BOOKS_PATH":                  "data/BX-Books.csv",
	"TEMPLATE_DIR":                "",
	"LOG_LEVEL":                   "info",
	"LOG_FILE":                    "",
	"REDIS_HOST":                  "",
	"REDIS_PORT":                  "6379",
	"REDIS_PASSWORD":              "",
	"CACHE_TTL":                   "5m",
	"RATE_LIMIT":                  "10",
	"RATE_BURST":                  "20",
	"OTEL_ENABLED":                "false",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4318",
	"OTEL_SAMPLING_RATE":          "1.0",
	"AWS_REGION":                  "us-east-1",
}

// newEnv returns a viper instance reading the process environment. Empty
// variables count as unset.
func newEnv() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// CacheEnabled reports whether a Redis host was configured
func (s *Settings) CacheEnabled() bool {
	return s.RedisHost != ""
}
