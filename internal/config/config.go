package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultNOAABaseURL is the NCEI directory holding per-station normals reports.
const DefaultNOAABaseURL = "https://www.ncei.noaa.gov/pub/data/normals/1981-2010/products/station"

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// On-demand station report retrieval from NCEI.
	NOAAFetchEnabled bool
	NOAABaseURL      string
	NOAATimeout      time.Duration
	NOAACacheSize    int

	// SQLitePath enables the SQLite archive sink when set.
	SQLitePath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	noaaTimeoutStr := sharedcfg.EnvOrDefault("NOAA_TIMEOUT", "10s")
	noaaTimeout, err2 := time.ParseDuration(noaaTimeoutStr)
	if err2 != nil || noaaTimeout <= 0 {
		return nil, errors.New("invalid NOAA_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-station-normals"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "parsed-station-normals"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climate-normals-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		NOAAFetchEnabled: os.Getenv("NOAA_FETCH_ENABLED") == "true",
		NOAABaseURL:      sharedcfg.EnvOrDefault("NOAA_BASE_URL", DefaultNOAABaseURL),
		NOAATimeout:      noaaTimeout,
		NOAACacheSize:    parseNOAACacheSize(),

		SQLitePath: os.Getenv("SQLITE_PATH"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.NOAAFetchEnabled {
		if u, err := url.Parse(cfg.NOAABaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, errors.New("NOAA_FETCH_ENABLED is true but NOAA_BASE_URL is not a valid URL")
		}
	}

	return cfg, nil
}

func parseNOAACacheSize() int {
	if s := os.Getenv("NOAA_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
