package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gwpulse/gwpulse/internal/models"
)

// Config represents runtime configuration derived from environment variables
// and, when GWPULSE_CONFIG points at a YAML file, an overlay for the
// structured policy settings that do not fit in single env vars.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Filter  FilterConfig  `yaml:"filter"`
	Enrich  EnrichConfig  `yaml:"enrichment"`
	Store   StoreConfig   `yaml:"store"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig holds the catalog endpoint and the standing query.
type CatalogConfig struct {
	Endpoint string              `yaml:"endpoint"`
	Query    models.CatalogQuery `yaml:"query"`
	Timeout  time.Duration       `yaml:"-"`
	// SimplifiedRetry enables one reduced-predicate retry when the full
	// query is rejected by the service.
	SimplifiedRetry bool `yaml:"simplifiedRetry"`
}

// FilterConfig holds the significance policy.
type FilterConfig struct {
	// EpochStart is the beginning of the accepted observing epoch.
	EpochStart time.Time `yaml:"epochStart"`
	// EpochPrefixes, when non-empty, switches epoch gating from date
	// comparison to identifier-prefix matching.
	EpochPrefixes []string `yaml:"epochPrefixes"`
	// AlertSentLabels is the set of catalog labels that mark a public
	// alert as sent; at least one must be present on a candidate.
	AlertSentLabels []string `yaml:"alertSentLabels"`
	// RetractedLabel marks an event as invalidated after the fact.
	RetractedLabel string `yaml:"retractedLabel"`
}

// EnrichConfig holds text-generation service parameters. The API key is only
// ever read from the environment.
type EnrichConfig struct {
	APIKey      string        `yaml:"-"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	TimeoutSecs int           `yaml:"timeoutSeconds"`
	Timeout     time.Duration `yaml:"-"`
}

// StoreConfig holds the persisted dataset location.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig controls the optional periodic mode. A zero interval means a
// single run.
type WatchConfig struct {
	Interval    time.Duration `yaml:"-"`
	MetricsPort string        `yaml:"metricsPort"`
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level `yaml:"-"`
	Format string     `yaml:"format"`
}

const (
	defaultEndpoint  = "https://gracedb.ligo.org/api/superevents/"
	defaultCategory  = "Production"
	defaultCount     = 10
	defaultDataFile  = "data/events.json"
	defaultModel     = "gpt-4o-mini"
	defaultTokens    = 600
	defaultTimeout   = 60 * time.Second
	defaultLogFormat = "json"

	defaultRetractedLabel = "ADVNO"
)

// O4 started 2023-05-24; earlier engineering-run candidates are excluded.
var defaultEpochStart = time.Date(2023, time.May, 24, 0, 0, 0, 0, time.UTC)

var defaultAlertSentLabels = []string{"GCN_PRELIM_SENT", "LOW_SIGNIF_PRELIM_SENT"}

// Load reads configuration from environment variables (and the optional YAML
// policy file), applying defaults when values are not provided. The
// text-generation credential is required: a run that reaches the enrichment
// stage without it can only fail, so its absence is startup-fatal.
func Load() (Config, error) {
	cfg := Config{
		Catalog: CatalogConfig{
			Endpoint: getEnv("GRACEDB_URL", defaultEndpoint),
			Query: models.CatalogQuery{
				Category: defaultCategory,
				Count:    defaultCount,
			},
			Timeout:         30 * time.Second,
			SimplifiedRetry: true,
		},
		Filter: FilterConfig{
			EpochStart:      defaultEpochStart,
			AlertSentLabels: append([]string(nil), defaultAlertSentLabels...),
			RetractedLabel:  defaultRetractedLabel,
		},
		Enrich: EnrichConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       getEnv("OPENAI_MODEL", defaultModel),
			Temperature: 0.2,
			MaxTokens:   defaultTokens,
			Timeout:     defaultTimeout,
		},
		Store: StoreConfig{
			Path: getEnv("DATA_FILE", defaultDataFile),
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
	}

	if path := os.Getenv("GWPULSE_CONFIG"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if cfg.Enrich.APIKey == "" {
		return Config{}, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if v := os.Getenv("FETCH_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid FETCH_COUNT: must be a positive integer")
		}
		cfg.Catalog.Query.Count = n
	}

	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil || f < 0 || f > 2 {
			return Config{}, fmt.Errorf("invalid OPENAI_TEMPERATURE: must be in [0, 2]")
		}
		cfg.Enrich.Temperature = float32(f)
	}

	if v := os.Getenv("FETCH_INTERVAL_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FETCH_INTERVAL_SECONDS: %w", err)
		}
		cfg.Watch.Interval = d
	}

	if v := os.Getenv("METRICS_PORT"); v != "" {
		cfg.Watch.MetricsPort = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if cfg.Enrich.TimeoutSecs > 0 {
		cfg.Enrich.Timeout = time.Duration(cfg.Enrich.TimeoutSecs) * time.Second
	}

	return cfg, nil
}

// applyFile overlays the YAML policy file onto cfg. The file carries the
// query predicates, label sets and epoch settings; credentials stay in the
// environment.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
