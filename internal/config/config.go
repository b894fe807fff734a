package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default values and hard-coded URLs for various configurations.
const (
	DefaultWebPort        = 8193
	DefaultUpdateInterval = 7 * 24 * time.Hour // Weekly
	DefaultDataDir        = "/data"            // Inside the container
)

var (
	// Baked-in country-file sources. Package-level so developers can change
	// them in code if necessary; per-run overrides go through Config.
	DefaultCtyURL = "https://www.country-files.com/bigcty/download/cty.dat"
	DefaultWAEURL = "https://www.country-files.com/bigcty/download/cty_wt_mod.dat"
)

// RedisConfig holds configuration for the optional Redis lookup cache.
type RedisConfig struct {
	Enabled            bool          `env:"REDIS_ENABLED" envDefault:"false"`
	Host               string        `env:"REDIS_HOST"`
	Port               string        `env:"REDIS_PORT" envDefault:"6379"`
	User               string        `env:"REDIS_USER"`
	Password           string        `env:"REDIS_PASSWORD"`
	DB                 int           `env:"REDIS_DB" envDefault:"0"`
	UseTLS             bool          `env:"REDIS_USE_TLS" envDefault:"false"`
	InsecureSkipVerify bool          `env:"REDIS_INSECURE_SKIP_VERIFY" envDefault:"false"`
	LookupExpiry       time.Duration `env:"REDIS_LOOKUP_EXPIRY" envDefault:"3600s"`
}

// Config holds all application configuration.
type Config struct {
	WebPort  int    `env:"WEBPORT" envDefault:"8193"`
	BaseURL  string `env:"WEBURL" envDefault:"/"`
	DataDir  string `env:"DATA_DIR" envDefault:"/data"` // Directory for the SQLite cache
	LogLevel string `env:"LOG_LEVEL" envDefault:"notice"`

	// Country-file sources. The DXCC and WAE editions are curated
	// independently and are downloaded separately.
	CtyURL string `env:"CTY_URL"`
	WAEURL string `env:"CTY_WAE_URL"`

	// How often to re-download the country files.
	UpdateInterval time.Duration `env:"CTY_UPDATE_INTERVAL" envDefault:"168h"` // Weekly

	// Number of concurrent workers used when annotating a contest log.
	AnnotateWorkers int `env:"ANNOTATE_WORKERS" envDefault:"4"`

	Redis RedisConfig
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, fmt.Errorf("failed to parse Redis environment variables: %w", err)
	}

	if cfg.CtyURL == "" {
		cfg.CtyURL = DefaultCtyURL
	}
	if cfg.WAEURL == "" {
		cfg.WAEURL = DefaultWAEURL
	}
	if cfg.AnnotateWorkers < 1 {
		cfg.AnnotateWorkers = 1
	}

	// Ensure DataDir exists (it's essential for the SQLite cache)
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	return cfg, nil
}
