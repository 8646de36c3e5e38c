package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Demo       DemoConfig       `yaml:"demo"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	MaxUploadMB     int     `yaml:"max_upload_mb"`
}

// PipelineConfig holds the defaults for each analysis pipeline run. All of
// them can be overridden per upload request.
type PipelineConfig struct {
	Granularity   string  `yaml:"granularity"`    // day, week or month
	HoursPerDay   float64 `yaml:"hours_per_day"`  // available-time assumption per day
	MinConfidence float64 `yaml:"min_confidence"` // schema resolution threshold
	SampleRows    int     `yaml:"sample_rows"`    // data rows probed during resolution
	Timezone      string  `yaml:"timezone"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys and the alerting policy for data-quality
// push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
	// QuarantineAlertRatio is the quarantined/total row ratio above which
	// subscribers are notified about a low-quality upload.
	QuarantineAlertRatio float64 `yaml:"quarantine_alert_ratio"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// DemoConfig controls the bundled demo dataset.
type DemoConfig struct {
	Enabled     bool `yaml:"enabled"`
	LoadOnStart bool `yaml:"load_on_start"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 16
	}

	if cfg.Pipeline.Granularity == "" {
		cfg.Pipeline.Granularity = "day"
	}
	if cfg.Pipeline.HoursPerDay <= 0 {
		cfg.Pipeline.HoursPerDay = 24
	}
	if cfg.Pipeline.MinConfidence <= 0 {
		cfg.Pipeline.MinConfidence = 0.5
	}
	if cfg.Pipeline.SampleRows <= 0 {
		cfg.Pipeline.SampleRows = 20
	}
	if cfg.Pipeline.Timezone == "" {
		cfg.Pipeline.Timezone = "UTC"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.Push.QuarantineAlertRatio <= 0 {
		cfg.Push.QuarantineAlertRatio = 0.2
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
