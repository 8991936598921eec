package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port               int    `envconfig:"PORT" default:"5000"`
	Environment        string `envconfig:"ENV" default:"development"`
	CORSOrigins        string `envconfig:"CORS_ORIGINS" default:"*"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	MaxUploadSize      int    `envconfig:"MAX_UPLOAD_SIZE" default:"10485760"`
	UploadDir          string `envconfig:"UPLOAD_DIR"`

	// Database (optional, enables the audit table)
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Landmark detector
	LandmarkProvider       string        `envconfig:"LANDMARK_PROVIDER" default:"mediapipe"`
	MediaPipeURL           string        `envconfig:"MEDIAPIPE_URL" default:"http://localhost:5005"`
	MediaPipeTimeout       time.Duration `envconfig:"MEDIAPIPE_TIMEOUT" default:"30s"`
	MediaPipeRetryCount    int           `envconfig:"MEDIAPIPE_RETRY_COUNT" default:"2"`
	MinDetectionConfidence float64       `envconfig:"MIN_DETECTION_CONFIDENCE" default:"0.6"`
	AWSRegion              string        `envconfig:"AWS_REGION" default:"us-east-1"`

	// Result cache, keyed by image digest. A zero TTL disables it.
	ResultCacheTTL  time.Duration `envconfig:"RESULT_CACHE_TTL" default:"10m"`
	ResultCacheSize int           `envconfig:"RESULT_CACHE_SIZE" default:"1024"`

	// Classifier thresholds, in pixels
	EyelidGapThreshold      float64 `envconfig:"EYELID_GAP_THRESHOLD" default:"4"`
	IrisHorizontalThreshold float64 `envconfig:"IRIS_HORIZONTAL_THRESHOLD" default:"5"`
	IrisVerticalThreshold   float64 `envconfig:"IRIS_VERTICAL_THRESHOLD" default:"3"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects values the server cannot run with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("MIN_DETECTION_CONFIDENCE must be in [0,1], got %v", c.MinDetectionConfidence)
	}
	if c.ResultCacheTTL < 0 {
		return fmt.Errorf("RESULT_CACHE_TTL must not be negative, got %s", c.ResultCacheTTL)
	}
	if c.EyelidGapThreshold < 0 || c.IrisHorizontalThreshold < 0 || c.IrisVerticalThreshold < 0 {
		return fmt.Errorf("gaze thresholds must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasDatabase reports whether audit events go to Postgres
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}
