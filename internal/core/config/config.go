package config

import (
	"time"

	"github.com/vietddude/ecoscout/internal/core/domain"
	redisclient "github.com/vietddude/ecoscout/internal/infra/redis"
	"github.com/vietddude/ecoscout/internal/infra/storage/sqlstore"
	"github.com/vietddude/ecoscout/internal/scrape"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server          ServerConfig                       `yaml:"server"`
	Backends        map[domain.BackendID]BackendConfig `yaml:"backends"`
	Rotation        RotationConfig                     `yaml:"rotation"`
	ReviewThreshold float64                            `yaml:"review_threshold"`
	Database        sqlstore.Config                    `yaml:"database"`
	Redis           redisclient.Config                 `yaml:"redis"`
	Scrape          scrape.Config                      `yaml:"scrape"`
	Pipeline        PipelineConfig                     `yaml:"pipeline"`
	Logging         LoggingConfig                      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// BackendConfig holds settings for one classification backend.
type BackendConfig struct {
	Keys    string        `yaml:"keys"` // comma separated
	Models  []string      `yaml:"models"`
	RPM     int           `yaml:"rpm"`
	Weight  int           `yaml:"weight"` // < 0 removes the backend from rotation
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// RotationConfig holds the primary cycle and fallback order.
type RotationConfig struct {
	Order []domain.BackendID `yaml:"order"`
}

// PipelineConfig holds batch pipeline settings.
type PipelineConfig struct {
	Workers int `yaml:"workers"`
}
