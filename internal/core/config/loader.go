package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/llm/ratelimit"
	"github.com/vietddude/ecoscout/internal/infra/llm/routing"
	"github.com/vietddude/ecoscout/internal/infra/storage/sqlstore"
)

// KeyEnv maps each backend to the environment variable holding its keys.
var KeyEnv = map[domain.BackendID]string{
	domain.BackendGroq:       "GROQ_API_KEYS",
	domain.BackendGemini:     "GEMINI_API_KEYS",
	domain.BackendOpenRouter: "OPENROUTER_API_KEYS",
}

type backendDefaults struct {
	rpm    int
	weight int
}

var defaults = map[domain.BackendID]backendDefaults{
	domain.BackendGroq:       {rpm: 30, weight: 10},
	domain.BackendGemini:     {rpm: 20, weight: 10},
	domain.BackendOpenRouter: {rpm: 3, weight: 2},
}

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*AppConfig, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Default returns a configuration built from defaults, with credentials
// read from the environment.
func Default() *AppConfig {
	cfg := &AppConfig{Backends: make(map[domain.BackendID]BackendConfig)}
	for id, env := range KeyEnv {
		cfg.Backends[id] = BackendConfig{Keys: os.Getenv(env)}
	}
	cfg.applyDefaults()
	return cfg
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = domain.ReviewFloor
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 4
	}
	if c.Database.Driver == "" {
		c.Database.Driver = sqlstore.DriverSQLite
	}
	if c.Database.URL == "" && c.Database.Driver == sqlstore.DriverSQLite {
		c.Database.URL = "ecoscout.db"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 7 * 24 * time.Hour
	}
	c.Scrape.ApplyDefaults()

	if c.Backends == nil {
		c.Backends = make(map[domain.BackendID]BackendConfig)
	}
	for _, id := range domain.KnownBackends {
		b := c.Backends[id]
		d := defaults[id]
		if b.RPM == 0 {
			b.RPM = d.rpm
		}
		if b.Weight == 0 {
			b.Weight = d.weight
		}
		c.Backends[id] = b
	}

	if len(c.Rotation.Order) == 0 {
		c.Rotation.Order = append([]domain.BackendID(nil), domain.KnownBackends...)
	}
}

// Validate reports every configuration problem at once.
func (c *AppConfig) Validate() error {
	var errs []error

	for id := range c.Backends {
		if !id.IsKnown() {
			errs = append(errs, fmt.Errorf("backends: unknown backend %q", id))
		}
	}
	seen := make(map[domain.BackendID]bool)
	for _, id := range c.Rotation.Order {
		if !id.IsKnown() {
			errs = append(errs, fmt.Errorf("rotation.order: unknown backend %q", id))
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("rotation.order: duplicate backend %q", id))
		}
		seen[id] = true
	}
	if c.ReviewThreshold < domain.ReviewFloor || c.ReviewThreshold > 1 {
		errs = append(errs, fmt.Errorf("review_threshold must be within [%v,1], got %v", domain.ReviewFloor, c.ReviewThreshold))
	}
	switch c.Database.Driver {
	case sqlstore.DriverPostgres, sqlstore.DriverSQLite, sqlstore.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.Database.Driver == sqlstore.DriverPostgres && c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required for postgres"))
	}

	return errors.Join(errs...)
}

// Backend returns the settings for id.
func (c *AppConfig) Backend(id domain.BackendID) BackendConfig {
	return c.Backends[id]
}

// Delays returns the minimum spacing between calls for every backend.
func (c *AppConfig) Delays() map[domain.BackendID]time.Duration {
	out := make(map[domain.BackendID]time.Duration, len(c.Backends))
	for id, b := range c.Backends {
		out[id] = ratelimit.DelayForRPM(b.RPM)
	}
	return out
}

// Slots returns the rotation cycle in configured order.
func (c *AppConfig) Slots() []routing.Slot {
	slots := make([]routing.Slot, 0, len(c.Rotation.Order))
	for _, id := range c.Rotation.Order {
		if w := c.Backends[id].Weight; w > 0 {
			slots = append(slots, routing.Slot{Backend: id, Weight: w})
		}
	}
	return slots
}
