// Package daemon manages the wildtrail daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // Embedded zone database for minimal hosts

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/wildtrail/wildtrail/internal/domain"
	"github.com/wildtrail/wildtrail/internal/infra/redisstore"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds all daemon configuration. Values come from defaults, then
// $WILDTRAIL_HOME/config.toml, then WILDTRAIL_* environment variables.
type Config struct {
	Store         StoreConfig               `toml:"store" envPrefix:"STORE_"`
	API           APIConfig                 `toml:"api" envPrefix:"API_"`
	Engine        EngineConfig              `toml:"engine" envPrefix:"ENGINE_"`
	Catalog       CatalogConfig             `toml:"catalog" envPrefix:"CATALOG_"`
	Logging       LoggingConfig             `toml:"logging" envPrefix:"LOG_"`
	Telemetry     TelemetryConfig           `toml:"telemetry" envPrefix:"TELEMETRY_"`
	Notifications domain.NotificationPolicy `toml:"notifications" envPrefix:"NOTIFY_"`
}

// StoreConfig selects where progression snapshots live.
type StoreConfig struct {
	Driver        string `toml:"driver" env:"DRIVER"`
	RedisAddr     string `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string `toml:"redis_prefix" env:"REDIS_PREFIX"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host" env:"HOST"`
	Port        int      `toml:"port" env:"PORT"`
	CORSOrigins []string `toml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
}

// EngineConfig tunes the progression engine.
type EngineConfig struct {
	Timezone            string `toml:"timezone" env:"TIMEZONE"`
	AdaptiveDifficulty  bool   `toml:"adaptive_difficulty" env:"ADAPTIVE_DIFFICULTY"`
	StrictInvariants    bool   `toml:"strict_invariants" env:"STRICT_INVARIANTS"`
	MaxEvaluationPasses int    `toml:"max_evaluation_passes" env:"MAX_EVALUATION_PASSES"`
	SweepInterval       string `toml:"sweep_interval" env:"SWEEP_INTERVAL"`
	HealthInterval      string `toml:"health_interval" env:"HEALTH_INTERVAL"`
}

// CatalogConfig points at an optional YAML overlay for the built-in catalog.
type CatalogConfig struct {
	Overlay string `toml:"overlay" env:"OVERLAY"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Mode  string `toml:"mode" env:"MODE"`
	Level string `toml:"level" env:"LEVEL"`
}

// TelemetryConfig controls the metrics endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" env:"PROMETHEUS"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Driver:      DriverSQLite,
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: redisstore.DefaultPrefix,
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8457,
			CORSOrigins: []string{"*"},
		},
		Engine: EngineConfig{
			Timezone:            "Local",
			AdaptiveDifficulty:  true,
			MaxEvaluationPasses: 16,
			SweepInterval:       "1m",
			HealthInterval:      "60s",
		},
		Catalog: CatalogConfig{
			Overlay: filepath.Join(wildtrailHome(), "catalog.yaml"),
		},
		Logging: LoggingConfig{
			Mode:  "dev",
			Level: "info",
		},
		Notifications: domain.DefaultNotificationPolicy(),
	}
}

// LoadConfig reads config from $WILDTRAIL_HOME/config.toml, falling back to
// defaults, and applies WILDTRAIL_* environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(wildtrailHome(), "config.toml")

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "WILDTRAIL_"}); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the daemon cannot start with.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api port %d out of range", c.API.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Engine.MaxEvaluationPasses < 0 {
		return fmt.Errorf("max_evaluation_passes must not be negative")
	}
	return nil
}

// SaveConfig writes the config to $WILDTRAIL_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(wildtrailHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Location resolves the engine timezone. An empty name means UTC.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return nil, fmt.Errorf("engine timezone: %w", err)
	}
	return loc, nil
}

// SweepEvery returns the expiry sweep period; zero disables the sweeper.
func (c Config) SweepEvery() time.Duration {
	return parseDuration(c.Engine.SweepInterval, time.Minute)
}

// HealthEvery returns the health check period.
func (c Config) HealthEvery() time.Duration {
	return parseDuration(c.Engine.HealthInterval, 60*time.Second)
}

// wildtrailHome returns the wildtrail data directory.
func wildtrailHome() string {
	if dir := os.Getenv("WILDTRAIL_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wildtrail")
}

// Home is exported for use by other packages.
func Home() string {
	return wildtrailHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
