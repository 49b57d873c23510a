/*
config.go - Server configuration

PURPOSE:
  One struct for everything the server and the simulate command need.

LOAD ORDER:
  1. YAML file (optional; a missing file is not an error)
  2. Environment overrides (SCENARIO_* variables)
  3. Defaults for anything still unset

ENVIRONMENT:
  SCENARIO_ADDR               HTTP listen address          (default :8080)
  SCENARIO_CORS_ORIGINS       comma-separated origins
  SCENARIO_DB_PATH            SQLite archive path          (empty = no archive)
  SCENARIO_CATALOG_DIR        scenario folder              (default scenarios)
  SCENARIO_SEED               engine seed                  (0 = per-session random)
  SCENARIO_MAX_PROBABILISTIC  daily probabilistic cap      (default 6)
  SCENARIO_LOW_BALANCE        discretionary damping line   (default 200)
  SCENARIO_DEFAULT_PAY        pay before the first check   (default 2000)
  SCENARIO_PLEDGE_DAYS        default plan duration        (default 90)
  SCENARIO_IDLE_TIMEOUT       session eviction age         (default 2h)
  SCENARIO_SWEEP_SPEC         janitor cron spec            (default @every 10m)

SEE ALSO:
  - cmd/server/main.go: Consumer
  - api/janitor.go: Uses IdleTimeout and SweepSpec
*/
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/profile"
)

type Config struct {
	Server struct {
		Addr        string   `yaml:"addr" env:"SCENARIO_ADDR"`
		CORSOrigins []string `yaml:"cors_origins" env:"SCENARIO_CORS_ORIGINS" envSeparator:","`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path" env:"SCENARIO_DB_PATH"`
	} `yaml:"database"`
	Catalog struct {
		Dir string `yaml:"dir" env:"SCENARIO_CATALOG_DIR"`
	} `yaml:"catalog"`
	Engine   EngineConfig `yaml:"engine"`
	Sessions struct {
		IdleTimeout time.Duration `yaml:"idle_timeout" env:"SCENARIO_IDLE_TIMEOUT"`
		SweepSpec   string        `yaml:"sweep_spec" env:"SCENARIO_SWEEP_SPEC"`
	} `yaml:"sessions"`
}

type EngineConfig struct {
	Seed             int64   `yaml:"seed" env:"SCENARIO_SEED"`
	MaxProbabilistic int     `yaml:"max_probabilistic" env:"SCENARIO_MAX_PROBABILISTIC"`
	LowBalance       float64 `yaml:"low_balance" env:"SCENARIO_LOW_BALANCE"`
	DefaultPay       float64 `yaml:"default_pay" env:"SCENARIO_DEFAULT_PAY"`
	PledgeDays       int     `yaml:"pledge_days" env:"SCENARIO_PLEDGE_DAYS"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then applies environment overrides,
// then defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if c.Catalog.Dir == "" {
		c.Catalog.Dir = "scenarios"
	}
	if c.Engine.MaxProbabilistic == 0 {
		c.Engine.MaxProbabilistic = engine.DefaultMaxProbabilistic
	}
	if c.Engine.LowBalance == 0 {
		c.Engine.LowBalance = engine.DefaultLowBalance
	}
	if c.Engine.DefaultPay == 0 {
		c.Engine.DefaultPay = profile.DefaultPayAmount
	}
	if c.Engine.PledgeDays == 0 {
		c.Engine.PledgeDays = engine.DefaultPledgeDays
	}
	if c.Sessions.IdleTimeout == 0 {
		c.Sessions.IdleTimeout = 2 * time.Hour
	}
	if c.Sessions.SweepSpec == "" {
		c.Sessions.SweepSpec = "@every 10m"
	}
}

// Validate checks ranges and that the sweep spec parses.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Engine.MaxProbabilistic < 0 {
		return fmt.Errorf("engine.max_probabilistic must not be negative")
	}
	if c.Engine.LowBalance < 0 {
		return fmt.Errorf("engine.low_balance must not be negative")
	}
	if c.Engine.DefaultPay <= 0 {
		return fmt.Errorf("engine.default_pay must be positive")
	}
	if c.Engine.PledgeDays <= 0 {
		return fmt.Errorf("engine.pledge_days must be positive")
	}
	if c.Sessions.IdleTimeout <= 0 {
		return fmt.Errorf("sessions.idle_timeout must be positive")
	}
	if _, err := cron.ParseStandard(c.Sessions.SweepSpec); err != nil {
		return fmt.Errorf("sessions.sweep_spec: %w", err)
	}
	return nil
}

// Options returns the engine options for a session seeded with seed.
func (e EngineConfig) Options(seed int64) []engine.EngineOption {
	return []engine.EngineOption{
		engine.WithSeed(seed),
		engine.WithMaxProbabilistic(e.MaxProbabilistic),
		engine.WithLowBalance(e.LowBalance),
		engine.WithDefaultPay(e.DefaultPay),
		engine.WithPledgeDays(e.PledgeDays),
	}
}
