package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Nats     NatsConfig     `yaml:"nats"`
	Climate  ClimateConfig  `yaml:"climate"`
	Engine   EngineConfig   `yaml:"engine"`
	Survey   SurveyConfig   `yaml:"survey"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type NatsConfig struct {
	URL string `yaml:"url"`
}

// ClimateConfig points at the external climate summary service used to
// backfill cell profiles.
type ClimateConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type EngineConfig struct {
	Cutoff              float64 `yaml:"cutoff"`
	Workers             int     `yaml:"workers"`
	RecomputeIntervalMs int     `yaml:"recompute_interval_ms"`
	Enhanced            bool    `yaml:"enhanced"`
}

// SurveyConfig controls the synthetic survey generator.
type SurveyConfig struct {
	Seed              int64 `yaml:"seed"`
	Cells             int   `yaml:"cells"`
	HouseholdsPerCell int   `yaml:"households_per_cell"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) RecomputeInterval() time.Duration {
	return time.Duration(c.Engine.RecomputeIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Nats: NatsConfig{
			URL: "nats://localhost:4222",
		},
		Climate: ClimateConfig{
			URL: "http://localhost:9100",
		},
		Engine: EngineConfig{
			Cutoff:              0.33,
			Workers:             4,
			RecomputeIntervalMs: 60000,
		},
		Survey: SurveyConfig{
			Seed:              42,
			Cells:             64,
			HouseholdsPerCell: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("POVERTY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("POVERTY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("POVERTY_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("POVERTY_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("POVERTY_NATS_URL"); v != "" {
		cfg.Nats.URL = v
	}
	if v := os.Getenv("POVERTY_CLIMATE_URL"); v != "" {
		cfg.Climate.URL = v
	}
	if v := os.Getenv("POVERTY_CLIMATE_TOKEN"); v != "" {
		cfg.Climate.Token = v
	}
	if v := os.Getenv("POVERTY_CUTOFF"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.Cutoff = f
		}
	}
	if v := os.Getenv("POVERTY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Workers = n
		}
	}
	if v := os.Getenv("POVERTY_RECOMPUTE_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Engine.RecomputeIntervalMs = n
		}
	}
	if v := os.Getenv("POVERTY_ENHANCED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Engine.Enhanced = b
		}
	}
	if v := os.Getenv("POVERTY_SURVEY_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Survey.Seed = n
		}
	}
	if v := os.Getenv("POVERTY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("POVERTY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
