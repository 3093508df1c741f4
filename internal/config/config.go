package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App       App       `yaml:"app"`
	HTTP      HTTP      `yaml:"http"`
	Log       Log       `yaml:"log"`
	Postgres  Postgres  `yaml:"postgres"`
	Redis     Redis     `yaml:"redis"`
	Kafka     Kafka     `yaml:"kafka"`
	Producer  Producer  `yaml:"producer"`
	Dashboard Dashboard `yaml:"dashboard"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"salestream"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"sales"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"sales"`
	GroupID string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"sales-to-pg"`
	// StartOffset applies only when the consumer group has no committed
	// offset yet. Supported: "earliest" (default), "latest".
	StartOffset string `yaml:"start_offset" env:"KAFKA_START_OFFSET" env-default:"earliest"`
}

type Producer struct {
	RatePerSec int `yaml:"rate_per_sec" env:"SALES_RATE_PER_SEC" env-default:"1"`
}

type Dashboard struct {
	RefreshSeconds   int `yaml:"refresh_seconds" env:"DASHBOARD_REFRESH_SECONDS" env-default:"5"`
	RecentLimit      int `yaml:"recent_limit" env:"DASHBOARD_RECENT_LIMIT" env-default:"1000"`
	TrendWindowHours int `yaml:"trend_window_hours" env:"DASHBOARD_TREND_WINDOW_HOURS" env-default:"24"`
}

const (
	MinRefreshSeconds = 1
	MaxRefreshSeconds = 30
	MinRecentLimit    = 100
	MaxRecentLimit    = 5000
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config env override error: %w", err)
		}
	}

	cfg.clamp()

	return cfg, nil
}

// clamp keeps the tunables inside their supported ranges instead of
// rejecting the whole config.
func (c *Config) clamp() {
	if c.Producer.RatePerSec < 1 {
		c.Producer.RatePerSec = 1
	}
	c.Dashboard.RefreshSeconds = clampInt(c.Dashboard.RefreshSeconds, MinRefreshSeconds, MaxRefreshSeconds)
	c.Dashboard.RecentLimit = clampInt(c.Dashboard.RecentLimit, MinRecentLimit, MaxRecentLimit)
	if c.Dashboard.TrendWindowHours < 1 {
		c.Dashboard.TrendWindowHours = 1
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
