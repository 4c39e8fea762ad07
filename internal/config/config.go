// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token      string  `yaml:"token"`
	Mode       string  `yaml:"mode"` // polling | webhook
	WebhookURL string  `yaml:"webhook_url"`
	Port       int     `yaml:"port"`
	Username   string  `yaml:"username"`
	Workers    int     `yaml:"workers"` // update workers
	AdminIDs   []int64 `yaml:"admin_ids"`
}

func (b BotConfig) IsAdmin(tgID int64) bool {
	for _, id := range b.AdminIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

type AdminConfig struct {
	APIKey string `yaml:"api_key"` // bearer token for the REST API; empty disables it
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL        string        `yaml:"url"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	SessionTTL time.Duration `yaml:"session_ttl"` // wizard draft expiry
}

type CatalogConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	Demo    bool          `yaml:"demo"` // canned catalog, no network
}

type BroadcastConfig struct {
	MessagesPerSecond int           `yaml:"messages_per_second"` // platform rate ceiling
	InactiveAfterDays int           `yaml:"inactive_after_days"` // inactive segment threshold
	RunnerInterval    time.Duration `yaml:"runner_interval"`     // due-broadcast scan cadence
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Admin     AdminConfig     `yaml:"admin"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Broadcast BroadcastConfig `yaml:"broadcast"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Port <= 0 {
		cfg.Bot.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.SessionTTL <= 0 {
		cfg.Redis.SessionTTL = 30 * time.Minute
	}
	if cfg.Catalog.Timeout <= 0 {
		cfg.Catalog.Timeout = 30 * time.Second
	}
	if cfg.Broadcast.MessagesPerSecond <= 0 {
		cfg.Broadcast.MessagesPerSecond = 25 // stay under Telegram's ~30/s
	}
	if cfg.Broadcast.InactiveAfterDays <= 0 {
		cfg.Broadcast.InactiveAfterDays = 7
	}
	if cfg.Broadcast.RunnerInterval <= 0 {
		cfg.Broadcast.RunnerInterval = time.Minute
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if len(cfg.Bot.AdminIDs) == 0 {
		return nil, errors.New("bot.admin_ids is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Bot.Mode == "webhook" && cfg.Bot.WebhookURL == "" {
		return nil, errors.New("bot.webhook_url is required in webhook mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
