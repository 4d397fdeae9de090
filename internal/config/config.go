package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"WatchlistScanner/internal/calculator"
	"WatchlistScanner/internal/strategy"
)

// Data sources.
const (
	SourceCSV      = "csv"
	SourceYahoo    = "yahoo"
	SourceVsTrader = "vstrader"
	SourceMock     = "mock"
)

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console or json
	} `yaml:"log"`
	Data struct {
		Source         string  `yaml:"source"`
		Dir            string  `yaml:"dir"`
		TickerList     string  `yaml:"ticker_list"`
		Days           int     `yaml:"days"`
		Timeframe      string  `yaml:"timeframe"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
		VsTrader       struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"vstrader"`
	} `yaml:"data"`
	Scan struct {
		Workers       int           `yaml:"workers"`
		TickerTimeout time.Duration `yaml:"ticker_timeout"`
		Top           int           `yaml:"top"`
	} `yaml:"scan"`
	Indicators calculator.IndicatorConfig `yaml:"indicators"`
	Rules      struct {
		Enabled      []string           `yaml:"enabled"` // preset names; empty enables all
		Custom       []strategy.RuleSet `yaml:"custom"`
		EvaluateLast int                `yaml:"evaluate_last"`
		AllBars      bool               `yaml:"all_bars"`
	} `yaml:"rules"`
	Schedule struct {
		ScanCron   string `yaml:"scan_cron"`
		UpdateCron string `yaml:"update_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Cache struct {
		RedisAddr string        `yaml:"redis_addr"`
		Password  string        `yaml:"password"`
		DB        int           `yaml:"db"`
		TTL       time.Duration `yaml:"ttl"`
		Prefix    string        `yaml:"prefix"`
	} `yaml:"cache"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Indicators: calculator.DefaultIndicatorConfig()}
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{Indicators: calculator.DefaultIndicatorConfig()}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Data.Source, "DATA_SOURCE")
	setString(&c.Data.Dir, "DATA_DIR")
	setString(&c.Data.TickerList, "TICKER_LIST")
	setString(&c.Data.VsTrader.BaseURL, "VSTRADER_BASE_URL")
	setString(&c.Data.VsTrader.APIKey, "VSTRADER_API_KEY")
	setInt(&c.Scan.Workers, "SCAN_WORKERS")
	setString(&c.Schedule.ScanCron, "CRON_SCAN")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Cache.Password, "REDIS_PASSWORD")
	setString(&c.Metrics.Addr, "METRICS_ADDR")
	setString(&c.Proxy, "HTTPS_PROXY")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Data.Source == "" {
		c.Data.Source = SourceCSV
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data/daily"
	}
	if c.Data.Days == 0 {
		c.Data.Days = 500
	}
	if c.Data.Timeframe == "" {
		c.Data.Timeframe = "daily"
	}
	if c.Data.RequestsPerSec == 0 {
		c.Data.RequestsPerSec = 2
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 8
	}
	if c.Scan.TickerTimeout == 0 {
		c.Scan.TickerTimeout = 30 * time.Second
	}
	if c.Scan.Top == 0 {
		c.Scan.Top = 20
	}
	if c.Rules.EvaluateLast == 0 {
		c.Rules.EvaluateLast = 1
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 22 * * 1-5"
	}
	if c.Schedule.UpdateCron == "" {
		c.Schedule.UpdateCron = "0 0 22 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/watchlist_scanner.db"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 6 * time.Hour
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "bars:"
	}
}

// Validate checks that the configuration is usable for a scan.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	switch c.Data.Source {
	case SourceCSV, SourceYahoo, SourceMock:
	case SourceVsTrader:
		if c.Data.VsTrader.BaseURL == "" {
			return fmt.Errorf("data.vstrader.base_url is required for the vstrader source")
		}
	default:
		return fmt.Errorf("data.source must be csv, yahoo, vstrader or mock, got %q", c.Data.Source)
	}
	if c.Data.Timeframe != "daily" && c.Data.Timeframe != "weekly" {
		return fmt.Errorf("data.timeframe must be daily or weekly, got %q", c.Data.Timeframe)
	}
	if c.Data.Days < 1 {
		return fmt.Errorf("data.days must be positive")
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be positive")
	}
	if c.Scan.TickerTimeout < 0 {
		return fmt.Errorf("scan.ticker_timeout must not be negative")
	}
	rc, err := c.RuleConfig()
	if err != nil {
		return err
	}
	return rc.Validate()
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// RuleConfig assembles the rule sets and indicator parameters handed to
// the strategy engine.
func (c *Config) RuleConfig() (strategy.RuleConfig, error) {
	var rules []strategy.RuleSet
	if len(c.Rules.Enabled) == 0 {
		rules = strategy.Presets()
	} else {
		for _, name := range c.Rules.Enabled {
			r, ok := strategy.Preset(name)
			if !ok {
				return strategy.RuleConfig{}, fmt.Errorf("rules.enabled: %w: no preset named %q", strategy.ErrInvalidRule, name)
			}
			rules = append(rules, r)
		}
	}
	rules = append(rules, c.Rules.Custom...)
	return strategy.RuleConfig{
		Indicators:   c.Indicators,
		Rules:        rules,
		EvaluateLast: c.Rules.EvaluateLast,
		AllBars:      c.Rules.AllBars,
	}, nil
}
