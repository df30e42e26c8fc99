package config

import (
	"fmt"
	"os"
	"time"

	"PaperTrader/internal/calculator"
	"PaperTrader/internal/clock"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Ledger struct {
		InitialBalance decimal.Decimal `yaml:"initial_balance"`
		HistoryLimit   int             `yaml:"history_limit"`
		Currency       string          `yaml:"currency"`
	} `yaml:"ledger"`
	Fees    calculator.FeeSchedule `yaml:"fees"`
	Rewards struct {
		DailyBonus decimal.Decimal `yaml:"daily_bonus"`
		// Timezone defines the calendar day for reward claims (IANA name).
		Timezone string `yaml:"timezone"`
	} `yaml:"rewards"`
	Storage struct {
		Driver     string `yaml:"driver"` // "file" or "sqlite"
		Dir        string `yaml:"dir"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Journal struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"journal"`
	Sync struct {
		BaseURL   string        `yaml:"base_url"`
		Token     string        `yaml:"token"`
		Timeout   time.Duration `yaml:"timeout"`
		RetryCron string        `yaml:"retry_cron"`
	} `yaml:"sync"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		DailyLoginCron string `yaml:"daily_login_cron"`
	} `yaml:"schedule"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
	Proxy string `yaml:"proxy"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{Fees: calculator.DefaultFeeSchedule()}
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{Fees: calculator.DefaultFeeSchedule()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PAPERTRADER_SYNC_URL"); v != "" {
		cfg.Sync.BaseURL = v
	}
	if v := os.Getenv("PAPERTRADER_SYNC_TOKEN"); v != "" {
		cfg.Sync.Token = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REWARD_TIMEZONE"); v != "" {
		cfg.Rewards.Timezone = v
	}
	if v := os.Getenv("INITIAL_BALANCE"); v != "" {
		bal, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("parse INITIAL_BALANCE: %w", err)
		}
		cfg.Ledger.InitialBalance = bal
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Ledger.InitialBalance.IsZero() {
		c.Ledger.InitialBalance = decimal.NewFromInt(10000)
	}
	if c.Ledger.HistoryLimit == 0 {
		c.Ledger.HistoryLimit = 1000
	}
	if c.Ledger.Currency == "" {
		c.Ledger.Currency = "INR"
	}
	if c.Rewards.DailyBonus.IsZero() {
		c.Rewards.DailyBonus = decimal.NewFromInt(100)
	}
	if c.Rewards.Timezone == "" {
		c.Rewards.Timezone = "UTC"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data/ledgers"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/papertrader.db"
	}
	if c.Sync.Timeout == 0 {
		c.Sync.Timeout = 10 * time.Second
	}
	if c.Sync.RetryCron == "" {
		c.Sync.RetryCron = "0 */5 * * * *"
	}
	if c.Schedule.DailyLoginCron == "" {
		c.Schedule.DailyLoginCron = "0 5 0 * * *"
	}
}

// Location resolves Rewards.Timezone.
func (c *Config) Location() (*time.Location, error) {
	return clock.LoadLocation(c.Rewards.Timezone)
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if !c.Ledger.InitialBalance.IsPositive() {
		return fmt.Errorf("ledger.initial_balance must be positive")
	}
	if c.Ledger.HistoryLimit < 1 {
		return fmt.Errorf("ledger.history_limit must be at least 1")
	}
	if !c.Rewards.DailyBonus.IsPositive() {
		return fmt.Errorf("rewards.daily_bonus must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("rewards.timezone: %w", err)
	}
	if err := c.Fees.Validate(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.driver must be 'file', 'sqlite' or 'memory', got %q", c.Storage.Driver)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
