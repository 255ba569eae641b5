package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	Storage struct {
		Driver        string `yaml:"driver"`
		SQLitePath    string `yaml:"sqlite_path"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
		Slot          string `yaml:"slot"`
	} `yaml:"storage"`

	Ledger struct {
		AmountPolicy string `yaml:"amount_policy"`
		Timezone     string `yaml:"timezone"`
	} `yaml:"ledger"`

	Discord struct {
		BotToken      string        `yaml:"bot_token"`
		ChannelID     string        `yaml:"channel_id"`
		PromptTimeout time.Duration `yaml:"prompt_timeout"`
	} `yaml:"discord"`

	DashboardPassword string        `yaml:"dashboard_password"`
	StripeSecretKey   string        `yaml:"stripe_secret_key"`
	WebhookURL        string        `yaml:"webhook_url"`
	ChatReplyDelay    time.Duration `yaml:"chat_reply_delay"`

	SMTP struct {
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		From       string `yaml:"from"`
		OwnerEmail string `yaml:"owner_email"`
	} `yaml:"smtp"`
}

func Default() Config {
	var cfg Config
	cfg.HTTPAddr = ":3000"
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLitePath = "aureliya.db"
	cfg.Storage.Slot = "deposits"
	cfg.Ledger.AmountPolicy = "coerce"
	cfg.Ledger.Timezone = "Local"
	cfg.Discord.PromptTimeout = time.Minute
	cfg.ChatReplyDelay = 500 * time.Millisecond
	cfg.SMTP.Port = "465"
	return cfg
}

// Load builds the configuration from defaults, the YAML file named by
// AURELIYA_CONFIG if any, and then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("AURELIYA_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HTTP_ADDR") == "" {
		cfg.HTTPAddr = ":" + port
	}
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.SQLitePath, "SQLITE_PATH")
	setString(&cfg.Storage.RedisAddr, "REDIS_ADDR")
	setString(&cfg.Storage.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.Storage.Slot, "LEDGER_SLOT")
	setString(&cfg.Ledger.AmountPolicy, "AMOUNT_POLICY")
	setString(&cfg.Ledger.Timezone, "LEDGER_TIMEZONE")
	setString(&cfg.Discord.BotToken, "DISCORD_BOT_TOKEN")
	setString(&cfg.Discord.ChannelID, "DISCORD_CHANNEL_ID")
	setString(&cfg.DashboardPassword, "DASHBOARD_PASSWORD")
	setString(&cfg.StripeSecretKey, "STRIPE_SECRET_KEY")
	setString(&cfg.WebhookURL, "WEBHOOK_URL")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.SMTP.Port, "SMTP_PORT")
	setString(&cfg.SMTP.User, "SMTP_USER")
	setString(&cfg.SMTP.Password, "SMTP_PASS")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	setString(&cfg.SMTP.OwnerEmail, "OWNER_EMAIL")

	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB must be a number: %w", err)
		}
		cfg.Storage.RedisDB = n
	}
	if err := setDuration(&cfg.Discord.PromptTimeout, "DISCORD_PROMPT_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&cfg.ChatReplyDelay, "CHAT_REPLY_DELAY")
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "memory":
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("Redis address is not set")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Slot == "" {
		return fmt.Errorf("Ledger slot is not set")
	}
	switch c.Ledger.AmountPolicy {
	case "coerce", "reject":
	default:
		return fmt.Errorf("unknown amount policy %q", c.Ledger.AmountPolicy)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid ledger timezone: %w", err)
	}
	if c.Discord.BotToken != "" && c.Discord.ChannelID == "" {
		return fmt.Errorf("Channel ID is not set")
	}
	return nil
}

// Location is the timezone deposit dates are shown in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Ledger.Timezone)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s must be a duration: %w", key, err)
	}
	*dst = d
	return nil
}
