package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"AURELIYA_CONFIG", "HTTP_ADDR", "PORT", "STORAGE_DRIVER", "SQLITE_PATH", "REDIS_ADDR",
	"REDIS_PASSWORD", "REDIS_DB", "LEDGER_SLOT", "AMOUNT_POLICY", "LEDGER_TIMEZONE",
	"DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID", "DISCORD_PROMPT_TIMEOUT", "DASHBOARD_PASSWORD",
	"STRIPE_SECRET_KEY", "WEBHOOK_URL", "CHAT_REPLY_DELAY", "SMTP_HOST", "SMTP_PORT",
	"SMTP_USER", "SMTP_PASS", "SMTP_FROM", "OWNER_EMAIL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPAddr != ":3000" || cfg.Storage.Driver != "sqlite" || cfg.Storage.Slot != "deposits" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Ledger.AmountPolicy != "coerce" || cfg.ChatReplyDelay != 500*time.Millisecond {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("AMOUNT_POLICY", "reject")
	t.Setenv("DISCORD_PROMPT_TIMEOUT", "30s")
	t.Setenv("LEDGER_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("PORT should set the listen address, got %s", cfg.HTTPAddr)
	}
	if cfg.Storage.Driver != "redis" || cfg.Storage.RedisDB != 2 || cfg.Ledger.AmountPolicy != "reject" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Discord.PromptTimeout != 30*time.Second {
		t.Fatalf("unexpected prompt timeout %v", cfg.Discord.PromptTimeout)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "aureliya.yaml")
	content := `
http_addr: ":9000"
storage:
  driver: memory
  slot: owner-deposits
ledger:
  amount_policy: reject
discord:
  prompt_timeout: 45s
smtp:
  host: smtp.example.com
  owner_email: owner@example.com
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AURELIYA_CONFIG", path)
	t.Setenv("SMTP_HOST", "smtp.override.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HTTPAddr != ":9000" || cfg.Storage.Driver != "memory" || cfg.Storage.Slot != "owner-deposits" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Discord.PromptTimeout != 45*time.Second {
		t.Fatalf("unexpected prompt timeout %v", cfg.Discord.PromptTimeout)
	}
	if cfg.SMTP.Host != "smtp.override.com" || cfg.SMTP.OwnerEmail != "owner@example.com" || cfg.SMTP.Port != "465" {
		t.Fatalf("unexpected smtp config: %+v", cfg.SMTP)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":        {"STORAGE_DRIVER": "mongo"},
		"redis without addr":    {"STORAGE_DRIVER": "redis"},
		"unknown policy":        {"AMOUNT_POLICY": "ignore"},
		"token without channel": {"DISCORD_BOT_TOKEN": "abc"},
		"bad duration":          {"CHAT_REPLY_DELAY": "soon"},
		"bad redis db":          {"REDIS_DB": "one"},
		"bad timezone":          {"LEDGER_TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
