package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr && os.Getenv("HTTP_ADDR") == "" && os.Getenv("PORT") == "" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Relay.ChunkSizeBytes != DefaultChunkSizeBytes {
		t.Fatalf("unexpected chunk size: %d", cfg.Relay.ChunkSizeBytes)
	}
	if !cfg.Postgres.AutoMigrate {
		t.Fatal("expected auto migrate by default")
	}
}

func TestLoadDecodesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
addr = ":9090"
public_base_url = "https://video.example.com"

[telegram]
bot_token = "123:abc"
storage_channel_id = "-100123"
admin_user_ids = [1, 2]

[relay]
chunk_size_bytes = 8192
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.PublicBaseURL != "https://video.example.com" {
		t.Fatalf("unexpected base url: %s", cfg.Server.PublicBaseURL)
	}
	if cfg.Telegram.StorageChannelID != "-100123" && os.Getenv("STORAGE_CHANNEL_ID") == "" {
		t.Fatalf("unexpected storage channel: %s", cfg.Telegram.StorageChannelID)
	}
	if len(cfg.Telegram.AdminUserIDs) != 2 {
		t.Fatalf("unexpected admins: %v", cfg.Telegram.AdminUserIDs)
	}
	if cfg.Relay.ChunkSizeBytes != 8192 {
		t.Fatalf("unexpected chunk size: %d", cfg.Relay.ChunkSizeBytes)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("defaults should survive partial files: %q", cfg.Log.Level)
	}
}

func TestApplyEnvOverridesFileValues(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Telegram.BotToken = "from-file"
	env := map[string]string{
		"BOT_TOKEN":          "from-env",
		"STORAGE_CHANNEL_ID": "@vault",
		"PORT":               "5000",
		"DATABASE_URL":       "postgres://u:p@db:5432/x",
	}
	applyEnv(&cfg, func(key string) string { return env[key] })

	if cfg.Telegram.BotToken != "from-env" {
		t.Fatalf("bot token not overridden: %s", cfg.Telegram.BotToken)
	}
	if cfg.Telegram.StorageChannelID != "@vault" {
		t.Fatalf("storage channel not overridden: %s", cfg.Telegram.StorageChannelID)
	}
	if cfg.Server.Addr != ":5000" {
		t.Fatalf("PORT should set addr: %s", cfg.Server.Addr)
	}
	if cfg.Postgres.DSN() != "postgres://u:p@db:5432/x" {
		t.Fatalf("DATABASE_URL should win: %s", cfg.Postgres.DSN())
	}
}

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	cfg := PostgresConfig{Host: "db", Port: 5433, User: "app", Password: "p@ss", Database: "vids", SSLMode: "disable"}
	got := cfg.DSN()
	want := "postgres://app:p%40ss@db:5433/vids?sslmode=disable"
	if got != want {
		t.Fatalf("dsn mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name: "valid",
			mutate: func(c *Config) {
				c.Telegram.BotToken = "t"
				c.Telegram.StorageChannelID = "-1"
			},
		},
		{
			name:    "telegram enabled without token",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name:   "telegram disabled",
			mutate: func(c *Config) { c.Telegram.Enabled = false },
		},
		{
			name: "webhook without secret",
			mutate: func(c *Config) {
				c.Telegram.Enabled = false
				c.Telegram.WebhookURL = "https://example.com"
			},
			wantErr: true,
		},
		{
			name: "bad log level",
			mutate: func(c *Config) {
				c.Telegram.Enabled = false
				c.Log.Level = "loud"
			},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpstreamTimeouts(t *testing.T) {
	t.Parallel()

	var cfg UpstreamConfig
	if cfg.ConnectTimeout() != 30*time.Second || cfg.ReadTimeout() != 30*time.Second {
		t.Fatal("zero values should fall back to 30s")
	}
	cfg.ReadTimeoutSeconds = 5
	if cfg.ReadTimeout() != 5*time.Second {
		t.Fatalf("unexpected read timeout: %s", cfg.ReadTimeout())
	}
}

func TestServerLinks(t *testing.T) {
	t.Parallel()

	cfg := ServerConfig{PublicBaseURL: "https://v.example.com/"}
	if got := cfg.StreamURL("abc"); got != "https://v.example.com/stream/abc" {
		t.Fatalf("unexpected stream url: %s", got)
	}
	if got := cfg.InfoURL("abc"); got != "https://v.example.com/info/abc" {
		t.Fatalf("unexpected info url: %s", got)
	}
}
