package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath       = "config.toml"
	DefaultHTTPAddr         = ":8080"
	DefaultPublicBaseURL    = "http://localhost:8080"
	DefaultJWTExpiresIn     = "24h"
	DefaultPGHost           = "127.0.0.1"
	DefaultPGPort           = 5432
	DefaultPGUser           = "postgres"
	DefaultPGDatabase       = "vidstream"
	DefaultPGSSLMode        = "disable"
	DefaultUpstreamTimeout  = 30
	DefaultChunkSizeBytes   = 16 * 1024
	DefaultCacheMaxAge      = 3600
	DefaultGetFileRateLimit = 20
	DefaultS3Region         = "us-east-1"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	Telegram TelegramConfig `toml:"telegram"`
	Upstream UpstreamConfig `toml:"upstream"`
	S3       S3Config       `toml:"s3"`
	Relay    RelayConfig    `toml:"relay"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `toml:"format" validate:"omitempty,oneof=text json"`
}

type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"`
	// PublicBaseURL is the externally reachable origin used in links sent to users.
	PublicBaseURL string `toml:"public_base_url" validate:"required,url"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

type PostgresConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL         string `toml:"url"`
	Host        string `toml:"host"`
	Port        int    `toml:"port" validate:"omitempty,min=1,max=65535"`
	User        string `toml:"user"`
	Password    string `toml:"password"`
	Database    string `toml:"database"`
	SSLMode     string `toml:"sslmode"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token" validate:"required_if=Enabled true"`
	// StorageChannelID is a numeric chat id (-100...) or an @channel username.
	StorageChannelID string `toml:"storage_channel_id" validate:"required_if=Enabled true"`
	// APIEndpoint overrides the Bot API endpoint, e.g. a self-hosted bot API server.
	APIEndpoint      string  `toml:"api_endpoint"`
	WebhookURL       string  `toml:"webhook_url" validate:"omitempty,url"`
	WebhookSecret    string  `toml:"webhook_secret"`
	AdminUserIDs     []int64 `toml:"admin_user_ids"`
	GetFileRateLimit float64 `toml:"get_file_rate_limit" validate:"gte=0"`
}

type UpstreamConfig struct {
	ConnectTimeoutSeconds int `toml:"connect_timeout_seconds" validate:"gte=0"`
	ReadTimeoutSeconds    int `toml:"read_timeout_seconds" validate:"gte=0"`
}

type S3Config struct {
	Enabled   bool   `toml:"enabled"`
	Endpoint  string `toml:"endpoint" validate:"omitempty,url"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

type RelayConfig struct {
	ChunkSizeBytes     int `toml:"chunk_size_bytes" validate:"gte=0"`
	CacheMaxAgeSeconds int `toml:"cache_max_age_seconds" validate:"gte=0"`
}

func (c UpstreamConfig) ConnectTimeout() time.Duration {
	return secondsOrDefault(c.ConnectTimeoutSeconds, DefaultUpstreamTimeout)
}

func (c UpstreamConfig) ReadTimeout() time.Duration {
	return secondsOrDefault(c.ReadTimeoutSeconds, DefaultUpstreamTimeout)
}

func secondsOrDefault(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

// DSN returns the pgx connection string for the configured database.
func (c PostgresConfig) DSN() string {
	if strings.TrimSpace(c.URL) != "" {
		return strings.TrimSpace(c.URL)
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.SSLMode}}.Encode()
	}
	return u.String()
}

// JWTExpiry parses the configured token lifetime.
func (c AuthConfig) JWTExpiry() (time.Duration, error) {
	raw := strings.TrimSpace(c.JWTExpiresIn)
	if raw == "" {
		raw = DefaultJWTExpiresIn
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid jwt_expires_in: %w", err)
	}
	return d, nil
}

// StreamURL builds the public stream link for a content id.
func (c ServerConfig) StreamURL(id string) string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/stream/" + url.PathEscape(id)
}

// InfoURL builds the public info link for a content id.
func (c ServerConfig) InfoURL(id string) string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/info/" + url.PathEscape(id)
}

func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:          DefaultHTTPAddr,
			PublicBaseURL: DefaultPublicBaseURL,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:        DefaultPGHost,
			Port:        DefaultPGPort,
			User:        DefaultPGUser,
			Database:    DefaultPGDatabase,
			SSLMode:     DefaultPGSSLMode,
			AutoMigrate: true,
		},
		Telegram: TelegramConfig{
			Enabled:          true,
			GetFileRateLimit: DefaultGetFileRateLimit,
		},
		Upstream: UpstreamConfig{
			ConnectTimeoutSeconds: DefaultUpstreamTimeout,
			ReadTimeoutSeconds:    DefaultUpstreamTimeout,
		},
		S3: S3Config{
			Region: DefaultS3Region,
		},
		Relay: RelayConfig{
			ChunkSizeBytes:     DefaultChunkSizeBytes,
			CacheMaxAgeSeconds: DefaultCacheMaxAge,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg, os.Getenv)
	return cfg, nil
}

// applyEnv lets deployments inject secrets without a config file.
func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			*dst = value
		}
	}
	set(&cfg.Server.Addr, "HTTP_ADDR")
	set(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	set(&cfg.Auth.JWTSecret, "JWT_SECRET")
	set(&cfg.Postgres.URL, "DATABASE_URL")
	set(&cfg.Telegram.BotToken, "BOT_TOKEN")
	set(&cfg.Telegram.StorageChannelID, "STORAGE_CHANNEL_ID")
	set(&cfg.Telegram.WebhookURL, "WEBHOOK_URL")
	if port := strings.TrimSpace(getenv("PORT")); port != "" && getenv("HTTP_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded configuration for missing or malformed values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Telegram.WebhookURL != "" && strings.TrimSpace(c.Telegram.WebhookSecret) == "" {
		return fmt.Errorf("invalid config: telegram.webhook_secret is required when webhook_url is set")
	}
	return nil
}
