package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Auth sources accepted by AuthSource.
const (
	AuthSourceEnv    = "env"
	AuthSourceFile   = "file"
	AuthSourceRedis  = "redis"
	AuthSourceStatic = "static"
)

type AppConfig struct {
	APIBaseURL    string `yaml:"api_base_url"`
	GameID        string `yaml:"game_id"`
	HTTPTimeoutMS int    `yaml:"http_timeout_ms"`
	HTTPRetry     int    `yaml:"http_retry"`

	AuthSource    string `yaml:"auth_source"`
	AuthToken     string `yaml:"auth_token"`
	AuthTokenFile string `yaml:"auth_token_file"`
	AuthUser      string `yaml:"auth_user"`
	RedisURL      string `yaml:"redis_url"`

	DisplayMode string `yaml:"display_mode"`
	ExportDir   string `yaml:"export_dir"`
	MessagesDir string `yaml:"messages_dir"`
}

func defaults() *AppConfig {
	return &AppConfig{
		APIBaseURL:    "http://127.0.0.1:8000",
		HTTPTimeoutMS: 8000,
		HTTPRetry:     0,
		AuthSource:    AuthSourceEnv,
		DisplayMode:   "classic",
		ExportDir:     ".",
	}
}

// HTTPTimeout is HTTPTimeoutMS as a duration.
func (c *AppConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// Load builds the configuration from defaults, then the YAML file at path
// (or CHESS_CONFIG_FILE when path is empty), then the environment.
func Load(path string) (*AppConfig, error) {
	cfg := defaults()

	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("CHESS_CONFIG_FILE"))
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.APIBaseURL, "CHESS_API_BASE_URL")
	setString(&cfg.GameID, "CHESS_GAME_ID")
	if v := strings.TrimSpace(os.Getenv("CHESS_HTTP_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPTimeoutMS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_HTTP_RETRY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.HTTPRetry = n
		}
	}

	setString(&cfg.AuthSource, "CHESS_AUTH_SOURCE")
	setString(&cfg.AuthToken, "CHESS_AUTH_TOKEN")
	setString(&cfg.AuthTokenFile, "CHESS_AUTH_TOKEN_FILE")
	setString(&cfg.AuthUser, "CHESS_AUTH_USER")
	setString(&cfg.RedisURL, "REDIS_URL")

	setString(&cfg.DisplayMode, "CHESS_DISPLAY_MODE")
	setString(&cfg.ExportDir, "CHESS_EXPORT_DIR")
	setString(&cfg.MessagesDir, "CHESS_MESSAGES_DIR")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks the fields the client cannot run without. It is called
// by Load and again after CLI flags are applied.
func (c *AppConfig) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.APIBaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CHESS_API_BASE_URL must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.HTTPTimeoutMS <= 0 {
		return errors.New("CHESS_HTTP_TIMEOUT_MS must be positive")
	}
	if c.HTTPRetry < 0 {
		return errors.New("CHESS_HTTP_RETRY must not be negative")
	}

	c.AuthSource = strings.ToLower(strings.TrimSpace(c.AuthSource))
	switch c.AuthSource {
	case AuthSourceEnv, AuthSourceStatic:
	case AuthSourceFile:
		if strings.TrimSpace(c.AuthTokenFile) == "" {
			return errors.New("CHESS_AUTH_TOKEN_FILE is required for auth source file")
		}
	case AuthSourceRedis:
		if strings.TrimSpace(c.RedisURL) == "" || strings.TrimSpace(c.AuthUser) == "" {
			return errors.New("REDIS_URL and CHESS_AUTH_USER are required for auth source redis")
		}
	default:
		return fmt.Errorf("unknown CHESS_AUTH_SOURCE %q", c.AuthSource)
	}
	return nil
}
