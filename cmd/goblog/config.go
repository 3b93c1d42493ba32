package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	goBlog "github.com/MrEthical07/goBlog"
)

// cliConfig is the merged CLI configuration. Later layers win: defaults, the
// YAML file, .env, the process environment, then flags.
type cliConfig struct {
	BaseURL           string        `yaml:"base_url" env:"GOBLOG_BASE_URL, overwrite"`
	Timeout           time.Duration `yaml:"timeout" env:"GOBLOG_TIMEOUT, overwrite"`
	Profile           string        `yaml:"profile" env:"GOBLOG_PROFILE, overwrite"`
	TokenFile         string        `yaml:"token_file" env:"GOBLOG_TOKEN_FILE, overwrite"`
	RedisAddr         string        `yaml:"redis_addr" env:"GOBLOG_REDIS_ADDR, overwrite"`
	RedisPrefix       string        `yaml:"redis_prefix" env:"GOBLOG_REDIS_PREFIX, overwrite"`
	RedisTTL          time.Duration `yaml:"redis_ttl" env:"GOBLOG_REDIS_TTL, overwrite"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"GOBLOG_REQUESTS_PER_MINUTE, overwrite"`
	DiscardExpired    bool          `yaml:"discard_expired" env:"GOBLOG_DISCARD_EXPIRED, overwrite"`
	LogLevel          string        `yaml:"log_level" env:"GOBLOG_LOG_LEVEL, overwrite"`
	AuditLog          string        `yaml:"audit_log" env:"GOBLOG_AUDIT_LOG, overwrite"`
	OTLPEndpoint      string        `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT, overwrite"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		BaseURL:           "http://localhost:8000",
		Timeout:           15 * time.Second,
		Profile:           "default",
		RedisPrefix:       "goblog",
		RequestsPerMinute: 90,
		LogLevel:          "warn",
	}
}

func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "goblog", "config.yaml")
}

// loadConfig applies the file and environment layers. A missing YAML or .env
// file is not an error.
func loadConfig(ctx context.Context, configFile, envFile string, env envconfig.Lookuper) (cliConfig, error) {
	cfg := defaultCLIConfig()

	if configFile != "" {
		raw, err := os.ReadFile(configFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", configFile, err)
			}
		}
	}

	lookupers := []envconfig.Lookuper{env}
	if envFile != "" {
		dotenv, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read %s: %w", envFile, err)
		default:
			lookupers = append(lookupers, envconfig.MapLookuper(dotenv))
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MultiLookuper(lookupers...),
	}); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

// tokenFile is where the FileStore keeps the pair for the active profile.
func (c cliConfig) tokenFile() (string, error) {
	if c.TokenFile != "" {
		return c.TokenFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "goblog", c.Profile+".tokens"), nil
}

func (c cliConfig) clientConfig() goBlog.Config {
	cfg := goBlog.DefaultConfig()
	cfg.API.BaseURL = c.BaseURL
	cfg.API.Timeout = c.Timeout
	cfg.API.UserAgent = "goblog-cli/1"
	cfg.Session.DiscardExpiredAccess = c.DiscardExpired
	cfg.Transport.RequestsPerMinute = c.RequestsPerMinute
	cfg.Transport.EnableTracing = c.OTLPEndpoint != ""
	cfg.Audit.Enabled = c.AuditLog != ""
	return cfg
}
