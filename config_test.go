package goBlog

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://blog.example.com"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults with base url", mutate: func(*Config) {}},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.API.BaseURL = "  " },
			wantErr: "BaseURL is required",
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.API.BaseURL = "/api" },
			wantErr: "absolute http(s) URL",
		},
		{
			name:    "ftp base url",
			mutate:  func(c *Config) { c.API.BaseURL = "ftp://blog.example.com" },
			wantErr: "absolute http(s) URL",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.API.Timeout = 0 },
			wantErr: "Timeout must be > 0",
		},
		{
			name:    "huge timeout",
			mutate:  func(c *Config) { c.API.Timeout = time.Hour },
			wantErr: "Timeout must be <= 5m",
		},
		{
			name:    "leeway too large",
			mutate:  func(c *Config) { c.Session.ExpiryLeeway = 3 * time.Minute },
			wantErr: "ExpiryLeeway",
		},
		{
			name:   "limiter disabled",
			mutate: func(c *Config) { c.Transport.RequestsPerMinute = 0 },
		},
		{
			name:    "negative rpm",
			mutate:  func(c *Config) { c.Transport.RequestsPerMinute = -1 },
			wantErr: "RequestsPerMinute must be >= 0",
		},
		{
			name: "burst without rpm",
			mutate: func(c *Config) {
				c.Transport.RequestsPerMinute = 0
				c.Transport.Burst = 5
			},
			wantErr: "Burst requires RequestsPerMinute",
		},
		{
			name: "audit without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantErr: "Audit BufferSize",
		},
		{
			name: "histograms without metrics",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantErr: "requires Metrics Enabled",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigNeedsOnlyBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected default config without base url to fail")
	}
	cfg.API.BaseURL = " http://localhost:8000 "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if got := cloneConfig(cfg).API.BaseURL; got != "http://localhost:8000" {
		t.Fatalf("expected trimmed base url, got %q", got)
	}
}

func TestBuilderValidatesAndBuildsOnce(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected missing base url to fail the build")
	}

	b := New().WithBaseURL("http://127.0.0.1:1")
	c, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
	if c.API().BaseURL() != "http://127.0.0.1:1" {
		t.Fatalf("unexpected base url %q", c.API().BaseURL())
	}
	if c.limiter == nil {
		t.Fatal("default config should enable the outbound limiter")
	}
	if c.Roles() == nil {
		t.Fatal("expected role table")
	}
}
