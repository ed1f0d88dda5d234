// Package config loads ARIA's runtime configuration.
//
// Credentials come from the environment (optionally seeded from a .env file);
// non-secret defaults such as the dashboard port or browser viewport may be
// overridden by an optional aria.yaml file. Missing credentials never fail
// startup — the tools that need them report a "not configured" error instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither environment nor aria.yaml override them.
const (
	DefaultDashboardPort = 3888
	DefaultViewportW     = 1280
	DefaultViewportH     = 720
	DefaultLocale        = "he-IL"
	DefaultUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds everything the process needs at startup.
type Config struct {
	// StoreDir is where session documents and landing pages are persisted.
	StoreDir string `yaml:"store_dir"`

	// DashboardPort is the local status dashboard HTTP port.
	DashboardPort int `yaml:"dashboard_port"`

	// Browser appearance. Fixed per process, non-interactive.
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	Locale         string `yaml:"locale"`
	UserAgent      string `yaml:"user_agent"`

	// Credentials, all optional.
	SupabaseURL    string `yaml:"-"`
	SupabaseKey    string `yaml:"-"`
	GeminiAPIKey   string `yaml:"-"`
	FBAppID        string `yaml:"-"`
	FBAppSecret    string `yaml:"-"`
	AssistantKey   string `yaml:"-"`
	AssistantURL   string `yaml:"-"`
	AssistantModel string `yaml:"-"`
}

// Load builds the configuration: .env (if present), then aria.yaml (if
// present), then environment variables, later sources winning.
func Load() (*Config, error) {
	// Missing .env is the common case and not an error.
	_ = godotenv.Load()

	cfg := &Config{
		DashboardPort:  DefaultDashboardPort,
		ViewportWidth:  DefaultViewportW,
		ViewportHeight: DefaultViewportH,
		Locale:         DefaultLocale,
		UserAgent:      DefaultUserAgent,
	}

	if data, err := os.ReadFile("aria.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse aria.yaml: %w", err)
		}
	}

	if cfg.StoreDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determine home directory: %w", err)
		}
		cfg.StoreDir = filepath.Join(home, ".aria", "store")
	}

	if v := os.Getenv("ARIA_STORE_DIR"); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv("ARIA_DASHBOARD_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid ARIA_DASHBOARD_PORT %q", v)
		}
		cfg.DashboardPort = port
	}

	cfg.SupabaseURL = firstEnv("SUPABASE_URL", "VITE_SUPABASE_URL")
	cfg.SupabaseKey = firstEnv("SUPABASE_KEY", "VITE_SUPABASE_PUBLISHABLE_KEY")
	cfg.GeminiAPIKey = firstEnv("GEMINI_API_KEY", "VITE_GEMINI_API_KEY")
	cfg.FBAppID = firstEnv("FB_APP_ID", "VITE_FACEBOOK_APP_ID")
	cfg.FBAppSecret = firstEnv("FB_APP_SECRET", "VITE_FACEBOOK_APP_SECRET")
	cfg.AssistantKey = os.Getenv("LOVABLE_API_KEY")
	cfg.AssistantURL = os.Getenv("LOVABLE_API_URL")
	cfg.AssistantModel = os.Getenv("LOVABLE_MODEL")

	return cfg, nil
}

// SupabaseConfigured reports whether the campaign database adapter can run.
func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// GeminiConfigured reports whether the AI generation adapter can run.
func (c *Config) GeminiConfigured() bool {
	return c.GeminiAPIKey != ""
}

// AssistantConfigured reports whether the chat assistant gateway can run.
func (c *Config) AssistantConfigured() bool {
	return c.AssistantKey != ""
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
