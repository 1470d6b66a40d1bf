// Package config holds the options that shape an OpenPaw browser session.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for browser options.
const (
	DefaultViewportWidth    = 1280
	DefaultViewportHeight   = 720
	DefaultTimeoutSeconds   = 30
	DefaultDownloadsDir     = "downloads"
	DefaultScreenshotsDir   = "screenshots"
	DefaultMaxSnapshotDepth = 10
	DefaultIdleTimeout      = 300 // seconds
)

// BrowserConfig configures one workspace's browser session.
type BrowserConfig struct {
	Headless          bool     `yaml:"headless"`
	ViewportWidth     int      `yaml:"viewport_width"`
	ViewportHeight    int      `yaml:"viewport_height"`
	TimeoutSeconds    float64  `yaml:"timeout_seconds"`
	DownloadsDir      string   `yaml:"downloads_dir"`
	ScreenshotsDir    string   `yaml:"screenshots_dir"`
	WorkspacePath     string   `yaml:"workspace_path"`
	PersistCookies    bool     `yaml:"persist_cookies"`
	AllowedDomains    []string `yaml:"allowed_domains"`
	BlockedDomains    []string `yaml:"blocked_domains"`
	MaxSnapshotDepth  int      `yaml:"max_snapshot_depth"`
	MaxSnapshotTokens int      `yaml:"max_snapshot_tokens"`
	IdleTimeout       int      `yaml:"idle_timeout_seconds"`
}

// Default returns the option set used when nothing is configured.
// WorkspacePath is left empty and must be supplied by the caller.
func Default() BrowserConfig {
	return BrowserConfig{
		Headless:         true,
		ViewportWidth:    DefaultViewportWidth,
		ViewportHeight:   DefaultViewportHeight,
		TimeoutSeconds:   DefaultTimeoutSeconds,
		DownloadsDir:     DefaultDownloadsDir,
		ScreenshotsDir:   DefaultScreenshotsDir,
		MaxSnapshotDepth: DefaultMaxSnapshotDepth,
		IdleTimeout:      DefaultIdleTimeout,
	}
}

// Timeout returns the per-action driver timeout.
func (c BrowserConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// IdleTimeoutDuration returns how long a session may sit unused.
func (c BrowserConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(c.IdleTimeout) * time.Second
}

// Validate checks the options a session cannot start without.
func (c BrowserConfig) Validate() error {
	if strings.TrimSpace(c.WorkspacePath) == "" {
		return fmt.Errorf("workspace_path is required")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %v", c.TimeoutSeconds)
	}
	if c.MaxSnapshotDepth < 0 {
		return fmt.Errorf("max_snapshot_depth cannot be negative")
	}
	if c.MaxSnapshotTokens < 0 {
		return fmt.Errorf("max_snapshot_tokens cannot be negative")
	}
	return nil
}

// FromOptions builds a config from a flat options map as handed over by the
// agent runtime. Unknown keys are ignored; missing keys keep their defaults.
func FromOptions(opts map[string]interface{}) (BrowserConfig, error) {
	cfg := Default()
	var err error

	for key, raw := range opts {
		switch key {
		case "headless":
			cfg.Headless, err = toBool(raw)
		case "viewport_width":
			cfg.ViewportWidth, err = toInt(raw)
		case "viewport_height":
			cfg.ViewportHeight, err = toInt(raw)
		case "timeout_seconds":
			cfg.TimeoutSeconds, err = toFloat(raw)
		case "downloads_dir":
			cfg.DownloadsDir, err = toString(raw)
		case "screenshots_dir":
			cfg.ScreenshotsDir, err = toString(raw)
		case "workspace_path":
			cfg.WorkspacePath, err = toString(raw)
		case "persist_cookies":
			cfg.PersistCookies, err = toBool(raw)
		case "allowed_domains":
			cfg.AllowedDomains, err = toStrings(raw)
		case "blocked_domains":
			cfg.BlockedDomains, err = toStrings(raw)
		case "max_snapshot_depth":
			cfg.MaxSnapshotDepth, err = toInt(raw)
		case "max_snapshot_tokens":
			cfg.MaxSnapshotTokens, err = toInt(raw)
		case "idle_timeout_seconds":
			cfg.IdleTimeout, err = toInt(raw)
		default:
			continue
		}
		if err != nil {
			return BrowserConfig{}, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return cfg, nil
}

// fileConfig is the on-disk layout: a top-level "browser" section.
type fileConfig struct {
	Browser *BrowserConfig `yaml:"browser"`
}

// LoadFile reads a YAML file with a "browser" section. Keys absent from the
// file keep their defaults.
func LoadFile(path string) (BrowserConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BrowserConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes with a "browser" section.
func Parse(data []byte) (BrowserConfig, error) {
	cfg := Default()
	fc := fileConfig{Browser: &cfg}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return BrowserConfig{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

func toBool(v interface{}) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(t))
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}

func toInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("expected integer, got %v", t)
		}
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

func toString(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string, got %T", v)
}

// toStrings accepts a list or a comma-separated string.
func toStrings(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), t...), nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list of strings, got %T", v)
}
