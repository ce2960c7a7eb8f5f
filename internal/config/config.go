// Package config loads the externally injected runtime configuration: window
// budget, quiet period, broadcaster endpoint, judge backend, alerting, and the
// audit log path. None of these are hard-coded inside the core pipeline.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/txwarden/txwarden/internal/alert"
	"github.com/txwarden/txwarden/internal/arbiter"
	"github.com/txwarden/txwarden/internal/dispatch"
)

// Duration wraps time.Duration so YAML can carry values like "5s" or "500ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// BroadcasterConfig is the downstream chain broadcaster endpoint.
type BroadcasterConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// JudgeConfig is the arbitration judge backend.
type JudgeConfig struct {
	APIURL    string   `yaml:"api_url"`
	APIKey    string   `yaml:"api_key"`
	Model     string   `yaml:"model"`
	MaxTokens int      `yaml:"max_tokens"`
	Timeout   Duration `yaml:"timeout"`
}

// Config holds all configurable pipeline parameters.
type Config struct {
	Port         int                 `yaml:"port"`
	WindowBudget Duration            `yaml:"window_budget"`
	QuietPeriod  Duration            `yaml:"quiet_period"`
	Broadcaster  BroadcasterConfig   `yaml:"broadcaster"`
	Judge        JudgeConfig         `yaml:"judge"`
	Alerts       []alert.AlertConfig `yaml:"alerts"`
	AuditLog     string              `yaml:"audit_log"`
}

// Default returns the built-in configuration. The 5s window and quiet period
// match the reference deployment; the broadcaster and judge endpoints must be
// provided before the warned path can do anything useful.
func Default() *Config {
	return &Config{
		Port:         8000,
		WindowBudget: Duration(5 * time.Second),
		QuietPeriod:  Duration(5 * time.Second),
		Broadcaster: BroadcasterConfig{
			Timeout: Duration(10 * time.Second),
		},
		Judge: JudgeConfig{
			Model:   "gpt-4-turbo",
			Timeout: Duration(60 * time.Second),
		},
	}
}

// Load reads configuration from a YAML file. Empty path or a missing file
// returns defaults. Invalid YAML returns an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 hash of the raw
// YAML bytes on disk, recorded with every decision for auditability.
func LoadWithHash(path string) (*Config, string, error) {
	cfg := Default()
	if path == "" {
		return cfg, hashBytes(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, hashBytes(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, hashBytes(data), nil
}

func hashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// JudgeSettings converts to the arbiter's config shape.
func (c *Config) JudgeSettings() arbiter.JudgeConfig {
	return arbiter.JudgeConfig{
		APIURL:    c.Judge.APIURL,
		APIKey:    c.Judge.APIKey,
		Model:     c.Judge.Model,
		MaxTokens: c.Judge.MaxTokens,
		Timeout:   time.Duration(c.Judge.Timeout),
	}
}

// BroadcasterSettings converts to the dispatch config shape.
func (c *Config) BroadcasterSettings() dispatch.Config {
	return dispatch.Config{
		URL:     c.Broadcaster.URL,
		Timeout: time.Duration(c.Broadcaster.Timeout),
	}
}
