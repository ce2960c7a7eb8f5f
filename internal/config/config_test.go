package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if time.Duration(cfg.WindowBudget) != 5*time.Second {
		t.Errorf("default window budget wrong: %v", cfg.WindowBudget)
	}
	if time.Duration(cfg.QuietPeriod) != 5*time.Second {
		t.Errorf("default quiet period wrong: %v", cfg.QuietPeriod)
	}
	if cfg.Port != 8000 {
		t.Errorf("default port wrong: %d", cfg.Port)
	}
}

func TestLoadOverlaysOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
port: 9100
window_budget: 250ms
broadcaster:
  url: http://localhost:8001/process
judge:
  api_url: http://localhost:11434/v1/chat/completions
  model: local-model
alerts:
  - url: http://hooks.example/alert
    format: slack
    events: [rejected]
`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, hash, err := LoadWithHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9100 {
		t.Errorf("port not overlaid: %d", cfg.Port)
	}
	if time.Duration(cfg.WindowBudget) != 250*time.Millisecond {
		t.Errorf("window budget not parsed: %v", cfg.WindowBudget)
	}
	// Unspecified fields keep defaults.
	if time.Duration(cfg.QuietPeriod) != 5*time.Second {
		t.Errorf("quiet period lost its default: %v", cfg.QuietPeriod)
	}
	if cfg.Judge.Model != "local-model" {
		t.Errorf("judge model not overlaid: %s", cfg.Judge.Model)
	}
	if len(cfg.Alerts) != 1 || cfg.Alerts[0].Events[0] != "rejected" {
		t.Errorf("alerts not parsed: %+v", cfg.Alerts)
	}
	if hash == "" || hash == hashBytes(nil) {
		t.Error("expected content hash for loaded file")
	}

	// Same bytes, same hash.
	_, hash2, err := LoadWithHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if hash != hash2 {
		t.Error("hash not stable across loads")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("window_budget: banana\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not an int\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSettingsConversion(t *testing.T) {
	cfg := Default()
	cfg.Broadcaster.URL = "http://localhost:8001/process"

	js := cfg.JudgeSettings()
	if js.Timeout != 60*time.Second {
		t.Errorf("judge timeout not converted: %v", js.Timeout)
	}
	bs := cfg.BroadcasterSettings()
	if bs.URL != "http://localhost:8001/process" || bs.Timeout != 10*time.Second {
		t.Errorf("broadcaster settings not converted: %+v", bs)
	}
}
