package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope", "config.json"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Relay.TimeoutSec != 30 {
		t.Fatalf("relay.timeout_sec default = %d", cfg.Relay.TimeoutSec)
	}
	if cfg.Gateway.Port != 8610 {
		t.Fatalf("gateway.port default = %d", cfg.Gateway.Port)
	}
}

func TestLoadConfigRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	content := `{
  "relay": {
    "endpoint": "http://localhost:9000/command",
    "retries": 3
  }
}`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadConfig(cfgPath)
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "unknown field") {
		t.Fatalf("expected unknown field error, got: %v", err)
	}
}

func TestLoadConfigRejectsTrailingJSONContent(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	content := `{"relay":{"endpoint":"http://localhost:9000/command"}}{"extra":true}`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadConfig(cfgPath)
	if err == nil {
		t.Fatalf("expected trailing json content error")
	}
	if !strings.Contains(err.Error(), "trailing JSON content") {
		t.Fatalf("expected trailing JSON content error, got: %v", err)
	}
}

func TestLoadConfigAppliesEnvOverride(t *testing.T) {
	t.Setenv("KATANA_RELAY_ENDPOINT", "http://backend:7777/cmd")
	t.Setenv("KATANA_GATEWAY_PORT", "9100")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Relay.Endpoint != "http://backend:7777/cmd" {
		t.Fatalf("relay.endpoint = %q", cfg.Relay.Endpoint)
	}
	if cfg.Gateway.Port != 9100 {
		t.Fatalf("gateway.port = %d", cfg.Gateway.Port)
	}
}

func TestLoadConfigParsesRules(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	content := `{
  "assistant": {
    "rules": [
      {"keywords": ["hi", "hello"], "reply": "Hello, captain!"},
      {"keywords": ["time"], "match": "exact", "builtin": "time"}
    ]
  }
}`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Assistant.Rules) != 2 {
		t.Fatalf("rules count = %d", len(cfg.Assistant.Rules))
	}
	if cfg.Assistant.Rules[0].Reply != "Hello, captain!" {
		t.Fatalf("rules[0].reply = %q", cfg.Assistant.Rules[0].Reply)
	}
	if cfg.Assistant.Rules[1].Builtin != "time" {
		t.Fatalf("rules[1].builtin = %q", cfg.Assistant.Rules[1].Builtin)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if errs := Validate(cfg); len(errs) != 0 {
		t.Fatalf("default config invalid: %v", errs)
	}

	cfg.Relay.Endpoint = "not a url"
	cfg.Relay.TimeoutSec = 0
	cfg.Gateway.Port = 0
	cfg.Channels.Telegram.Enabled = true
	cfg.Assistant.Rules = []RuleConfig{
		{Keywords: []string{}, Reply: "x"},
		{Keywords: []string{"a"}, Reply: "x", Builtin: "time"},
		{Keywords: []string{"b"}, Match: "fuzzy", Reply: "y"},
	}

	errs := Validate(cfg)
	wantSubstrings := []string{
		"relay.endpoint",
		"relay.timeout_sec",
		"gateway.port",
		"telegram.token",
		"rules[0]",
		"rules[1]",
		"rules[2]",
	}
	for _, want := range wantSubstrings {
		found := false
		for _, err := range errs {
			if strings.Contains(err.Error(), want) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing validation error about %q in %v", want, errs)
		}
	}
}
