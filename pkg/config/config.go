package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Assistant AssistantConfig `json:"assistant"`
	Relay     RelayConfig     `json:"relay"`
	Gateway   GatewayConfig   `json:"gateway"`
	Channels  ChannelsConfig  `json:"channels"`
	Logging   LoggingConfig   `json:"logging"`
	Preflight PreflightConfig `json:"preflight"`
}

type AssistantConfig struct {
	Name  string       `json:"name" env:"KATANA_ASSISTANT_NAME"`
	Rules []RuleConfig `json:"rules"`
}

// RuleConfig defines one trigger rule. Exactly one of Reply (fixed text) or
// Builtin (named computed producer, e.g. "time") must be set. Rule order in
// the file is the matching order.
type RuleConfig struct {
	Keywords []string `json:"keywords"`
	Match    string   `json:"match"`
	Reply    string   `json:"reply"`
	Builtin  string   `json:"builtin"`
}

type RelayConfig struct {
	Endpoint   string `json:"endpoint" env:"KATANA_RELAY_ENDPOINT"`
	TimeoutSec int    `json:"timeout_sec" env:"KATANA_RELAY_TIMEOUT_SEC"`
}

type GatewayConfig struct {
	Host           string  `json:"host" env:"KATANA_GATEWAY_HOST"`
	Port           int     `json:"port" env:"KATANA_GATEWAY_PORT"`
	RequestsPerSec float64 `json:"requests_per_sec" env:"KATANA_GATEWAY_REQUESTS_PER_SEC"`
	RequestBurst   int     `json:"request_burst" env:"KATANA_GATEWAY_REQUEST_BURST"`
}

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled" env:"KATANA_CHANNELS_TELEGRAM_ENABLED"`
	Token     string   `json:"token" env:"KATANA_CHANNELS_TELEGRAM_TOKEN"`
	AllowFrom []string `json:"allow_from" env:"KATANA_CHANNELS_TELEGRAM_ALLOW_FROM"`
}

type LoggingConfig struct {
	Enabled  bool   `json:"enabled" env:"KATANA_LOGGING_ENABLED"`
	Dir      string `json:"dir" env:"KATANA_LOGGING_DIR"`
	Filename string `json:"filename" env:"KATANA_LOGGING_FILENAME"`
}

type PreflightConfig struct {
	Enabled    bool `json:"enabled" env:"KATANA_PREFLIGHT_ENABLED"`
	TimeoutSec int  `json:"timeout_sec" env:"KATANA_PREFLIGHT_TIMEOUT_SEC"`
}

func GetConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".katana")
}

func DefaultConfig() *Config {
	configDir := GetConfigDir()
	return &Config{
		Assistant: AssistantConfig{
			Name:  "katana",
			Rules: []RuleConfig{},
		},
		Relay: RelayConfig{
			Endpoint:   "http://localhost:8600/command",
			TimeoutSec: 30,
		},
		Gateway: GatewayConfig{
			Host:           "0.0.0.0",
			Port:           8610,
			RequestsPerSec: 10,
			RequestBurst:   20,
		},
		Channels: ChannelsConfig{
			Telegram: TelegramConfig{
				Enabled:   false,
				Token:     "",
				AllowFrom: []string{},
			},
		},
		Logging: LoggingConfig{
			Enabled:  true,
			Dir:      filepath.Join(configDir, "logs"),
			Filename: "katana.log",
		},
		Preflight: PreflightConfig{
			Enabled:    true,
			TimeoutSec: 5,
		},
	}
}

// LoadConfig reads path over the defaults and applies environment overrides.
// A missing file is not an error; a malformed one is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := unmarshalConfigStrict(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func unmarshalConfigStrict(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("invalid config: trailing JSON content")
		}
		return err
	}
	return nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) LogFilePath() string {
	filename := c.Logging.Filename
	if filename == "" {
		filename = "katana.log"
	}
	return filepath.Join(expandHome(c.Logging.Dir), filename)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
