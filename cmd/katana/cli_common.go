package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"katana/pkg/config"
	"katana/pkg/logger"
	"katana/pkg/relay"
)

func normalizeCLIArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := []string{args[0]}
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--debug" || arg == "-d" {
			continue
		}
		if arg == "--config" {
			if i+1 < len(args) {
				i++
			}
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			continue
		}
		normalized = append(normalized, arg)
	}
	return normalized
}

func detectConfigPathFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" && i+1 < len(args) {
			return strings.TrimSpace(args[i+1])
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimSpace(strings.TrimPrefix(arg, "--config="))
		}
	}
	return ""
}

func printHelp() {
	fmt.Printf("%s katana - conversational command gateway v%s\n\n", logo, version)
	fmt.Println("Usage: katana <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  gateway     Run the gateway foreground (HTTP, WebSocket, channels)")
	fmt.Println("  chat        Interactive chat in the terminal")
	fmt.Println("  status      Show config summary and preflight results")
	fmt.Println("  config      Manage the config file (init, show, path)")
	fmt.Println("  version     Show version information")
	fmt.Println()
	fmt.Println("Global options:")
	fmt.Println("  --config <path>         Use custom config file")
	fmt.Println("  --debug, -d             Enable debug logging")
}

func getConfigPath() string {
	if strings.TrimSpace(globalConfigPathOverride) != "" {
		return globalConfigPathOverride
	}
	if fromEnv := strings.TrimSpace(os.Getenv("KATANA_CONFIG")); fromEnv != "" {
		return fromEnv
	}
	return filepath.Join(config.GetConfigDir(), "config.json")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, err
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg *config.Config) {
	if !cfg.Logging.Enabled {
		logger.DisableFileLogging()
		return
	}
	if err := logger.EnableFileLogging(cfg.LogFilePath()); err != nil {
		fmt.Printf("Warning: failed to enable file logging: %v\n", err)
	}
}

func newRelayClient(cfg *config.Config) *relay.Client {
	return relay.NewClient(cfg.Relay.Endpoint, time.Duration(cfg.Relay.TimeoutSec)*time.Second)
}
