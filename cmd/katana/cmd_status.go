package main

import (
	"context"
	"fmt"
	"os"

	"katana/pkg/preflight"
)

func statusCmd() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s katana v%s\n\n", logo, version)
	fmt.Printf("Config:         %s\n", getConfigPath())
	fmt.Printf("Assistant:      %s\n", cfg.Assistant.Name)
	fmt.Printf("Rules:          %d configured (0 means built-in defaults)\n", len(cfg.Assistant.Rules))
	fmt.Printf("Relay endpoint: %s (timeout %ds)\n", cfg.Relay.Endpoint, cfg.Relay.TimeoutSec)
	fmt.Printf("Gateway:        %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Printf("Telegram:       enabled=%v\n", cfg.Channels.Telegram.Enabled)
	fmt.Println()

	fmt.Println("Preflight:")
	results := preflight.NewRunner(cfg).Run(context.Background())
	for _, res := range results {
		if res.OK() {
			fmt.Printf("  ✓ %s\n", res.Name)
		} else {
			fmt.Printf("  ✗ %s: %v\n", res.Name, res.Err)
		}
	}
	if len(preflight.Failed(results)) > 0 {
		os.Exit(1)
	}
}
