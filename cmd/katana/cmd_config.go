package main

import (
	"encoding/json"
	"fmt"
	"os"

	"katana/pkg/config"
)

func configCmd() {
	args := os.Args[2:]
	if len(args) == 0 {
		fmt.Println("Usage: katana config <init|show|path>")
		os.Exit(1)
	}

	switch args[0] {
	case "init":
		path := getConfigPath()
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Config already exists: %s\n", path)
			return
		}
		if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config: %s\n", path)
	case "show":
		cfg, err := config.LoadConfig(getConfigPath())
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			fmt.Printf("Error encoding config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	case "path":
		fmt.Println(getConfigPath())
	default:
		fmt.Printf("Unknown config command: %s\n", args[0])
		fmt.Println("Usage: katana config <init|show|path>")
		os.Exit(1)
	}
}
