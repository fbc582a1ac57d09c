package main

import (
	"fmt"
	"os"

	"katana/pkg/logger"
)

const version = "0.1.0"
const logo = "⚔"

var globalConfigPathOverride string

func main() {
	globalConfigPathOverride = detectConfigPathFromArgs(os.Args)

	for _, arg := range os.Args {
		if arg == "--debug" || arg == "-d" {
			logger.SetLevel(logger.DEBUG)
			break
		}
	}

	os.Args = normalizeCLIArgs(os.Args)

	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "gateway":
		gatewayCmd()
	case "chat":
		chatCmd()
	case "status":
		statusCmd()
	case "config":
		configCmd()
	case "version", "--version", "-v":
		fmt.Printf("%s katana v%s\n", logo, version)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}
