package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"katana/pkg/bot"
	"katana/pkg/bus"
	"katana/pkg/channels"
	"katana/pkg/config"
	"katana/pkg/preflight"
	"katana/pkg/server"
)

func gatewayCmd() {
	skipPreflight := false
	for _, arg := range os.Args[2:] {
		if arg == "--skip-preflight" {
			skipPreflight = true
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Preflight.Enabled && !skipPreflight {
		if !runPreflight(ctx, cfg) {
			fmt.Println("Preflight failed. Fix the issues above or rerun with --skip-preflight.")
			os.Exit(1)
		}
		fmt.Println("✓ Preflight checks passed")
	}

	msgBus := bus.New()
	defer msgBus.Close()

	responder, err := bot.New(cfg, msgBus, newRelayClient(cfg))
	if err != nil {
		fmt.Printf("Error building responder: %v\n", err)
		os.Exit(1)
	}

	httpServer := server.NewServer(cfg, responder)
	channelManager := channels.NewManager(cfg, msgBus)

	if err := httpServer.Start(); err != nil {
		fmt.Printf("Error starting HTTP server: %v\n", err)
		os.Exit(1)
	}
	if err := channelManager.StartAll(ctx); err != nil {
		fmt.Printf("Error starting channels: %v\n", err)
	}

	if enabled := channelManager.EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %v\n", enabled)
	}
	fmt.Printf("✓ Gateway started on %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Println("Press Ctrl+C to stop.")

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		responder.Run(runCtx)
		return nil
	})
	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		channelManager.StopAll(shutdownCtx)
		return httpServer.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		fmt.Printf("Gateway shutdown error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Gateway stopped.")
}

func runPreflight(ctx context.Context, cfg *config.Config) bool {
	results := preflight.NewRunner(cfg).Run(ctx)
	failed := preflight.Failed(results)
	for _, res := range failed {
		fmt.Printf("✗ %s: %v\n", res.Name, res.Err)
	}
	return len(failed) == 0
}
