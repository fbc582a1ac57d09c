// Package preflight runs one-shot environment checks before the gateway
// starts. It is a precondition gate, never invoked per-request.
package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"katana/pkg/config"
	"katana/pkg/logger"
)

// CheckResult is the outcome of a single named check.
type CheckResult struct {
	Name string
	Err  error
}

func (r CheckResult) OK() bool { return r.Err == nil }

// Runner executes the startup checks against a loaded config.
type Runner struct {
	cfg        *config.Config
	timeout    time.Duration
	httpClient *http.Client
}

func NewRunner(cfg *config.Config) *Runner {
	timeout := time.Duration(cfg.Preflight.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Runner{
		cfg:        cfg,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Run executes all checks and returns their results. Callers decide whether
// a failure is fatal.
func (r *Runner) Run(ctx context.Context) []CheckResult {
	results := []CheckResult{
		{Name: "config", Err: r.checkConfig()},
		{Name: "log-dir", Err: r.checkLogDir()},
		{Name: "relay-endpoint", Err: r.checkRelayEndpoint(ctx)},
	}

	for _, res := range results {
		if res.OK() {
			logger.DebugCF("preflight", "Check passed", map[string]interface{}{"check": res.Name})
		} else {
			logger.WarnCF("preflight", "Check failed", map[string]interface{}{
				"check":           res.Name,
				logger.FieldError: res.Err.Error(),
			})
		}
	}
	return results
}

// Failed filters results down to the failing checks.
func Failed(results []CheckResult) []CheckResult {
	var out []CheckResult
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

func (r *Runner) checkConfig() error {
	errs := config.Validate(r.cfg)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config invalid: %v", errs[0])
}

func (r *Runner) checkLogDir() error {
	if !r.cfg.Logging.Enabled {
		return nil
	}
	dir := filepath.Dir(r.cfg.LogFilePath())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("log directory not creatable: %w", err)
	}
	probe := filepath.Join(dir, ".preflight")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("log directory not writable: %w", err)
	}
	os.Remove(probe)
	return nil
}

// checkRelayEndpoint verifies the backend answers HTTP at all. Any status
// counts as reachable; method support is the backend's business.
func (r *Runner) checkRelayEndpoint(ctx context.Context) error {
	endpoint := r.cfg.Relay.Endpoint
	if endpoint == "" {
		return fmt.Errorf("relay endpoint not configured")
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("relay endpoint invalid: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay endpoint unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
