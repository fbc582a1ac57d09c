package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate returns configuration problems found in cfg. It does not mutate
// cfg.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	if strings.TrimSpace(cfg.Relay.Endpoint) == "" {
		errs = append(errs, fmt.Errorf("relay.endpoint must be set"))
	} else {
		u, err := url.Parse(cfg.Relay.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("relay.endpoint %q is not a valid URL", cfg.Relay.Endpoint))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("relay.endpoint scheme must be http or https"))
		}
	}
	if cfg.Relay.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("relay.timeout_sec must be > 0"))
	}

	if cfg.Gateway.Port <= 0 || cfg.Gateway.Port > 65535 {
		errs = append(errs, fmt.Errorf("gateway.port must be in (0,65535]"))
	}
	if cfg.Gateway.RequestsPerSec <= 0 {
		errs = append(errs, fmt.Errorf("gateway.requests_per_sec must be > 0"))
	}
	if cfg.Gateway.RequestBurst <= 0 {
		errs = append(errs, fmt.Errorf("gateway.request_burst must be > 0"))
	}

	for i, r := range cfg.Assistant.Rules {
		errs = append(errs, validateRule(i, r)...)
	}

	if cfg.Channels.Telegram.Enabled && strings.TrimSpace(cfg.Channels.Telegram.Token) == "" {
		errs = append(errs, fmt.Errorf("channels.telegram.token must be set when telegram is enabled"))
	}

	if cfg.Preflight.Enabled && cfg.Preflight.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("preflight.timeout_sec must be > 0 when enabled"))
	}

	return errs
}

func validateRule(i int, r RuleConfig) []error {
	var errs []error

	usable := 0
	for _, kw := range r.Keywords {
		if strings.TrimSpace(kw) != "" {
			usable++
		}
	}
	if usable == 0 {
		errs = append(errs, fmt.Errorf("assistant.rules[%d]: at least one keyword required", i))
	}

	switch strings.ToLower(strings.TrimSpace(r.Match)) {
	case "", "contains", "exact":
	default:
		errs = append(errs, fmt.Errorf("assistant.rules[%d]: match must be contains or exact", i))
	}

	hasReply := strings.TrimSpace(r.Reply) != ""
	hasBuiltin := strings.TrimSpace(r.Builtin) != ""
	if hasReply == hasBuiltin {
		errs = append(errs, fmt.Errorf("assistant.rules[%d]: exactly one of reply or builtin must be set", i))
	}

	return errs
}
