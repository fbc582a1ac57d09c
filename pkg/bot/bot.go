// Package bot wires the rule registry and the command relay into the
// responder loop: rules answer first, everything else is forwarded to the
// backend.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"katana/pkg/bus"
	"katana/pkg/config"
	"katana/pkg/logger"
	"katana/pkg/relay"
	"katana/pkg/rules"
)

// failureReply is what chat surfaces show when the relay fails; the error
// itself goes to the log, not the user.
const failureReply = "Sorry, the backend is not responding. Try again in a moment."

// Source tags where a reply came from.
const (
	SourceRules = "rules"
	SourceRelay = "relay"
)

// Relayer is the command relay as the bot sees it.
type Relayer interface {
	Send(ctx context.Context, command string) (*relay.Reply, error)
}

// Reply is a resolved response to one submission. Raw is only set for
// relayed replies.
type Reply struct {
	Source string
	Text   string
	Raw    json.RawMessage
}

type Bot struct {
	registry *rules.Registry
	relayer  Relayer
	bus      *bus.MessageBus
}

// New builds the responder. Rules from the config replace the built-in
// defaults when present; their file order is the matching order.
func New(cfg *config.Config, msgBus *bus.MessageBus, relayer Relayer) (*Bot, error) {
	registry, err := buildRegistry(cfg.Assistant.Rules)
	if err != nil {
		return nil, err
	}
	logger.InfoCF("bot", "Rule registry ready", map[string]interface{}{
		"rules": registry.Len(),
	})
	return &Bot{
		registry: registry,
		relayer:  relayer,
		bus:      msgBus,
	}, nil
}

func buildRegistry(cfgRules []config.RuleConfig) (*rules.Registry, error) {
	if len(cfgRules) == 0 {
		return rules.New(rules.Defaults()...)
	}

	builtins := rules.Builtins()
	out := make([]rules.Rule, 0, len(cfgRules))
	for i, rc := range cfgRules {
		match, err := rules.ParseMatchType(rc.Match)
		if err != nil {
			return nil, fmt.Errorf("assistant.rules[%d]: %w", i, err)
		}

		var responder rules.Responder
		switch {
		case strings.TrimSpace(rc.Builtin) != "":
			producer, ok := builtins[strings.ToLower(strings.TrimSpace(rc.Builtin))]
			if !ok {
				return nil, fmt.Errorf("assistant.rules[%d]: unknown builtin %q", i, rc.Builtin)
			}
			responder = producer
		case strings.TrimSpace(rc.Reply) != "":
			responder = rules.Static(rc.Reply)
		default:
			return nil, fmt.Errorf("assistant.rules[%d]: reply or builtin required", i)
		}

		out = append(out, rules.Rule{Keywords: rc.Keywords, Match: match, Response: responder})
	}
	return rules.New(out...)
}

// Registry exposes the rule registry for surfaces that only need matching.
func (b *Bot) Registry() *rules.Registry { return b.registry }

// Process resolves one submission: rules first, relay on miss. Empty input
// resolves to an empty reply without touching the relay. Relay errors are
// returned as-is for the caller to present.
func (b *Bot) Process(ctx context.Context, input string) (Reply, error) {
	if strings.TrimSpace(input) == "" {
		return Reply{}, nil
	}

	if result := b.registry.Match(input); result.Matched {
		logger.DebugCF("bot", "Rule hit", map[string]interface{}{
			"input_size": len(input),
		})
		return Reply{Source: SourceRules, Text: result.Reply}, nil
	}

	return b.SendCommand(ctx, input)
}

// SendCommand forwards input to the backend unconditionally. This is the
// explicit-send path; Process falls through to it on a registry miss.
func (b *Bot) SendCommand(ctx context.Context, input string) (Reply, error) {
	reply, err := b.relayer.Send(ctx, input)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Source: SourceRelay, Text: reply.Text(), Raw: reply.Raw}, nil
}

// Run consumes inbound bus messages until ctx is done. Messages are handled
// one at a time, so relay calls initiated here never overlap and replies
// always match request order.
func (b *Bot) Run(ctx context.Context) {
	logger.InfoC("bot", "Responder loop started")
	for {
		msg, ok := b.bus.ConsumeInbound(ctx)
		if !ok {
			logger.InfoC("bot", "Responder loop stopped")
			return
		}

		var reply Reply
		var err error
		if msg.Direct {
			reply, err = b.SendCommand(ctx, msg.Text)
		} else {
			reply, err = b.Process(ctx, msg.Text)
		}

		text := reply.Text
		if err != nil {
			logger.ErrorCF("bot", "Dispatch failed", map[string]interface{}{
				"source":          msg.Source,
				logger.FieldError: err.Error(),
			})
			text = failureReply
		}
		if text == "" {
			continue
		}

		b.bus.PublishOutbound(bus.OutboundMessage{
			Source: msg.Source,
			ChatID: msg.ChatID,
			Text:   text,
		})
	}
}
