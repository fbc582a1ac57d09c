package channels

import (
	"context"
	"fmt"
	"sync"

	"katana/pkg/bus"
	"katana/pkg/config"
	"katana/pkg/logger"
)

// Manager owns the enabled channels and moves outbound bus traffic to them.
type Manager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
	cancel   context.CancelFunc
	mu       sync.RWMutex
}

func NewManager(cfg *config.Config, messageBus *bus.MessageBus) *Manager {
	m := &Manager{
		channels: make(map[string]Channel),
		bus:      messageBus,
	}

	if cfg.Channels.Telegram.Enabled {
		if cfg.Channels.Telegram.Token == "" {
			logger.WarnC("channels", "Telegram token is empty, skipping")
		} else if telegram, err := NewTelegramChannel(cfg.Channels.Telegram, messageBus); err != nil {
			logger.ErrorCF("channels", "Failed to initialize Telegram channel", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		} else {
			m.channels["telegram"] = telegram
			logger.InfoC("channels", "Telegram channel enabled")
		}
	}

	return m
}

func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.channels) == 0 {
		logger.WarnC("channels", "No channels enabled")
		return nil
	}

	dispatchCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	go m.dispatchOutbound(dispatchCtx)

	for name, channel := range m.channels {
		if err := channel.Start(ctx); err != nil {
			logger.ErrorCF("channels", "Failed to start channel", map[string]interface{}{
				"channel":         name,
				logger.FieldError: err.Error(),
			})
		}
	}
	return nil
}

func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	for name, channel := range m.channels {
		if err := channel.Stop(ctx); err != nil {
			logger.ErrorCF("channels", "Error stopping channel", map[string]interface{}{
				"channel":         name,
				logger.FieldError: err.Error(),
			})
		}
	}
	return nil
}

func (m *Manager) EnabledChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	return names
}

// RegisterChannel is used by tests to inject fake channels.
func (m *Manager) RegisterChannel(name string, channel Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[name] = channel
}

func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}

		m.mu.RLock()
		channel, exists := m.channels[msg.Source]
		m.mu.RUnlock()

		if !exists {
			logger.WarnCF("channels", "Unknown channel for outbound message", map[string]interface{}{
				"source": msg.Source,
			})
			continue
		}

		if err := channel.Send(ctx, msg); err != nil {
			logger.ErrorCF("channels", "Error sending message to channel", map[string]interface{}{
				"channel":         channel.Name(),
				logger.FieldError: fmt.Sprintf("%v", err),
			})
		}
	}
}
