// Package channels hosts chat-network front-ends. Each channel turns network
// events into inbound bus messages and delivers outbound replies.
package channels

import (
	"context"
	"sync"

	"katana/pkg/bus"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
}

// BaseChannel carries the pieces every adapter shares.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom map[string]struct{}
	mu        sync.RWMutex
	running   bool
}

func NewBaseChannel(name string, messageBus *bus.MessageBus, allowFrom []string) *BaseChannel {
	allowed := make(map[string]struct{}, len(allowFrom))
	for _, id := range allowFrom {
		allowed[id] = struct{}{}
	}
	return &BaseChannel{name: name, bus: messageBus, allowFrom: allowed}
}

func (b *BaseChannel) Name() string { return b.name }

// Allowed reports whether a sender passes the allow-list. An empty list
// admits everyone.
func (b *BaseChannel) Allowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	_, ok := b.allowFrom[senderID]
	return ok
}

func (b *BaseChannel) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running
}

func (b *BaseChannel) setRunning(v bool) {
	b.mu.Lock()
	b.running = v
	b.mu.Unlock()
}

func (b *BaseChannel) publishInbound(msg bus.InboundMessage) {
	b.bus.PublishInbound(msg)
}
