// Package bus decouples front-ends from the responder loop with buffered
// inbound and outbound queues.
package bus

import (
	"context"
	"sync"
	"time"

	"katana/pkg/logger"
)

const queueWriteTimeout = 2 * time.Second

type MessageBus struct {
	inbound   chan InboundMessage
	outbound  chan OutboundMessage
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func New() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, 64),
		outbound: make(chan OutboundMessage, 64),
	}
}

func (mb *MessageBus) PublishInbound(msg InboundMessage) {
	mb.mu.RLock()
	if mb.closed {
		mb.mu.RUnlock()
		return
	}
	ch := mb.inbound
	mb.mu.RUnlock()

	defer func() {
		if recover() != nil {
			logger.WarnCF("bus", "PublishInbound on closed bus recovered", map[string]interface{}{
				"source": msg.Source,
			})
		}
	}()

	select {
	case ch <- msg:
	case <-time.After(queueWriteTimeout):
		logger.ErrorCF("bus", "PublishInbound timeout (queue full)", map[string]interface{}{
			"source": msg.Source,
		})
	}
}

func (mb *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg, ok := <-mb.inbound:
		return msg, ok
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

func (mb *MessageBus) PublishOutbound(msg OutboundMessage) {
	mb.mu.RLock()
	if mb.closed {
		mb.mu.RUnlock()
		return
	}
	ch := mb.outbound
	mb.mu.RUnlock()

	defer func() {
		if recover() != nil {
			logger.WarnCF("bus", "PublishOutbound on closed bus recovered", map[string]interface{}{
				"source": msg.Source,
			})
		}
	}()

	select {
	case ch <- msg:
	case <-time.After(queueWriteTimeout):
		logger.ErrorCF("bus", "PublishOutbound timeout (queue full)", map[string]interface{}{
			"source": msg.Source,
		})
	}
}

func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg, ok := <-mb.outbound:
		return msg, ok
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

func (mb *MessageBus) Close() {
	mb.closeOnce.Do(func() {
		mb.mu.Lock()
		mb.closed = true
		close(mb.inbound)
		close(mb.outbound)
		mb.mu.Unlock()
	})
}
