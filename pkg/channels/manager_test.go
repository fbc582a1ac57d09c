package channels

import (
	"context"
	"sync"
	"testing"
	"time"

	"katana/pkg/bus"
	"katana/pkg/config"
)

type fakeChannel struct {
	*BaseChannel
	mu   sync.Mutex
	sent []bus.OutboundMessage
}

func (f *fakeChannel) Start(ctx context.Context) error { f.setRunning(true); return nil }
func (f *fakeChannel) Stop(ctx context.Context) error  { f.setRunning(false); return nil }

func (f *fakeChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	return nil
}

func TestManagerDispatchesOutboundToChannel(t *testing.T) {
	t.Parallel()

	msgBus := bus.New()
	defer msgBus.Close()

	cfg := config.DefaultConfig()
	m := NewManager(cfg, msgBus)

	fake := &fakeChannel{BaseChannel: NewBaseChannel("fake", msgBus, nil)}
	m.RegisterChannel("fake", fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.StartAll(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer m.StopAll(ctx)

	msgBus.PublishOutbound(bus.OutboundMessage{Source: "fake", ChatID: "7", Text: "reply"})
	msgBus.PublishOutbound(bus.OutboundMessage{Source: "unknown", ChatID: "8", Text: "dropped"})

	deadline := time.After(2 * time.Second)
	for {
		fake.mu.Lock()
		n := len(fake.sent)
		fake.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("outbound message not dispatched, sent=%d", n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.sent[0].Text != "reply" || fake.sent[0].ChatID != "7" {
		t.Fatalf("sent = %+v", fake.sent[0])
	}
}

func TestBaseChannelAllowList(t *testing.T) {
	t.Parallel()

	open := NewBaseChannel("t", nil, nil)
	if !open.Allowed("anyone") {
		t.Fatalf("empty allow list must admit everyone")
	}

	restricted := NewBaseChannel("t", nil, []string{"100", "200"})
	if !restricted.Allowed("100") {
		t.Fatalf("listed sender rejected")
	}
	if restricted.Allowed("300") {
		t.Fatalf("unlisted sender admitted")
	}
}
