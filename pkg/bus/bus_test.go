package bus

import (
	"context"
	"testing"
	"time"
)

func TestPublishConsumeRoundTrip(t *testing.T) {
	t.Parallel()

	mb := New()
	defer mb.Close()

	mb.PublishInbound(InboundMessage{Source: "api", Text: "hello"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, ok := mb.ConsumeInbound(ctx)
	if !ok {
		t.Fatalf("consume failed")
	}
	if msg.Source != "api" || msg.Text != "hello" {
		t.Fatalf("got %+v", msg)
	}
}

func TestConsumeInboundHonorsContext(t *testing.T) {
	t.Parallel()

	mb := New()
	defer mb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := mb.ConsumeInbound(ctx); ok {
		t.Fatalf("expected no message on cancelled context")
	}
}

func TestPublishAfterCloseDoesNotPanic(t *testing.T) {
	t.Parallel()

	mb := New()
	mb.Close()
	mb.Close() // idempotent

	mb.PublishInbound(InboundMessage{Source: "api", Text: "late"})
	mb.PublishOutbound(OutboundMessage{Source: "api", Text: "late"})
}

func TestSubscribeOutboundPreservesOrder(t *testing.T) {
	t.Parallel()

	mb := New()
	defer mb.Close()

	for _, text := range []string{"one", "two", "three"} {
		mb.PublishOutbound(OutboundMessage{Source: "ws", Text: text})
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, want := range []string{"one", "two", "three"} {
		msg, ok := mb.SubscribeOutbound(ctx)
		if !ok {
			t.Fatalf("subscribe failed")
		}
		if msg.Text != want {
			t.Fatalf("order broken: got %q, want %q", msg.Text, want)
		}
	}
}
