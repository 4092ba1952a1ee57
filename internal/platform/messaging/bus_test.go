package messaging

import (
	"context"
	"testing"
	"time"

	"agora/contexts/governance-core/vote-gateway/ports"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.EventEnvelope, 1)
	bus.Subscribe(ctx, "governance.votes", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	})

	event := ports.EventEnvelope{
		EventID:    "evt-1",
		EventType:  "vote_recorded",
		EntityType: "vote",
		EntityID:   "evt-1",
	}
	if err := bus.Publish(ctx, "governance.votes", event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "evt-1" || got.EventType != "vote_recorded" {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("subscriber never received the event")
	}
}

func TestPublishWithoutSubscribersSucceeds(t *testing.T) {
	bus := NewBus(nil)
	if err := bus.Publish(context.Background(), "governance.proposals", ports.EventEnvelope{
		EventID:   "evt-2",
		EventType: "proposal_closed",
	}); err != nil {
		t.Fatalf("publish to an empty topic failed: %v", err)
	}
}

func TestOtherTopicsAreNotDelivered(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.EventEnvelope, 1)
	bus.Subscribe(ctx, "governance.proposals", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	})

	if err := bus.Publish(ctx, "governance.votes", ports.EventEnvelope{EventID: "evt-3"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	select {
	case got := <-received:
		t.Fatalf("event leaked across topics: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}
