package testutil

import (
	"context"
	"sync"

	"github.com/alanyang/iobos/internal/domain/event"
	porteventbus "github.com/alanyang/iobos/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*CaptureBus)(nil)

// CaptureBus is a test-double EventBus that records every published event.
// It records with a mutex so it is safe for concurrent use.
type CaptureBus struct {
	mu     sync.Mutex
	Events []event.Event
}

func (c *CaptureBus) Publish(_ context.Context, e event.Event) error {
	c.mu.Lock()
	c.Events = append(c.Events, e)
	c.mu.Unlock()
	return nil
}

func (c *CaptureBus) Subscribe(context.Context, event.Channel, porteventbus.Handler) (porteventbus.Subscription, error) {
	return noopSubscription{}, nil
}

// ForAgent returns all events published for agentID.
func (c *CaptureBus) ForAgent(agentID string) []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []event.Event
	for _, e := range c.Events {
		if e.AgentID == agentID {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears all recorded events.
func (c *CaptureBus) Reset() {
	c.mu.Lock()
	c.Events = nil
	c.mu.Unlock()
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}
