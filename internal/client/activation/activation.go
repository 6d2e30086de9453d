// Package activation makes an agent the session's active agent.
package activation

import (
	"context"
	"log/slog"

	"github.com/alanyang/iobos/internal/adapter/memory"
	"github.com/alanyang/iobos/internal/client/resolver"
	"github.com/alanyang/iobos/internal/client/session"
	"github.com/alanyang/iobos/internal/domain/event"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	porteventbus "github.com/alanyang/iobos/internal/port/eventbus"
)

type activeKey struct{}

// Resolver is satisfied by *resolver.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, id domainprompt.AgentID) resolver.Resolution
}

// Facade resolves an agent, publishes it to the session and notifies
// subscribers with the state that activation published.
type Facade struct {
	res  Resolver
	sess *session.Session
	bus  porteventbus.EventBus
}

type Option func(*Facade)

// WithEventBus replaces the in-process bus used for change notifications.
func WithEventBus(bus porteventbus.EventBus) Option {
	return func(f *Facade) { f.bus = bus }
}

func New(res Resolver, sess *session.Session, opts ...Option) *Facade {
	f := &Facade{res: res, sess: sess, bus: memory.NewEventBus()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Activate calls Resolve exactly once and publishes the outcome. It never
// fails: an unreachable agent is published with the default record.
func (f *Facade) Activate(ctx context.Context, id domainprompt.AgentID) session.ActiveAgent {
	res := f.res.Resolve(ctx, id)

	active := session.ActiveAgent{
		Agent:    string(id),
		Role:     res.Record.Role,
		Greeting: res.Record.Greeting,
		Prompt:   res.Record.Prompt,
		Color:    res.Record.Color,
		Source:   string(res.Source),
		Loaded:   res.Loaded(),
	}
	f.sess.Publish(active)

	notifyCtx := context.WithValue(ctx, activeKey{}, active)
	if err := f.bus.Publish(notifyCtx, event.New(event.TypeAgentActivated, string(id))); err != nil {
		slog.Warn("agent activation notification failed", "agent", id, "error", err)
	}
	if !active.Loaded {
		slog.Warn("agent activated without prompt text", "agent", id, "source", active.Source)
	}
	slog.Info("agent activated", "agent", id, "role", active.Role, "source", active.Source, "loaded", active.Loaded)
	return active
}

// Current returns the most recently activated agent.
func (f *Facade) Current() (session.ActiveAgent, bool) {
	return f.sess.Active()
}

// Subscribe registers fn for activation notifications. The returned func
// removes the subscription.
func (f *Facade) Subscribe(fn func(session.ActiveAgent)) func() {
	sub, err := f.bus.Subscribe(context.Background(), event.ChannelAgent, func(ctx context.Context, e event.Event) {
		if a, ok := ctx.Value(activeKey{}).(session.ActiveAgent); ok {
			fn(a)
			return
		}
		// Buses that do not carry the publisher's context (Postgres NOTIFY)
		// fall back to the session, but only for the same agent.
		if a, ok := f.sess.Active(); ok && a.Agent == e.AgentID {
			fn(a)
		}
	})
	if err != nil {
		slog.Error("failed to subscribe to agent activations", "error", err)
		return func() {}
	}
	return sub.Unsubscribe
}
