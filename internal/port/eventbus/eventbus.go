package eventbus

//go:generate mockgen -destination=../../mocks/mock_eventbus.go -package=mocks github.com/alanyang/iobos/internal/port/eventbus EventBus

import (
	"context"

	"github.com/alanyang/iobos/internal/domain/event"
)

type Handler func(ctx context.Context, e event.Event)

type Subscription interface {
	Unsubscribe()
}

// EventBus fans prompt events out to subscribers of a domain channel.
// [LSP] The in-process bus and the Postgres NOTIFY bus are interchangeable.
type EventBus interface {
	Publish(ctx context.Context, e event.Event) error
	Subscribe(ctx context.Context, ch event.Channel, handler Handler) (Subscription, error)
}
