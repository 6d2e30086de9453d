package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/iobos/internal/domain/event"
	porteventbus "github.com/alanyang/iobos/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// retryDelay is the pause after a failed wait before listening again.
const retryDelay = time.Second

// EventBus carries prompt events over Postgres NOTIFY so every server replica
// sharing the database sees edits made through any of them.
type EventBus struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *EventBus {
	return &EventBus{pool: pool}
}

// Publish sends e via NOTIFY on the channel for its type. Delivery is
// best-effort: listeners that are not connected miss it.
func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)
	if ch == "" {
		return fmt.Errorf("publishing event: no channel for type %q", e.Type)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	channel := channelName(ch)
	if _, err := eb.pool.Exec(ctx, "SELECT pg_notify($1, $2)", channel, string(payload)); err != nil {
		return fmt.Errorf("publishing event on channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe holds one pooled connection in LISTEN for the lifetime of the
// subscription and invokes handler for every event on the channel.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	conn, err := eb.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection for LISTEN: %w", err)
	}

	channel := channelName(ch)
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("executing LISTEN on channel %s: %w", channel, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer func() {
			conn.Exec(context.Background(), "UNLISTEN "+channel) //nolint:errcheck
			conn.Release()
			close(sub.done)
		}()

		for {
			notification, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				slog.Warn("waiting for prompt notification failed", "channel", channel, "error", err)
				select {
				case <-subCtx.Done():
					return
				case <-time.After(retryDelay):
				}
				continue
			}

			var e event.Event
			if err := json.Unmarshal([]byte(notification.Payload), &e); err != nil {
				slog.Warn("dropping malformed event", "channel", channel, "error", err)
				continue
			}
			handler(subCtx, e)
		}
	}()

	return sub, nil
}

// channelName prefixes ch so the service's channels cannot collide with other
// listeners on a shared database.
func channelName(ch event.Channel) string {
	return "iobos_" + string(ch)
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
