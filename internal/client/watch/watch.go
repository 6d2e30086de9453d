// Package watch follows the server's prompt event stream and drops stale
// records from a session cache.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/alanyang/iobos/internal/client/api"
	"github.com/alanyang/iobos/internal/client/session"
	"github.com/alanyang/iobos/internal/domain/event"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

// URL converts an http(s) server base URL to the event stream URL.
func URL(baseURL string) string {
	base := strings.TrimSuffix(baseURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + api.EventsPath
}

// Run reads events until ctx is cancelled or the connection drops. When sess
// is non-nil, every prompt_updated event invalidates the agent in its cache
// before onEvent (which may be nil) is called.
func Run(ctx context.Context, baseURL string, sess *session.Session, onEvent func(event.Event)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, URL(baseURL), nil)
	if err != nil {
		return fmt.Errorf("dialing event stream: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("reading event stream: %w", err)
		}

		var e event.Event
		if err := json.Unmarshal(data, &e); err != nil {
			slog.Warn("ignoring malformed event", "error", err)
			continue
		}
		if sess != nil && e.Type == event.TypePromptUpdated && e.AgentID != "" {
			sess.Cache().Invalidate(domainprompt.AgentID(e.AgentID))
			slog.Debug("invalidated cached agent prompt", "agent", e.AgentID)
		}
		if onEvent != nil {
			onEvent(e)
		}
	}
}
