package ws_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/iobos/internal/domain/event"
	"github.com/alanyang/iobos/internal/transport/ws"
)

func init() { gin.SetMode(gin.TestMode) }

func TestHub_BroadcastReachesClient(t *testing.T) {
	hub := ws.NewHub()
	r := gin.New()
	hub.Register(r.Group("/api/ws"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(event.New(event.TypePromptUpdated, "ORACLE"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got event.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, event.TypePromptUpdated, got.Type)
	assert.Equal(t, "ORACLE", got.AgentID)
}

func TestHub_ClientRemovedOnClose(t *testing.T) {
	hub := ws.NewHub()
	r := gin.New()
	hub.Register(r.Group("/api/ws"))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
