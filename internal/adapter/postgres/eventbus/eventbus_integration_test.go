//go:build integration

package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgeventbus "github.com/alanyang/iobos/internal/adapter/postgres/eventbus"
	"github.com/alanyang/iobos/internal/domain/event"
	"github.com/alanyang/iobos/internal/testutil"
)

func TestEventBus_PublishReachesListener(t *testing.T) {
	bus := pgeventbus.New(testutil.SetupTestDB(t))
	ctx := context.Background()
	agent := "AGENT_" + uuid.New().String()[:8]

	got := make(chan event.Event, 8)
	sub, err := bus.Subscribe(ctx, event.ChannelPrompt, func(_ context.Context, e event.Event) {
		if e.AgentID == agent {
			got <- e
		}
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypePromptUpdated, agent)))

	select {
	case e := <-got:
		assert.Equal(t, event.TypePromptUpdated, e.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestEventBus_PublishUnknownType(t *testing.T) {
	bus := pgeventbus.New(testutil.SetupTestDB(t))

	err := bus.Publish(context.Background(), event.New("nonsense", "GENESIS"))
	assert.Error(t, err)
}
