package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/iobos/internal/adapter/memory"
	"github.com/alanyang/iobos/internal/domain/event"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

func TestCache_GetSetCaseInsensitive(t *testing.T) {
	c := memory.NewCache()
	_, ok := c.Get("GENESIS")
	assert.False(t, ok)

	c.Set("genesis", domainprompt.Record{Role: "R"})
	got, ok := c.Get("GENESIS")
	require.True(t, ok)
	assert.Equal(t, "R", got.Role)
	assert.Equal(t, 1, c.Len())
}

func TestCache_SetReplacesWholeValue(t *testing.T) {
	c := memory.NewCache()
	c.Set("ORACLE", domainprompt.Record{Role: "R", Prompt: "P"})
	c.Set("ORACLE", domainprompt.Record{Role: "R2"})

	got, _ := c.Get("ORACLE")
	assert.Equal(t, domainprompt.Record{Role: "R2"}, got)
}

func TestCache_Invalidate(t *testing.T) {
	c := memory.NewCache()
	c.Set("ORACLE", domainprompt.Record{Role: "R"})
	c.Invalidate("oracle")

	_, ok := c.Get("ORACLE")
	assert.False(t, ok)
}

func TestCache_ConcurrentSameID(t *testing.T) {
	c := memory.NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set("EXODUS", domainprompt.Record{Role: "R"})
			c.Get("EXODUS")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}

func TestEventBus_PublishToChannelSubscribers(t *testing.T) {
	bus := memory.NewEventBus()
	ctx := context.Background()

	var got []event.Event
	_, err := bus.Subscribe(ctx, event.ChannelPrompt, func(_ context.Context, e event.Event) {
		got = append(got, e)
	})
	require.NoError(t, err)

	var agentEvents int
	_, err = bus.Subscribe(ctx, event.ChannelAgent, func(_ context.Context, e event.Event) {
		agentEvents++
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, event.New(event.TypePromptUpdated, "GENESIS")))

	require.Len(t, got, 1)
	assert.Equal(t, "GENESIS", got[0].AgentID)
	assert.Equal(t, 0, agentEvents)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := memory.NewEventBus()
	ctx := context.Background()

	calls := 0
	sub, err := bus.Subscribe(ctx, event.ChannelPrompt, func(context.Context, event.Event) { calls++ })
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe()
	require.NoError(t, bus.Publish(ctx, event.New(event.TypePromptUpdated, "GENESIS")))
	assert.Equal(t, 0, calls)
}
