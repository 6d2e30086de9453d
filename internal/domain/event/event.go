package event

import (
	"time"
)

type Type string

const (
	TypePromptUpdated  Type = "prompt_updated"
	TypeAgentActivated Type = "agent_activated"
)

// Channel is a domain-scoped notification channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelPrompt Channel = "prompt"
	ChannelAgent  Channel = "agent"
)

var typeToChannel = map[Type]Channel{
	TypePromptUpdated:  ChannelPrompt,
	TypeAgentActivated: ChannelAgent,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the prompt service.
type Event struct {
	Type      Type      `json:"type"`
	AgentID   string    `json:"agent_id"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, agentID string) Event {
	return Event{
		Type:      eventType,
		AgentID:   agentID,
		Timestamp: time.Now().UTC(),
	}
}
