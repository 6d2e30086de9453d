package prompt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("agent not found")
	ErrUnavailable = errors.New("prompt store unavailable")
	ErrBadRequest  = errors.New("bad request")
)

// AgentID names an agent. Comparison is case-insensitive; Key is the canonical form.
type AgentID string

// Key returns the canonical (upper-case, trimmed) form of the id.
func (id AgentID) Key() string {
	return strings.ToUpper(strings.TrimSpace(string(id)))
}

func (id AgentID) Equal(other AgentID) bool {
	return id.Key() == other.Key()
}

// Record stores the persona data for one agent.
type Record struct {
	Role     string `json:"role" yaml:"role"`
	Color    string `json:"color" yaml:"color"`
	Greeting string `json:"greeting" yaml:"greeting"`
	Prompt   string `json:"prompt" yaml:"prompt"`
}

// Valid reports whether every field is present.
func (r Record) Valid() bool {
	return r.Role != "" && r.Color != "" && r.Greeting != "" && r.Prompt != ""
}

// Loaded reports whether the record carries prompt text. Records without it are
// usable for display only.
func (r Record) Loaded() bool {
	return r.Prompt != ""
}

// Patch is a partial Record. Nil fields are left untouched by Apply.
type Patch struct {
	Role     *string `json:"role,omitempty"`
	Color    *string `json:"color,omitempty"`
	Greeting *string `json:"greeting,omitempty"`
	Prompt   *string `json:"prompt,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Role == nil && p.Color == nil && p.Greeting == nil && p.Prompt == nil
}

// Apply returns r with every set field of p copied over it.
func (p Patch) Apply(r Record) Record {
	if p.Role != nil {
		r.Role = *p.Role
	}
	if p.Color != nil {
		r.Color = *p.Color
	}
	if p.Greeting != nil {
		r.Greeting = *p.Greeting
	}
	if p.Prompt != nil {
		r.Prompt = *p.Prompt
	}
	return r
}

// Document is the whole persisted mapping of agent id to record.
type Document map[AgentID]Record

// Lookup finds id in the document ignoring case.
func (d Document) Lookup(id AgentID) (AgentID, Record, bool) {
	if r, ok := d[id]; ok {
		return id, r, true
	}
	for k, r := range d {
		if k.Equal(id) {
			return k, r, true
		}
	}
	return "", Record{}, false
}

const (
	DefaultRole  = "Unknown Role"
	DefaultColor = "gray"
)

// Default builds the placeholder shown when no source could supply id.
func Default(id AgentID) Record {
	return Record{
		Role:     DefaultRole,
		Color:    DefaultColor,
		Greeting: fmt.Sprintf("The %s agent is currently unavailable. Please try again later.", id),
		Prompt:   "",
	}
}
