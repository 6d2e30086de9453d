// Package session holds the per-user client state: the bearer credential, the
// resolved-record cache and the currently active agent.
package session

import (
	"sync"

	"github.com/alanyang/iobos/internal/adapter/memory"
)

// ActiveAgent is the state published when an agent is activated.
type ActiveAgent struct {
	Agent    string `json:"agent" yaml:"agent"`
	Role     string `json:"role" yaml:"role"`
	Greeting string `json:"greeting" yaml:"greeting"`
	Prompt   string `json:"prompt" yaml:"prompt"`
	Color    string `json:"color" yaml:"color"`
	Source   string `json:"source" yaml:"source"`
	// Loaded is false when the record has no prompt text. Such an agent can
	// be displayed but must not be driven by its prompt.
	Loaded bool `json:"loaded" yaml:"loaded"`
}

type Session struct {
	mu     sync.RWMutex
	token  string
	active *ActiveAgent
	cache  *memory.Cache
}

func New(token string) *Session {
	return &Session{token: token, cache: memory.NewCache()}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the credential. Cached records are kept.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) Cache() *memory.Cache { return s.cache }

// Publish records a as the active agent, replacing any previous one.
func (s *Session) Publish(a ActiveAgent) {
	s.mu.Lock()
	s.active = &a
	s.mu.Unlock()
}

// Active returns the last published agent, if any.
func (s *Session) Active() (ActiveAgent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return ActiveAgent{}, false
	}
	return *s.active, true
}
