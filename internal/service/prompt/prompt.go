package prompt

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
	"github.com/alanyang/iobos/internal/domain/event"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	porteventbus "github.com/alanyang/iobos/internal/port/eventbus"
	portprompt "github.com/alanyang/iobos/internal/port/prompt"
)

// Service exposes the agent prompt document to verified callers.
// [SRP] Role checks and store delegation only; credential verification happens
// at the transport boundary and arrives here as Claims.
// [DIP] Depends on the Store and EventBus ports, not on any concrete storage.
type Service struct {
	store portprompt.Store
	bus   porteventbus.EventBus
}

func NewService(store portprompt.Store, bus porteventbus.EventBus) *Service {
	return &Service{store: store, bus: bus}
}

// ReadOne returns the record for id to any verified caller.
func (s *Service) ReadOne(ctx context.Context, _ domainauth.Claims, id domainprompt.AgentID) (domainprompt.Record, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		return domainprompt.Record{}, fmt.Errorf("read agent prompt: %w", err)
	}
	return r, nil
}

// ReadAll returns the whole document to any verified caller.
func (s *Service) ReadAll(ctx context.Context, _ domainauth.Claims) (domainprompt.Document, error) {
	doc, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read agent prompts: %w", err)
	}
	return doc, nil
}

// UpdateOne merges patch into the record for id. Only admins may update.
// A successful update publishes a prompt_updated event; a failed publish is
// logged and does not fail the update.
func (s *Service) UpdateOne(ctx context.Context, claims domainauth.Claims, id domainprompt.AgentID, patch domainprompt.Patch) (domainprompt.Record, error) {
	if !claims.IsAdmin() {
		return domainprompt.Record{}, fmt.Errorf("update agent prompt %q: %w", id, domainauth.ErrForbidden)
	}
	if patch.Empty() {
		return domainprompt.Record{}, fmt.Errorf("update agent prompt %q: %w: no fields to update", id, domainprompt.ErrBadRequest)
	}

	r, err := s.store.Put(ctx, id, patch)
	if err != nil {
		return domainprompt.Record{}, fmt.Errorf("update agent prompt: %w", err)
	}

	slog.InfoContext(ctx, "agent prompt updated", "agent_id", id.Key(), "by", claims.Subject)
	if err := s.bus.Publish(ctx, event.New(event.TypePromptUpdated, id.Key())); err != nil {
		slog.WarnContext(ctx, "failed to publish prompt update", "agent_id", id.Key(), "error", err)
	}
	return r, nil
}
