package prompt

//go:generate mockgen -destination=../../mocks/mock_prompt_store.go -package=mocks github.com/alanyang/iobos/internal/port/prompt Store

import (
	"context"

	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
)

// Store is the persistence abstraction for the agent prompt document.
// [DIP] service/prompt depends on this interface, not on any concrete storage.
// [LSP] File-based and Postgres implementations are both valid substitutes.
type Store interface {
	// Get returns the record for id, matched case-insensitively.
	// Returns domainprompt.ErrNotFound if the agent does not exist.
	Get(ctx context.Context, id domainprompt.AgentID) (domainprompt.Record, error)

	// GetAll returns the whole document.
	GetAll(ctx context.Context) (domainprompt.Document, error)

	// Put merges patch over the existing record and persists the document.
	// It never creates agents: an unknown id returns domainprompt.ErrNotFound
	// without writing anything.
	Put(ctx context.Context, id domainprompt.AgentID, patch domainprompt.Patch) (domainprompt.Record, error)
}
