package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	portprompt "github.com/alanyang/iobos/internal/port/prompt"
)

var _ portprompt.Store = (*Repository)(nil)

// Repository implements port/prompt.Store using Postgres.
// [LSP] The file-based store can substitute.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Get(ctx context.Context, id domainprompt.AgentID) (domainprompt.Record, error) {
	query := `SELECT role, color, greeting, prompt FROM agent_prompts WHERE agent_id = $1`
	var rec domainprompt.Record
	err := r.pool.QueryRow(ctx, query, id.Key()).Scan(&rec.Role, &rec.Color, &rec.Greeting, &rec.Prompt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprompt.Record{}, fmt.Errorf("agent %q: %w", id, domainprompt.ErrNotFound)
		}
		return domainprompt.Record{}, fmt.Errorf("querying agent prompt: %w: %w", domainprompt.ErrUnavailable, err)
	}
	return rec, nil
}

func (r *Repository) GetAll(ctx context.Context) (domainprompt.Document, error) {
	query := `SELECT agent_id, role, color, greeting, prompt FROM agent_prompts ORDER BY agent_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing agent prompts: %w: %w", domainprompt.ErrUnavailable, err)
	}
	defer rows.Close()

	doc := domainprompt.Document{}
	for rows.Next() {
		var (
			id  string
			rec domainprompt.Record
		)
		if err := rows.Scan(&id, &rec.Role, &rec.Color, &rec.Greeting, &rec.Prompt); err != nil {
			return nil, fmt.Errorf("scanning agent prompt row: %w: %w", domainprompt.ErrUnavailable, err)
		}
		doc[domainprompt.AgentID(id)] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating agent prompts: %w: %w", domainprompt.ErrUnavailable, err)
	}
	return doc, nil
}

// Put merges in a single statement; NULL parameters keep the stored column.
func (r *Repository) Put(ctx context.Context, id domainprompt.AgentID, patch domainprompt.Patch) (domainprompt.Record, error) {
	query := `
		UPDATE agent_prompts SET
			role       = COALESCE($2, role),
			color      = COALESCE($3, color),
			greeting   = COALESCE($4, greeting),
			prompt     = COALESCE($5, prompt),
			updated_at = NOW()
		WHERE agent_id = $1
		RETURNING role, color, greeting, prompt`

	var rec domainprompt.Record
	err := r.pool.QueryRow(ctx, query, id.Key(), patch.Role, patch.Color, patch.Greeting, patch.Prompt).
		Scan(&rec.Role, &rec.Color, &rec.Greeting, &rec.Prompt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprompt.Record{}, fmt.Errorf("agent %q: %w", id, domainprompt.ErrNotFound)
		}
		return domainprompt.Record{}, fmt.Errorf("updating agent prompt: %w: %w", domainprompt.ErrUnavailable, err)
	}
	return rec, nil
}

// Seed inserts every record of doc that is not already present.
func (r *Repository) Seed(ctx context.Context, doc domainprompt.Document) error {
	query := `
		INSERT INTO agent_prompts (agent_id, role, color, greeting, prompt)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (agent_id) DO NOTHING`

	batch := &pgx.Batch{}
	for id, rec := range doc {
		batch.Queue(query, id.Key(), rec.Role, rec.Color, rec.Greeting, rec.Prompt)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seeding agent prompts: %w", err)
	}
	return nil
}
