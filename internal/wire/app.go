package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	fileprompt "github.com/alanyang/iobos/internal/adapter/file/prompt"
	"github.com/alanyang/iobos/internal/adapter/memory"
	pgdb "github.com/alanyang/iobos/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/iobos/internal/adapter/postgres/eventbus"
	pgprompt "github.com/alanyang/iobos/internal/adapter/postgres/prompt"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	porteventbus "github.com/alanyang/iobos/internal/port/eventbus"
	portprompt "github.com/alanyang/iobos/internal/port/prompt"

	authsvc "github.com/alanyang/iobos/internal/service/auth"
	promptsvc "github.com/alanyang/iobos/internal/service/prompt"

	"github.com/alanyang/iobos/internal/transport"
	mcptransport "github.com/alanyang/iobos/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool      *pgxpool.Pool // nil in file mode
	Server    *http.Server
	PromptSvc *promptsvc.Service
	Gate      *authsvc.Gate
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig(os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return BuildWithConfig(ctx, cfg)
}

func BuildWithConfig(ctx context.Context, cfg Config) (*App, error) {
	seed, err := fileprompt.DefaultDocument()
	if err != nil {
		return nil, err
	}

	// ── Storage ──────────────────────────────────────────────────────────────
	var (
		pool  *pgxpool.Pool
		store portprompt.Store
		bus   porteventbus.EventBus
	)
	if cfg.DatabaseURL != "" {
		pool, err = pgdb.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := pgdb.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		repo := pgprompt.New(pool)
		if err := repo.Seed(ctx, seed); err != nil {
			pool.Close()
			return nil, err
		}
		store = repo
		bus = pgeventbus.New(pool)
		slog.Info("prompt store: postgres")
	} else {
		if err := fileprompt.Seed(cfg.PromptsPath, seed); err != nil {
			return nil, fmt.Errorf("seeding prompt document: %w", err)
		}
		store = fileprompt.New(cfg.PromptsPath)
		bus = memory.NewEventBus()
		slog.Info("prompt store: file", "path", cfg.PromptsPath)
	}

	// The static fallback is always a file. In file mode it is the live
	// document; otherwise it is seeded from the bundled defaults.
	if err := fileprompt.Seed(cfg.StaticPath, seed); err != nil {
		closePool(pool)
		return nil, fmt.Errorf("seeding static document: %w", err)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	gate, err := authsvc.NewGate(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		closePool(pool)
		return nil, err
	}
	if !cfg.LoginConfigured() {
		slog.Warn("LOGIN_EMAIL, LOGIN_PASSWORD or LOGIN_INVITATION_CODE not set; login will fail")
	}
	loginSvc := authsvc.NewLoginService(authsvc.Credentials{
		Email:          cfg.LoginEmail,
		Password:       cfg.LoginPassword,
		InvitationCode: cfg.InvitationCode,
		Role:           cfg.LoginRole,
	}, gate)
	promptSvcInstance := promptsvc.NewService(store, bus)

	agents, err := agentIDs(ctx, store)
	if err != nil {
		closePool(pool)
		return nil, err
	}
	mcpServer := mcptransport.New(promptSvcInstance, agents)

	// ── Transport ─────────────────────────────────────────────────────────────
	router := transport.NewRouter(ctx, transport.Deps{
		PromptSvc:      promptSvcInstance,
		LoginSvc:       loginSvc,
		Gate:           gate,
		MCPServer:      mcpServer,
		EventBus:       bus,
		StaticDocument: cfg.StaticPath,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("application wired", "port", cfg.Port, "agents", len(agents))

	return &App{
		Pool:      pool,
		Server:    server,
		PromptSvc: promptSvcInstance,
		Gate:      gate,
	}, nil
}

func agentIDs(ctx context.Context, store portprompt.Store) ([]domainprompt.AgentID, error) {
	doc, err := store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	ids := make([]domainprompt.AgentID, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func closePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
