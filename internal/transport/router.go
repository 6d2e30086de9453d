package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/iobos/internal/domain/event"
	porteventbus "github.com/alanyang/iobos/internal/port/eventbus"
	authsvc "github.com/alanyang/iobos/internal/service/auth"
	promptsvc "github.com/alanyang/iobos/internal/service/prompt"

	authhandler "github.com/alanyang/iobos/internal/transport/auth"
	"github.com/alanyang/iobos/internal/transport/authn"
	mcptransport "github.com/alanyang/iobos/internal/transport/mcp"
	prompthandler "github.com/alanyang/iobos/internal/transport/prompt"
	wshandler "github.com/alanyang/iobos/internal/transport/ws"
)

// StaticDocumentPath is where the unauthenticated fallback copy of the prompt
// document is served.
const StaticDocumentPath = "/agents/agent-prompts.json"

// Deps are the services the router mounts.
type Deps struct {
	PromptSvc *promptsvc.Service
	LoginSvc  *authsvc.LoginService
	Gate      authn.Verifier
	MCPServer *mcptransport.Server
	EventBus  porteventbus.EventBus
	// StaticDocument is the file served read-only at StaticDocumentPath.
	StaticDocument string
}

func NewRouter(ctx context.Context, d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.StaticFile(StaticDocumentPath, d.StaticDocument)

	api := r.Group("/api")
	authhandler.Register(api, d.LoginSvc)
	prompthandler.Register(api.Group("/agent-prompts"), d.PromptSvc, d.Gate)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	if d.MCPServer != nil {
		mcpHandler := gin.WrapH(d.MCPServer.Handler())
		r.Any("/mcp", authn.Authenticate(d.Gate), mcpHandler)
	}

	// Bridge prompt events to the WS hub so open dashboards can refresh.
	if _, err := d.EventBus.Subscribe(ctx, event.ChannelPrompt, func(_ context.Context, e event.Event) {
		hub.Broadcast(e)
	}); err != nil {
		slog.Error("failed to subscribe prompt channel to WS hub", "error", err)
	}

	return r
}
