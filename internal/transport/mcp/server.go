package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	promptsvc "github.com/alanyang/iobos/internal/service/prompt"
	"github.com/alanyang/iobos/internal/transport/authn"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// [SRP] HTTP server lifecycle only.
//
//	Tools are registered in tools.go, prompts in prompts.go.
//
// The endpoint is mounted behind authn.Authenticate; the verified claims are
// copied from the HTTP request into every MCP handler context.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
}

// New creates the MCP transport server. agents lists the ids exposed as native
// MCP prompts; it is read once at startup.
func New(promptSvc *promptsvc.Service, agents []domainprompt.AgentID) *Server {
	mcpSrv := mcpserver.NewMCPServer(
		"iobos",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
	)

	RegisterTools(mcpSrv, promptSvc)
	RegisterPrompts(mcpSrv, promptSvc, agents)

	return &Server{
		httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithHTTPContextFunc(claimsFromRequest),
		),
	}
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

func claimsFromRequest(ctx context.Context, r *http.Request) context.Context {
	if claims, ok := authn.ClaimsFromContext(r.Context()); ok {
		return authn.WithClaims(ctx, claims)
	}
	return ctx
}
