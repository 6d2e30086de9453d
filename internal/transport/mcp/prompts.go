package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	promptsvc "github.com/alanyang/iobos/internal/service/prompt"
	"github.com/alanyang/iobos/internal/transport/authn"
)

var (
	errUnauthenticated = errors.New("not authenticated")
	errNoPromptText    = errors.New("agent has no prompt text")
)

// RegisterPrompts registers one MCP native prompt per agent.
// [OCP] New agents appear after a restart with no code change.
func RegisterPrompts(s *mcpserver.MCPServer, promptSvc *promptsvc.Service, agents []domainprompt.AgentID) {
	for _, id := range agents {
		s.AddPrompt(
			mcpmcp.NewPrompt(strings.ToLower(id.Key()),
				mcpmcp.WithPromptDescription(fmt.Sprintf("Instruction prompt for the %s agent.", id.Key())),
			),
			promptHandler(id, promptSvc),
		)
	}
}

func promptHandler(id domainprompt.AgentID, promptSvc *promptsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		claims, ok := authn.ClaimsFromContext(ctx)
		if !ok {
			return nil, errUnauthenticated
		}

		r, err := promptSvc.ReadOne(ctx, claims, id)
		if err != nil {
			return nil, fmt.Errorf("get prompt for agent %s: %w", id.Key(), err)
		}
		if !r.Loaded() {
			return nil, fmt.Errorf("get prompt for agent %s: %w", id.Key(), errNoPromptText)
		}

		return mcpmcp.NewGetPromptResult(
			fmt.Sprintf("%s: %s", id.Key(), r.Greeting),
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: r.Prompt,
					},
				),
			},
		), nil
	}
}
