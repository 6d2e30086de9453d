package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	promptsvc "github.com/alanyang/iobos/internal/service/prompt"
	"github.com/alanyang/iobos/internal/transport/authn"
)

// RegisterTools registers all MCP tools on the server.
// [OCP] Add a new tool by adding a new AddTool call; server.go never changes.
func RegisterTools(s *mcpserver.MCPServer, promptSvc *promptsvc.Service) {
	s.AddTool(mcpmcp.NewTool("list_agents",
		mcpmcp.WithDescription("List every agent id with its role and color."),
	), listAgentsHandler(promptSvc))

	s.AddTool(mcpmcp.NewTool("get_agent_prompt",
		mcpmcp.WithDescription("Return the full record (role, color, greeting, prompt) for one agent."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Agent id, case-insensitive (e.g. GENESIS)")),
	), getAgentPromptHandler(promptSvc))

	s.AddTool(mcpmcp.NewTool("update_agent_prompt",
		mcpmcp.WithDescription("Merge the given fields into an existing agent record. Admin only. Omitted fields are kept."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Agent id, case-insensitive")),
		mcpmcp.WithString("role", mcpmcp.Description("New display role")),
		mcpmcp.WithString("color", mcpmcp.Description("New theme color token")),
		mcpmcp.WithString("greeting", mcpmcp.Description("New activation greeting")),
		mcpmcp.WithString("prompt", mcpmcp.Description("New instruction prompt")),
	), updateAgentPromptHandler(promptSvc))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

type agentSummary struct {
	AgentID string `json:"agent_id"`
	Role    string `json:"role"`
	Color   string `json:"color"`
}

func listAgentsHandler(promptSvc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		claims, ok := authn.ClaimsFromContext(ctx)
		if !ok {
			return mcpmcp.NewToolResultError("error: not authenticated"), nil
		}

		doc, err := promptSvc.ReadAll(ctx, claims)
		if err != nil {
			return toolError(err), nil
		}

		out := make([]agentSummary, 0, len(doc))
		for id, r := range doc {
			out = append(out, agentSummary{AgentID: id.Key(), Role: r.Role, Color: r.Color})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
		return jsonResult(out), nil
	}
}

func getAgentPromptHandler(promptSvc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		claims, ok := authn.ClaimsFromContext(ctx)
		if !ok {
			return mcpmcp.NewToolResultError("error: not authenticated"), nil
		}
		id := mcpmcp.ParseString(req, "agent_id", "")
		if id == "" {
			return mcpmcp.NewToolResultError("error: agent_id is required"), nil
		}

		r, err := promptSvc.ReadOne(ctx, claims, domainprompt.AgentID(id))
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(r), nil
	}
}

func updateAgentPromptHandler(promptSvc *promptsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		claims, ok := authn.ClaimsFromContext(ctx)
		if !ok {
			return mcpmcp.NewToolResultError("error: not authenticated"), nil
		}
		id := mcpmcp.ParseString(req, "agent_id", "")
		if id == "" {
			return mcpmcp.NewToolResultError("error: agent_id is required"), nil
		}

		// Only arguments actually present become patch fields.
		args := req.GetArguments()
		field := func(name string) *string {
			v, ok := args[name].(string)
			if !ok {
				return nil
			}
			return &v
		}
		patch := domainprompt.Patch{
			Role:     field("role"),
			Color:    field("color"),
			Greeting: field("greeting"),
			Prompt:   field("prompt"),
		}

		r, err := promptSvc.UpdateOne(ctx, claims, domainprompt.AgentID(id), patch)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(r), nil
	}
}

func toolError(err error) *mcpmcp.CallToolResult {
	switch {
	case errors.Is(err, domainprompt.ErrNotFound):
		return mcpmcp.NewToolResultError("error: agent not found")
	case errors.Is(err, domainauth.ErrForbidden):
		return mcpmcp.NewToolResultError("error: admin privileges required")
	case errors.Is(err, domainprompt.ErrBadRequest):
		return mcpmcp.NewToolResultError("error: no fields to update")
	default:
		return mcpmcp.NewToolResultError("error: agent prompts unavailable")
	}
}

func jsonResult(v any) *mcpmcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcpmcp.NewToolResultError("error: encoding result")
	}
	return mcpmcp.NewToolResultText(string(data))
}
