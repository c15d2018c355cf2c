package mcp

import (
	"balanceboard/internal/gateway/service/decision"

	"github.com/mark3labs/mcp-go/server"
)

const serverInstructions = `Walks a user through a SWOT decision analysis.
Start with decision_start, answer each returned question with decision_answer,
call decision_outcome once a track's four answers are in, and decision_finalize
when the user picks an option. If the user cannot choose, pass their reason to
decision_hesitate and follow the phase it returns. decision_simulate predicts an
outcome from four answers without opening a session.`

// RegisterDecisionTools installs the decision tool set into a registry.
func RegisterDecisionTools(r *Registry, svc *decision.Service) {
	if r == nil || svc == nil {
		return
	}
	r.Register(newStartTool(svc))
	r.Register(newAnswerTool(svc))
	r.Register(newOutcomeTool(svc))
	r.Register(newSimulateTool(svc))
	r.Register(newHesitateTool(svc))
	r.Register(newOptionsTool(svc))
	r.Register(newFinalizeTool(svc))
	r.Register(newHistoryTool(svc))
}

// NewServer builds an MCP server exposing the decision tools.
func NewServer(svc *decision.Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"balanceboard",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)
	r := NewRegistry()
	RegisterDecisionTools(r, svc)
	r.Install(s)
	return s
}
