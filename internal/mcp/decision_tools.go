package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"balanceboard/internal/artifact"
	"balanceboard/internal/gateway/service/decision"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// jsonResult renders a service response as tool text, or the error as a
// tool error the model can read.
func jsonResult(out any, err error) (*mcpgo.CallToolResult, error) {
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: encode result: %w", err)
	}
	return mcpgo.NewToolResultText(string(raw)), nil
}

func intArg(req mcpgo.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func stringsArg(req mcpgo.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

var sessionIDParam = mcpgo.WithString("session_id",
	mcpgo.Required(),
	mcpgo.Description("Session id returned by decision_start"),
)

// --------------------- decision_start ---------------------

type startTool struct{ svc *decision.Service }

func newStartTool(svc *decision.Service) *startTool { return &startTool{svc: svc} }

func (t *startTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("decision_start",
		mcpgo.WithDescription("Triage a problem the user is struggling with and open a SWOT session with one track per option."),
		mcpgo.WithString("input", mcpgo.Required(), mcpgo.Description("The user's problem in their own words")),
		mcpgo.WithString("user_id", mcpgo.Description("Optional user id for personalization and history")),
		mcpgo.WithString("session_id", mcpgo.Description("Re-triage this session instead of opening a new one")),
	)
}

func (t *startTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.StartSession(ctx, &decision.StartSessionRequest{
		Input:     req.GetString("input", ""),
		UserID:    req.GetString("user_id", ""),
		SessionID: req.GetString("session_id", ""),
	}))
}

// --------------------- decision_answer ---------------------

type answerTool struct{ svc *decision.Service }

func newAnswerTool(svc *decision.Service) *answerTool { return &answerTool{svc: svc} }

func (t *answerTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("decision_answer",
		mcpgo.WithDescription("Answer the current SWOT question of the session."),
		sessionIDParam,
		mcpgo.WithString("answer", mcpgo.Required(), mcpgo.Description("The user's answer")),
		mcpgo.WithString("quadrant", mcpgo.Description("strength, weakness, opportunity or threat; defaults to the current one")),
	)
}

func (t *answerTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.SubmitAnswer(ctx, &decision.SubmitAnswerRequest{
		SessionID: req.GetString("session_id", ""),
		Quadrant:  req.GetString("quadrant", ""),
		Answer:    req.GetString("answer", ""),
	}))
}

// --------------------- decision_outcome ---------------------

type outcomeTool struct{ svc *decision.Service }

func newOutcomeTool(svc *decision.Service) *outcomeTool { return &outcomeTool{svc: svc} }

func (t *outcomeTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("decision_outcome",
		mcpgo.WithDescription("Simulate the outcome of the current option once its four answers are in."),
		sessionIDParam,
	)
}

func (t *outcomeTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.GetOutcome(ctx, &decision.SessionRequest{SessionID: req.GetString("session_id", "")}))
}

// --------------------- decision_simulate ---------------------

type simulateTool struct{ svc *decision.Service }

func newSimulateTool(svc *decision.Service) *simulateTool { return &simulateTool{svc: svc} }

func (t *simulateTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("decision_simulate",
		mcpgo.WithDescription("Predict the outcome of one option from four SWOT answers, without a session."),
		mcpgo.WithString("problem", mcpgo.Required(), mcpgo.Description("The problem being decided")),
		mcpgo.WithString("decision_label", mcpgo.Required(), mcpgo.Description("The option to simulate")),
		mcpgo.WithString("strength", mcpgo.Required(), mcpgo.Description("Answer for the strength question")),
		mcpgo.WithString("weakness", mcpgo.Required(), mcpgo.Description("Answer for the weakness question")),
		mcpgo.WithString("opportunity", mcpgo.Required(), mcpgo.Description("Answer for the opportunity question")),
		mcpgo.WithString("threat", mcpgo.Required(), mcpgo.Description("Answer for the threat question")),
		mcpgo.WithString("user_id", mcpgo.Description("Optional user id for personalization")),
	)
}

func (t *simulateTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.Simulate(ctx, &decision.SimulateRequest{
		UserID:        req.GetString("user_id", ""),
		Problem:       req.GetString("problem", ""),
		DecisionLabel: req.GetString("decision_label", ""),
		Answers: artifact.SWOT{
			Strength:    req.GetString("strength", ""),
			Weakness:    req.GetString("weakness", ""),
			Opportunity: req.GetString("opportunity", ""),
			Threat:      req.GetString("threat", ""),
		},
	}))
}

// --------------------- decision_hesitate ---------------------

type hesitateTool struct{ svc *decision.Service }

func newHesitateTool(svc *decision.Service) *hesitateTool { return &hesitateTool{svc: svc} }

func (t *hesitateTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("decision_hesitate",
		mcpgo.WithDescription("Explain why the user cannot commit; the session is routed to the recommended next step."),
		sessionIDParam,
		mcpgo.WithString("excuse", mcpgo.Required(), mcpgo.Description("What is holding the user back")),
	)
}

func (t *hesitateTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.AnalyzeHesitation(ctx, &decision.AnalyzeHesitationRequest{
		SessionID: req.GetString("session_id", ""),
		Excuse:    req.GetString("excuse", ""),
	}))
}

// --------------------- decision_add_options ---------------------

type optionsTool struct{ svc *decision.Service }

func newOptionsTool(svc *decision.Service) *optionsTool { return &optionsTool{svc: svc} }

func (t *optionsTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("decision_add_options",
		mcpgo.WithDescription("Add new options after decision_hesitate returned AWAITING_OPTIONS."),
		sessionIDParam,
		mcpgo.WithArray("options",
			mcpgo.Required(),
			mcpgo.Description("Short labels of the new options"),
			mcpgo.Items(map[string]any{"type": "string"}),
		),
	)
}

func (t *optionsTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.AddOptions(ctx, &decision.AddOptionsRequest{
		SessionID: req.GetString("session_id", ""),
		Options:   stringsArg(req, "options"),
	}))
}

// --------------------- decision_finalize ---------------------

type finalizeTool struct{ svc *decision.Service }

func newFinalizeTool(svc *decision.Service) *finalizeTool { return &finalizeTool{svc: svc} }

func (t *finalizeTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("decision_finalize",
		mcpgo.WithDescription("Record the option the user chose and return the scored decision record."),
		sessionIDParam,
		mcpgo.WithString("chosen_decision", mcpgo.Required(), mcpgo.Description("Label of the chosen option")),
	)
}

func (t *finalizeTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.FinalizeDecision(ctx, &decision.FinalizeDecisionRequest{
		SessionID:      req.GetString("session_id", ""),
		ChosenDecision: req.GetString("chosen_decision", ""),
	}))
}

// --------------------- decision_history ---------------------

type historyTool struct{ svc *decision.Service }

func newHistoryTool(svc *decision.Service) *historyTool { return &historyTool{svc: svc} }

func (t *historyTool) Definition() mcpgo.Tool {
	return mcpgo.NewTool("decision_history",
		mcpgo.WithDescription("List a user's past decisions, newest first."),
		mcpgo.WithString("user_id", mcpgo.Required(), mcpgo.Description("User id")),
		mcpgo.WithNumber("limit", mcpgo.Description("Maximum records to return (default 20)")),
	)
}

func (t *historyTool) Handle(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.ListHistory(ctx, &decision.ListHistoryRequest{
		UserID: req.GetString("user_id", ""),
		Limit:  intArg(req, "limit", 0),
	}))
}
