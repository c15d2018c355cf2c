package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"balanceboard/internal/gateway/repository/history"
	"balanceboard/internal/gateway/service/decision"
	"balanceboard/internal/llm"
	"balanceboard/internal/session"
	"balanceboard/internal/workers/analysis"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, fake *llm.FakeClient) *Registry {
	t.Helper()
	store := history.NewMemoryStore()
	orch := session.NewOrchestrator(analysis.New(llm.NewGateway(fake), analysis.Options{}), session.WithRecorder(store))
	runs, err := session.NewRegistry(8, time.Hour)
	require.NoError(t, err)
	r := NewRegistry()
	RegisterDecisionTools(r, decision.New(orch, runs, store))
	return r
}

func resultText(r *mcpgo.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcpgo.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestRegistry_Definitions(t *testing.T) {
	r := newTestRegistry(t, llm.NewFakeClient())
	var names []string
	for _, d := range r.Definitions() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"decision_add_options", "decision_answer", "decision_finalize", "decision_hesitate",
		"decision_history", "decision_outcome", "decision_simulate", "decision_start",
	}, names)

	for _, d := range r.Definitions() {
		if d.Name == "decision_answer" {
			assert.Contains(t, d.InputSchema.Required, "session_id")
			assert.Contains(t, d.InputSchema.Required, "answer")
		}
	}

	_, err := r.Call(context.Background(), "nope", nil)
	assert.Error(t, err)
}

func TestDecisionTools_Session(t *testing.T) {
	fake := llm.NewFakeClient().Script(llm.PhaseTriage, llm.FakeReply{
		Raw: `{"status":"VALID","problem_statement":"Unhappy at work.","identified_decisions":["Quit job"]}`,
	})
	r := newTestRegistry(t, fake)
	ctx := context.Background()

	res, err := r.Call(ctx, "decision_start", map[string]any{"input": "Should I quit my job?", "user_id": "u1"})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))
	var start decision.StartSessionResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &start))
	require.NotEmpty(t, start.SessionID)
	require.Len(t, start.Tracks, 1)
	assert.Equal(t, "Quit job", start.Tracks[0].DecisionLabel)
	assert.True(t, start.Tracks[0].Questions.Complete())

	for range 4 {
		res, err = r.Call(ctx, "decision_answer", map[string]any{"session_id": start.SessionID, "answer": "a real answer"})
		require.NoError(t, err)
		require.False(t, res.IsError, resultText(res))
	}
	res, err = r.Call(ctx, "decision_outcome", map[string]any{"session_id": start.SessionID})
	require.NoError(t, err)
	assert.Contains(t, resultText(res), `"DONE"`)

	res, err = r.Call(ctx, "decision_finalize", map[string]any{"session_id": start.SessionID, "chosen_decision": "quit job"})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))
	assert.Contains(t, resultText(res), `"score": 200`)

	res, err = r.Call(ctx, "decision_history", map[string]any{"user_id": "u1", "limit": float64(5)})
	require.NoError(t, err)
	assert.Contains(t, resultText(res), "Quit job")
}

func TestDecisionTools_ErrorsAreToolResults(t *testing.T) {
	r := newTestRegistry(t, llm.NewFakeClient())

	res, err := r.Call(context.Background(), "decision_outcome", map[string]any{"session_id": "missing"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.True(t, strings.Contains(resultText(res), "not found"))

	res, err = r.Call(context.Background(), "decision_add_options", map[string]any{"session_id": "missing", "options": []any{"a", 3}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDecisionTools_SimulateWithoutSession(t *testing.T) {
	fake := llm.NewFakeClient()
	r := newTestRegistry(t, fake)
	ctx := context.Background()

	res, err := r.Call(ctx, "decision_simulate", map[string]any{
		"problem":        "Unhappy at work.",
		"decision_label": "Quit job",
		"strength":       "savings",
		"weakness":       "no network",
		"opportunity":    "new field",
		"threat":         "recession",
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))
	var out decision.SimulateResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &out))
	require.True(t, out.Simulation.OK())
	assert.Equal(t, 50, out.Simulation.Valid.Probability)
	assert.Equal(t, 1, fake.CallCount(llm.PhaseSimulation))

	res, err = r.Call(ctx, "decision_simulate", map[string]any{"problem": "p"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "decision_label is required")
}
