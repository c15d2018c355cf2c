package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"balanceboard/internal/gateway/repository/history"
	"balanceboard/internal/gateway/service/decision"
	"balanceboard/internal/llm"
	"balanceboard/internal/session"
	"balanceboard/internal/workers/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, fake *llm.FakeClient) (*decision.Service, *history.MemoryStore) {
	t.Helper()
	store := history.NewMemoryStore()
	orch := session.NewOrchestrator(analysis.New(llm.NewGateway(fake), analysis.Options{}), session.WithRecorder(store))
	runs, err := session.NewRegistry(8, time.Hour)
	require.NoError(t, err)
	return decision.New(orch, runs, store), store
}

func TestRunAsk_FinalizesChosenOption(t *testing.T) {
	fake := llm.NewFakeClient().Script(llm.PhaseTriage, llm.FakeReply{
		Raw: `{"status":"VALID","problem_statement":"Unhappy at work.","identified_decisions":["Quit job","Stay at job"]}`,
	})
	svc, store := newTestService(t, fake)

	input := strings.Join([]string{
		"Should I quit my job or stay?",
		"savings", "no network", "new field", "recession",
		"stable pay", "boredom", "promotion", "layoffs",
		"quit job",
	}, "\n") + "\n"
	var out bytes.Buffer

	require.NoError(t, runAsk(context.Background(), svc, "u1", strings.NewReader(input), &out))

	assert.Contains(t, out.String(), "Options: Quit job, Stay at job")
	assert.Contains(t, out.String(), "Decision recorded: Quit job. Score 200.")
	recs, err := store.ListByUser(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Quit job", recs[0].ChosenDecision)
}

func TestRunAsk_BlankProblemAndHesitation(t *testing.T) {
	svc, store := newTestService(t, llm.NewFakeClient())

	input := strings.Join([]string{
		"",
		"I can't figure out what to do with my career",
		"a", "b", "c", "d",
		"I'm just not sure",
	}, "\n") + "\n"
	var out bytes.Buffer

	require.NoError(t, runAsk(context.Background(), svc, "u2", strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, "input is required")
	assert.Contains(t, text, "What is one specific choice you can make?")
	assert.Contains(t, text, "Let's look at the options more closely.")
	recs, err := store.ListByUser(context.Background(), "u2", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRunAsk_EOFBeforeInput(t *testing.T) {
	svc, _ := newTestService(t, llm.NewFakeClient())
	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), svc, "", strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "What decision are you struggling with?")
}
