package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"balanceboard/internal/artifact"
	"balanceboard/internal/gateway/repository/history"
	"balanceboard/internal/gateway/service/decision"
	"balanceboard/internal/llm"
	"balanceboard/internal/session"
	"balanceboard/internal/workers/analysis"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoOptions = `{"status":"VALID","problem_statement":"Unhappy at work.","identified_decisions":["Quit job","Stay at job"]}`

func newTestServer(t *testing.T, fake *llm.FakeClient) *httptest.Server {
	t.Helper()
	store := history.NewMemoryStore()
	orch := session.NewOrchestrator(analysis.New(llm.NewGateway(fake), analysis.Options{}), session.WithRecorder(store))
	runs, err := session.NewRegistry(16, time.Hour)
	require.NoError(t, err)
	svc := decision.New(orch, runs, store)

	mux := http.NewServeMux()
	mux.Handle(NewDecisionHandler(svc).Handler())
	mux.HandleFunc("/chat/ws", NewChatHandler(svc).HandleChatWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func client[Req, Res any](srv *httptest.Server, procedure string) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](srv.Client(), srv.URL+procedure, connect.WithCodec(jsonCodec{}))
}

func TestDecisionHandler_RoundTrip(t *testing.T) {
	srv := newTestServer(t, llm.NewFakeClient().Script(llm.PhaseTriage, llm.FakeReply{Raw: twoOptions}))
	ctx := context.Background()

	start, err := client[decision.StartSessionRequest, decision.StartSessionResponse](srv, StartSessionProcedure).
		CallUnary(ctx, connect.NewRequest(&decision.StartSessionRequest{UserID: "u1", Input: "Should I quit my job or stay?"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Quit job", "Stay at job"}, start.Msg.Labels())
	require.NotNil(t, start.Msg.Next)

	answer := client[decision.SubmitAnswerRequest, decision.SubmitAnswerResponse](srv, SubmitAnswerProcedure)
	res, err := answer.CallUnary(ctx, connect.NewRequest(&decision.SubmitAnswerRequest{
		SessionID: start.Msg.SessionID, Quadrant: "strength", Answer: "I have savings",
	}))
	require.NoError(t, err)
	assert.True(t, res.Msg.Accepted)

	_, err = answer.CallUnary(ctx, connect.NewRequest(&decision.SubmitAnswerRequest{
		SessionID: start.Msg.SessionID, Quadrant: "threat", Answer: "skip",
	}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = client[decision.SessionRequest, decision.GetOutcomeResponse](srv, GetOutcomeProcedure).
		CallUnary(ctx, connect.NewRequest(&decision.SessionRequest{SessionID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = client[decision.ListHistoryRequest, decision.ListHistoryResponse](srv, ListHistoryProcedure).
		CallUnary(ctx, connect.NewRequest(&decision.ListHistoryRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestDecisionHandler_PlainJSONPost(t *testing.T) {
	srv := newTestServer(t, llm.NewFakeClient().Script(llm.PhaseTriage, llm.FakeReply{Raw: twoOptions}))

	resp, err := srv.Client().Post(srv.URL+StartSessionProcedure, "application/json",
		strings.NewReader(`{"input":"Should I quit my job or stay?"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorCode(t *testing.T) {
	cases := map[error]connect.Code{
		context.Canceled: connect.CodeCanceled,
		fmt.Errorf("x: %w", context.DeadlineExceeded):                         connect.CodeDeadlineExceeded,
		fmt.Errorf("%w: session_id is required", decision.ErrInvalidArgument): connect.CodeInvalidArgument,
		session.ErrUnknownDecision:                                            connect.CodeInvalidArgument,
		session.ErrNotFound:                                                   connect.CodeNotFound,
		&session.PhaseError{Have: session.PhaseDone}:                          connect.CodeFailedPrecondition,
		session.ErrAlreadyFinalized:                                           connect.CodeFailedPrecondition,
		decision.ErrHistoryDisabled:                                           connect.CodeUnimplemented,
		errors.New("boom"):                                                    connect.CodeInternal,
	}
	for err, want := range cases {
		assert.Equal(t, want, errorCode(err), err.Error())
	}
}

func TestChatHandler_Session(t *testing.T) {
	fake := llm.NewFakeClient().Script(llm.PhaseTriage, llm.FakeReply{Raw: twoOptions})
	srv := newTestServer(t, fake)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws?user_id=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var out chatWSOutbound
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "ready", out.Type)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "start", Input: "Should I quit my job or stay?"}))
	require.NoError(t, conn.ReadJSON(&out))
	require.Equal(t, "start_ack", out.Type)
	sessionID := out.SessionID
	require.NotEmpty(t, sessionID)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "answer", Answer: "I have savings"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "answer_ack", out.Type)
	assert.Equal(t, sessionID, out.SessionID)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "outcome"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, "failed_precondition", out.Code)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "dance"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "error", out.Type)
	assert.Equal(t, "invalid_argument", out.Code)

	require.NoError(t, conn.WriteJSON(chatWSInbound{Type: "ping"}))
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "pong", out.Type)
}

func TestDecisionHandler_Simulate(t *testing.T) {
	srv := newTestServer(t, llm.NewFakeClient())

	res, err := client[decision.SimulateRequest, decision.SimulateResponse](srv, SimulateProcedure).
		CallUnary(context.Background(), connect.NewRequest(&decision.SimulateRequest{
			Problem:       "Unhappy at work.",
			DecisionLabel: "Stay at job",
			Answers:       artifact.SWOT{Strength: "stable pay", Weakness: "boredom", Opportunity: "promotion", Threat: "layoffs"},
		}))
	require.NoError(t, err)
	require.True(t, res.Msg.Simulation.OK())
	assert.Equal(t, 50, res.Msg.Simulation.Valid.Probability)

	_, err = client[decision.SimulateRequest, decision.SimulateResponse](srv, SimulateProcedure).
		CallUnary(context.Background(), connect.NewRequest(&decision.SimulateRequest{}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}
