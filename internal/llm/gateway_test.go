package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	llmclient "balanceboard/internal/llmClient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_AppendsConstraintAndCallsOnce(t *testing.T) {
	fake := NewFakeClient().Script(PhaseTriage, FakeReply{Raw: `{"status":"VALID"}`})
	gw := NewGateway(fake)

	ctx := WithPhase(context.Background(), PhaseTriage)
	raw, err := gw.GenerateStructured(ctx, Request{SystemInstruction: "Extract the problem.", UserContent: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"VALID"}`, string(raw))

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0].Request.SystemInstruction, "Extract the problem."))
	assert.True(t, strings.HasSuffix(calls[0].Request.SystemInstruction, JSONConstraint))
	assert.Equal(t, "hi", calls[0].Request.UserContent)
}

func TestGateway_FailureKinds(t *testing.T) {
	cases := []struct {
		name  string
		reply FakeReply
		want  FailureKind
	}{
		{"transport", FakeReply{Err: errors.New("connection reset")}, FailureTransport},
		{"empty error", FakeReply{Err: llmclient.ErrEmptyResponse}, FailureEmpty},
		{"blank body", FakeReply{Raw: "   "}, FailureEmpty},
		{"prose", FakeReply{Raw: "Sure! Here is your answer."}, FailureDecode},
		{"array", FakeReply{Raw: `[{"status":"VALID"}]`}, FailureDecode},
		{"truncated", FakeReply{Raw: `{"status":"VAL`}, FailureDecode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := NewFakeClient().Script(PhaseSimulation, tc.reply)
			gw := NewGateway(fake)
			_, err := gw.GenerateStructured(WithPhase(context.Background(), PhaseSimulation), Request{})
			var gf *GenerationFailure
			require.ErrorAs(t, err, &gf)
			assert.Equal(t, tc.want, gf.Kind)
			assert.Equal(t, PhaseSimulation, gf.Phase)
			assert.Equal(t, 1, fake.CallCount(""))
		})
	}
}

func TestGateway_UnwrapsCodeFence(t *testing.T) {
	fake := NewFakeClient().Script(PhaseAnswer, FakeReply{Raw: "```json\n{\"status\":\"VALID\"}\n```"})
	raw, err := NewGateway(fake).GenerateStructured(WithPhase(context.Background(), PhaseAnswer), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"VALID"}`, string(raw))
}

type slowClient struct{}

func (slowClient) Name() string { return "slow" }
func (slowClient) Close() error { return nil }
func (slowClient) GenerateJSON(ctx context.Context, _ Request) (json.RawMessage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestGateway_Timeout(t *testing.T) {
	gw := NewGateway(slowClient{}, WithTimeout(20*time.Millisecond))
	_, err := gw.GenerateStructured(context.Background(), Request{})
	var gf *GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.Equal(t, FailureTransport, gf.Kind)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGateway_NilClient(t *testing.T) {
	var gw *Gateway
	_, err := gw.GenerateStructured(context.Background(), Request{})
	var gf *GenerationFailure
	require.ErrorAs(t, err, &gf)
}
