package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// spy records timestamps when requests reach the inner client
type spyingClient struct {
	next  LLMClient
	times []time.Time
}

func (s *spyingClient) Name() string { return s.next.Name() }
func (s *spyingClient) Close() error { return s.next.Close() }
func (s *spyingClient) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	s.times = append(s.times, time.Now())
	return s.next.GenerateJSON(ctx, req)
}

func TestRateLimit_SpacesCallsAfterBurst(t *testing.T) {
	spy := &spyingClient{next: NewFakeClient()}
	cli := Wrap(spy, RateLimit(10, 1))

	ctx := WithPhase(context.Background(), PhaseAnswer)
	for i := 0; i < 3; i++ {
		_, err := cli.GenerateJSON(ctx, Request{})
		require.NoError(t, err)
	}
	require.Len(t, spy.times, 3)
	// 10 rps with burst 1 means ~100ms between admitted calls.
	assert.GreaterOrEqual(t, spy.times[2].Sub(spy.times[0]), 150*time.Millisecond)
}

func TestRateLimit_DisabledAndCanceled(t *testing.T) {
	cli := Wrap(NewFakeClient(), RateLimit(0, 0))
	_, err := cli.GenerateJSON(context.Background(), Request{})
	require.NoError(t, err)

	slow := Wrap(NewFakeClient(), RateLimit(0.001, 1))
	_, err = slow.GenerateJSON(context.Background(), Request{})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.GenerateJSON(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWrap_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next LLMClient) LLMClient {
			return &orderClient{next: next, name: name, order: &order}
		}
	}
	cli := Wrap(NewFakeClient(), mark("A"), mark("B"))
	_, err := cli.GenerateJSON(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, order)
}

type orderClient struct {
	next  LLMClient
	name  string
	order *[]string
}

func (o *orderClient) Name() string { return o.next.Name() }
func (o *orderClient) Close() error { return o.next.Close() }
func (o *orderClient) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	*o.order = append(*o.order, o.name)
	return o.next.GenerateJSON(ctx, req)
}

func TestWithTracing_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	fake := NewFakeClient().Script(PhaseSimulation, FakeReply{Err: errors.New("boom")})
	cli := Wrap(fake, WithTracing(tp.Tracer("test")))

	_, err := cli.GenerateJSON(WithPhase(context.Background(), PhaseSimulation), Request{ModelHint: "m"})
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "llm.GenerateJSON", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	var phase string
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "llm.phase" {
			phase = kv.Value.AsString()
		}
	}
	assert.Equal(t, PhaseSimulation, phase)
}

func TestWithLogging_WarnsOnError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fake := NewFakeClient().Script(PhaseTriage, FakeReply{Err: errors.New("unavailable")})
	cli := Wrap(fake, WithLogging(zap.New(core)))

	ctx := WithSession(WithPhase(context.Background(), PhaseTriage), "s-1")
	_, err := cli.GenerateJSON(ctx, Request{UserContent: "abc"})
	require.Error(t, err)

	entries := logs.FilterMessage("llm request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, PhaseTriage, fields["phase"])
	assert.Equal(t, "s-1", fields["session_id"])
}
