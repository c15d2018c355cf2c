package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeReply is one scripted response. Err takes precedence over Raw.
type FakeReply struct {
	Raw string
	Err error
}

// FakeHandler computes a reply from the request, for calls whose answer
// depends on their input (e.g. concurrent questionnaire fan-out).
type FakeHandler func(req Request) FakeReply

// FakeCall records one request that reached the fake.
type FakeCall struct {
	Phase   string
	Request Request
}

// FakeClient returns deterministic JSON per phase for offline runs and tests.
// Resolution order for a call: queued replies, then the phase handler,
// then the built-in offline payload.
type FakeClient struct {
	mu       sync.Mutex
	queued   map[string][]FakeReply
	handlers map[string]FakeHandler
	calls    []FakeCall
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		queued:   make(map[string][]FakeReply),
		handlers: make(map[string]FakeHandler),
	}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Script queues replies for phase, consumed one per call.
func (f *FakeClient) Script(phase string, replies ...FakeReply) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued[phase] = append(f.queued[phase], replies...)
	return f
}

// Handle installs a handler for phase.
func (f *FakeClient) Handle(phase string, h FakeHandler) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[phase] = h
	return f
}

// Calls returns a copy of the recorded calls.
func (f *FakeClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount counts calls for phase, or all calls when phase is "".
func (f *FakeClient) CallCount(phase string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if phase == "" {
		return len(f.calls)
	}
	n := 0
	for _, c := range f.calls {
		if c.Phase == phase {
			n++
		}
	}
	return n
}

func (f *FakeClient) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	phase := PhaseFrom(ctx)

	f.mu.Lock()
	f.calls = append(f.calls, FakeCall{Phase: phase, Request: req})
	var (
		reply   FakeReply
		matched bool
	)
	if q := f.queued[phase]; len(q) > 0 {
		reply, matched = q[0], true
		f.queued[phase] = q[1:]
	}
	h := f.handlers[phase]
	f.mu.Unlock()

	if !matched && h != nil {
		reply, matched = h(req), true
	}
	if !matched {
		reply = FakeReply{Raw: offlineReply(phase)}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return json.RawMessage(reply.Raw), nil
}

func offlineReply(phase string) string {
	switch phase {
	case PhaseTriage:
		return `{"status":"VALID","problem_statement":"Offline decision","identified_decisions":[],"elicitation_question":"What is one specific choice you can make?"}`
	case PhaseQuestionnaire:
		return `{"status":"VALID","decision_context":"offline","quadrants":{"strength_q":"What are you already good at that helps here?","weakness_q":"What would make this hard for you?","opportunity_q":"What could this open up for you?","threat_q":"What could go wrong outside your control?"}}`
	case PhaseAnswer:
		return `{"status":"VALID","classification":"STRONG"}`
	case PhaseSimulation:
		return `{"status":"VALID","predicted_outcome":"Offline simulation: a steady, moderate result.","probability":50,"key_risks":[]}`
	case PhaseHesitation:
		return `{"status":"VALID","user_sentiment":"unsure","recommended_action":"DEEPEN_ANALYSIS","guidance_message":"Let's look at the options more closely."}`
	default:
		return `{}`
	}
}
