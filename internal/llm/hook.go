package llm

import "context"

// Phase names tag gateway calls for logging, tracing and the fake client.
const (
	PhaseTriage        = "triage"
	PhaseQuestionnaire = "questionnaire"
	PhaseAnswer        = "answer"
	PhaseSimulation    = "simulation"
	PhaseHesitation    = "hesitation"
)

type ctxKeyPhase struct{}
type ctxKeySession struct{}

func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}

// WithSession tags calls with the owning session id.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, id)
}

func SessionFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeySession{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
