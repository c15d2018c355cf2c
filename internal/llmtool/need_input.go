package llmtool

import (
	"context"
	"strings"
)

// NeedInputState is the follow-up envelope shared by phases that may ask
// the user for more before the flow can continue.
type NeedInputState struct {
	NeedMoreInput    bool
	FollowupQuestion string
}

// NeedInputAdapter maps phase-specific output structs to/from NeedInputState.
type NeedInputAdapter[T any] interface {
	Extract(out T) NeedInputState
	Apply(out T, state NeedInputState) T
}

// NeedInputPolicy defines reusable normalization rules.
type NeedInputPolicy struct {
	// DefaultFollowupQuestion is used when more input is needed but the
	// model left the question blank.
	DefaultFollowupQuestion string
	// DropFollowupWhenSatisfied clears any question when no input is needed.
	DropFollowupWhenSatisfied bool
}

// NormalizeNeedInput applies policy-driven normalization to a phase output.
// A nil adapter returns out unchanged.
func NormalizeNeedInput[T any](_ context.Context, out T, adapter NeedInputAdapter[T], policy NeedInputPolicy) T {
	if adapter == nil {
		return out
	}
	state := adapter.Extract(out)
	state.FollowupQuestion = strings.TrimSpace(state.FollowupQuestion)
	switch {
	case state.NeedMoreInput && state.FollowupQuestion == "":
		state.FollowupQuestion = policy.DefaultFollowupQuestion
	case !state.NeedMoreInput && policy.DropFollowupWhenSatisfied:
		state.FollowupQuestion = ""
	}
	return adapter.Apply(out, state)
}
