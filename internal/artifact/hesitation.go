package artifact

import (
	"fmt"
	"strings"
)

// Action is the loopback recommended for a hesitating user.
type Action string

const (
	ActionRefineProblem  Action = "REFINE_PROBLEM"
	ActionAddMoreOptions Action = "ADD_MORE_OPTIONS"
	ActionDeepenAnalysis Action = "DEEPEN_ANALYSIS"
	ActionForceDecision  Action = "FORCE_DECISION"
)

// ParseAction normalizes s into a known Action.
func ParseAction(s string) (Action, bool) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionRefineProblem, ActionAddMoreOptions, ActionDeepenAnalysis, ActionForceDecision:
		return a, true
	}
	return "", false
}

// HesitationIn is the input for hesitation analysis.
type HesitationIn struct {
	Excuse    string   `json:"excuse"`
	Problem   string   `json:"problem"`
	Decisions []string `json:"decisions"`
}

// HesitationOut is the flat JSON shape returned by hesitation analysis.
type HesitationOut struct {
	Status            string `json:"status" prompt_desc:"VALID when the hesitation can be mapped to an action, otherwise INVALID."`
	Reason            string `json:"reason,omitempty" prompt:"optional" prompt_desc:"When INVALID: one of NONSENSE, OFF_TOPIC, HARMFUL, TOO_VAGUE."`
	Guidance          string `json:"guidance,omitempty" prompt:"optional" prompt_desc:"When INVALID: one short sentence for the user."`
	UserSentiment     string `json:"user_sentiment,omitempty" prompt:"optional" prompt_desc:"When VALID: one or two words for how the user feels."`
	RecommendedAction string `json:"recommended_action,omitempty" prompt:"optional" prompt_desc:"When VALID: one of REFINE_PROBLEM, ADD_MORE_OPTIONS, DEEPEN_ANALYSIS, FORCE_DECISION."`
	GuidanceMessage   string `json:"guidance_message,omitempty" prompt:"optional" prompt_desc:"When VALID: one encouraging sentence explaining the next step."`
}

// Hesitation is the VALID branch of hesitation analysis.
type Hesitation struct {
	UserSentiment     string `json:"user_sentiment,omitempty"`
	RecommendedAction Action `json:"recommended_action"`
	GuidanceMessage   string `json:"guidance_message"`
}

type HesitationAnalysis = Result[Hesitation]

func (o HesitationOut) Result() (HesitationAnalysis, error) {
	status, err := parseStatus(o.Status)
	if err != nil {
		return HesitationAnalysis{}, err
	}
	if status == StatusInvalid {
		rej, err := newRejection(o.Reason, o.Guidance, inputReasons)
		if err != nil {
			return HesitationAnalysis{}, err
		}
		return Reject[Hesitation](rej.Reason, rej.Guidance), nil
	}
	action, ok := ParseAction(o.RecommendedAction)
	if !ok {
		return HesitationAnalysis{}, fmt.Errorf("%w: unknown recommended_action %q", ErrSchema, o.RecommendedAction)
	}
	msg := strings.TrimSpace(o.GuidanceMessage)
	if msg == "" {
		return HesitationAnalysis{}, fmt.Errorf("%w: guidance_message is empty", ErrSchema)
	}
	return Accept(Hesitation{
		UserSentiment:     strings.TrimSpace(o.UserSentiment),
		RecommendedAction: action,
		GuidanceMessage:   msg,
	}), nil
}
