package artifact

import (
	"fmt"
	"strings"
)

// QuestionnaireIn is the input for questionnaire generation.
type QuestionnaireIn struct {
	Problem       string                  `json:"problem"`
	DecisionLabel string                  `json:"decision_label"`
	Profile       *PersonalizationContext `json:"profile,omitempty"`
}

// QuadrantQuestionsOut carries the four generated questions on the wire.
type QuadrantQuestionsOut struct {
	StrengthQ    string `json:"strength_q"`
	WeaknessQ    string `json:"weakness_q"`
	OpportunityQ string `json:"opportunity_q"`
	ThreatQ      string `json:"threat_q"`
}

// QuestionnaireOut is the flat JSON shape returned by questionnaire generation.
type QuestionnaireOut struct {
	Status          string               `json:"status" prompt_desc:"VALID when four questions were written, otherwise INVALID."`
	Reason          string               `json:"reason,omitempty" prompt:"optional" prompt_desc:"When INVALID: one of NONSENSE, OFF_TOPIC, HARMFUL, TOO_VAGUE."`
	Guidance        string               `json:"guidance,omitempty" prompt:"optional" prompt_desc:"When INVALID: one short sentence for the user."`
	DecisionContext string               `json:"decision_context,omitempty" prompt:"optional" prompt_desc:"When VALID: the option being analysed, restated briefly."`
	Quadrants       QuadrantQuestionsOut `json:"quadrants" prompt:"optional" prompt_type:"{strength_q, weakness_q, opportunity_q, threat_q}" prompt_desc:"When VALID: exactly one question per quadrant."`
}

// Questionnaire is the VALID branch of questionnaire generation.
type Questionnaire struct {
	DecisionContext string `json:"decision_context,omitempty"`
	Questions       SWOT   `json:"questions"`
}

type QuestionnaireResult = Result[Questionnaire]

func (o QuestionnaireOut) Result() (QuestionnaireResult, error) {
	status, err := parseStatus(o.Status)
	if err != nil {
		return QuestionnaireResult{}, err
	}
	if status == StatusInvalid {
		rej, err := newRejection(o.Reason, o.Guidance, inputReasons)
		if err != nil {
			return QuestionnaireResult{}, err
		}
		return Reject[Questionnaire](rej.Reason, rej.Guidance), nil
	}
	qs := SWOT{
		Strength:    strings.TrimSpace(o.Quadrants.StrengthQ),
		Weakness:    strings.TrimSpace(o.Quadrants.WeaknessQ),
		Opportunity: strings.TrimSpace(o.Quadrants.OpportunityQ),
		Threat:      strings.TrimSpace(o.Quadrants.ThreatQ),
	}
	if !qs.Complete() {
		return QuestionnaireResult{}, fmt.Errorf("%w: questionnaire needs four questions", ErrSchema)
	}
	return Accept(Questionnaire{
		DecisionContext: strings.TrimSpace(o.DecisionContext),
		Questions:       qs,
	}), nil
}
