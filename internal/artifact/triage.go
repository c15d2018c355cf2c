package artifact

import (
	"fmt"
	"strings"
)

// TriageIn is the input for the triage phase.
type TriageIn struct {
	RawInput string `json:"raw_input"`
}

// TriageOut is the flat JSON shape returned by the triage phase.
type TriageOut struct {
	Status              string   `json:"status" prompt_desc:"VALID when a decision problem can be extracted, otherwise INVALID."`
	Reason              string   `json:"reason,omitempty" prompt:"optional" prompt_desc:"When INVALID: one of NONSENSE, OFF_TOPIC, HARMFUL, TOO_VAGUE."`
	Guidance            string   `json:"guidance,omitempty" prompt:"optional" prompt_desc:"When INVALID: one short, kind sentence telling the user what to add or change."`
	ProblemStatement    string   `json:"problem_statement,omitempty" prompt:"optional" prompt_desc:"When VALID: the core problem restated in one concise sentence."`
	IdentifiedDecisions []string `json:"identified_decisions,omitempty" prompt:"optional" prompt_desc:"When VALID: options the user explicitly mentioned, as short labels. Empty when none were stated."`
	ElicitationQuestion string   `json:"elicitation_question,omitempty" prompt:"optional" prompt_desc:"When VALID and identified_decisions is empty: one question asking the user for a concrete option."`
}

// Triage is the VALID branch of triage.
type Triage struct {
	ProblemStatement    string   `json:"problem_statement"`
	IdentifiedDecisions []string `json:"identified_decisions"`
	ElicitationQuestion string   `json:"elicitation_question,omitempty"`
}

type TriageResult = Result[Triage]

func (o TriageOut) Result() (TriageResult, error) {
	status, err := parseStatus(o.Status)
	if err != nil {
		return TriageResult{}, err
	}
	if status == StatusInvalid {
		rej, err := newRejection(o.Reason, o.Guidance, inputReasons)
		if err != nil {
			return TriageResult{}, err
		}
		return Reject[Triage](rej.Reason, rej.Guidance), nil
	}
	problem := strings.TrimSpace(o.ProblemStatement)
	if problem == "" {
		return TriageResult{}, fmt.Errorf("%w: problem_statement is empty", ErrSchema)
	}
	return Accept(Triage{
		ProblemStatement:    problem,
		IdentifiedDecisions: cleanList(o.IdentifiedDecisions),
		ElicitationQuestion: strings.TrimSpace(o.ElicitationQuestion),
	}), nil
}
