package artifact

import (
	"fmt"
	"strings"
)

// SimulationIn is the input for outcome simulation.
type SimulationIn struct {
	Problem       string                  `json:"problem"`
	DecisionLabel string                  `json:"decision_label"`
	Answers       SWOT                    `json:"answers"`
	Profile       *PersonalizationContext `json:"profile,omitempty"`
}

// SimulationOut is the flat JSON shape returned by outcome simulation.
type SimulationOut struct {
	Status           string   `json:"status" prompt_desc:"VALID when an outcome can be predicted from the answers, otherwise INVALID."`
	Reason           string   `json:"reason,omitempty" prompt:"optional" prompt_desc:"When INVALID: one of NONSENSE, OFF_TOPIC, HARMFUL, TOO_VAGUE."`
	Guidance         string   `json:"guidance,omitempty" prompt:"optional" prompt_desc:"When INVALID: one short sentence for the user."`
	DecisionID       string   `json:"decision_id,omitempty" prompt:"optional" prompt_desc:"Echo of the decision label."`
	PredictedOutcome string   `json:"predicted_outcome,omitempty" prompt:"optional" prompt_desc:"When VALID: a short narrative of the most likely outcome."`
	Probability      *float64 `json:"probability,omitempty" prompt:"optional" prompt_type:"number" prompt_desc:"When VALID: likelihood of a good outcome, 0 to 100."`
	KeyRisks         []string `json:"key_risks,omitempty" prompt:"optional" prompt_desc:"When VALID: up to three main risks."`
}

// Simulation is the VALID branch of outcome simulation.
type Simulation struct {
	DecisionID       string   `json:"decision_id,omitempty"`
	PredictedOutcome string   `json:"predicted_outcome"`
	Probability      int      `json:"probability"`
	KeyRisks         []string `json:"key_risks,omitempty"`
}

type SimulationResult = Result[Simulation]

func (o SimulationOut) Result() (SimulationResult, error) {
	status, err := parseStatus(o.Status)
	if err != nil {
		return SimulationResult{}, err
	}
	if status == StatusInvalid {
		rej, err := newRejection(o.Reason, o.Guidance, inputReasons)
		if err != nil {
			return SimulationResult{}, err
		}
		return Reject[Simulation](rej.Reason, rej.Guidance), nil
	}
	outcome := strings.TrimSpace(o.PredictedOutcome)
	if outcome == "" {
		return SimulationResult{}, fmt.Errorf("%w: predicted_outcome is empty", ErrSchema)
	}
	if o.Probability == nil {
		return SimulationResult{}, fmt.Errorf("%w: probability is missing", ErrSchema)
	}
	return Accept(Simulation{
		DecisionID:       strings.TrimSpace(o.DecisionID),
		PredictedOutcome: outcome,
		Probability:      ClampProbability(*o.Probability),
		KeyRisks:         cleanList(o.KeyRisks),
	}), nil
}
