package analysis

import (
	"context"
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/llm"
	"balanceboard/internal/llmtool"
)

// SimulationPipeline predicts the likely outcome of one analysed option.
type SimulationPipeline struct {
	LLM Generator
}

var simulationPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:      "Predict the most likely outcome if the user chooses this option, based only on their SWOT answers.",
	Background:   "Outcomes of several options are compared side by side, so probabilities must be calibrated on the same 0 to 100 scale.",
	OutputFields: llmtool.MustFieldsFromStruct(artifact.SimulationOut{}),
	Constraints: []string{
		"probability is a number from 0 to 100.",
		"predicted_outcome is at most three sentences.",
		"key_risks has at most three short items drawn from the weakness and threat answers.",
	},
	Rules: []string{
		"Return INVALID with TOO_VAGUE when the answers are too thin to support any prediction.",
		"Set decision_id to the decision_label you were given.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent(), llmtool.PresetSupportive())

type simulationPayload struct {
	Problem       string        `json:"problem"`
	DecisionLabel string        `json:"decision_label"`
	Answers       artifact.SWOT `json:"answers"`
}

// Run is total. An incomplete answer set is rejected locally.
func (p *SimulationPipeline) Run(ctx context.Context, in artifact.SimulationIn) artifact.SimulationResult {
	if !in.Answers.Complete() {
		return artifact.Reject[artifact.Simulation](artifact.ReasonTooVague, GuidanceSimulationFallback)
	}
	var gen Generator
	if p != nil {
		gen = p.LLM
	}
	label := strings.TrimSpace(in.DecisionLabel)
	system := simulationPromptSpec.MustRender(profileSection(in.Profile, llm.PhaseSimulation))
	res := runPhase[artifact.Simulation, artifact.SimulationOut](ctx, gen, llm.PhaseSimulation, system,
		simulationPayload{
			Problem:       strings.TrimSpace(in.Problem),
			DecisionLabel: label,
			Answers:       in.Answers,
		},
		fallback{reason: artifact.ReasonTooVague, guidance: GuidanceSimulationFallback})
	if res.OK() && res.Valid.DecisionID == "" {
		res.Valid.DecisionID = label
	}
	return res
}
