package analysis

import (
	"context"
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/llm"
	"balanceboard/internal/llmtool"
)

// QuestionnairePipeline writes the four SWOT questions for one option.
type QuestionnairePipeline struct {
	LLM Generator
}

var questionnairePromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:      "Write four specific, probing questions that help the user analyse one option for their problem, one per SWOT quadrant.",
	Background:   "The user answers the questions one at a time in the order strength, weakness, opportunity, threat. The answers feed an outcome simulation.",
	OutputFields: llmtool.MustFieldsFromStruct(artifact.QuestionnaireOut{}),
	Constraints: []string{
		"strength_q asks about an " + artifact.Strength.Focus() + ".",
		"weakness_q asks about an " + artifact.Weakness.Focus() + ".",
		"opportunity_q asks about an " + artifact.Opportunity.Focus() + ".",
		"threat_q asks about an " + artifact.Threat.Focus() + ".",
		"Each question is a single sentence ending with a question mark and names the option or problem concretely.",
	},
	Rules: []string{
		"Return INVALID only when the option is harmful or meaningless; otherwise always write the four questions.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetSafety(), llmtool.PresetSupportive())

// Run is total: generation failure yields the fixed fallback.
func (p *QuestionnairePipeline) Run(ctx context.Context, in artifact.QuestionnaireIn) artifact.QuestionnaireResult {
	var gen Generator
	if p != nil {
		gen = p.LLM
	}
	in.Problem = strings.TrimSpace(in.Problem)
	in.DecisionLabel = strings.TrimSpace(in.DecisionLabel)
	system := questionnairePromptSpec.MustRender(profileSection(in.Profile, llm.PhaseQuestionnaire))

	// The profile travels in the system instruction, not the input block.
	payload := artifact.QuestionnaireIn{Problem: in.Problem, DecisionLabel: in.DecisionLabel}
	return runPhase[artifact.Questionnaire, artifact.QuestionnaireOut](ctx, gen, llm.PhaseQuestionnaire, system,
		payload,
		fallback{reason: artifact.ReasonNonsense, guidance: GuidanceQuestionnaireFallback})
}
