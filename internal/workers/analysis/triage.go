package analysis

import (
	"context"
	"strings"
	"unicode/utf8"

	"balanceboard/internal/artifact"
	"balanceboard/internal/llm"
	"balanceboard/internal/llmtool"
	"balanceboard/internal/observability"

	"go.uber.org/zap"
)

// MinInputLength is the shortest trimmed input worth sending to triage.
const MinInputLength = 5

// TriagePipeline extracts the problem and the user's stated options.
type TriagePipeline struct {
	LLM Generator
	// Grounding drops returned options whose words do not all appear in the input.
	Grounding bool
}

var triagePromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:      "Read a user's free-text message about a decision they face. Extract the core problem and the options they explicitly mention.",
	Background:   "This is the entry step of a decision-support flow. Every extracted option becomes its own SWOT analysis, so an invented option wastes the user's time.",
	OutputFields: llmtool.MustFieldsFromStruct(artifact.TriageOut{}),
	Constraints: []string{
		"identified_decisions may be empty; never add an option the user did not state.",
		"Keep each option label under 8 words and reuse the user's own words.",
		"problem_statement must be one sentence.",
	},
	Rules: []string{
		"Return INVALID with NONSENSE for random characters or text with no meaning.",
		"Return INVALID with OFF_TOPIC when the message is not about a personal or professional choice.",
		"Return INVALID with TOO_VAGUE when a problem is hinted at but nothing concrete can be extracted.",
		"When the problem is clear but no options are stated, return VALID with an empty identified_decisions and an elicitation_question asking for one concrete option.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
	Examples: []llmtool.PromptExample{
		{
			Input:  `{"raw_input":"I hate my job and might quit."}`,
			Output: `{"status":"VALID","problem_statement":"The user is unhappy at work and considering leaving.","identified_decisions":["Quit job"]}`,
		},
		{
			Input:  `{"raw_input":"I feel stuck in life."}`,
			Output: `{"status":"VALID","problem_statement":"The user feels stuck.","identified_decisions":[],"elicitation_question":"What is one change you have been thinking about making?"}`,
		},
	},
}, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent(), llmtool.PresetSafety(), llmtool.PresetSupportive())

var triageSystem = triagePromptSpec.MustRender()

type triageNeedInputAdapter struct{}

func (triageNeedInputAdapter) Extract(out artifact.Triage) llmtool.NeedInputState {
	return llmtool.NeedInputState{
		NeedMoreInput:    len(out.IdentifiedDecisions) == 0,
		FollowupQuestion: out.ElicitationQuestion,
	}
}

func (triageNeedInputAdapter) Apply(out artifact.Triage, state llmtool.NeedInputState) artifact.Triage {
	out.ElicitationQuestion = state.FollowupQuestion
	return out
}

var triageNeedInputPolicy = llmtool.NeedInputPolicy{
	DefaultFollowupQuestion: DefaultElicitationQuestion,
}

// Run is total: every outcome, including generation failure, is a result.
func (p *TriagePipeline) Run(ctx context.Context, in artifact.TriageIn) artifact.TriageResult {
	input := strings.TrimSpace(in.RawInput)
	if utf8.RuneCountInString(input) < MinInputLength {
		return artifact.Reject[artifact.Triage](artifact.ReasonTooVague, GuidanceTooShort)
	}
	var gen Generator
	if p != nil {
		gen = p.LLM
	}
	res := runPhase[artifact.Triage, artifact.TriageOut](ctx, gen, llm.PhaseTriage, triageSystem,
		artifact.TriageIn{RawInput: input},
		fallback{reason: artifact.ReasonNonsense, guidance: GuidanceTriageFallback})
	if !res.OK() {
		return res
	}

	out := *res.Valid
	if p.Grounding {
		kept, dropped := groundDecisions(input, out.IdentifiedDecisions)
		if len(dropped) > 0 {
			observability.FromContext(ctx).Warn("dropped ungrounded decisions",
				zap.Strings("dropped", dropped), zap.Int("kept", len(kept)))
		}
		out.IdentifiedDecisions = kept
	}
	if out.IdentifiedDecisions == nil {
		out.IdentifiedDecisions = []string{}
	}
	out = llmtool.NormalizeNeedInput(ctx, out, triageNeedInputAdapter{}, triageNeedInputPolicy)
	return artifact.Accept(out)
}
