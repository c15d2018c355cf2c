package analysis

import (
	"context"
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/llm"
	"balanceboard/internal/llmtool"
)

// AnswerPipeline checks that an answer addresses its question and quadrant.
type AnswerPipeline struct {
	LLM Generator
}

var answerPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:      "Judge whether the user's answer responds to the question shown for the current SWOT quadrant.",
	Background:   "The verdict is advisory feedback shown next to the question. Be lenient with short or informal answers that are on topic.",
	OutputFields: llmtool.MustFieldsFromStruct(artifact.AnswerOut{}),
	Rules: []string{
		"Return INVALID with NONSENSE for gibberish or empty filler.",
		"Return INVALID with OFF_TOPIC when the answer ignores the question.",
		"Return INVALID with WRONG_QUADRANT when the answer clearly belongs to another quadrant, e.g. a risk given as a strength.",
		"Otherwise return VALID; classify it STRONG when it is concrete and WEAK when it is vague.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetSupportive())

type answerPayload struct {
	Quadrant      string `json:"quadrant"`
	QuadrantFocus string `json:"quadrant_focus"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
}

var answerSystem = answerPromptSpec.MustRender()

// Run is total. Out-of-range quadrants and blank answers are rejected
// locally without calling the service.
func (p *AnswerPipeline) Run(ctx context.Context, in artifact.AnswerIn) artifact.AnswerValidation {
	if !in.Quadrant.Valid() {
		return artifact.Reject[artifact.AnswerAssessment](artifact.ReasonWrongQuadrant, FeedbackUnknownQuadrant)
	}
	answer := strings.TrimSpace(in.Answer)
	if answer == "" {
		return artifact.Reject[artifact.AnswerAssessment](artifact.ReasonNonsense, FeedbackBlankAnswer)
	}
	var gen Generator
	if p != nil {
		gen = p.LLM
	}
	return runPhase[artifact.AnswerAssessment, artifact.AnswerOut](ctx, gen, llm.PhaseAnswer, answerSystem,
		answerPayload{
			Quadrant:      strings.ToUpper(in.Quadrant.String()),
			QuadrantFocus: in.Quadrant.Focus(),
			Question:      strings.TrimSpace(in.Question),
			Answer:        answer,
		},
		fallback{reason: artifact.ReasonNonsense, guidance: FeedbackAnswerFallback})
}
