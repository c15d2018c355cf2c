package analysis

import (
	"context"
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/llm"
	"balanceboard/internal/llmtool"
)

// HesitationPipeline maps a user's stated hesitation to a loopback action.
type HesitationPipeline struct {
	LLM Generator
}

var hesitationPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:      "The user has seen their options but cannot commit. Classify why and recommend exactly one next step.",
	Background:   "The recommendation is advisory; the application decides how to route the user.",
	OutputFields: llmtool.MustFieldsFromStruct(artifact.HesitationOut{}),
	Rules: []string{
		"REFINE_PROBLEM when the user is unsure what the real problem is.",
		"ADD_MORE_OPTIONS when none of the current options feel right.",
		"DEEPEN_ANALYSIS when fear or uncertainty about risks blocks the choice.",
		"FORCE_DECISION when several options look acceptable and the user is stuck choosing.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
	Examples: []llmtool.PromptExample{
		{Input: `{"excuse":"I don't understand what's wrong"}`, Output: `{"status":"VALID","user_sentiment":"confused","recommended_action":"REFINE_PROBLEM","guidance_message":"Let's restate the problem together."}`},
		{Input: `{"excuse":"None of these look good"}`, Output: `{"status":"VALID","user_sentiment":"dissatisfied","recommended_action":"ADD_MORE_OPTIONS","guidance_message":"Let's add an option you have not considered yet."}`},
		{Input: `{"excuse":"I'm scared of the risks"}`, Output: `{"status":"VALID","user_sentiment":"anxious","recommended_action":"DEEPEN_ANALYSIS","guidance_message":"Let's look closer at what could go wrong and how you would handle it."}`},
		{Input: `{"excuse":"They all look good, I can't pick"}`, Output: `{"status":"VALID","user_sentiment":"torn","recommended_action":"FORCE_DECISION","guidance_message":"Here are your options ranked by likely outcome."}`},
	},
}, llmtool.PresetStrictJSON(), llmtool.PresetSafety(), llmtool.PresetSupportive())

var hesitationSystem = hesitationPromptSpec.MustRender()

// Run is total. A blank excuse is rejected locally.
func (p *HesitationPipeline) Run(ctx context.Context, in artifact.HesitationIn) artifact.HesitationAnalysis {
	in.Excuse = strings.TrimSpace(in.Excuse)
	if in.Excuse == "" {
		return artifact.Reject[artifact.Hesitation](artifact.ReasonTooVague, GuidanceHesitationFallback)
	}
	var gen Generator
	if p != nil {
		gen = p.LLM
	}
	return runPhase[artifact.Hesitation, artifact.HesitationOut](ctx, gen, llm.PhaseHesitation, hesitationSystem,
		in,
		fallback{reason: artifact.ReasonTooVague, guidance: GuidanceHesitationFallback})
}
