package analysis

import (
	"context"
	"encoding/json"
	"errors"

	"balanceboard/internal/artifact"
	"balanceboard/internal/llm"
	"balanceboard/internal/llmtool"
	"balanceboard/internal/observability"

	"go.uber.org/zap"
)

// User-facing guidance for locally produced INVALID results.
const (
	GuidanceTooShort              = "I need a bit more detail. What is on your mind?"
	GuidanceTriageFallback        = "I'm having trouble understanding. Could you rephrase the problem?"
	GuidanceQuestionnaireFallback = "Something went wrong. Please try again."
	FeedbackAnswerFallback        = "I couldn't validate that answer. Please try again."
	FeedbackBlankAnswer           = "Please write an answer to the question before moving on."
	FeedbackUnknownQuadrant       = "That question is not part of this analysis."
	GuidanceSimulationFallback    = "I need more detail to simulate an outcome."
	GuidanceHesitationFallback    = "I'm not sure how to help with that. Do you want to review the SWOT again?"
	DefaultElicitationQuestion    = "You identified the problem. What is one specific choice you can make?"
)

// Generator is the gateway surface the phases depend on.
type Generator interface {
	GenerateStructured(ctx context.Context, req llm.Request) (json.RawMessage, error)
}

// fallback is the fixed INVALID a phase returns when generation fails.
type fallback struct {
	reason   artifact.ReasonCode
	guidance string
}

// runPhase performs one gateway call and decodes it into the phase contract.
// Transport and schema failures are logged and mapped to fb; semantic
// INVALID results from the service pass through untouched.
func runPhase[T any, W artifact.Wire[T]](
	ctx context.Context,
	gen Generator,
	phase string,
	system string,
	input any,
	fb fallback,
) artifact.Result[T] {
	ctx = llm.WithPhase(ctx, phase)
	log := observability.FromContext(ctx).With(zap.String("phase", phase))

	if gen == nil {
		log.Error("phase has no generator")
		return artifact.Recover[T](fb.reason, fb.guidance)
	}
	user, err := llmtool.RenderInput(input)
	if err != nil {
		log.Error("render input", zap.Error(err))
		return artifact.Recover[T](fb.reason, fb.guidance)
	}
	raw, err := gen.GenerateStructured(ctx, llm.Request{SystemInstruction: system, UserContent: user})
	if err != nil {
		log.Warn("generation failed, using fallback", zap.String("kind", failureKind(err)), zap.Error(err))
		return artifact.Recover[T](fb.reason, fb.guidance)
	}
	res, err := artifact.Decode[T, W](raw)
	if err != nil {
		log.Warn("schema mismatch, using fallback", zap.Error(err))
		return artifact.Recover[T](fb.reason, fb.guidance)
	}
	if !res.OK() {
		log.Info("phase returned invalid",
			zap.String("reason", string(res.Reason())))
	}
	return res
}

func failureKind(err error) string {
	var gf *llm.GenerationFailure
	if errors.As(err, &gf) {
		return string(gf.Kind)
	}
	return "unknown"
}
