package session

import (
	"context"
	"fmt"
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/observability"
	"balanceboard/internal/workers/analysis"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AnswerResult reports one SWOT turn.
type AnswerResult struct {
	Accepted   bool                       `json:"accepted"`
	Feedback   string                     `json:"feedback,omitempty"`
	Reason     artifact.ReasonCode        `json:"reason,omitempty"`
	Validation *artifact.AnswerValidation `json:"validation,omitempty"`
	// TrackReady is set once the fourth answer of a track is recorded.
	TrackReady bool    `json:"track_ready,omitempty"`
	Next       *Prompt `json:"next,omitempty"`
	Phase      Phase   `json:"phase"`
}

// SubmitAnswer records the answer for the current quadrant of the active
// track. quadrant must equal the run's cursor. Validation feedback is
// advisory: a semantic INVALID verdict blocks the answer only in strict
// mode. A local validation fallback never blocks.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, run *Run, quadrant artifact.Quadrant, question, answer string) (AnswerResult, error) {
	ctx, span := o.start(ctx, "session.SubmitAnswer", run)
	defer span.End()
	span.SetAttributes(attribute.Int("swot.quadrant", int(quadrant)))

	run.turn.Lock()
	defer run.turn.Unlock()
	if err := run.expect(PhaseSWOTLoop); err != nil {
		endSpan(span, err)
		return AnswerResult{}, err
	}

	run.mu.RLock()
	cur, track := run.quadrant, run.tracks[run.current]
	strict := run.strict
	run.mu.RUnlock()
	if quadrant != cur {
		err := fmt.Errorf("%w: expected %s, got %s", ErrOutOfOrder, cur, quadrant)
		endSpan(span, err)
		return AnswerResult{}, err
	}
	if strings.TrimSpace(question) == "" {
		question = track.Questions.At(cur)
	}
	if strings.TrimSpace(answer) == "" {
		return AnswerResult{
			Feedback: analysis.FeedbackBlankAnswer,
			Reason:   artifact.ReasonNonsense,
			Phase:    PhaseSWOTLoop,
			Next:     run.NextPrompt(),
		}, nil
	}

	var validation *artifact.AnswerValidation
	if o.cfg.ValidateAnswers || strict {
		v := o.phases.Answer.Run(ctx, artifact.AnswerIn{Quadrant: cur, Question: question, Answer: answer})
		if err := ctx.Err(); err != nil {
			endSpan(span, err)
			return AnswerResult{}, err
		}
		validation = &v
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	run.updatedAt = o.now()

	res := AnswerResult{Accepted: true, Validation: validation}
	if validation != nil && !validation.OK() {
		res.Feedback = validation.Message()
		res.Reason = validation.Reason()
		if !validation.Fallback {
			run.queryCount++
		}
		if strict && !validation.Fallback {
			res.Accepted = false
			res.Phase = run.phase
			res.Next = run.promptLocked()
			return res, nil
		}
	}

	track.Answers = track.Answers.With(cur, strings.TrimSpace(answer))
	if cur == artifact.Threat {
		run.phase = PhaseOutcome
		res.TrackReady = true
	} else {
		run.quadrant = cur + 1
	}
	res.Phase = run.phase
	res.Next = run.promptLocked()
	return res, nil
}

// TrackResult reports a simulation of the active track.
type TrackResult struct {
	TrackIndex    int                       `json:"track_index"`
	DecisionLabel string                    `json:"decision_label"`
	Simulation    artifact.SimulationResult `json:"simulation"`
	Phase         Phase                     `json:"phase"`
	Next          *Prompt                   `json:"next,omitempty"`
	// Outcomes is the aggregate in extraction order once the run is DONE.
	Outcomes []TrackOutcome `json:"outcomes,omitempty"`
}

// CompleteTrack simulates the active track once all four answers are in.
// A valid outcome is attached and the cursor moves to the next track. A
// semantic INVALID reopens the track for fresh answers; a local fallback
// leaves it ready so the call can be repeated.
func (o *Orchestrator) CompleteTrack(ctx context.Context, run *Run) (TrackResult, error) {
	ctx, span := o.start(ctx, "session.CompleteTrack", run)
	defer span.End()

	run.turn.Lock()
	defer run.turn.Unlock()
	if err := run.expect(PhaseOutcome); err != nil {
		err = fmt.Errorf("%w: %w", ErrTrackNotReady, err)
		endSpan(span, err)
		return TrackResult{}, err
	}

	run.mu.RLock()
	idx, track := run.current, run.tracks[run.current]
	in := artifact.SimulationIn{
		Problem:       run.problem,
		DecisionLabel: track.Label,
		Answers:       track.Answers,
		Profile:       run.profile,
	}
	run.mu.RUnlock()

	sim := o.phases.Simulation.Run(ctx, in)
	if err := ctx.Err(); err != nil {
		endSpan(span, err)
		return TrackResult{}, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	run.updatedAt = o.now()
	res := TrackResult{TrackIndex: idx, DecisionLabel: track.Label, Simulation: sim}

	switch {
	case sim.OK():
		out := *sim.Valid
		track.Outcome = &out
		if next := run.nextOpenTrackLocked(idx); next >= 0 {
			run.current = next
			run.quadrant = artifact.Strength
			run.phase = PhaseSWOTLoop
		} else {
			run.phase = PhaseDone
			res.Outcomes = run.outcomesLocked()
		}
	case sim.Fallback:
		observability.FromContext(ctx).Warn("simulation fell back; track stays ready", zap.Int("track", idx))
	default:
		run.queryCount++
		track.Answers = artifact.SWOT{}
		run.quadrant = artifact.Strength
		run.phase = PhaseSWOTLoop
	}
	res.Phase = run.phase
	res.Next = run.promptLocked()
	return res, nil
}

// nextOpenTrackLocked returns the first track after idx without an outcome,
// wrapping to earlier tracks, or -1 when every track has one.
func (r *Run) nextOpenTrackLocked(idx int) int {
	n := len(r.tracks)
	for step := 1; step <= n; step++ {
		i := (idx + step) % n
		if r.tracks[i].Outcome == nil {
			return i
		}
	}
	return -1
}

// Simulate runs outcome simulation without a session, e.g. for a caller
// that collected answers elsewhere.
func (o *Orchestrator) Simulate(ctx context.Context, userID, problem, decisionLabel string, answers artifact.SWOT) artifact.SimulationResult {
	ctx, span := o.start(ctx, "session.Simulate", nil)
	defer span.End()
	return o.phases.Simulation.Run(ctx, artifact.SimulationIn{
		Problem:       problem,
		DecisionLabel: decisionLabel,
		Answers:       answers,
		Profile:       o.fetchProfile(ctx, strings.TrimSpace(userID)),
	})
}
