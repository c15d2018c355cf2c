package session

import (
	"context"
	"sort"
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// HesitationResult reports a loopback consultation.
type HesitationResult struct {
	Analysis artifact.HesitationAnalysis `json:"analysis"`
	Phase    Phase                       `json:"phase"`
	Next     *Prompt                     `json:"next,omitempty"`
	// Ranked lists outcomes by probability after FORCE_DECISION.
	Ranked []TrackOutcome `json:"ranked,omitempty"`
}

// Hesitate classifies why the user cannot commit and routes the run:
//
//	REFINE_PROBLEM   -> COLLECTING_INPUT, tracks cleared; call Retriage next
//	ADD_MORE_OPTIONS -> AWAITING_OPTIONS; call AddOptions next
//	DEEPEN_ANALYSIS  -> every track reopened at its first question, strict validation on
//	FORCE_DECISION   -> DONE with outcomes ranked by probability
//
// An INVALID analysis leaves the run where it was.
func (o *Orchestrator) Hesitate(ctx context.Context, run *Run, excuse string) (HesitationResult, error) {
	ctx, span := o.start(ctx, "session.Hesitate", run)
	defer span.End()

	run.turn.Lock()
	defer run.turn.Unlock()
	if err := run.expect(PhaseSWOTLoop, PhaseOutcome, PhaseDone); err != nil {
		endSpan(span, err)
		return HesitationResult{}, err
	}

	run.mu.Lock()
	prev := run.phase
	run.phase = PhaseHesitation
	in := artifact.HesitationIn{Excuse: excuse, Problem: run.problem}
	for _, t := range run.tracks {
		in.Decisions = append(in.Decisions, t.Label)
	}
	run.mu.Unlock()

	analysisRes := o.phases.Hesitation.Run(ctx, in)

	run.mu.Lock()
	defer run.mu.Unlock()
	if err := ctx.Err(); err != nil {
		run.phase = prev
		endSpan(span, err)
		return HesitationResult{}, err
	}
	run.updatedAt = o.now()
	if !analysisRes.Fallback && strings.TrimSpace(excuse) != "" {
		run.queryCount++
	}

	res := HesitationResult{Analysis: analysisRes}
	if !analysisRes.OK() {
		run.phase = prev
		res.Phase = prev
		res.Next = run.promptLocked()
		return res, nil
	}

	action := analysisRes.Valid.RecommendedAction
	span.SetAttributes(attribute.String("hesitation.action", string(action)))
	observability.FromContext(ctx).Info("hesitation routed", zap.String("action", string(action)), zap.String("from", string(prev)))

	switch action {
	case artifact.ActionRefineProblem:
		run.tracks = nil
		run.current = 0
		run.quadrant = artifact.Strength
		run.phase = PhaseCollectingInput
	case artifact.ActionAddMoreOptions:
		run.phase = PhaseAwaitingOptions
	case artifact.ActionDeepenAnalysis:
		for _, t := range run.tracks {
			t.Answers = artifact.SWOT{}
			t.Outcome = nil
		}
		run.current = 0
		run.quadrant = artifact.Strength
		run.strict = true
		run.phase = PhaseSWOTLoop
	case artifact.ActionForceDecision:
		run.phase = PhaseDone
		res.Ranked = rankOutcomes(run.outcomesLocked())
	}
	res.Phase = run.phase
	res.Next = run.promptLocked()
	return res, nil
}

func rankOutcomes(outcomes []TrackOutcome) []TrackOutcome {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Simulation.Probability > outcomes[j].Simulation.Probability
	})
	return outcomes
}

// AddOptions appends tracks for new option labels after an
// ADD_MORE_OPTIONS loopback. Labels already present are ignored.
func (o *Orchestrator) AddOptions(ctx context.Context, run *Run, labels []string) (StartResult, error) {
	ctx, span := o.start(ctx, "session.AddOptions", run)
	defer span.End()

	run.turn.Lock()
	defer run.turn.Unlock()
	if err := run.expect(PhaseAwaitingOptions); err != nil {
		endSpan(span, err)
		return StartResult{}, err
	}

	run.mu.RLock()
	existing := make(map[string]struct{}, len(run.tracks))
	for _, t := range run.tracks {
		existing[strings.ToLower(t.Label)] = struct{}{}
	}
	problem, profile := run.problem, run.profile
	run.mu.RUnlock()

	var fresh []string
	for _, l := range labels {
		l = strings.TrimSpace(l)
		key := strings.ToLower(l)
		if l == "" {
			continue
		}
		if _, dup := existing[key]; dup {
			continue
		}
		existing[key] = struct{}{}
		fresh = append(fresh, l)
	}
	if len(fresh) == 0 {
		endSpan(span, ErrNoOptions)
		return StartResult{}, ErrNoOptions
	}

	tracks, err := o.buildTracks(ctx, problem, fresh, false, profile)
	if err != nil {
		endSpan(span, err)
		return StartResult{}, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	run.updatedAt = o.now()
	res := StartResult{}
	if len(tracks) == 0 {
		res.Phase = run.phase
		res.Failure = &artifact.Rejection{Reason: artifact.ReasonNonsense, Guidance: GuidanceAllTracksFailed}
		return res, nil
	}
	first := len(run.tracks)
	run.tracks = append(run.tracks, tracks...)
	run.current = first
	run.quadrant = artifact.Strength
	run.phase = PhaseSWOTLoop
	res.Problem = run.problem
	res.Tracks = plans(tracks)
	res.Phase = run.phase
	res.Next = run.promptLocked()
	return res, nil
}
