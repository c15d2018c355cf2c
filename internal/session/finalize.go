package session

import (
	"context"
	"fmt"
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newRecordID() string { return uuid.NewString() }

// Finalize records the user's chosen option. The record is returned even
// when saving fails; the error then wraps the recorder's.
func (o *Orchestrator) Finalize(ctx context.Context, run *Run, chosen string) (artifact.DecisionRecord, error) {
	ctx, span := o.start(ctx, "session.Finalize", run)
	defer span.End()

	run.turn.Lock()
	defer run.turn.Unlock()
	if err := run.expect(PhaseDone); err != nil {
		endSpan(span, err)
		return artifact.DecisionRecord{}, err
	}

	run.mu.Lock()
	var picked *DecisionTrack
	for _, t := range run.tracks {
		if strings.EqualFold(strings.TrimSpace(chosen), t.Label) {
			picked = t
			break
		}
	}
	if picked == nil {
		run.mu.Unlock()
		err := fmt.Errorf("%w: %q", ErrUnknownDecision, chosen)
		endSpan(span, err)
		return artifact.DecisionRecord{}, err
	}
	rec := artifact.DecisionRecord{
		ID:             newRecordID(),
		SessionID:      run.id,
		UserID:         run.userID,
		Problem:        run.problem,
		ChosenDecision: picked.Label,
		QueryCount:     run.queryCount,
		Score:          artifact.ScoreFor(run.queryCount),
		CreatedAt:      o.now().UTC(),
	}
	if picked.Outcome != nil {
		rec.ChosenOutcome = picked.Outcome.PredictedOutcome
	}
	for _, t := range run.tracks {
		rec.Tracks = append(rec.Tracks, t.summary())
	}
	run.finalized = true
	run.updatedAt = o.now()
	run.mu.Unlock()

	if o.recorder != nil {
		if err := o.recorder.Save(ctx, rec); err != nil {
			err = fmt.Errorf("save decision: %w", err)
			endSpan(span, err)
			return rec, err
		}
	}
	observability.FromContext(ctx).Info("decision finalized",
		zap.String("chosen", rec.ChosenDecision), zap.Int("score", rec.Score), zap.Int("query_count", rec.QueryCount))
	return rec, nil
}
