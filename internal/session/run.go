package session

import (
	"sync"
	"time"

	"balanceboard/internal/artifact"
)

// Phase is the orchestrator state of one run.
type Phase string

const (
	PhaseCollectingInput Phase = "COLLECTING_INPUT"
	PhaseSWOTLoop        Phase = "SWOT_LOOP"
	PhaseOutcome         Phase = "OUTCOME"
	PhaseHesitation      Phase = "HESITATION"
	PhaseAwaitingOptions Phase = "AWAITING_OPTIONS"
	PhaseDone            Phase = "DONE"
	PhaseFailed          Phase = "FAILED"
)

// DecisionTrack is the SWOT analysis of one option.
type DecisionTrack struct {
	Label     string
	Synthetic bool
	Questions artifact.SWOT
	Answers   artifact.SWOT
	Outcome   *artifact.Simulation
}

func (t *DecisionTrack) summary() artifact.TrackSummary {
	s := artifact.TrackSummary{
		DecisionLabel: t.Label,
		Synthetic:     t.Synthetic,
		Questions:     t.Questions,
		Answers:       t.Answers,
	}
	if t.Outcome != nil {
		o := *t.Outcome
		o.KeyRisks = append([]string(nil), t.Outcome.KeyRisks...)
		s.Outcome = &o
	}
	return s
}

// Run is the explicit handle of one decision session. All mutation goes
// through the Orchestrator; turns on the same run are serialized.
type Run struct {
	turn sync.Mutex // held for a whole operation, including service calls

	mu          sync.RWMutex
	id          string
	userID      string
	problem     string
	elicitation string
	profile     *artifact.PersonalizationContext
	tracks      []*DecisionTrack
	current     int
	quadrant    artifact.Quadrant
	phase       Phase
	strict      bool
	queryCount  int
	finalized   bool
	createdAt   time.Time
	updatedAt   time.Time
}

func (r *Run) ID() string { return r.id }

// View is an immutable copy of a run's state.
type View struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id,omitempty"`
	Problem         string                  `json:"problem,omitempty"`
	Elicitation     string                  `json:"elicitation,omitempty"`
	Phase           Phase                   `json:"phase"`
	Strict          bool                    `json:"strict,omitempty"`
	QueryCount      int                     `json:"query_count"`
	CurrentTrack    int                     `json:"current_track"`
	CurrentQuadrant artifact.Quadrant       `json:"current_quadrant"`
	Tracks          []artifact.TrackSummary `json:"tracks"`
	Finalized       bool                    `json:"finalized,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func (r *Run) Snapshot() View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v := View{
		ID:              r.id,
		UserID:          r.userID,
		Problem:         r.problem,
		Elicitation:     r.elicitation,
		Phase:           r.phase,
		Strict:          r.strict,
		QueryCount:      r.queryCount,
		CurrentTrack:    r.current,
		CurrentQuadrant: r.quadrant,
		Tracks:          make([]artifact.TrackSummary, 0, len(r.tracks)),
		Finalized:       r.finalized,
		CreatedAt:       r.createdAt,
		UpdatedAt:       r.updatedAt,
	}
	for _, t := range r.tracks {
		v.Tracks = append(v.Tracks, t.summary())
	}
	return v
}

// Prompt is the next question to show the user.
type Prompt struct {
	TrackIndex    int               `json:"track_index"`
	DecisionLabel string            `json:"decision_label"`
	Quadrant      artifact.Quadrant `json:"quadrant"`
	QuadrantName  string            `json:"quadrant_name"`
	Question      string            `json:"question"`
}

// promptLocked returns the question at the cursor. Callers hold r.mu.
func (r *Run) promptLocked() *Prompt {
	if r.phase != PhaseSWOTLoop || r.current < 0 || r.current >= len(r.tracks) {
		return nil
	}
	t := r.tracks[r.current]
	return &Prompt{
		TrackIndex:    r.current,
		DecisionLabel: t.Label,
		Quadrant:      r.quadrant,
		QuadrantName:  r.quadrant.String(),
		Question:      t.Questions.At(r.quadrant),
	}
}

// NextPrompt returns the question awaiting an answer, if any.
func (r *Run) NextPrompt() *Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.promptLocked()
}

// outcomesLocked lists per-track outcomes in extraction order.
func (r *Run) outcomesLocked() []TrackOutcome {
	out := make([]TrackOutcome, 0, len(r.tracks))
	for i, t := range r.tracks {
		if t.Outcome == nil {
			continue
		}
		out = append(out, TrackOutcome{TrackIndex: i, DecisionLabel: t.Label, Simulation: *t.Outcome})
	}
	return out
}

// TrackOutcome pairs a simulation with its option.
type TrackOutcome struct {
	TrackIndex    int                 `json:"track_index"`
	DecisionLabel string              `json:"decision_label"`
	Simulation    artifact.Simulation `json:"simulation"`
}

// Phase reports the run's current phase.
func (r *Run) Phase() Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

// Outcomes lists the simulations attached so far, in extraction order.
func (r *Run) Outcomes() []TrackOutcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.outcomesLocked()
}

// UserID returns the owner the run was started for.
func (r *Run) UserID() string { return r.userID }
