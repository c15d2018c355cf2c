package artifact

import "time"

// TrackSummary is the persisted view of one analysed option.
type TrackSummary struct {
	DecisionLabel string      `json:"decision_label"`
	Synthetic     bool        `json:"synthetic,omitempty"`
	Questions     SWOT        `json:"questions"`
	Answers       SWOT        `json:"answers"`
	Outcome       *Simulation `json:"outcome,omitempty"`
}

// DecisionRecord is the history entry written when a user commits to a choice.
type DecisionRecord struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"session_id"`
	UserID         string         `json:"user_id"`
	Problem        string         `json:"problem"`
	ChosenDecision string         `json:"chosen_decision"`
	ChosenOutcome  string         `json:"chosen_outcome,omitempty"`
	Score          int            `json:"score"`
	QueryCount     int            `json:"query_count"`
	Tracks         []TrackSummary `json:"tracks"`
	CreatedAt      time.Time      `json:"created_at"`
}

const (
	maxScore     = 200
	queryPenalty = 20
)

// ScoreFor rewards reaching a decision with few extra prompts.
func ScoreFor(queryCount int) int {
	if queryCount < 0 {
		queryCount = 0
	}
	s := maxScore - queryPenalty*queryCount
	if s < 0 {
		return 0
	}
	return s
}
