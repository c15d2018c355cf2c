package session

import "errors"

var (
	ErrNotFound         = errors.New("session not found")
	ErrWrongPhase       = errors.New("operation not allowed in current phase")
	ErrOutOfOrder       = errors.New("answer submitted out of order")
	ErrTrackNotReady    = errors.New("track is not ready for simulation")
	ErrUnknownDecision  = errors.New("decision is not part of this session")
	ErrAlreadyFinalized = errors.New("session already finalized")
	ErrNoOptions        = errors.New("at least one new option is required")
)
