package decision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"balanceboard/internal/artifact"
	"balanceboard/internal/gateway/repository/history"
	"balanceboard/internal/session"
)

var (
	// ErrInvalidArgument marks malformed requests.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrHistoryDisabled is returned by ListHistory without a history store.
	ErrHistoryDisabled = errors.New("decision history is not configured")
)

func required(field string) error {
	return fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
}

// Service addresses orchestrator runs by id for the transports.
type Service struct {
	orch    *session.Orchestrator
	runs    *session.Registry
	history history.Store
}

func New(orch *session.Orchestrator, runs *session.Registry, store history.Store) *Service {
	return &Service{orch: orch, runs: runs, history: store}
}

type StartSessionRequest struct {
	UserID string `json:"user_id,omitempty"`
	Input  string `json:"input"`
	// SessionID re-triages an existing run that is collecting input.
	SessionID string `json:"session_id,omitempty"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	session.StartResult
}

func (s *Service) StartSession(ctx context.Context, req *StartSessionRequest) (*StartSessionResponse, error) {
	if req == nil || strings.TrimSpace(req.Input) == "" {
		return nil, required("input")
	}
	if id := strings.TrimSpace(req.SessionID); id != "" {
		run, err := s.runs.Get(id)
		if err != nil {
			return nil, err
		}
		res, err := s.orch.Retriage(ctx, run, req.Input)
		if err != nil {
			return nil, err
		}
		return &StartSessionResponse{SessionID: run.ID(), StartResult: res}, nil
	}
	run, res, err := s.orch.StartSession(ctx, req.UserID, req.Input)
	if err != nil {
		return nil, err
	}
	s.runs.Put(run)
	return &StartSessionResponse{SessionID: run.ID(), StartResult: res}, nil
}

type SubmitAnswerRequest struct {
	SessionID string `json:"session_id"`
	// Quadrant is a quadrant name or index 0-3; empty means the run's current one.
	Quadrant string `json:"quadrant,omitempty"`
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer"`
}

type SubmitAnswerResponse struct {
	SessionID string `json:"session_id"`
	session.AnswerResult
}

func (s *Service) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	run, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	var q artifact.Quadrant
	if name := strings.TrimSpace(req.Quadrant); name != "" {
		var ok bool
		if q, ok = artifact.ParseQuadrant(name); !ok {
			return nil, fmt.Errorf("%w: unknown quadrant %q", ErrInvalidArgument, name)
		}
	} else {
		next := run.NextPrompt()
		if next == nil {
			return nil, fmt.Errorf("%w: no question is awaiting an answer", session.ErrWrongPhase)
		}
		q = next.Quadrant
	}
	res, err := s.orch.SubmitAnswer(ctx, run, q, req.Question, req.Answer)
	if err != nil {
		return nil, err
	}
	return &SubmitAnswerResponse{SessionID: run.ID(), AnswerResult: res}, nil
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

func (r *SessionRequest) sessionID() string {
	if r == nil {
		return ""
	}
	return r.SessionID
}

type GetOutcomeResponse struct {
	SessionID string `json:"session_id"`
	session.TrackResult
}

// GetOutcome simulates the active track once its four answers are in.
func (s *Service) GetOutcome(ctx context.Context, req *SessionRequest) (*GetOutcomeResponse, error) {
	run, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	res, err := s.orch.CompleteTrack(ctx, run)
	if err != nil {
		return nil, err
	}
	return &GetOutcomeResponse{SessionID: run.ID(), TrackResult: res}, nil
}

type AnalyzeHesitationRequest struct {
	SessionID string `json:"session_id"`
	Excuse    string `json:"excuse"`
}

type AnalyzeHesitationResponse struct {
	SessionID string `json:"session_id"`
	session.HesitationResult
}

func (s *Service) AnalyzeHesitation(ctx context.Context, req *AnalyzeHesitationRequest) (*AnalyzeHesitationResponse, error) {
	run, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	res, err := s.orch.Hesitate(ctx, run, req.Excuse)
	if err != nil {
		return nil, err
	}
	return &AnalyzeHesitationResponse{SessionID: run.ID(), HesitationResult: res}, nil
}

type AddOptionsRequest struct {
	SessionID string   `json:"session_id"`
	Options   []string `json:"options"`
}

func (s *Service) AddOptions(ctx context.Context, req *AddOptionsRequest) (*StartSessionResponse, error) {
	run, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	res, err := s.orch.AddOptions(ctx, run, req.Options)
	if err != nil {
		return nil, err
	}
	return &StartSessionResponse{SessionID: run.ID(), StartResult: res}, nil
}

type FinalizeDecisionRequest struct {
	SessionID      string `json:"session_id"`
	ChosenDecision string `json:"chosen_decision"`
}

type FinalizeDecisionResponse struct {
	Record artifact.DecisionRecord `json:"record"`
}

func (s *Service) FinalizeDecision(ctx context.Context, req *FinalizeDecisionRequest) (*FinalizeDecisionResponse, error) {
	run, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ChosenDecision) == "" {
		return nil, required("chosen_decision")
	}
	rec, err := s.orch.Finalize(ctx, run, req.ChosenDecision)
	if err != nil {
		return nil, err
	}
	return &FinalizeDecisionResponse{Record: rec}, nil
}

type ListHistoryRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

type ListHistoryResponse struct {
	Records []artifact.DecisionRecord `json:"records"`
}

func (s *Service) ListHistory(ctx context.Context, req *ListHistoryRequest) (*ListHistoryResponse, error) {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return nil, required("user_id")
	}
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	recs, err := s.history.ListByUser(ctx, req.UserID, req.Limit)
	if err != nil {
		return nil, err
	}
	return &ListHistoryResponse{Records: recs}, nil
}

type SimulateRequest struct {
	UserID        string        `json:"user_id,omitempty"`
	Problem       string        `json:"problem"`
	DecisionLabel string        `json:"decision_label"`
	Answers       artifact.SWOT `json:"answers"`
}

type SimulateResponse struct {
	Simulation artifact.SimulationResult `json:"simulation"`
}

// Simulate predicts an outcome from answers collected outside a session.
// Nothing is stored.
func (s *Service) Simulate(ctx context.Context, req *SimulateRequest) (*SimulateResponse, error) {
	if req == nil || strings.TrimSpace(req.DecisionLabel) == "" {
		return nil, required("decision_label")
	}
	sim := s.orch.Simulate(ctx, req.UserID, req.Problem, req.DecisionLabel, req.Answers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &SimulateResponse{Simulation: sim}, nil
}

// GetSession returns a snapshot of the run.
func (s *Service) GetSession(_ context.Context, req *SessionRequest) (*session.View, error) {
	run, err := s.lookup(req)
	if err != nil {
		return nil, err
	}
	v := run.Snapshot()
	return &v, nil
}

type sessionAddressed interface{ sessionID() string }

func (r *SubmitAnswerRequest) sessionID() string {
	if r == nil {
		return ""
	}
	return r.SessionID
}

func (r *AnalyzeHesitationRequest) sessionID() string {
	if r == nil {
		return ""
	}
	return r.SessionID
}

func (r *AddOptionsRequest) sessionID() string {
	if r == nil {
		return ""
	}
	return r.SessionID
}

func (r *FinalizeDecisionRequest) sessionID() string {
	if r == nil {
		return ""
	}
	return r.SessionID
}

func (s *Service) lookup(req sessionAddressed) (*session.Run, error) {
	id := strings.TrimSpace(req.sessionID())
	if id == "" {
		return nil, required("session_id")
	}
	run, err := s.runs.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, id)
	}
	return run, nil
}
