package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"balanceboard/internal/gateway/service/decision"
	"balanceboard/internal/session"

	"connectrpc.com/connect"
)

// DecisionServiceName is the fully-qualified connect service name.
const DecisionServiceName = "balanceboard.v1.DecisionService"

const (
	StartSessionProcedure      = "/" + DecisionServiceName + "/StartSession"
	SubmitAnswerProcedure      = "/" + DecisionServiceName + "/SubmitAnswer"
	GetOutcomeProcedure        = "/" + DecisionServiceName + "/GetOutcome"
	AnalyzeHesitationProcedure = "/" + DecisionServiceName + "/AnalyzeHesitation"
	AddOptionsProcedure        = "/" + DecisionServiceName + "/AddOptions"
	FinalizeDecisionProcedure  = "/" + DecisionServiceName + "/FinalizeDecision"
	ListHistoryProcedure       = "/" + DecisionServiceName + "/ListHistory"
	GetSessionProcedure        = "/" + DecisionServiceName + "/GetSession"
	SimulateProcedure          = "/" + DecisionServiceName + "/Simulate"
)

type DecisionHandler struct {
	svc *decision.Service
}

func NewDecisionHandler(svc *decision.Service) *DecisionHandler {
	return &DecisionHandler{svc: svc}
}

// unary adapts a service method to a connect handler.
func unary[Req, Res any](procedure string, fn func(context.Context, *Req) (*Res, error)) http.Handler {
	return connect.NewUnaryHandler(procedure,
		func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
			out, err := fn(ctx, req.Msg)
			if err != nil {
				return nil, toDecisionError(err)
			}
			return connect.NewResponse(out), nil
		},
		connect.WithCodec(jsonCodec{}),
	)
}

// Handler returns the service path prefix and its handler, in the shape of
// generated connect constructors.
func (h *DecisionHandler) Handler() (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(StartSessionProcedure, unary(StartSessionProcedure, h.svc.StartSession))
	mux.Handle(SubmitAnswerProcedure, unary(SubmitAnswerProcedure, h.svc.SubmitAnswer))
	mux.Handle(GetOutcomeProcedure, unary(GetOutcomeProcedure, h.svc.GetOutcome))
	mux.Handle(AnalyzeHesitationProcedure, unary(AnalyzeHesitationProcedure, h.svc.AnalyzeHesitation))
	mux.Handle(AddOptionsProcedure, unary(AddOptionsProcedure, h.svc.AddOptions))
	mux.Handle(FinalizeDecisionProcedure, unary(FinalizeDecisionProcedure, h.svc.FinalizeDecision))
	mux.Handle(ListHistoryProcedure, unary(ListHistoryProcedure, h.svc.ListHistory))
	mux.Handle(GetSessionProcedure, unary(GetSessionProcedure, h.svc.GetSession))
	mux.Handle(SimulateProcedure, unary(SimulateProcedure, h.svc.Simulate))
	return "/" + DecisionServiceName + "/", mux
}

func toDecisionError(err error) error {
	code := errorCode(err)
	if code == connect.CodeInternal {
		return connect.NewError(code, fmt.Errorf("decision service failed: %w", err))
	}
	return connect.NewError(code, err)
}

func errorCode(err error) connect.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, decision.ErrInvalidArgument),
		errors.Is(err, session.ErrUnknownDecision),
		errors.Is(err, session.ErrNoOptions):
		return connect.CodeInvalidArgument
	case errors.Is(err, session.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, session.ErrWrongPhase),
		errors.Is(err, session.ErrOutOfOrder),
		errors.Is(err, session.ErrTrackNotReady),
		errors.Is(err, session.ErrAlreadyFinalized):
		return connect.CodeFailedPrecondition
	case errors.Is(err, decision.ErrHistoryDisabled):
		return connect.CodeUnimplemented
	default:
		return connect.CodeInternal
	}
}
