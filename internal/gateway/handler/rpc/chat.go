package rpc

import (
	"context"
	"net/http"
	"strings"
	"time"

	"balanceboard/internal/gateway/service/decision"
	"balanceboard/internal/observability"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChatHandler drives a decision session over a websocket. Each inbound
// frame maps to one service call; the reply carries the same payload the
// RPC procedure returns.
type ChatHandler struct {
	svc *decision.Service
}

func NewChatHandler(svc *decision.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatWSInbound struct {
	Type           string   `json:"type"`
	SessionID      string   `json:"session_id,omitempty"`
	UserID         string   `json:"user_id,omitempty"`
	Input          string   `json:"input,omitempty"`
	Quadrant       string   `json:"quadrant,omitempty"`
	Question       string   `json:"question,omitempty"`
	Answer         string   `json:"answer,omitempty"`
	Excuse         string   `json:"excuse,omitempty"`
	Options        []string `json:"options,omitempty"`
	ChosenDecision string   `json:"chosen_decision,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

type chatWSOutbound struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func (h *ChatHandler) HandleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		observability.FromContext(ctx).Warn("chat ws set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chatWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	pushChatWS(writeCh, chatWSOutbound{Type: "ready", SessionID: sessionID})

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		if msgType == "" {
			pushChatWS(writeCh, chatWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
			continue
		}
		if v := strings.TrimSpace(in.SessionID); v != "" {
			sessionID = v
		}
		if v := strings.TrimSpace(in.UserID); v != "" {
			userID = v
		}

		var (
			data any
			err  error
		)
		switch msgType {
		case "ping":
			pushChatWS(writeCh, chatWSOutbound{Type: "pong"})
			continue
		case "start":
			var out *decision.StartSessionResponse
			out, err = h.svc.StartSession(ctx, &decision.StartSessionRequest{UserID: userID, Input: in.Input, SessionID: in.SessionID})
			if err == nil {
				sessionID = out.SessionID
			}
			data = out
		case "answer":
			data, err = h.svc.SubmitAnswer(ctx, &decision.SubmitAnswerRequest{
				SessionID: sessionID, Quadrant: in.Quadrant, Question: in.Question, Answer: in.Answer,
			})
		case "outcome":
			data, err = h.svc.GetOutcome(ctx, &decision.SessionRequest{SessionID: sessionID})
		case "hesitate":
			data, err = h.svc.AnalyzeHesitation(ctx, &decision.AnalyzeHesitationRequest{SessionID: sessionID, Excuse: in.Excuse})
		case "options":
			data, err = h.svc.AddOptions(ctx, &decision.AddOptionsRequest{SessionID: sessionID, Options: in.Options})
		case "finalize":
			data, err = h.svc.FinalizeDecision(ctx, &decision.FinalizeDecisionRequest{SessionID: sessionID, ChosenDecision: in.ChosenDecision})
		case "history":
			data, err = h.svc.ListHistory(ctx, &decision.ListHistoryRequest{UserID: userID, Limit: in.Limit})
		case "state":
			data, err = h.svc.GetSession(ctx, &decision.SessionRequest{SessionID: sessionID})
		default:
			pushChatWS(writeCh, chatWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + msgType})
			continue
		}
		if err != nil {
			pushChatWS(writeCh, chatWSOutbound{
				Type:      "error",
				SessionID: sessionID,
				Code:      errorCode(err).String(),
				Message:   err.Error(),
			})
			continue
		}
		pushChatWS(writeCh, chatWSOutbound{Type: msgType + "_ack", SessionID: sessionID, Data: data})
	}
}

// pushChatWS never blocks the reader: when the queue is full the oldest
// frame is dropped.
func pushChatWS(writeCh chan chatWSOutbound, out chatWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
