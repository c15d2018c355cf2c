package server

import (
	"net/http"

	"balanceboard/internal/gateway/handler/rpc"
	"balanceboard/internal/gateway/middleware"

	"go.uber.org/zap"
)

func NewMux(
	decisionHandler *rpc.DecisionHandler,
	chatHandler *rpc.ChatHandler,
	logger *zap.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(decisionHandler.Handler())

	// Websocket
	mux.HandleFunc("/chat/ws", chatHandler.HandleChatWS)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Middleware
	return middleware.CORS(middleware.Logging(logger)(mux))
}
