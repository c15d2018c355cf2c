package app

import (
	"context"
	"errors"
	"fmt"

	"balanceboard/internal/gateway/config"
	"balanceboard/internal/gateway/handler/rpc"
	"balanceboard/internal/gateway/server"
	"balanceboard/internal/gateway/service/decision"
	"balanceboard/internal/llm"
	"balanceboard/internal/observability"
	"balanceboard/internal/session"
	"balanceboard/internal/workers/analysis"

	"go.uber.org/zap"
)

// Core is everything a transport needs: the decision service and the
// resources behind it.
type Core struct {
	Service *decision.Service
	gateway *llm.Gateway
	stores  *gatewayStores
}

func NewCore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Core, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := observability.Tracer(nil)

	gw, err := newGateway(ctx, cfg.LLM, logger, tracer)
	if err != nil {
		return nil, err
	}
	stores, err := initStores(cfg, logger)
	if err != nil {
		_ = gw.Close()
		return nil, err
	}
	runs, err := session.NewRegistry(cfg.Session.Max, cfg.Session.TTL)
	if err != nil {
		_ = gw.Close()
		_ = stores.close()
		return nil, fmt.Errorf("failed to initialize session registry: %w", err)
	}

	scfg := session.DefaultConfig()
	scfg.TriageAttempts = cfg.Session.TriageAttempts
	scfg.ValidateAnswers = cfg.Session.ValidateAnswers

	phases := analysis.New(gw, analysis.Options{GroundDecisions: cfg.Session.GroundDecisions})
	orch := session.NewOrchestrator(phases,
		session.WithConfig(scfg),
		session.WithContextProvider(stores.profiles),
		session.WithRecorder(stores.history),
		session.WithTracer(tracer),
	)
	return &Core{
		Service: decision.New(orch, runs, stores.history),
		gateway: gw,
		stores:  stores,
	}, nil
}

func (c *Core) Close() error {
	return errors.Join(c.gateway.Close(), c.stores.close())
}

type App struct {
	server *server.Server
	core   *Core
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	core, err := NewCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	decisionHandler := rpc.NewDecisionHandler(core.Service)
	chatHandler := rpc.NewChatHandler(core.Service)

	// Routing & Server
	mux := server.NewMux(decisionHandler, chatHandler, logger)
	srv := server.New(cfg.Port, mux, logger)

	return &App{
		server: srv,
		core:   core,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	return errors.Join(err, a.core.Close())
}
