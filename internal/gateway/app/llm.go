package app

import (
	"context"
	"fmt"

	"balanceboard/internal/gateway/config"
	"balanceboard/internal/llm"
	llmclient "balanceboard/internal/llmClient"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// newGateway builds the provider client and wraps it as
// tracing(logging(rateLimit(provider))).
func newGateway(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger, tracer trace.Tracer) (*llm.Gateway, error) {
	var client llm.LLMClient
	switch cfg.Provider {
	case "gemini":
		g, err := llmclient.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
		}
		client = g
	case "fake":
		client = llm.NewFakeClient()
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	logger.Info("llm provider", zap.String("client", client.Name()), zap.Float64("rps", cfg.RPS))

	client = llm.Wrap(client,
		llm.WithTracing(tracer),
		llm.WithLogging(logger),
		llm.RateLimit(cfg.RPS, cfg.Burst),
	)
	return llm.NewGateway(client, llm.WithTimeout(cfg.Timeout)), nil
}
