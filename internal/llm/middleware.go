package llm

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, logging, tracing).
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit throttles outbound calls. If rps <= 0 the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next LLMClient) LLMClient {
		return &rateLimited{next: next, rl: newRPSLimiter(rps, burst)}
	}
}

type rateLimited struct {
	next LLMClient
	rl   *rpsLimiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }
func (c *rateLimited) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	if err := c.rl.Acquire(ctx); err != nil {
		return nil, err
	}
	return c.next.GenerateJSON(ctx, req)
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. A nil logger uses zap.L().
func WithLogging(logger *zap.Logger) Middleware {
	return func(next LLMClient) LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next LLMClient
	log  *zap.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	lg := l.log
	if lg == nil {
		lg = zap.L()
	}
	lg = lg.With(
		zap.String("phase", PhaseFrom(ctx)),
		zap.String("client", l.next.Name()),
	)
	if sid := SessionFrom(ctx); sid != "" {
		lg = lg.With(zap.String("session_id", sid))
	}
	start := time.Now()
	raw, err := l.next.GenerateJSON(ctx, req)
	fields := []zap.Field{
		zap.Int("request_bytes", len(req.SystemInstruction)+len(req.UserContent)),
		zap.Int("response_bytes", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		lg.Warn("llm request failed", append(fields, zap.Error(err))...)
		return raw, err
	}
	lg.Debug("llm request", fields...)
	return raw, nil
}

// -------- Tracing --------

// WithTracing opens one span per call on tracer.
func WithTracing(tracer trace.Tracer) Middleware {
	return func(next LLMClient) LLMClient {
		return &traced{next: next, tracer: tracer}
	}
}

type traced struct {
	next   LLMClient
	tracer trace.Tracer
}

func (t *traced) Name() string { return t.next.Name() }
func (t *traced) Close() error { return t.next.Close() }
func (t *traced) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	ctx, span := t.tracer.Start(ctx, "llm.GenerateJSON",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.phase", PhaseFrom(ctx)),
			attribute.String("llm.client", t.next.Name()),
			attribute.String("llm.model_hint", req.ModelHint),
		),
	)
	defer span.End()

	raw, err := t.next.GenerateJSON(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return raw, err
	}
	span.SetAttributes(attribute.Int("llm.response_bytes", len(raw)))
	return raw, nil
}
