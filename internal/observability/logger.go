package observability

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKeyLogger struct{}

// LogConfig selects the encoder and level of the process logger.
type LogConfig struct {
	Level       string
	Development bool
}

// NewLogger builds a zap logger: JSON for production, console for development.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if lvl := strings.TrimSpace(cfg.Level); lvl != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("observability: log level %q: %w", lvl, err)
		}
		zc.Level = zap.NewAtomicLevelAt(l)
	}
	return zc.Build()
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger{}, logger)
}

// FromContext returns the logger stored in ctx, or zap.L().
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKeyLogger{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.L()
}

// WithFields stores a child logger carrying fields.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(fields...))
}
