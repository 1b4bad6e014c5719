package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a run- or request-scoped logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts the scoped logger, or zap.NewNop() if none was stored.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// Scoped derives a child of base carrying fields, stores it in ctx and
// returns both. Code below ctx then logs with the run or request id attached.
func Scoped(ctx context.Context, base *zap.Logger, fields ...zap.Field) (context.Context, *zap.Logger) {
	if base == nil {
		base = FromContext(ctx)
	}
	l := base.With(fields...)
	return ContextWithLogger(ctx, l), l
}
