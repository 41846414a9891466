package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	principalKey contextKey = "principal_id"
)

// WithContext returns a logger carrying the request and principal ids found in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	fields := make([]zap.Field, 0, 2)
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if principalID := GetPrincipalID(ctx); principalID != "" {
		fields = append(fields, zap.String("principal_id", principalID))
	}

	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// FromContext extracts the logger stored in ctx, falling back to the global one
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}
	if lg, ok := ctx.Value(loggerKey).(*Logger); ok && lg != nil {
		return lg.WithContext(ctx)
	}
	return L().WithContext(ctx)
}

// ToContext stores lg in ctx
func ToContext(ctx context.Context, lg *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, lg)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func WithPrincipalID(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalKey, principalID)
}

func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

func GetPrincipalID(ctx context.Context) string {
	v, _ := ctx.Value(principalKey).(string)
	return v
}
