package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerContextKey contextKey = "logger"

	// RequestIDKey carries the request ID through the context.
	RequestIDKey contextKey = "request_id"

	// CompanyIDKey carries the resolved company ID through the context.
	CompanyIDKey contextKey = "company_id"
)

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the logger stored in the context, or a no-op
// logger when none was stored. Callers never need a nil check.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in the context and returns a
// logger that tags every entry with it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	return ctx, logger.With(zap.String("request_id", requestID))
}

// GetRequestID returns the request ID from the context, if any.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCompanyID stores the company ID in the context and returns a
// logger that tags every entry with it.
func WithCompanyID(ctx context.Context, logger *zap.Logger, companyID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, CompanyIDKey, companyID)
	return ctx, logger.With(zap.String("company_id", companyID))
}

// GetCompanyID returns the company ID from the context, if any.
func GetCompanyID(ctx context.Context) string {
	if id, ok := ctx.Value(CompanyIDKey).(string); ok {
		return id
	}
	return ""
}
