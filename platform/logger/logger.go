// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// EventKindKey is the context key for the inbound event kind
	EventKindKey contextKey = "event_kind"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and event_kind from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = newLogger.WithRequestID(requestID)
	}

	if kind, ok := ctx.Value(EventKindKey).(string); ok && kind != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("event_kind", kind)),
		}
	}

	return newLogger
}

// WithRequestID returns a logger with request ID
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("request_id", requestID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// WebhookEvent logs an inbound webhook event decision.
func (l *Logger) WebhookEvent(kind, outcome string, accepted bool) {
	if accepted {
		l.Info("webhook_event",
			slog.String("kind", kind),
			slog.String("outcome", outcome),
		)
	} else {
		l.Debug("webhook_event",
			slog.String("kind", kind),
			slog.String("outcome", outcome),
		)
	}
}

// ReconcileStep logs a single reconciliation side effect.
func (l *Logger) ReconcileStep(step, tenantID, userID string) {
	l.Info("reconcile_step",
		slog.String("step", step),
		slog.String("tenant_id", tenantID),
		slog.String("user_id", userID),
	)
}

// UpstreamError logs a failed call to the identity platform.
func (l *Logger) UpstreamError(operation string, status int, err error) {
	l.Error("upstream_error",
		slog.String("operation", operation),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
