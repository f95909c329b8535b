package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Field keys attached to log lines via context.
const (
	FieldDocument      = "document"
	FieldCorrelationID = "correlation_id"
)

type contextKey string

const (
	documentKey      contextKey = "logging.document"
	correlationIDKey contextKey = "logging.correlation_id"
	loggerKey        contextKey = "logging.logger"
)

// WithDocument records the path of the file an operation works on.
func WithDocument(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, documentKey, path)
}

// Document returns the document path stored in ctx, if any.
func Document(ctx context.Context) string {
	if path, ok := ctx.Value(documentKey).(string); ok {
		return path
	}
	return ""
}

// WithCorrelationID tags ctx with a fresh per-invocation ID unless one is
// already present.
func WithCorrelationID(ctx context.Context) context.Context {
	if CorrelationID(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, uuid.NewString())
}

// CorrelationID returns the invocation ID stored in ctx, if any.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextFields collects the loggable attributes carried by ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	if id := CorrelationID(ctx); id != "" {
		fields = append(fields, slog.String(FieldCorrelationID, id))
	}
	if path := Document(ctx); path != "" {
		fields = append(fields, slog.String(FieldDocument, path))
	}
	return fields
}

// IntoContext stores logger in ctx for retrieval with FromContext.
func IntoContext(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in ctx, augmented with the context's
// fields. Falls back to a no-op logger.
func FromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerKey).(*slog.Logger)
	return WithContext(ctx, logger)
}
