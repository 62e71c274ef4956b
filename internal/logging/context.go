// internal/logging/context.go
package logging

import (
	"context"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/contextkeys"
)

// FieldsFromContext returns the logging fields (trace_id, operation) stored
// in ctx as zap fields.
func FieldsFromContext(ctx context.Context) []zap.Field {
	fields := []zap.Field{}
	if ctx == nil {
		return fields
	}
	if id, ok := ctx.Value(contextkeys.TraceIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	if op, ok := ctx.Value(contextkeys.OperationKey).(string); ok && op != "" {
		fields = append(fields, zap.String("operation", op))
	}
	return fields
}

// WithTraceID stores the trace id in ctx when it is not empty.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return context.WithValue(ctx, contextkeys.TraceIDKey, traceID)
}

// TraceID returns the trace id stored by WithTraceID, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(contextkeys.TraceIDKey).(string)
	return id
}

// WithOperation tags the context with the outbound operation name.
func WithOperation(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, contextkeys.OperationKey, op)
}
