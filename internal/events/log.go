package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/request"
	"github.com/juancollazo-ch/monoparts-service/internal/response"
)

// LogSink writes every event as a debug-level line. Payloads and signatures
// are never logged.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logging.OrNop(logger)}
}

func (s *LogSink) with(ctx context.Context, fields ...zap.Field) []zap.Field {
	return append(logging.FieldsFromContext(ctx), fields...)
}

func (s *LogSink) RequestSending(ctx context.Context, op request.Operation, endpoint string, payload map[string]any) {
	s.logger.Debug("monoparts.request.sending", s.with(ctx,
		zap.String("operation", op.String()),
		zap.String("endpoint", endpoint),
		zap.Int("fields", len(payload)),
	)...)
}

func (s *LogSink) ResponseReceived(ctx context.Context, op request.Operation, resp *response.Response) {
	s.logger.Debug("monoparts.response.received", s.with(ctx,
		zap.String("operation", op.String()),
		zap.Int("status_code", resp.HTTPStatus()),
		zap.String("status", resp.Status().String()),
	)...)
}

func (s *LogSink) RequestFailed(ctx context.Context, op request.Operation, err error) {
	s.logger.Debug("monoparts.request.failed", s.with(ctx,
		zap.String("operation", op.String()),
		zap.String("kind", apperr.Kind(err)),
		zap.Error(err),
	)...)
}

func (s *LogSink) CallbackReceived(ctx context.Context, payload map[string]any) {
	s.logger.Debug("monoparts.callback.received", s.with(ctx, zap.Int("fields", len(payload)))...)
}

func (s *LogSink) CallbackValidated(ctx context.Context, info models.OrderStateInfo) {
	fields := []zap.Field{}
	if info.OrderID != nil {
		fields = append(fields, zap.String("order_id", *info.OrderID))
	}
	if info.RawState != nil {
		fields = append(fields, zap.String("state", *info.RawState))
	}
	if info.RawSubState != nil {
		fields = append(fields, zap.String("order_sub_state", *info.RawSubState))
	}
	s.logger.Debug("monoparts.callback.validated", s.with(ctx, fields...)...)
}

func (s *LogSink) CallbackFailed(ctx context.Context, reason string, err error) {
	s.logger.Debug("monoparts.callback.failed", s.with(ctx, zap.String("reason", reason), zap.Error(err))...)
}
