// Package events defines the observer hooks of the exchange and callback
// pipelines. Sinks must not block for long and must not panic; the
// pipelines call them synchronously.
package events

import (
	"context"

	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/request"
	"github.com/juancollazo-ch/monoparts-service/internal/response"
)

type Sink interface {
	// RequestSending receives the validated payload that is about to be signed.
	RequestSending(ctx context.Context, op request.Operation, endpoint string, payload map[string]any)
	ResponseReceived(ctx context.Context, op request.Operation, resp *response.Response)
	// RequestFailed fires for every error returned by the exchange.
	RequestFailed(ctx context.Context, op request.Operation, err error)

	CallbackReceived(ctx context.Context, payload map[string]any)
	CallbackValidated(ctx context.Context, info models.OrderStateInfo)
	CallbackFailed(ctx context.Context, reason string, err error)
}

// Nop ignores every event.
type Nop struct{}

func (Nop) RequestSending(context.Context, request.Operation, string, map[string]any) {}
func (Nop) ResponseReceived(context.Context, request.Operation, *response.Response)    {}
func (Nop) RequestFailed(context.Context, request.Operation, error)                    {}
func (Nop) CallbackReceived(context.Context, map[string]any)                           {}
func (Nop) CallbackValidated(context.Context, models.OrderStateInfo)                   {}
func (Nop) CallbackFailed(context.Context, string, error)                              {}

// Multi fans each event out to every sink in order.
type Multi []Sink

// Combine drops nil sinks and returns Nop when nothing is left.
func Combine(sinks ...Sink) Sink {
	out := make(Multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	}
	return out
}

func (m Multi) RequestSending(ctx context.Context, op request.Operation, endpoint string, payload map[string]any) {
	for _, s := range m {
		s.RequestSending(ctx, op, endpoint, payload)
	}
}

func (m Multi) ResponseReceived(ctx context.Context, op request.Operation, resp *response.Response) {
	for _, s := range m {
		s.ResponseReceived(ctx, op, resp)
	}
}

func (m Multi) RequestFailed(ctx context.Context, op request.Operation, err error) {
	for _, s := range m {
		s.RequestFailed(ctx, op, err)
	}
}

func (m Multi) CallbackReceived(ctx context.Context, payload map[string]any) {
	for _, s := range m {
		s.CallbackReceived(ctx, payload)
	}
}

func (m Multi) CallbackValidated(ctx context.Context, info models.OrderStateInfo) {
	for _, s := range m {
		s.CallbackValidated(ctx, info)
	}
}

func (m Multi) CallbackFailed(ctx context.Context, reason string, err error) {
	for _, s := range m {
		s.CallbackFailed(ctx, reason, err)
	}
}
