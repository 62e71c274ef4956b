// Package callback verifies and decodes the asynchronous order-state
// notifications pushed by the installment API.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/events"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/signer"
	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

type Kind int

const (
	Accepted Kind = iota
	SignatureRejected
	PayloadInvalid
	InternalError
)

func (k Kind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case SignatureRejected:
		return "signature_rejected"
	case PayloadInvalid:
		return "payload_invalid"
	case InternalError:
		return "internal_error"
	}
	return "unknown"
}

// Outcome is the result of processing one callback. StateInfo is set only
// for Accepted, Errors only for PayloadInvalid.
type Outcome struct {
	Kind      Kind
	StateInfo models.OrderStateInfo
	Errors    map[string][]string
	Err       error
}

// ErrSignature is carried by SignatureRejected outcomes.
var ErrSignature = errors.New("invalid callback signature")

// Rules is the shape every callback body must satisfy.
func Rules() validator.Rules {
	return validator.Rules{
		validator.F("order_id").Require().Str().Match(validator.UUID),
		validator.F("state").Require().Str().In(models.OrderStates...),
		validator.F("order_sub_state").Null().Str().Match(validator.SubState),
		validator.F("message").Null().Str(),
	}
}

type Processor struct {
	signer signer.Signer
	sink   events.Sink
	logger *zap.Logger
}

type Option func(*Processor)

func WithSink(s events.Sink) Option { return func(p *Processor) { p.sink = s } }

func WithLogger(l *zap.Logger) Option { return func(p *Processor) { p.logger = l } }

func NewProcessor(s signer.Signer, opts ...Option) *Processor {
	p := &Processor{signer: s}
	for _, opt := range opts {
		opt(p)
	}
	if p.sink == nil {
		p.sink = events.Nop{}
	}
	p.logger = logging.OrNop(p.logger)
	return p
}

// Process never panics and never returns an error; every failure is an
// Outcome. The signature is checked before the payload shape.
func (p *Processor) Process(ctx context.Context, body []byte, signature string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Kind: InternalError, Err: fmt.Errorf("callback processing panicked: %v", r)}
			func() {
				defer func() { _ = recover() }()
				p.fail(ctx, out)
			}()
		}
	}()

	payload := decodeBody(body)
	p.sink.CallbackReceived(ctx, payload)

	if !p.verify(body, payload, signature) {
		return p.fail(ctx, Outcome{Kind: SignatureRejected, Err: ErrSignature})
	}

	if _, err := validator.Validate(payload, Rules()); err != nil {
		var verr *apperr.PayloadValidationError
		if errors.As(err, &verr) {
			return p.fail(ctx, Outcome{Kind: PayloadInvalid, Errors: verr.Fields, Err: verr})
		}
		return p.fail(ctx, Outcome{Kind: InternalError, Err: err})
	}

	info := models.DecodeOrderState(payload)
	p.sink.CallbackValidated(ctx, info)

	fields := logging.FieldsFromContext(ctx)
	if info.OrderID != nil {
		fields = append(fields, zap.String("order_id", *info.OrderID))
	}
	if info.RawState != nil {
		fields = append(fields, zap.String("state", *info.RawState))
	}
	p.logger.Info("monoparts.callback.accepted", fields...)

	return Outcome{Kind: Accepted, StateInfo: info}
}

// verify checks the signature over the received body with its key order
// intact, then over the Canonical form for senders that sign sorted keys.
func (p *Processor) verify(body []byte, payload map[string]any, signature string) bool {
	if signature == "" || p.signer == nil {
		return false
	}
	if raw, err := signer.Compact(body); err == nil && p.signer.VerifyBytes(raw, signature) {
		return true
	}
	return p.signer.Verify(payload, signature)
}

func (p *Processor) fail(ctx context.Context, out Outcome) Outcome {
	p.sink.CallbackFailed(ctx, out.Kind.String(), out.Err)

	fields := append(logging.FieldsFromContext(ctx), zap.String("reason", out.Kind.String()))
	switch out.Kind {
	case SignatureRejected:
		p.logger.Warn("monoparts.callback.rejected", fields...)
	case PayloadInvalid:
		p.logger.Warn("monoparts.callback.invalid_payload", append(fields, zap.Int("fields", len(out.Errors)))...)
	default:
		p.logger.Error("monoparts.callback.failed", append(fields, zap.Error(out.Err))...)
	}
	return out
}

// decodeBody treats anything but a JSON object as an empty payload.
func decodeBody(body []byte) map[string]any {
	payload := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return payload
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil || m == nil {
		return payload
	}
	return m
}
