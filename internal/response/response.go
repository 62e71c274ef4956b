// Package response builds the normalized envelope returned by every exchange.
package response

import (
	"maps"
	"net/http"

	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/request"
	"github.com/juancollazo-ch/monoparts-service/internal/status"
)

var mappers = map[request.Operation]func(map[string]any) models.Result{
	request.OpCreateOrder:        func(raw map[string]any) models.Result { return models.DecodeCreateOrder(raw) },
	request.OpConfirmOrder:       func(raw map[string]any) models.Result { return models.DecodeOrderState(raw) },
	request.OpRejectOrder:        func(raw map[string]any) models.Result { return models.DecodeOrderState(raw) },
	request.OpReturnOrder:        func(raw map[string]any) models.Result { return models.DecodeReturn(raw) },
	request.OpCheckPaid:          func(raw map[string]any) models.Result { return models.DecodeCheckPaid(raw) },
	request.OpOrderState:         func(raw map[string]any) models.Result { return models.DecodeOrderState(raw) },
	request.OpOrderData:          func(raw map[string]any) models.Result { return models.DecodeOrderShortInfo(raw) },
	request.OpStoreReport:        func(raw map[string]any) models.Result { return models.DecodeDailyReport(raw) },
	request.OpClientValidate:     func(raw map[string]any) models.Result { return models.DecodeValidateClient(raw) },
	request.OpBrokerAvailability: func(raw map[string]any) models.Result { return models.DecodeAvailability(raw) },
}

// Map decodes raw into the typed result for op. A nil raw body decodes to
// the zero result; an operation without a mapper returns nil.
func Map(op request.Operation, raw map[string]any) models.Result {
	decode, ok := mappers[op]
	if !ok {
		return nil
	}
	return decode(raw)
}

// Response is immutable once built.
type Response struct {
	status     status.Status
	httpStatus int
	raw        map[string]any
	data       models.Result
	headers    http.Header
}

// New maps raw for op, resolves the business status and freezes the result.
func New(op request.Operation, httpStatus int, raw map[string]any, headers http.Header) *Response {
	data := Map(op, raw)
	return &Response{
		status:     status.Resolve(data, httpStatus),
		httpStatus: httpStatus,
		raw:        raw,
		data:       data,
		headers:    headers.Clone(),
	}
}

func (r *Response) Status() status.Status { return r.status }
func (r *Response) HTTPStatus() int       { return r.httpStatus }
func (r *Response) Data() models.Result   { return r.data }
func (r *Response) Successful() bool      { return r.status.Successful() }

// Raw returns a shallow copy of the decoded body, nil when the body was not a
// JSON object.
func (r *Response) Raw() map[string]any {
	if r.raw == nil {
		return nil
	}
	return maps.Clone(r.raw)
}

func (r *Response) Headers() http.Header { return r.headers.Clone() }
