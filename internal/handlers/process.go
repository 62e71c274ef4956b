package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/callback"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models/serviceresponse"
)

// maxCallbackBody caps the bytes read from a callback request.
const maxCallbackBody = 1 << 20

// Processor is satisfied by *callback.Processor.
type Processor interface {
	Process(ctx context.Context, body []byte, signature string) callback.Outcome
}

type CallbackHandler struct {
	processor       Processor
	signatureHeader string
}

func NewCallbackHandler(p Processor, signatureHeader string) *CallbackHandler {
	if signatureHeader == "" {
		signatureHeader = "signature"
	}
	return &CallbackHandler{processor: p, signatureHeader: signatureHeader}
}

// ServeHTTP maps the outcome to 200, 403, 400 or 500.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBody))
	if err != nil {
		zap.L().Warn("monoparts.callback.unreadable_body", append(logging.FieldsFromContext(r.Context()), zap.Error(err))...)
		writeJSON(w, http.StatusBadRequest, serviceresponse.CallbackReply{Message: serviceresponse.MessageInvalidPayload})
		return
	}

	out := h.processor.Process(r.Context(), body, r.Header.Get(h.signatureHeader))

	switch out.Kind {
	case callback.Accepted:
		writeJSON(w, http.StatusOK, serviceresponse.CallbackReply{Message: serviceresponse.MessageOK})
	case callback.SignatureRejected:
		writeJSON(w, http.StatusForbidden, serviceresponse.CallbackReply{Message: serviceresponse.MessageInvalidSignature})
	case callback.PayloadInvalid:
		writeJSON(w, http.StatusBadRequest, serviceresponse.CallbackReply{
			Message: serviceresponse.MessageInvalidPayload,
			Errors:  out.Errors,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, serviceresponse.CallbackReply{Message: serviceresponse.MessageError})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("error writing response", zap.Error(err))
	}
}
