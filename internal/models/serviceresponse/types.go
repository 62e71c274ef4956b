// internal/models/serviceresponse/types.go
package serviceresponse

// Fixed reply messages for the callback endpoint.
const (
	MessageOK               = "ok"
	MessageInvalidSignature = "Invalid callback signature."
	MessageInvalidPayload   = "Payload validation failed."
	MessageError            = "error"
)

// CallbackReply is the JSON body returned to the callback sender.
type CallbackReply struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// HealthReply is returned by GET /health.
type HealthReply struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Callbacks   bool   `json:"callbacks_enabled"`
}
