// Package request describes every outbound operation: endpoint, payload,
// validation rules and which merchant headers it needs.
package request

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

// Operation tags a descriptor so the response mapper can dispatch on it
// without inspecting concrete types.
type Operation int

const (
	OpCreateOrder Operation = iota + 1
	OpConfirmOrder
	OpRejectOrder
	OpReturnOrder
	OpCheckPaid
	OpOrderState
	OpOrderData
	OpStoreReport
	OpClientValidate
	OpBrokerAvailability
)

var operationNames = map[Operation]string{
	OpCreateOrder:        "create-order",
	OpConfirmOrder:       "confirm-order",
	OpRejectOrder:        "reject-order",
	OpReturnOrder:        "return-order",
	OpCheckPaid:          "check-paid",
	OpOrderState:         "order-state",
	OpOrderData:          "order-data",
	OpStoreReport:        "store-report",
	OpClientValidate:     "client-validate",
	OpBrokerAvailability: "broker-availability",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "unknown"
}

// Operations lists every operation in declaration order.
func Operations() []Operation {
	return []Operation{
		OpCreateOrder, OpConfirmOrder, OpRejectOrder, OpReturnOrder, OpCheckPaid,
		OpOrderState, OpOrderData, OpStoreReport, OpClientValidate, OpBrokerAvailability,
	}
}

// Descriptor is the shared contract of all operation value types.
type Descriptor interface {
	Operation() Operation
	Endpoint() string
	// Payload uses the remote API's field names. Each call returns a fresh map.
	Payload() map[string]any
	Rules() validator.Rules
	RequiresStoreID() bool
	RequiresBrokerID() bool
	// BrokerID overrides the configured broker id when non-empty.
	BrokerID() string
	Headers() map[string]string
}

// defaults is embedded by descriptors that need a store id and nothing else.
type defaults struct{}

func (defaults) RequiresStoreID() bool      { return true }
func (defaults) RequiresBrokerID() bool     { return false }
func (defaults) BrokerID() string           { return "" }
func (defaults) Headers() map[string]string { return nil }

// amount renders money as a bare JSON number without rounding, so values
// with more than two fractional digits reach the validator unchanged.
func amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func orderIDRule() validator.Field {
	return validator.F("order_id").Require().Str().Between(1, 100).Match(validator.UUID)
}

func moneyRule(path string, min float64) validator.Field {
	return validator.F(path).Require().Num().AtLeast(min).Match(validator.Money)
}

var (
	_ Descriptor = CreateOrder{}
	_ Descriptor = ConfirmOrder{}
	_ Descriptor = RejectOrder{}
	_ Descriptor = ReturnOrder{}
	_ Descriptor = CheckPaid{}
	_ Descriptor = OrderState{}
	_ Descriptor = OrderData{}
	_ Descriptor = StoreReport{}
	_ Descriptor = ClientValidate{}
	_ Descriptor = BrokerAvailability{}
)
