package request

import (
	"github.com/shopspring/decimal"

	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

// StoreReport fetches the daily settlement report for date (YYYY-MM-DD).
type StoreReport struct {
	defaults
	date string
}

func NewStoreReport(date string) StoreReport { return StoreReport{date: date} }

func (StoreReport) Operation() Operation { return OpStoreReport }
func (StoreReport) Endpoint() string     { return "/api/store/report" }

func (r StoreReport) Payload() map[string]any {
	return map[string]any{"date": r.date}
}

func (StoreReport) Rules() validator.Rules {
	return validator.Rules{validator.F("date").Require().DateYMD()}
}

// ClientValidate checks whether a phone belongs to an eligible client.
// An empty phone is sent as null.
type ClientValidate struct {
	defaults
	phone string
}

func NewClientValidate(phone string) ClientValidate { return ClientValidate{phone: phone} }

func (ClientValidate) Operation() Operation { return OpClientValidate }
func (ClientValidate) Endpoint() string     { return "/api/v2/client/validate" }

func (r ClientValidate) Payload() map[string]any {
	if r.phone == "" {
		return map[string]any{"phone": nil}
	}
	return map[string]any{"phone": r.phone}
}

func (ClientValidate) Rules() validator.Rules {
	return validator.Rules{validator.F("phone").Null().Str().Match(validator.Phone)}
}

// BrokerAvailability is the broker-side pre-check; it authenticates with the
// broker id instead of the store id.
type BrokerAvailability struct {
	amount     decimal.Decimal
	employeeID string
	inn        string
	outletID   string
	phone      string
	brokerID   string
}

// NewBrokerAvailability builds the check; brokerID may be empty to fall back
// to the configured broker id.
func NewBrokerAvailability(amt decimal.Decimal, employeeID, inn, outletID, phone, brokerID string) BrokerAvailability {
	return BrokerAvailability{
		amount:     amt,
		employeeID: employeeID,
		inn:        inn,
		outletID:   outletID,
		phone:      phone,
		brokerID:   brokerID,
	}
}

func (BrokerAvailability) Operation() Operation       { return OpBrokerAvailability }
func (BrokerAvailability) Endpoint() string           { return "/api/fin/broker/check/installment/availability" }
func (BrokerAvailability) RequiresStoreID() bool      { return false }
func (BrokerAvailability) RequiresBrokerID() bool     { return true }
func (r BrokerAvailability) BrokerID() string         { return r.brokerID }
func (BrokerAvailability) Headers() map[string]string { return nil }

func (r BrokerAvailability) Payload() map[string]any {
	return map[string]any{
		"amount":     amount(r.amount),
		"employeeID": r.employeeID,
		"inn":        r.inn,
		"outletID":   r.outletID,
		"phone":      r.phone,
	}
}

func (BrokerAvailability) Rules() validator.Rules {
	return validator.Rules{
		validator.F("amount").Require().Num().AtLeast(0.01),
		validator.F("employeeID").Require().Str().AtLeast(1),
		validator.F("inn").Require().Str().AtLeast(1),
		validator.F("outletID").Require().Str().AtLeast(1),
		validator.F("phone").Require().Str().Match(validator.Phone),
	}
}
