package request

import (
	"maps"

	"github.com/shopspring/decimal"

	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

// orderIDRequest is the shared shape of operations addressed by order id.
type orderIDRequest struct {
	defaults
	orderID string
}

func (r orderIDRequest) OrderID() string { return r.orderID }

func (r orderIDRequest) Payload() map[string]any {
	return map[string]any{"order_id": r.orderID}
}

func (orderIDRequest) Rules() validator.Rules {
	return validator.Rules{orderIDRule()}
}

// ConfirmOrder confirms shipment of an order the client already accepted.
type ConfirmOrder struct{ orderIDRequest }

func NewConfirmOrder(orderID string) ConfirmOrder {
	return ConfirmOrder{orderIDRequest{orderID: orderID}}
}

func (ConfirmOrder) Operation() Operation { return OpConfirmOrder }
func (ConfirmOrder) Endpoint() string     { return "/api/order/confirm" }

// RejectOrder cancels an order on the store side.
type RejectOrder struct{ orderIDRequest }

func NewRejectOrder(orderID string) RejectOrder {
	return RejectOrder{orderIDRequest{orderID: orderID}}
}

func (RejectOrder) Operation() Operation { return OpRejectOrder }
func (RejectOrder) Endpoint() string     { return "/api/order/reject" }

// CheckPaid asks whether the bank has fully paid the order out.
type CheckPaid struct{ orderIDRequest }

func NewCheckPaid(orderID string) CheckPaid {
	return CheckPaid{orderIDRequest{orderID: orderID}}
}

func (CheckPaid) Operation() Operation { return OpCheckPaid }
func (CheckPaid) Endpoint() string     { return "/api/order/check/paid" }

// OrderState fetches the current state and sub-state.
type OrderState struct{ orderIDRequest }

func NewOrderState(orderID string) OrderState {
	return OrderState{orderIDRequest{orderID: orderID}}
}

func (OrderState) Operation() Operation { return OpOrderState }
func (OrderState) Endpoint() string     { return "/api/order/state" }

// OrderData fetches invoice details and the return history.
type OrderData struct{ orderIDRequest }

func NewOrderData(orderID string) OrderData {
	return OrderData{orderIDRequest{orderID: orderID}}
}

func (OrderData) Operation() Operation { return OpOrderData }
func (OrderData) Endpoint() string     { return "/api/order/data" }

// ReturnOrder returns part or all of an order's sum.
type ReturnOrder struct {
	orderIDRequest
	sum               decimal.Decimal
	returnMoneyToCard bool
	storeReturnID     string
	additional        map[string]any
}

// NewReturnOrder copies additional so later changes by the caller are not seen.
func NewReturnOrder(orderID string, sum decimal.Decimal, returnMoneyToCard bool, storeReturnID string, additional map[string]any) ReturnOrder {
	return ReturnOrder{
		orderIDRequest:    orderIDRequest{orderID: orderID},
		sum:               sum,
		returnMoneyToCard: returnMoneyToCard,
		storeReturnID:     storeReturnID,
		additional:        maps.Clone(additional),
	}
}

func (ReturnOrder) Operation() Operation { return OpReturnOrder }
func (ReturnOrder) Endpoint() string     { return "/api/order/return" }

func (r ReturnOrder) Payload() map[string]any {
	p := r.orderIDRequest.Payload()
	p["return_money_to_card"] = r.returnMoneyToCard
	p["store_return_id"] = r.storeReturnID
	p["sum"] = amount(r.sum)
	if len(r.additional) > 0 {
		p["additional_params"] = maps.Clone(r.additional)
	}
	return p
}

func (r ReturnOrder) Rules() validator.Rules {
	return append(r.orderIDRequest.Rules(),
		validator.F("return_money_to_card").Require().Bool(),
		validator.F("store_return_id").Require().Str().AtLeast(1),
		moneyRule("sum", 0.01),
		validator.F("additional_params").Null().Obj(),
		validator.F("additional_params.nds").Null().Num(),
	)
}
