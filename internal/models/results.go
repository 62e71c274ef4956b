package models

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/juancollazo-ch/monoparts-service/internal/status"
)

// Result is the typed body of one exchange. Implementations decide their
// business status or defer to the HTTP class by returning ok=false.
type Result interface {
	status.Source
}

// CheckPaidResult is the body of /api/order/check/paid.
type CheckPaidResult struct {
	FullyPaid                bool `json:"fully_paid"`
	BankCanReturnMoneyToCard bool `json:"bank_can_return_money_to_card"`
}

func DecodeCheckPaid(raw map[string]any) CheckPaidResult {
	return CheckPaidResult{
		FullyPaid:                boolean(raw, "fully_paid"),
		BankCanReturnMoneyToCard: boolean(raw, "bank_can_return_money_to_card"),
	}
}

func (r CheckPaidResult) BusinessStatus(int) (status.Status, bool) {
	if r.FullyPaid {
		return status.CheckPaidYes, true
	}
	return status.CheckPaidNo, true
}

// CreateOrderResult carries the remote order id. A 409 means the store
// order id was already submitted.
type CreateOrderResult struct {
	OrderID *string `json:"order_id"`
}

func DecodeCreateOrder(raw map[string]any) CreateOrderResult {
	return CreateOrderResult{OrderID: str(raw, "order_id")}
}

func (r CreateOrderResult) BusinessStatus(httpStatus int) (status.Status, bool) {
	if httpStatus == http.StatusConflict {
		return status.OrderDuplicate, true
	}
	return status.OrderCreated, true
}

// OrderStateInfo is shared by /api/order/state and the callback body.
// RawState and RawSubState keep the received strings even when they are
// not known enum members.
type OrderStateInfo struct {
	OrderID     *string        `json:"order_id"`
	State       *OrderState    `json:"state"`
	SubState    *OrderSubState `json:"order_sub_state"`
	Message     *string        `json:"message"`
	RawState    *string        `json:"raw_state,omitempty"`
	RawSubState *string        `json:"raw_order_sub_state,omitempty"`
}

func DecodeOrderState(raw map[string]any) OrderStateInfo {
	info := OrderStateInfo{
		OrderID:     str(raw, "order_id"),
		Message:     str(raw, "message"),
		RawState:    str(raw, "state"),
		RawSubState: str(raw, "order_sub_state"),
	}
	if info.RawState != nil {
		if s, ok := ParseOrderState(*info.RawState); ok {
			info.State = &s
		}
	}
	if info.RawSubState != nil {
		if s, ok := ParseOrderSubState(*info.RawSubState); ok {
			info.SubState = &s
		}
	}
	return info
}

func (r OrderStateInfo) BusinessStatus(int) (status.Status, bool) {
	if r.State == nil {
		return "", false
	}
	switch *r.State {
	case OrderStateSuccess:
		return status.OrderSuccess, true
	case OrderStateFail:
		return status.OrderFail, true
	case OrderStateInProcess:
		return status.OrderInProcess, true
	}
	return "", false
}

// ReverseEntry is one past return on an order.
type ReverseEntry struct {
	Sum       decimal.NullDecimal `json:"sum"`
	Timestamp *time.Time          `json:"timestamp"`
}

// OrderShortInfo is the body of /api/order/data.
type OrderShortInfo struct {
	CreateTimestamp *time.Time          `json:"create_timestamp"`
	IBAN            *string             `json:"iban"`
	InvoiceDate     *string             `json:"invoice_date"`
	InvoiceNumber   *string             `json:"invoice_number"`
	MaskedCard      *string             `json:"masked_card"`
	PointID         *string             `json:"point_id"`
	ReverseList     []ReverseEntry      `json:"reverse_list"`
	Source          *string             `json:"source"`
	StoreOrderID    *string             `json:"store_order_id"`
	TotalSum        decimal.NullDecimal `json:"total_sum"`
}

func DecodeOrderShortInfo(raw map[string]any) OrderShortInfo {
	entries := objects(raw, "reverse_list")
	reverse := make([]ReverseEntry, 0, len(entries))
	for _, e := range entries {
		reverse = append(reverse, ReverseEntry{
			Sum:       money(e, "sum"),
			Timestamp: timestamp(e, "timestamp"),
		})
	}

	return OrderShortInfo{
		CreateTimestamp: timestamp(raw, "create_timestamp"),
		IBAN:            str(raw, "iban"),
		InvoiceDate:     str(raw, "invoice_date"),
		InvoiceNumber:   str(raw, "invoice_number"),
		MaskedCard:      str(raw, "maskedCard"),
		PointID:         str(raw, "point_id"),
		ReverseList:     reverse,
		Source:          str(raw, "source"),
		StoreOrderID:    str(raw, "store_order_id"),
		TotalSum:        money(raw, "total_sum"),
	}
}

func (OrderShortInfo) BusinessStatus(int) (status.Status, bool) { return "", false }

// ReturnResponse is the body of /api/order/return.
type ReturnResponse struct {
	Status    ReturnStatus `json:"status"`
	RawStatus *string      `json:"raw_status,omitempty"`
}

func DecodeReturn(raw map[string]any) ReturnResponse {
	r := ReturnResponse{Status: ReturnStatusError, RawStatus: str(raw, "status")}
	if r.RawStatus != nil && ReturnStatus(*r.RawStatus) == ReturnStatusOK {
		r.Status = ReturnStatusOK
	}
	return r
}

func (r ReturnResponse) BusinessStatus(int) (status.Status, bool) {
	if r.Status == ReturnStatusOK {
		return status.ReturnOK, true
	}
	return status.ReturnError, true
}

// DailyReportOrder is one order line of /api/store/report.
type DailyReportOrder struct {
	CardNumber         *string             `json:"card_number"`
	Commission         decimal.NullDecimal `json:"commission"`
	CommissionPercent  decimal.NullDecimal `json:"commission_percent"`
	CreateDateTime     *time.Time          `json:"create_date_time"`
	CreditSum          decimal.NullDecimal `json:"credit_sum"`
	InvoiceNumber      *string             `json:"invoice_number"`
	ODBContractNumber  *string             `json:"odb_contract_number"`
	OperationTimestamp *time.Time          `json:"operation_timestamp"`
	OrderDate          *string             `json:"order_date"`
	OrderID            *string             `json:"order_id"`
	PayParts           *int                `json:"pay_parts"`
	PaymentDate        *string             `json:"payment_date"`
	SentSum            decimal.NullDecimal `json:"sent_sum"`
	TerminalID         *string             `json:"terminal_id"`
	TotalSum           decimal.NullDecimal `json:"total_sum"`
	TransactionDate    *string             `json:"transaction_date"`
	TransactionID      *string             `json:"transaction_id"`
	TransferredSum     decimal.NullDecimal `json:"transferred_sum"`
}

// DailyReport is the body of /api/store/report.
type DailyReport struct {
	Orders []DailyReportOrder `json:"orders"`
}

func DecodeDailyReport(raw map[string]any) DailyReport {
	entries := objects(raw, "orders")
	orders := make([]DailyReportOrder, 0, len(entries))
	for _, o := range entries {
		orders = append(orders, DailyReportOrder{
			CardNumber:         str(o, "card_number"),
			Commission:         money(o, "commission"),
			CommissionPercent:  money(o, "commission_percent"),
			CreateDateTime:     timestamp(o, "create_date_time"),
			CreditSum:          money(o, "credit_sum"),
			InvoiceNumber:      str(o, "invoice_number"),
			ODBContractNumber:  str(o, "odb_contract_number"),
			OperationTimestamp: timestamp(o, "operation_timestamp"),
			OrderDate:          str(o, "order_date"),
			OrderID:            str(o, "order_id"),
			PayParts:           integer(o, "pay_parts"),
			PaymentDate:        str(o, "payment_date"),
			SentSum:            money(o, "sent_sum"),
			TerminalID:         str(o, "terminal_id"),
			TotalSum:           money(o, "total_sum"),
			TransactionDate:    str(o, "transaction_date"),
			TransactionID:      str(o, "transaction_id"),
			TransferredSum:     money(o, "transferred_sum"),
		})
	}
	return DailyReport{Orders: orders}
}

func (DailyReport) BusinessStatus(int) (status.Status, bool) { return "", false }

// ValidateClientResponse is the body of /api/v2/client/validate.
type ValidateClientResponse struct {
	Found bool `json:"found"`
}

func DecodeValidateClient(raw map[string]any) ValidateClientResponse {
	return ValidateClientResponse{Found: boolean(raw, "found")}
}

func (r ValidateClientResponse) BusinessStatus(int) (status.Status, bool) {
	if r.Found {
		return status.ClientFound, true
	}
	return status.ClientNotFound, true
}

// InstallmentAvailability is the body of the broker availability check.
type InstallmentAvailability struct {
	Available bool `json:"available"`
}

func DecodeAvailability(raw map[string]any) InstallmentAvailability {
	return InstallmentAvailability{Available: boolean(raw, "available")}
}

func (r InstallmentAvailability) BusinessStatus(int) (status.Status, bool) {
	if r.Available {
		return status.Available, true
	}
	return status.NotAvailable, true
}

// ExceptionResponse is the normalized error body: {"message": "..."}.
type ExceptionResponse struct {
	Message *string `json:"message"`
}

func DecodeException(raw map[string]any) ExceptionResponse {
	return ExceptionResponse{Message: str(raw, "message")}
}

func (ExceptionResponse) BusinessStatus(int) (status.Status, bool) { return "", false }
