package models

// OrderState is the terminal/non-terminal state reported for an order.
type OrderState string

const (
	OrderStateSuccess   OrderState = "SUCCESS"
	OrderStateFail      OrderState = "FAIL"
	OrderStateInProcess OrderState = "IN_PROCESS"
)

// OrderStates lists the states accepted by callbacks.
var OrderStates = []string{string(OrderStateSuccess), string(OrderStateFail), string(OrderStateInProcess)}

// ParseOrderState returns false for anything outside the three known states.
func ParseOrderState(raw string) (OrderState, bool) {
	switch s := OrderState(raw); s {
	case OrderStateSuccess, OrderStateFail, OrderStateInProcess:
		return s, true
	}
	return "", false
}

// OrderSubState is an open set: new values appear remotely without notice.
type OrderSubState string

const (
	SubStateAdded                    OrderSubState = "ADDED"
	SubStateInternalInit             OrderSubState = "INTERNAL_INIT"
	SubStateInternalInitPreActivate  OrderSubState = "INTERNAL_INIT_PRE_ACTIVATE"
	SubStateInternalInitDebit        OrderSubState = "INTERNAL_INIT_DEBIT"
	SubStateTesting                  OrderSubState = "TESTING"
	SubStateInternalAdded            OrderSubState = "INTERNAL_ADDED"
	SubStateInternalChecked          OrderSubState = "INTERNAL_CHECKED"
	SubStateInternalWaitingForPDF    OrderSubState = "INTERNAL_WAITING_FOR_IBUS_PDFBOX"
	SubStateClientNotFound           OrderSubState = "CLIENT_NOT_FOUND"
	SubStateWrongClientAppVersion    OrderSubState = "WRONG_CLIENT_APP_VERSION"
	SubStateExceededSumLimit         OrderSubState = "EXCEEDED_SUM_LIMIT"
	SubStateAccountClosed            OrderSubState = "ACCOUNT_CLOSED"
	SubStatePayPartsAreNotAcceptable OrderSubState = "PAY_PARTS_ARE_NOT_ACCEPTABLE"
	SubStateClientConfirmTimeExpired OrderSubState = "CLIENT_CONFIRM_TIME_EXPIRED"
	SubStateWaitingForClient         OrderSubState = "WAITING_FOR_CLIENT"
	SubStateRejectedByClient         OrderSubState = "REJECTED_BY_CLIENT"
	SubStateRejectedByStore          OrderSubState = "REJECTED_BY_STORE"
	SubStateWaitingForStoreConfirm   OrderSubState = "WAITING_FOR_STORE_CONFIRM"
	SubStateSuccess                  OrderSubState = "SUCCESS"
)

var knownSubStates = map[OrderSubState]struct{}{
	SubStateAdded: {}, SubStateInternalInit: {}, SubStateInternalInitPreActivate: {},
	SubStateInternalInitDebit: {}, SubStateTesting: {}, SubStateInternalAdded: {},
	SubStateInternalChecked: {}, SubStateInternalWaitingForPDF: {}, SubStateClientNotFound: {},
	SubStateWrongClientAppVersion: {}, SubStateExceededSumLimit: {}, SubStateAccountClosed: {},
	SubStatePayPartsAreNotAcceptable: {}, SubStateClientConfirmTimeExpired: {},
	SubStateWaitingForClient: {}, SubStateRejectedByClient: {}, SubStateRejectedByStore: {},
	SubStateWaitingForStoreConfirm: {}, SubStateSuccess: {},
}

// ParseOrderSubState returns false for values outside the documented list.
func ParseOrderSubState(raw string) (OrderSubState, bool) {
	s := OrderSubState(raw)
	_, ok := knownSubStates[s]
	return s, ok
}

// ReturnStatus is OK or ERROR; anything else decodes as ERROR.
type ReturnStatus string

const (
	ReturnStatusOK    ReturnStatus = "OK"
	ReturnStatusError ReturnStatus = "ERROR"
)

// InvoiceSource is where the order was placed.
type InvoiceSource string

const (
	SourceStore    InvoiceSource = "STORE"
	SourceInternet InvoiceSource = "INTERNET"
	SourceCheckout InvoiceSource = "CHECKOUT"
)

// InvoiceSources lists the accepted create-order sources.
var InvoiceSources = []string{string(SourceStore), string(SourceInternet), string(SourceCheckout)}

// ProgramPaymentInstallments is the only program type the API accepts.
const ProgramPaymentInstallments = "payment_installments"
