// Package status holds the business-level outcome attached to every
// response envelope.
package status

// Status is a closed set; the values are stable wire/log identifiers.
type Status string

const (
	OrderSuccess   Status = "order_success"
	OrderFail      Status = "order_fail"
	OrderInProcess Status = "order_in_process"
	OrderCreated   Status = "order_created"
	OrderDuplicate Status = "order_duplicate"

	ReturnOK    Status = "return_ok"
	ReturnError Status = "return_error"

	CheckPaidYes Status = "check_paid_yes"
	CheckPaidNo  Status = "check_paid_no"

	Available    Status = "available"
	NotAvailable Status = "not_available"

	ClientFound    Status = "client_found"
	ClientNotFound Status = "client_not_found"

	SuccessHTTP     Status = "success_http"
	ClientErrorHTTP Status = "client_error_http"
	ServerErrorHTTP Status = "server_error_http"
)

// All lists every status in declaration order.
var All = []Status{
	OrderSuccess, OrderFail, OrderInProcess, OrderCreated, OrderDuplicate,
	ReturnOK, ReturnError,
	CheckPaidYes, CheckPaidNo,
	Available, NotAvailable,
	ClientFound, ClientNotFound,
	SuccessHTTP, ClientErrorHTTP, ServerErrorHTTP,
}

// Successful reports whether the status is a positive outcome.
func (s Status) Successful() bool {
	switch s {
	case OrderSuccess, OrderCreated, OrderDuplicate, OrderInProcess,
		ReturnOK, CheckPaidYes, Available, ClientFound, SuccessHTTP:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Source is implemented by every typed result. ok=false defers to the HTTP
// class fallback.
type Source interface {
	BusinessStatus(httpStatus int) (Status, bool)
}

// Resolve gives domain-derived statuses priority over the HTTP class.
func Resolve(src Source, httpStatus int) Status {
	if src != nil {
		if s, ok := src.BusinessStatus(httpStatus); ok {
			return s
		}
	}
	return FromHTTP(httpStatus)
}

// FromHTTP maps 2xx/4xx/other to the generic statuses.
func FromHTTP(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return SuccessHTTP
	case code >= 400 && code < 500:
		return ClientErrorHTTP
	default:
		return ServerErrorHTTP
	}
}
