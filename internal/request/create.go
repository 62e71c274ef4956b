package request

import (
	"github.com/shopspring/decimal"

	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

// Invoice identifies the store document the installment is issued for.
// Date is YYYY-MM-DD; see validator.FormatDate.
type Invoice struct {
	Date    string
	Number  string
	PointID string
	Source  models.InvoiceSource
}

// Program offers the client a set of part counts for one program type.
type Program struct {
	AvailablePartsCount []int
	Type                string
}

// Product is one order line.
type Product struct {
	Name  string
	Count int
	Sum   decimal.Decimal
}

// MerchantInfo is required by the API only for marketplace-style stores.
type MerchantInfo struct {
	EDRPOUCode  string
	IBANAccount string
	StoreName   string
}

type AdditionalParams struct {
	NDS           *decimal.Decimal
	SellerPhone   string
	ExtInitialSum *decimal.Decimal
}

// Order is the caller-facing input of NewCreateOrder.
type Order struct {
	StoreOrderID     string
	ClientPhone      string
	TotalSum         decimal.Decimal
	Invoice          Invoice
	Programs         []Program
	Products         []Product
	ResultCallback   string
	MerchantInfo     *MerchantInfo
	AdditionalParams *AdditionalParams
}

// CreateOrder registers a new installment order. A repeated store order id
// is answered with 409, which resolves to a duplicate rather than an error.
type CreateOrder struct {
	defaults
	order Order
}

func NewCreateOrder(o Order) CreateOrder {
	c := o
	c.Programs = make([]Program, len(o.Programs))
	for i, p := range o.Programs {
		c.Programs[i] = Program{
			AvailablePartsCount: append([]int(nil), p.AvailablePartsCount...),
			Type:                p.Type,
		}
	}
	c.Products = append([]Product(nil), o.Products...)
	if o.MerchantInfo != nil {
		m := *o.MerchantInfo
		c.MerchantInfo = &m
	}
	if o.AdditionalParams != nil {
		a := *o.AdditionalParams
		c.AdditionalParams = &a
	}
	return CreateOrder{order: c}
}

func (CreateOrder) Operation() Operation { return OpCreateOrder }
func (CreateOrder) Endpoint() string     { return "/api/order/create" }

// StoreOrderID is the merchant-side idempotency key.
func (r CreateOrder) StoreOrderID() string { return r.order.StoreOrderID }

func (r CreateOrder) Payload() map[string]any {
	o := r.order
	p := map[string]any{
		"store_order_id": o.StoreOrderID,
		"client_phone":   o.ClientPhone,
		"total_sum":      amount(o.TotalSum),
	}

	invoice := map[string]any{
		"date":   o.Invoice.Date,
		"number": o.Invoice.Number,
		"source": string(o.Invoice.Source),
	}
	if o.Invoice.PointID != "" {
		invoice["point_id"] = o.Invoice.PointID
	}
	p["invoice"] = invoice

	if len(o.Programs) > 0 {
		programs := make([]any, 0, len(o.Programs))
		for _, pr := range o.Programs {
			counts := make([]any, 0, len(pr.AvailablePartsCount))
			for _, n := range pr.AvailablePartsCount {
				counts = append(counts, n)
			}
			programs = append(programs, map[string]any{
				"available_parts_count": counts,
				"type":                  pr.Type,
			})
		}
		p["available_programs"] = programs
	}

	if len(o.Products) > 0 {
		products := make([]any, 0, len(o.Products))
		for _, pr := range o.Products {
			products = append(products, map[string]any{
				"name":  pr.Name,
				"count": pr.Count,
				"sum":   amount(pr.Sum),
			})
		}
		p["products"] = products
	}

	if o.ResultCallback != "" {
		p["result_callback"] = o.ResultCallback
	}

	if m := o.MerchantInfo; m != nil {
		info := map[string]any{}
		putString(info, "edrpou_code", m.EDRPOUCode)
		putString(info, "iban_account", m.IBANAccount)
		putString(info, "store_name", m.StoreName)
		p["financial_company_merchant_info"] = info
	}

	if a := o.AdditionalParams; a != nil {
		params := map[string]any{}
		if a.NDS != nil {
			params["nds"] = amount(*a.NDS)
		}
		putString(params, "seller_phone", a.SellerPhone)
		if a.ExtInitialSum != nil {
			params["ext_initial_sum"] = amount(*a.ExtInitialSum)
		}
		p["additional_params"] = params
	}
	return p
}

func (CreateOrder) Rules() validator.Rules {
	return validator.Rules{
		validator.F("store_order_id").Require().Str().Between(1, 64),
		validator.F("client_phone").Require().Str().Match(validator.Phone),
		moneyRule("total_sum", 1),
		validator.F("invoice").Require().Obj(),
		validator.F("invoice.date").Require().DateYMD(),
		validator.F("invoice.number").Require().Str().AtLeast(1),
		validator.F("invoice.point_id").Null().Str().Between(1, 50),
		validator.F("invoice.source").Require().In(models.InvoiceSources...),
		validator.F("available_programs").Require().Array().AtLeast(1),
		validator.F("available_programs.*.available_parts_count").Require().Array().AtLeast(1),
		validator.F("available_programs.*.available_parts_count.*").Int().AtLeast(1),
		validator.F("available_programs.*.type").Require().Str().Match(validator.PaymentInstallments),
		validator.F("products").Require().Array().AtLeast(1),
		validator.F("products.*.name").Require().Str().Between(1, 500),
		validator.F("products.*.count").Require().Int().AtLeast(1),
		moneyRule("products.*.sum", 0.01),
		validator.F("result_callback").Null().Link(),
		validator.F("financial_company_merchant_info").Null().Obj(),
		validator.F("financial_company_merchant_info.edrpou_code").Null().Str().Match(validator.Digits),
		validator.F("financial_company_merchant_info.iban_account").Null().Str().Match(validator.IBAN),
		validator.F("financial_company_merchant_info.store_name").Null().Str(),
		validator.F("additional_params").Null().Obj(),
		validator.F("additional_params.nds").Null().Num(),
		validator.F("additional_params.seller_phone").Null().Str().Match(validator.Phone),
		validator.F("additional_params.ext_initial_sum").Null().Num(),
	}
}

func putString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
