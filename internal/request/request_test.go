package request

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/signer"
	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

const validOrderID = "123e4567-e89b-12d3-a456-426614174000"

func validOrder() Order {
	return Order{
		StoreOrderID: "A-100",
		ClientPhone:  "+380501234567",
		TotalSum:     decimal.RequireFromString("1500.50"),
		Invoice: Invoice{
			Date:   "2025-03-01",
			Number: "INV-1",
			Source: models.SourceInternet,
		},
		Programs: []Program{{AvailablePartsCount: []int{3, 6}, Type: models.ProgramPaymentInstallments}},
		Products: []Product{{Name: "Кавоварка", Count: 1, Sum: decimal.RequireFromString("1500.50")}},
	}
}

func validate(t *testing.T, d Descriptor) (map[string]any, map[string][]string) {
	t.Helper()
	out, err := validator.Validate(d.Payload(), d.Rules())
	if err == nil {
		return out, nil
	}
	var verr *apperr.PayloadValidationError
	require.True(t, errors.As(err, &verr))
	return nil, verr.Fields
}

func TestDescriptors_EndpointsAndFlags(t *testing.T) {
	amt := decimal.RequireFromString("100")
	tests := []struct {
		d        Descriptor
		op       Operation
		endpoint string
		store    bool
		broker   bool
	}{
		{NewCreateOrder(validOrder()), OpCreateOrder, "/api/order/create", true, false},
		{NewConfirmOrder(validOrderID), OpConfirmOrder, "/api/order/confirm", true, false},
		{NewRejectOrder(validOrderID), OpRejectOrder, "/api/order/reject", true, false},
		{NewReturnOrder(validOrderID, amt, true, "R-1", nil), OpReturnOrder, "/api/order/return", true, false},
		{NewCheckPaid(validOrderID), OpCheckPaid, "/api/order/check/paid", true, false},
		{NewOrderState(validOrderID), OpOrderState, "/api/order/state", true, false},
		{NewOrderData(validOrderID), OpOrderData, "/api/order/data", true, false},
		{NewStoreReport("2025-03-01"), OpStoreReport, "/api/store/report", true, false},
		{NewClientValidate("+380501234567"), OpClientValidate, "/api/v2/client/validate", true, false},
		{NewBrokerAvailability(amt, "e1", "1234567890", "o1", "+380501234567", ""), OpBrokerAvailability,
			"/api/fin/broker/check/installment/availability", false, true},
	}

	seen := map[Operation]bool{}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.op, tt.d.Operation())
			assert.Equal(t, tt.endpoint, tt.d.Endpoint())
			assert.Equal(t, tt.store, tt.d.RequiresStoreID())
			assert.Equal(t, tt.broker, tt.d.RequiresBrokerID())
			assert.Empty(t, tt.d.Headers())

			_, fields := validate(t, tt.d)
			assert.Nil(t, fields)
		})
		seen[tt.op] = true
	}
	assert.Len(t, seen, len(Operations()))
}

func TestCreateOrder_MissingProducts(t *testing.T) {
	o := validOrder()
	o.Products = nil

	_, fields := validate(t, NewCreateOrder(o))
	assert.Contains(t, fields, "products")
}

func TestCreateOrder_FieldErrors(t *testing.T) {
	o := validOrder()
	o.ClientPhone = "0501234567"
	o.TotalSum = decimal.RequireFromString("10.123")
	o.Invoice.Source = "PHONE"
	o.Programs = []Program{{AvailablePartsCount: []int{3, 0}, Type: "credit"}}
	o.Products = append(o.Products, Product{Name: "x", Count: 0, Sum: decimal.Zero})
	o.ResultCallback = "not a url"
	o.MerchantInfo = &MerchantInfo{IBANAccount: "PL123"}

	_, fields := validate(t, NewCreateOrder(o))

	for _, path := range []string{
		"client_phone",
		"total_sum",
		"invoice.source",
		"available_programs.0.available_parts_count.1",
		"available_programs.0.type",
		"products.1.count",
		"products.1.sum",
		"result_callback",
		"financial_company_merchant_info.iban_account",
	} {
		assert.Contains(t, fields, path)
	}
	assert.NotContains(t, fields, "products.0.sum")
}

func TestCreateOrder_PayloadShapeAndSigning(t *testing.T) {
	nds := decimal.RequireFromString("250.08")
	o := validOrder()
	o.AdditionalParams = &AdditionalParams{NDS: &nds}
	d := NewCreateOrder(o)

	out, fields := validate(t, d)
	require.Nil(t, fields)

	body, err := signer.Canonical(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"total_sum":1500.5`)
	assert.Contains(t, string(body), `"available_parts_count":[3,6]`)
	assert.Contains(t, string(body), `"additional_params":{"nds":250.08}`)
	assert.Contains(t, string(body), `"name":"Кавоварка"`)
}

func TestCreateOrder_IsImmutable(t *testing.T) {
	o := validOrder()
	d := NewCreateOrder(o)

	o.Products[0].Name = "changed"
	o.Programs[0].AvailablePartsCount[0] = 99

	products := d.Payload()["products"].([]any)
	assert.Equal(t, "Кавоварка", products[0].(map[string]any)["name"])
	programs := d.Payload()["available_programs"].([]any)
	assert.Equal(t, 3, programs[0].(map[string]any)["available_parts_count"].([]any)[0])
}

func TestOrderIDDescriptors_RejectBadIDs(t *testing.T) {
	for _, id := range []string{"", "not-a-uuid", uuid.NewString() + "0"} {
		_, fields := validate(t, NewCheckPaid(id))
		assert.Contains(t, fields, "order_id", id)
	}
	_, fields := validate(t, NewConfirmOrder(uuid.NewString()))
	assert.Nil(t, fields)
}

func TestReturnOrder(t *testing.T) {
	extra := map[string]any{"nds": 20}
	d := NewReturnOrder(validOrderID, decimal.RequireFromString("99.99"), false, "R-7", extra)
	extra["nds"] = "changed"

	out, fields := validate(t, d)
	require.Nil(t, fields)
	assert.Equal(t, false, out["return_money_to_card"])
	assert.Equal(t, map[string]any{"nds": 20}, out["additional_params"])

	bad := NewReturnOrder(validOrderID, decimal.RequireFromString("0"), true, "", nil)
	_, fields = validate(t, bad)
	assert.Contains(t, fields, "sum")
	assert.Contains(t, fields, "store_return_id")
}

func TestBrokerAvailability_Override(t *testing.T) {
	d := NewBrokerAvailability(decimal.RequireFromString("10"), "e", "i", "o", "+380501234567", "broker-x")
	assert.Equal(t, "broker-x", d.BrokerID())

	_, fields := validate(t, NewBrokerAvailability(decimal.Zero, "", "i", "o", "+1555", ""))
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "employeeID")
	assert.Contains(t, fields, "phone")
}

func TestStoreReportAndClientValidate(t *testing.T) {
	_, fields := validate(t, NewStoreReport("01.03.2025"))
	assert.Contains(t, fields, "date")

	out, fields := validate(t, NewClientValidate(""))
	require.Nil(t, fields)
	assert.Contains(t, out, "phone")
	assert.Nil(t, out["phone"])

	_, fields = validate(t, NewClientValidate("12345"))
	assert.Contains(t, fields, "phone")

	out, fields = validate(t, NewClientValidate("+380501234567"))
	require.Nil(t, fields)
	assert.Equal(t, "+380501234567", out["phone"])
}
