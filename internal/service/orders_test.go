package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/request"
	"github.com/juancollazo-ch/monoparts-service/internal/response"
	"github.com/juancollazo-ch/monoparts-service/internal/status"
)

type fakeExchanger struct {
	mu      sync.Mutex
	seen    []request.Descriptor
	reply   func(d request.Descriptor) (int, map[string]any, error)
	opNames []string
}

func (f *fakeExchanger) Send(ctx context.Context, d request.Descriptor) (*response.Response, error) {
	f.mu.Lock()
	f.seen = append(f.seen, d)
	for _, fl := range logging.FieldsFromContext(ctx) {
		if fl.Key == "operation" {
			f.opNames = append(f.opNames, fl.String)
		}
	}
	f.mu.Unlock()

	code, raw, err := f.reply(d)
	if err != nil {
		return nil, err
	}
	return response.New(d.Operation(), code, raw, nil), nil
}

func TestOrders_TypedResults(t *testing.T) {
	fake := &fakeExchanger{reply: func(d request.Descriptor) (int, map[string]any, error) {
		switch d.Operation() {
		case request.OpCheckPaid:
			return http.StatusOK, map[string]any{"fully_paid": true}, nil
		case request.OpOrderState, request.OpConfirmOrder, request.OpRejectOrder:
			return http.StatusOK, map[string]any{"order_id": "o-1", "state": "FAIL", "order_sub_state": "REJECTED_BY_STORE"}, nil
		case request.OpReturnOrder:
			return http.StatusOK, map[string]any{"status": "OK"}, nil
		case request.OpClientValidate:
			return http.StatusOK, map[string]any{"found": false}, nil
		case request.OpBrokerAvailability:
			return http.StatusOK, map[string]any{"available": true}, nil
		}
		return http.StatusOK, map[string]any{}, nil
	}}
	svc := NewOrders(fake, nil)
	ctx := context.Background()

	paid, err := svc.CheckPaid(ctx, "o-1")
	require.NoError(t, err)
	assert.True(t, paid.Data.FullyPaid)
	assert.Equal(t, status.CheckPaidYes, paid.Response.Status())

	state, err := svc.OrderState(ctx, "o-1")
	require.NoError(t, err)
	require.NotNil(t, state.Data.State)
	assert.Equal(t, models.OrderStateFail, *state.Data.State)
	assert.Equal(t, status.OrderFail, state.Response.Status())

	_, err = svc.ConfirmOrder(ctx, "o-1")
	require.NoError(t, err)
	_, err = svc.RejectOrder(ctx, "o-1")
	require.NoError(t, err)

	ret, err := svc.ReturnOrder(ctx, "o-1", decimal.RequireFromString("10.5"), true, "R-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnStatusOK, ret.Data.Status)

	client, err := svc.ValidateClient(ctx, "+380501234567")
	require.NoError(t, err)
	assert.Equal(t, status.ClientNotFound, client.Response.Status())

	avail, err := svc.BrokerAvailability(ctx, decimal.RequireFromString("100"), "E", "I", "O", "+380501234567", "")
	require.NoError(t, err)
	assert.True(t, avail.Data.Available)

	report, err := svc.StoreReport(ctx, "2025-03-01")
	require.NoError(t, err)
	assert.Empty(t, report.Data.Orders)

	data, err := svc.OrderData(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, status.SuccessHTTP, data.Response.Status())

	assert.Contains(t, fake.opNames, "check-paid")
	assert.Contains(t, fake.opNames, "broker-availability")
}

func TestOrders_PropagatesErrors(t *testing.T) {
	want := &apperr.APIResponseError{StatusCode: http.StatusBadRequest, Message: "bad"}
	fake := &fakeExchanger{reply: func(request.Descriptor) (int, map[string]any, error) {
		return 0, nil, want
	}}
	svc := NewOrders(fake, nil)

	_, err := svc.CreateOrder(context.Background(), request.Order{StoreOrderID: "A-1"})
	assert.True(t, errors.Is(err, want))
}

func TestOrders_CheckPaidBatch(t *testing.T) {
	fake := &fakeExchanger{reply: func(d request.Descriptor) (int, map[string]any, error) {
		id := d.Payload()["order_id"]
		switch id {
		case "paid":
			return http.StatusOK, map[string]any{"fully_paid": true}, nil
		case "broken":
			return 0, nil, apperr.NewTransportError("Failed to call Monobank API", errors.New("connection refused"))
		}
		return http.StatusOK, map[string]any{"fully_paid": false}, nil
	}}
	svc := NewOrders(fake, nil)

	res, err := svc.CheckPaidBatch(context.Background(), []string{"paid", "unpaid", "broken", "paid"})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Paid)
	assert.Equal(t, 1, res.Unpaid)
	assert.Equal(t, 1, res.Failed)
	assert.Contains(t, res.Errors["broken"], "connection refused")
	require.Len(t, res.Details, 3)
	assert.Equal(t, "paid", res.Details[0].OrderID)
	assert.Equal(t, "check_paid_no", res.Details[1].Status)
}

func TestOrders_CheckPaidBatchCanceled(t *testing.T) {
	fake := &fakeExchanger{reply: func(request.Descriptor) (int, map[string]any, error) {
		return http.StatusOK, map[string]any{}, nil
	}}
	svc := NewOrders(fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.CheckPaidBatch(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, res.Total)
	assert.Empty(t, res.Details)
}
