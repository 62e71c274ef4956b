// Package service exposes one typed method per installment operation on top
// of the exchange pipeline.
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/request"
	"github.com/juancollazo-ch/monoparts-service/internal/response"
)

// Exchanger is satisfied by *api.Client.
type Exchanger interface {
	Send(ctx context.Context, d request.Descriptor) (*response.Response, error)
}

type Orders struct {
	client         Exchanger
	logger         *zap.Logger
	maxConcurrency int // max in-flight check-paid calls in a batch
}

func NewOrders(client Exchanger, logger *zap.Logger) *Orders {
	return &Orders{
		client:         client,
		logger:         logging.OrNop(logger),
		maxConcurrency: 5,
	}
}

// Result pairs the typed payload with the envelope it came from.
type Result[T models.Result] struct {
	Data     T
	Response *response.Response
}

func do[T models.Result](ctx context.Context, s *Orders, d request.Descriptor) (Result[T], error) {
	ctx = logging.WithOperation(ctx, d.Operation().String())
	resp, err := s.client.Send(ctx, d)
	if err != nil {
		return Result[T]{}, err
	}
	data, ok := resp.Data().(T)
	if !ok {
		return Result[T]{}, fmt.Errorf("unexpected result type %T for %s", resp.Data(), d.Operation())
	}
	return Result[T]{Data: data, Response: resp}, nil
}

func (s *Orders) CreateOrder(ctx context.Context, o request.Order) (Result[models.CreateOrderResult], error) {
	return do[models.CreateOrderResult](ctx, s, request.NewCreateOrder(o))
}

func (s *Orders) ConfirmOrder(ctx context.Context, orderID string) (Result[models.OrderStateInfo], error) {
	return do[models.OrderStateInfo](ctx, s, request.NewConfirmOrder(orderID))
}

func (s *Orders) RejectOrder(ctx context.Context, orderID string) (Result[models.OrderStateInfo], error) {
	return do[models.OrderStateInfo](ctx, s, request.NewRejectOrder(orderID))
}

// ReturnOrder requests a full or partial refund of sum.
func (s *Orders) ReturnOrder(
	ctx context.Context,
	orderID string,
	sum decimal.Decimal,
	returnMoneyToCard bool,
	storeReturnID string,
	additional map[string]any,
) (Result[models.ReturnResponse], error) {
	return do[models.ReturnResponse](ctx, s, request.NewReturnOrder(orderID, sum, returnMoneyToCard, storeReturnID, additional))
}

func (s *Orders) CheckPaid(ctx context.Context, orderID string) (Result[models.CheckPaidResult], error) {
	return do[models.CheckPaidResult](ctx, s, request.NewCheckPaid(orderID))
}

func (s *Orders) OrderState(ctx context.Context, orderID string) (Result[models.OrderStateInfo], error) {
	return do[models.OrderStateInfo](ctx, s, request.NewOrderState(orderID))
}

func (s *Orders) OrderData(ctx context.Context, orderID string) (Result[models.OrderShortInfo], error) {
	return do[models.OrderShortInfo](ctx, s, request.NewOrderData(orderID))
}

// StoreReport fetches the daily report for date (YYYY-MM-DD).
func (s *Orders) StoreReport(ctx context.Context, date string) (Result[models.DailyReport], error) {
	return do[models.DailyReport](ctx, s, request.NewStoreReport(date))
}

func (s *Orders) ValidateClient(ctx context.Context, phone string) (Result[models.ValidateClientResponse], error) {
	return do[models.ValidateClientResponse](ctx, s, request.NewClientValidate(phone))
}

// BrokerAvailability checks installment availability for a broker; an empty
// brokerID falls back to the configured one.
func (s *Orders) BrokerAvailability(
	ctx context.Context,
	amount decimal.Decimal,
	employeeID, inn, outletID, phone, brokerID string,
) (Result[models.InstallmentAvailability], error) {
	return do[models.InstallmentAvailability](ctx, s, request.NewBrokerAvailability(amount, employeeID, inn, outletID, phone, brokerID))
}

type BatchResult struct {
	Total   int               `json:"total"`
	Paid    int               `json:"paid"`
	Unpaid  int               `json:"unpaid"`
	Failed  int               `json:"failed"`
	Details []PaidStatus      `json:"details"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type PaidStatus struct {
	OrderID   string `json:"order_id"`
	FullyPaid bool   `json:"fully_paid"`
	Status    string `json:"status"`
}

// CheckPaidBatch runs check-paid for every id with bounded concurrency.
// Individual failures are collected, not returned; the error is non-nil only
// when ctx ends before every id was attempted.
func (s *Orders) CheckPaidBatch(ctx context.Context, orderIDs []string) (*BatchResult, error) {
	details := make([]PaidStatus, len(orderIDs))
	errs := make([]error, len(orderIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for i, id := range orderIDs {
		// Stop launching calls once ctx is done
		if gctx.Err() != nil {
			break
		}
		i, id := i, id
		g.Go(func() error {
			res, err := s.CheckPaid(gctx, id)
			if err != nil {
				errs[i] = err
				return nil
			}
			details[i] = PaidStatus{
				OrderID:   id,
				FullyPaid: res.Data.FullyPaid,
				Status:    res.Response.Status().String(),
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{Total: len(orderIDs), Details: make([]PaidStatus, 0, len(orderIDs))}
	for i, id := range orderIDs {
		switch {
		case errs[i] != nil:
			result.Failed++
			if result.Errors == nil {
				result.Errors = map[string]string{}
			}
			result.Errors[id] = errs[i].Error()
		case details[i].OrderID == "":
			// never attempted
		default:
			if details[i].FullyPaid {
				result.Paid++
			} else {
				result.Unpaid++
			}
			result.Details = append(result.Details, details[i])
		}
	}

	if result.Failed > 0 {
		s.logger.Warn("monoparts.batch.partial_failure", append(logging.FieldsFromContext(ctx),
			zap.Int("failed_count", result.Failed),
			zap.Int("total", result.Total),
		)...)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
