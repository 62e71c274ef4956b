package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/request"
	"github.com/juancollazo-ch/monoparts-service/internal/service"
	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

// orderIDCmd builds the commands that take a single order id.
func orderIDCmd[T models.Result](
	a *app,
	use, short string,
	op func(*service.Orders, context.Context, string) (service.Result[T], error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [order-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), a, func(ctx context.Context, svc *service.Orders) (service.Result[T], error) {
				return op(svc, ctx, args[0])
			})
		},
	}
}

func createOrderCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create-order",
		Short: "Create an installment order from a YAML or JSON file",
		Long: `Create an installment order. The file uses the API field names:

  store_order_id: A-100
  client_phone: "+380501234567"
  total_sum: "1500.50"
  invoice: {date: "2025-03-01", number: INV-1, source: INTERNET}
  available_programs: [{available_parts_count: [3, 6], type: payment_installments}]
  products: [{name: Coffee machine, count: 1, sum: "1500.50"}]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading order file: %w", err)
			}
			order, err := parseOrderFile(data)
			if err != nil {
				return err
			}
			return run(cmd.Context(), a, func(ctx context.Context, svc *service.Orders) (service.Result[models.CreateOrderResult], error) {
				return svc.CreateOrder(ctx, order)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "order file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func returnCmd(a *app) *cobra.Command {
	var (
		sum           string
		toCard        bool
		storeReturnID string
	)
	cmd := &cobra.Command{
		Use:   "return [order-id]",
		Short: "Return money for an order, fully or partially",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseDecimal("sum", sum)
			if err != nil {
				return err
			}
			return run(cmd.Context(), a, func(ctx context.Context, svc *service.Orders) (service.Result[models.ReturnResponse], error) {
				return svc.ReturnOrder(ctx, args[0], amount, toCard, storeReturnID, nil)
			})
		},
	}
	cmd.Flags().StringVar(&sum, "sum", "", "amount to return")
	cmd.Flags().BoolVar(&toCard, "to-card", true, "return money to the client's card")
	cmd.Flags().StringVar(&storeReturnID, "store-return-id", "", "merchant-side return id")
	_ = cmd.MarkFlagRequired("sum")
	_ = cmd.MarkFlagRequired("store-return-id")
	return cmd
}

func reportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report [YYYY-MM-DD]",
		Short: "Fetch the store's daily report (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := validator.FormatDate(time.Now())
			if len(args) == 1 {
				date = args[0]
			}
			// YYYY-MM-DD only
			if !validator.IsValidDate(date) {
				return fmt.Errorf("date must be in format YYYY-MM-DD")
			}
			return run(cmd.Context(), a, func(ctx context.Context, svc *service.Orders) (service.Result[models.DailyReport], error) {
				return svc.StoreReport(ctx, date)
			})
		},
	}
}

func validateClientCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-client [phone]",
		Short: "Check whether a phone number belongs to a bank client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), a, func(ctx context.Context, svc *service.Orders) (service.Result[models.ValidateClientResponse], error) {
				return svc.ValidateClient(ctx, args[0])
			})
		},
	}
}

func brokerAvailabilityCmd(a *app) *cobra.Command {
	var amount, employeeID, inn, outletID, phone, brokerID string
	cmd := &cobra.Command{
		Use:   "broker-availability",
		Short: "Check installment availability through a broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}
			return run(cmd.Context(), a, func(ctx context.Context, svc *service.Orders) (service.Result[models.InstallmentAvailability], error) {
				return svc.BrokerAvailability(ctx, amt, employeeID, inn, outletID, phone, brokerID)
			})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "purchase amount")
	cmd.Flags().StringVar(&employeeID, "employee-id", "", "broker employee id")
	cmd.Flags().StringVar(&inn, "inn", "", "client tax number")
	cmd.Flags().StringVar(&outletID, "outlet-id", "", "broker outlet id")
	cmd.Flags().StringVar(&phone, "phone", "", "client phone (+380XXXXXXXXX)")
	cmd.Flags().StringVar(&brokerID, "broker-id", "", "overrides merchant.broker_id")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

type orderFile struct {
	StoreOrderID string `yaml:"store_order_id"`
	ClientPhone  string `yaml:"client_phone"`
	TotalSum     string `yaml:"total_sum"`
	Invoice      struct {
		Date    string `yaml:"date"`
		Number  string `yaml:"number"`
		PointID string `yaml:"point_id"`
		Source  string `yaml:"source"`
	} `yaml:"invoice"`
	Programs []struct {
		AvailablePartsCount []int  `yaml:"available_parts_count"`
		Type                string `yaml:"type"`
	} `yaml:"available_programs"`
	Products []struct {
		Name  string `yaml:"name"`
		Count int    `yaml:"count"`
		Sum   string `yaml:"sum"`
	} `yaml:"products"`
	ResultCallback string `yaml:"result_callback"`
	MerchantInfo   *struct {
		EDRPOUCode  string `yaml:"edrpou_code"`
		IBANAccount string `yaml:"iban_account"`
		StoreName   string `yaml:"store_name"`
	} `yaml:"financial_company_merchant_info"`
	AdditionalParams *struct {
		NDS           string `yaml:"nds"`
		SellerPhone   string `yaml:"seller_phone"`
		ExtInitialSum string `yaml:"ext_initial_sum"`
	} `yaml:"additional_params"`
}

// parseOrderFile accepts YAML or JSON. Field validation is left to the
// exchange pipeline; only money strings are parsed here.
func parseOrderFile(data []byte) (request.Order, error) {
	var f orderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return request.Order{}, fmt.Errorf("parsing order file: %w", err)
	}

	total, err := parseDecimal("total_sum", f.TotalSum)
	if err != nil {
		return request.Order{}, err
	}
	o := request.Order{
		StoreOrderID: f.StoreOrderID,
		ClientPhone:  f.ClientPhone,
		TotalSum:     total,
		Invoice: request.Invoice{
			Date:    f.Invoice.Date,
			Number:  f.Invoice.Number,
			PointID: f.Invoice.PointID,
			Source:  models.InvoiceSource(f.Invoice.Source),
		},
		ResultCallback: f.ResultCallback,
	}
	for _, p := range f.Programs {
		o.Programs = append(o.Programs, request.Program{AvailablePartsCount: p.AvailablePartsCount, Type: p.Type})
	}
	for i, p := range f.Products {
		sum, err := parseDecimal(fmt.Sprintf("products.%d.sum", i), p.Sum)
		if err != nil {
			return request.Order{}, err
		}
		o.Products = append(o.Products, request.Product{Name: p.Name, Count: p.Count, Sum: sum})
	}
	if m := f.MerchantInfo; m != nil {
		o.MerchantInfo = &request.MerchantInfo{EDRPOUCode: m.EDRPOUCode, IBANAccount: m.IBANAccount, StoreName: m.StoreName}
	}
	if ap := f.AdditionalParams; ap != nil {
		params := &request.AdditionalParams{SellerPhone: ap.SellerPhone}
		if ap.NDS != "" {
			nds, err := parseDecimal("additional_params.nds", ap.NDS)
			if err != nil {
				return request.Order{}, err
			}
			params.NDS = &nds
		}
		if ap.ExtInitialSum != "" {
			ext, err := parseDecimal("additional_params.ext_initial_sum", ap.ExtInitialSum)
			if err != nil {
				return request.Order{}, err
			}
			params.ExtInitialSum = &ext
		}
		o.AdditionalParams = params
	}
	return o, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: invalid amount %q", field, s)
	}
	return d, nil
}
