package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/api"
	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/config"
	"github.com/juancollazo-ch/monoparts-service/internal/events"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/retry"
	"github.com/juancollazo-ch/monoparts-service/internal/service"
	"github.com/juancollazo-ch/monoparts-service/internal/signer"
)

var Version = "dev"

// app holds what every subcommand shares. Config, signer and client are
// built on first use so `config` and `--help` work without credentials.
type app struct {
	configPath string
	retries    int
	retryDelay time.Duration

	out    io.Writer
	cfg    *config.Config
	logger *zap.Logger
	signer signer.Signer
	orders *service.Orders
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", apperr.Kind(err), err)
		stop()
		os.Exit(apperr.ExitCode(err))
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "monopartsctl",
		Short:         "Command-line client for the monobank purchase-in-parts API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.SetOut(a.out)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("MONOPARTS_CONFIG"), "path to a YAML config file")
	rootCmd.PersistentFlags().IntVar(&a.retries, "retries", 1, "attempts for retryable failures (429, 5xx, transport)")
	rootCmd.PersistentFlags().DurationVar(&a.retryDelay, "retry-delay", 500*time.Millisecond, "base backoff between attempts")

	rootCmd.AddCommand(createOrderCmd(a))
	rootCmd.AddCommand(orderIDCmd(a, "confirm", "Confirm a paid order", (*service.Orders).ConfirmOrder))
	rootCmd.AddCommand(orderIDCmd(a, "reject", "Reject an order", (*service.Orders).RejectOrder))
	rootCmd.AddCommand(orderIDCmd(a, "state", "Show the current state of an order", (*service.Orders).OrderState))
	rootCmd.AddCommand(orderIDCmd(a, "check-paid", "Check whether an order is fully paid", (*service.Orders).CheckPaid))
	rootCmd.AddCommand(orderIDCmd(a, "data", "Show order details and refunds", (*service.Orders).OrderData))
	rootCmd.AddCommand(returnCmd(a))
	rootCmd.AddCommand(reportCmd(a))
	rootCmd.AddCommand(validateClientCmd(a))
	rootCmd.AddCommand(brokerAvailabilityCmd(a))
	rootCmd.AddCommand(batchCheckCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(verifyCallbackCmd(a))
	rootCmd.AddCommand(configCmd(a))

	return rootCmd
}

func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *app) log() (*zap.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	return logger, nil
}

func (a *app) sig() (signer.Signer, error) {
	if a.signer != nil {
		return a.signer, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	s, err := signer.New(cfg)
	if err != nil {
		return nil, err
	}
	a.signer = s
	return s, nil
}

func (a *app) service() (*service.Orders, error) {
	if a.orders != nil {
		return a.orders, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	logger, err := a.log()
	if err != nil {
		return nil, err
	}
	s, err := a.sig()
	if err != nil {
		return nil, err
	}
	client, err := api.New(cfg, s, api.WithLogger(logger), api.WithSink(events.NewLogSink(logger)))
	if err != nil {
		return nil, err
	}
	a.orders = service.NewOrders(client, logger)
	return a.orders, nil
}

// envelope is what every operation command prints.
type envelope struct {
	Status     string `json:"status"`
	HTTPStatus int    `json:"http_status"`
	Successful bool   `json:"successful"`
	Data       any    `json:"data"`
}

// run calls fn with the retry policy and prints the typed result.
func run[T models.Result](ctx context.Context, a *app, fn func(ctx context.Context, svc *service.Orders) (service.Result[T], error)) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	var res service.Result[T]
	err = retry.WithRetry(ctx, a.retries, a.retryDelay, apperr.IsRetryable, func(int) error {
		var callErr error
		res, callErr = fn(ctx, svc)
		return callErr
	})
	if err != nil {
		return err
	}

	return a.print(envelope{
		Status:     res.Response.Status().String(),
		HTTPStatus: res.Response.HTTPStatus(),
		Successful: res.Response.Successful(),
		Data:       res.Data,
	})
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
