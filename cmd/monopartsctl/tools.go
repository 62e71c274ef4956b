package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/juancollazo-ch/monoparts-service/internal/callback"
	"github.com/juancollazo-ch/monoparts-service/internal/compare"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
)

func batchCheckCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "batch-check [order-id...]",
		Short: "Run check-paid for many orders concurrently",
		Long:  "Order ids come from the arguments and, with --file, one per line (\"-\" reads stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := append([]string(nil), args...)
			if file != "" {
				more, err := readIDs(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				ids = append(ids, more...)
			}
			if len(ids) == 0 {
				return fmt.Errorf("no order ids given")
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			res, err := svc.CheckPaidBatch(cmd.Context(), ids)
			if res != nil {
				if perr := a.print(res); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				return fmt.Errorf("%d of %d checks failed", res.Failed, res.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one order id per line")
	return cmd
}

func readIDs(stdin io.Reader, file string) ([]string, error) {
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" && !strings.HasPrefix(id, "#") {
			ids = append(ids, id)
		}
	}
	return ids, sc.Err()
}

func watchCmd(a *app) *cobra.Command {
	var interval time.Duration
	var maxPolls int
	cmd := &cobra.Command{
		Use:   "watch [order-id]",
		Short: "Poll an order's state and print every transition until it is final",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			logger, err := a.log()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var prev *models.OrderStateInfo
			for poll := 1; maxPolls <= 0 || poll <= maxPolls; poll++ {
				res, err := svc.OrderState(ctx, args[0])
				if err != nil {
					return err
				}
				diff := compare.OrderStates(prev, res.Data, logger)
				if diff.Changed {
					if err := a.print(diff); err != nil {
						return err
					}
				}
				if diff.Terminal {
					return nil
				}
				curr := res.Data
				prev = &curr

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(interval):
				}
			}
			return fmt.Errorf("order %s did not reach a final state after %d polls", args[0], maxPolls)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "time between polls")
	cmd.Flags().IntVar(&maxPolls, "max-polls", 0, "stop after this many polls (0 = no limit)")
	return cmd
}

func verifyCallbackCmd(a *app) *cobra.Command {
	var file, signature string
	cmd := &cobra.Command{
		Use:   "verify-callback",
		Short: "Check a captured callback body and signature offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			var body []byte
			var err error
			if file == "-" {
				body, err = io.ReadAll(cmd.InOrStdin())
			} else {
				body, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			s, err := a.sig()
			if err != nil {
				return err
			}
			logger, err := a.log()
			if err != nil {
				return err
			}

			out := callback.NewProcessor(s, callback.WithLogger(logger)).Process(cmd.Context(), bytes.TrimSpace(body), signature)
			report := struct {
				Outcome string                 `json:"outcome"`
				State   *models.OrderStateInfo `json:"state_info,omitempty"`
				Errors  map[string][]string    `json:"errors,omitempty"`
			}{Outcome: out.Kind.String(), Errors: out.Errors}
			if out.Kind == callback.Accepted {
				report.State = &out.StateInfo
			}
			if err := a.print(report); err != nil {
				return err
			}
			if out.Kind != callback.Accepted {
				return fmt.Errorf("callback %s", out.Kind)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "callback body (\"-\" reads stdin)")
	cmd.Flags().StringVarP(&signature, "signature", "s", "", "value of the signature header")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg.Redacted()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
