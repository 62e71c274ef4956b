package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/events"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/retry"
	"github.com/juancollazo-ch/monoparts-service/internal/signer"
)

// SignatureHeader carries the HMAC of the forwarded body.
const SignatureHeader = "X-Signature"

// Sender relays accepted callbacks to a downstream webhook as a signed
// models.CallbackNotice. It is an events.Sink; delivery failures are logged
// and never change the callback outcome.
type Sender struct {
	events.Nop

	http       *http.Client
	webhookURL string
	signer     signer.Signer
	logger     *zap.Logger

	attempts  int
	baseDelay time.Duration
}

type Option func(*Sender)

// WithHTTPClient replaces the default 10s-timeout client.
func WithHTTPClient(c *http.Client) Option { return func(s *Sender) { s.http = c } }

// WithAttempts sets how many times delivery is tried and the base backoff.
func WithAttempts(n int, baseDelay time.Duration) Option {
	return func(s *Sender) {
		s.attempts = n
		s.baseDelay = baseDelay
	}
}

// NewSender signs bodies with an HMAC-SHA256 of secret.
func NewSender(webhookURL, secret string, logger *zap.Logger, opts ...Option) (*Sender, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	sig, err := signer.NewHMAC(secret, "sha256")
	if err != nil {
		return nil, err
	}

	s := &Sender{
		http:       &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
		signer:     sig,
		logger:     logging.OrNop(logger),
		attempts:   3,
		baseDelay:  time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Sender) CallbackValidated(ctx context.Context, info models.OrderStateInfo) {
	notice := info.ToCallbackNotice(uuid.NewString(), time.Now())
	if err := s.Send(ctx, notice); err != nil {
		s.logger.Error("monoparts.forward.failed", append(logging.FieldsFromContext(ctx),
			zap.String("event_id", notice.EventID),
			zap.String("order_id", notice.OrderID),
			zap.Error(err),
		)...)
	}
}

// Send posts notice with up to the configured number of attempts.
func (s *Sender) Send(ctx context.Context, notice models.CallbackNotice) error {
	payload, err := toMap(notice)
	if err != nil {
		return fmt.Errorf("error marshaling notice: %w", err)
	}
	body, err := signer.Canonical(payload)
	if err != nil {
		return err
	}
	signature, err := s.signer.SignBytes(body)
	if err != nil {
		return err
	}

	return retry.WithRetry(ctx, s.attempts, s.baseDelay, nil, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("error creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, signature)
		req.Header.Set("X-Event-Id", notice.EventID)
		req.Header.Set("X-Retry-Attempt", strconv.Itoa(attempt))
		if traceID := logging.TraceID(ctx); traceID != "" {
			req.Header.Set("X-Trace-Id", traceID)
		}

		resp, err := s.http.Do(req)
		if err != nil {
			return fmt.Errorf("error sending webhook (attempt %d/%d): %w", attempt, s.attempts, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		return fmt.Errorf("webhook failed with status: %d (attempt %d/%d)", resp.StatusCode, attempt, s.attempts)
	})
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
