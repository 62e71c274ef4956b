// Package api runs the outbound exchange: validate, sign, send a single POST,
// then map the answer into a response.Response.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/config"
	"github.com/juancollazo-ch/monoparts-service/internal/events"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
	"github.com/juancollazo-ch/monoparts-service/internal/request"
	"github.com/juancollazo-ch/monoparts-service/internal/response"
	"github.com/juancollazo-ch/monoparts-service/internal/signer"
	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

// Client is safe for concurrent use once built.
type Client struct {
	http    *http.Client
	cfg     *config.Config
	signer  signer.Signer
	sink    events.Sink
	logger  *zap.Logger
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

type Option func(*Client)

// WithHTTPClient replaces the client built from cfg.HTTP.Timeout.
func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

func WithSink(s events.Sink) Option { return func(cl *Client) { cl.sink = s } }

func WithLogger(l *zap.Logger) Option { return func(cl *Client) { cl.logger = l } }

// New expects a cfg that already passed Validate.
func New(cfg *config.Config, s signer.Signer, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, apperr.NewConfigurationError("config is required")
	}
	if s == nil {
		return nil, apperr.NewConfigurationError("signer is required")
	}
	if cfg.BaseURL == "" {
		return nil, apperr.NewConfigurationError("base url is not resolved")
	}

	timeout := cfg.HTTP.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		http:   &http.Client{Timeout: timeout},
		cfg:    cfg,
		signer: s,
		sink:   events.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	if c.sink == nil {
		c.sink = events.Nop{}
	}

	if cfg.HTTP.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "monoparts-api",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("monoparts.breaker.state_change",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	if cfg.HTTP.RateLimitRPS > 0 {
		burst := cfg.HTTP.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), burst)
	}
	return c, nil
}

type reply struct {
	status  int
	body    []byte
	headers http.Header
}

// Send performs one exchange. Validation and configuration problems are
// reported before any network I/O. Every returned error is also passed to
// the sink's RequestFailed.
func (c *Client) Send(ctx context.Context, d request.Descriptor) (*response.Response, error) {
	op := d.Operation()
	ctx = logging.WithOperation(ctx, op.String())

	resp, err := c.send(ctx, d)
	if err != nil {
		c.sink.RequestFailed(ctx, op, err)
		c.logger.Warn("monoparts.request.failed", append(logging.FieldsFromContext(ctx),
			zap.String("endpoint", d.Endpoint()),
			zap.String("kind", apperr.Kind(err)),
			zap.Error(err),
		)...)
		return nil, err
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, d request.Descriptor) (*response.Response, error) {
	op := d.Operation()

	payload, err := validator.Validate(d.Payload(), d.Rules())
	if err != nil {
		return nil, err
	}
	headers, err := c.headers(d)
	if err != nil {
		return nil, err
	}

	c.sink.RequestSending(ctx, op, d.Endpoint(), payload)

	body, err := signer.Canonical(payload)
	if err != nil {
		return nil, err
	}
	signature, err := c.signer.SignBytes(body)
	if err != nil {
		return nil, err
	}
	headers.Set(c.cfg.Signature.Header, signature)

	rep, err := c.post(ctx, d.Endpoint(), body, headers)
	if err != nil {
		return nil, err
	}

	raw := decodeObject(rep.body)
	if rep.status < 200 || rep.status >= 300 {
		if !(op == request.OpCreateOrder && rep.status == http.StatusConflict) {
			apiErr := &apperr.APIResponseError{StatusCode: rep.status}
			if msg := models.DecodeException(raw).Message; msg != nil {
				apiErr.Message = *msg
			}
			return nil, apiErr
		}
	}

	resp := response.New(op, rep.status, raw, rep.headers)
	c.sink.ResponseReceived(ctx, op, resp)
	c.logger.Info("monoparts.request.success", append(logging.FieldsFromContext(ctx),
		zap.String("endpoint", d.Endpoint()),
		zap.Int("status_code", resp.HTTPStatus()),
		zap.String("status", resp.Status().String()),
	)...)
	return resp, nil
}

func (c *Client) headers(d request.Descriptor) (http.Header, error) {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Content-Type", "application/json")

	if d.RequiresStoreID() {
		if c.cfg.Merchant.StoreID == "" {
			return nil, apperr.NewConfigurationError("store_id must be configured for this request.")
		}
		h.Set(c.cfg.Headers.Store, c.cfg.Merchant.StoreID)
	}
	if d.RequiresBrokerID() {
		broker := d.BrokerID()
		if broker == "" {
			broker = c.cfg.Merchant.BrokerID
		}
		if broker == "" {
			return nil, apperr.NewConfigurationError("broker_id must be configured for broker availability checks.")
		}
		h.Set(c.cfg.Headers.Broker, broker)
	}
	for k, v := range d.Headers() {
		h.Set(k, v)
	}
	return h, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte, headers http.Header) (*reply, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.NewTransportError("Failed to call Monobank API", err)
		}
	}

	do := func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header = headers

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return &reply{status: resp.StatusCode, body: data, headers: resp.Header}, nil
	}

	var (
		out interface{}
		err error
	)
	if c.breaker != nil {
		out, err = c.breaker.Execute(do)
	} else {
		out, err = do()
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperr.NewTransportError("Failed to call Monobank API: circuit open", err)
		}
		return nil, apperr.NewTransportError("Failed to call Monobank API", err)
	}
	return out.(*reply), nil
}

// decodeObject returns nil unless body is a JSON object.
func decodeObject(body []byte) map[string]any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil
	}
	return raw
}
