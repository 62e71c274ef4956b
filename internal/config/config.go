// Package config resolves the process-wide, read-only configuration shared
// by the exchange and callback pipelines.
package config

import (
	"strings"
	"time"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/validator"
)

// Environment selects which base URL the client talks to.
type Environment string

const (
	Sandbox    Environment = "sandbox"
	Stage      Environment = "stage"
	Production Environment = "production"
)

// Valid reports whether e is one of the three known environments.
func (e Environment) Valid() bool {
	switch e {
	case Sandbox, Stage, Production:
		return true
	}
	return false
}

type Config struct {
	Environment   Environment       `mapstructure:"environment" yaml:"environment"`
	BaseURLs      map[string]string `mapstructure:"base_urls" yaml:"base_urls"`
	ProductionURL string            `mapstructure:"production_url" yaml:"production_url"`

	Merchant  Merchant  `mapstructure:"merchant" yaml:"merchant"`
	Signature Signature `mapstructure:"signature" yaml:"signature"`
	Headers   Headers   `mapstructure:"headers" yaml:"headers"`
	Callbacks Callbacks `mapstructure:"callbacks" yaml:"callbacks"`
	HTTP      HTTP      `mapstructure:"http" yaml:"http"`
	Logging   Logging   `mapstructure:"logging" yaml:"logging"`
	Server    Server    `mapstructure:"server" yaml:"server"`
	Redis     Redis     `mapstructure:"redis" yaml:"redis"`
	Forward   Forward   `mapstructure:"forward" yaml:"forward"`

	// BaseURL is resolved by Validate from Environment.
	BaseURL string `mapstructure:"-" yaml:"base_url"`
}

type Merchant struct {
	StoreID         string `mapstructure:"store_id" yaml:"store_id"`
	SignatureSecret string `mapstructure:"signature_secret" yaml:"signature_secret"`
	BrokerID        string `mapstructure:"broker_id" yaml:"broker_id"`
}

type Signature struct {
	Driver         string `mapstructure:"driver" yaml:"driver"`
	Algo           string `mapstructure:"algo" yaml:"algo"`
	Header         string `mapstructure:"header" yaml:"header"`
	PrivateKeyFile string `mapstructure:"private_key_file" yaml:"private_key_file"`
	PublicKeyFile  string `mapstructure:"public_key_file" yaml:"public_key_file"`
}

type Headers struct {
	Store  string `mapstructure:"store" yaml:"store"`
	Broker string `mapstructure:"broker" yaml:"broker"`
}

type Callbacks struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

type HTTP struct {
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
	BreakerEnabled bool          `mapstructure:"breaker_enabled" yaml:"breaker_enabled"`
}

type Logging struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type Server struct {
	Port string `mapstructure:"port" yaml:"port"`
}

type Redis struct {
	URL     string `mapstructure:"url" yaml:"url"`
	Channel string `mapstructure:"channel" yaml:"channel"`
}

// Forward configures relaying accepted callbacks to a downstream webhook.
type Forward struct {
	URL    string `mapstructure:"url" yaml:"url"`
	Secret string `mapstructure:"secret" yaml:"secret"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Environment: Production,
		BaseURLs: map[string]string{
			string(Sandbox): "https://u2-demo-ext.mono.st4g3.com",
			string(Stage):   "https://u2-ext.mono.st4g3.com",
		},
		ProductionURL: "https://u2.monobank.com.ua",
		Signature: Signature{
			Driver: "hmac",
			Algo:   "sha256",
			Header: "signature",
		},
		Headers: Headers{
			Store:  "store-id",
			Broker: "broker-id",
		},
		Callbacks: Callbacks{
			Enabled: true,
			Path:    "/monoparts/callback",
		},
		HTTP: HTTP{
			Timeout:        30 * time.Second,
			RateLimitBurst: 1,
			BreakerEnabled: true,
		},
		Logging: Logging{Level: "info"},
		Server:  Server{Port: "8080"},
		Redis:   Redis{Channel: "monoparts:callbacks"},
	}
}

// Validate checks the environment and resolves BaseURL.
func (c *Config) Validate() error {
	env := Environment(strings.ToLower(strings.TrimSpace(string(c.Environment))))
	if env == "" {
		env = Production
	}
	if !env.Valid() {
		return apperr.NewConfigurationError("unknown environment [%s]", c.Environment)
	}
	c.Environment = env

	base := c.ProductionURL
	if env != Production {
		base = c.BaseURLs[string(env)]
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return apperr.NewConfigurationError("base URL is not configured for environment [%s]", env)
	}
	c.BaseURL = base

	if c.Signature.Header == "" {
		c.Signature.Header = "signature"
	}
	if c.Headers.Store == "" {
		c.Headers.Store = "store-id"
	}
	if c.Headers.Broker == "" {
		c.Headers.Broker = "broker-id"
	}
	if c.Callbacks.Path == "" {
		c.Callbacks.Path = "/monoparts/callback"
	}
	if !strings.HasPrefix(c.Callbacks.Path, "/") {
		c.Callbacks.Path = "/" + c.Callbacks.Path
	}
	if err := validator.ValidateRoutePath(c.Callbacks.Path); err != nil {
		return apperr.NewConfigurationError("callbacks.path: %v", err)
	}
	return nil
}

// Redacted returns a copy safe to print: secrets are masked.
func (c *Config) Redacted() Config {
	out := *c
	out.BaseURLs = make(map[string]string, len(c.BaseURLs))
	for k, v := range c.BaseURLs {
		out.BaseURLs[k] = v
	}
	out.Merchant.SignatureSecret = mask(c.Merchant.SignatureSecret)
	out.Forward.Secret = mask(c.Forward.Secret)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
