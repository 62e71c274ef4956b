package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Production, cfg.Environment)
	assert.Equal(t, "https://u2.monobank.com.ua", cfg.BaseURL)
	assert.Equal(t, "signature", cfg.Signature.Header)
	assert.Equal(t, "hmac", cfg.Signature.Driver)
	assert.Equal(t, "store-id", cfg.Headers.Store)
	assert.Equal(t, "broker-id", cfg.Headers.Broker)
	assert.True(t, cfg.Callbacks.Enabled)
	assert.Equal(t, "/monoparts/callback", cfg.Callbacks.Path)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monoparts.yaml")
	yaml := `
environment: sandbox
merchant:
  store_id: store-from-file
  signature_secret: file-secret
http:
  timeout: 5s
callbacks:
  path: hooks/mono
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("MONOPARTS_STORE_ID", "store-from-env")
	t.Setenv("MONOPARTS_MERCHANT_BROKER_ID", "broker-42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Sandbox, cfg.Environment)
	assert.Equal(t, "https://u2-demo-ext.mono.st4g3.com", cfg.BaseURL)
	assert.Equal(t, "store-from-env", cfg.Merchant.StoreID)
	assert.Equal(t, "broker-42", cfg.Merchant.BrokerID)
	assert.Equal(t, "file-secret", cfg.Merchant.SignatureSecret)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "/hooks/mono", cfg.Callbacks.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	var cfgErr *apperr.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantURL string
		wantErr bool
	}{
		{
			name:    "stage uses bundled url",
			mutate:  func(c *Config) { c.Environment = "Stage" },
			wantURL: "https://u2-ext.mono.st4g3.com",
		},
		{
			name: "production trims trailing slash",
			mutate: func(c *Config) {
				c.ProductionURL = "https://example.test/"
			},
			wantURL: "https://example.test",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.Environment = "qa" },
			wantErr: true,
		},
		{
			name:    "callback path traversal",
			mutate:  func(c *Config) { c.Callbacks.Path = "/hooks/../admin" },
			wantErr: true,
		},
		{
			name: "empty url for environment",
			mutate: func(c *Config) {
				c.Environment = Sandbox
				c.BaseURLs = map[string]string{}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				var cfgErr *apperr.ConfigurationError
				require.True(t, errors.As(err, &cfgErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, cfg.BaseURL)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Merchant.SignatureSecret = "top-secret"
	cfg.Forward.Secret = "fwd"

	r := cfg.Redacted()
	assert.Equal(t, "********", r.Merchant.SignatureSecret)
	assert.Equal(t, "********", r.Forward.Secret)
	assert.Equal(t, "top-secret", cfg.Merchant.SignatureSecret)

	r.BaseURLs["sandbox"] = "changed"
	assert.NotEqual(t, "changed", cfg.BaseURLs["sandbox"])
}
