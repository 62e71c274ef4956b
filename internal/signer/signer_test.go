package signer

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/config"
)

func samplePayloads() []map[string]any {
	return []map[string]any{
		{},
		{"order_id": "X"},
		{"order_id": "123e4567-e89b-12d3-a456-426614174000", "state": "SUCCESS"},
		{
			"store_order_id": "A-1",
			"total_sum":      100.5,
			"products": []any{
				map[string]any{"name": "Кава <б/у> & чай", "count": 1, "sum": 100.5},
			},
		},
	}
}

func TestCanonical_SortedCompactNoHTMLEscape(t *testing.T) {
	body, err := Canonical(map[string]any{"b": "<x>", "a": 1})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":"<x>"}`, string(body))

	empty, err := Canonical(nil)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestCanonical_EncodingError(t *testing.T) {
	_, err := Canonical(map[string]any{"ch": make(chan int)})

	var encErr *apperr.EncodingError
	require.True(t, errors.As(err, &encErr))
}

func TestCompact_KeepsKeyOrder(t *testing.T) {
	body, err := Compact([]byte("{\n  \"state\": \"SUCCESS\",\n  \"order_id\": \"X\"\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, `{"state":"SUCCESS","order_id":"X"}`, string(body))

	_, err = Compact([]byte(`{"state":`))
	var encErr *apperr.EncodingError
	require.True(t, errors.As(err, &encErr))
}

func TestHMAC_KnownValue(t *testing.T) {
	s, err := NewHMAC("secret", "sha256")
	require.NoError(t, err)

	got, err := s.Sign(map[string]any{"order_id": "X"})
	require.NoError(t, err)

	m := hmac.New(sha256.New, []byte("secret"))
	m.Write([]byte(`{"order_id":"X"}`))
	assert.Equal(t, base64.StdEncoding.EncodeToString(m.Sum(nil)), got)
}

func TestHMAC_RoundTripAndMutation(t *testing.T) {
	for _, algo := range []string{"sha256", "sha384", "sha512", "sha1"} {
		s, err := NewHMAC("secret", algo)
		require.NoError(t, err)

		for _, p := range samplePayloads() {
			sig, err := s.Sign(p)
			require.NoError(t, err)
			assert.True(t, s.Verify(p, sig), algo)

			raw, err := base64.StdEncoding.DecodeString(sig)
			require.NoError(t, err)
			for i := range raw {
				mutated := append([]byte(nil), raw...)
				mutated[i] ^= 0x01
				assert.False(t, s.Verify(p, base64.StdEncoding.EncodeToString(mutated)))
			}
		}
	}
}

func TestHMAC_RejectsEmptyAndMalformed(t *testing.T) {
	s, err := NewHMAC("secret", "")
	require.NoError(t, err)
	assert.Equal(t, "sha256", s.Algo())

	p := map[string]any{"order_id": "X"}
	assert.False(t, s.Verify(p, ""))
	assert.False(t, s.Verify(p, "garbage"))
	assert.False(t, s.Verify(p, "%%%not-base64%%%"))
}

func TestHMAC_ConstructionErrors(t *testing.T) {
	var cfgErr *apperr.ConfigurationError

	_, err := NewHMAC("", "sha256")
	require.True(t, errors.As(err, &cfgErr))

	_, err = NewHMAC("secret", "md5")
	require.True(t, errors.As(err, &cfgErr))
}

func TestRSA_RoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	s := NewRSAFromKey(key)
	pubOnly, err := NewRSA(nil, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
	}))
	require.NoError(t, err)

	for _, p := range samplePayloads() {
		sig, err := s.Sign(p)
		require.NoError(t, err)
		assert.True(t, s.Verify(p, sig))
		assert.True(t, pubOnly.Verify(p, sig))
		assert.False(t, pubOnly.Verify(p, "garbage"))
	}

	raw := []byte(`{"state":"SUCCESS","order_id":"X"}`)
	sig, err := s.SignBytes(raw)
	require.NoError(t, err)
	assert.True(t, pubOnly.VerifyBytes(raw, sig))
	assert.False(t, pubOnly.Verify(map[string]any{"state": "SUCCESS", "order_id": "X"}, sig))

	_, err = pubOnly.Sign(map[string]any{})
	var cfgErr *apperr.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestNew_SelectsDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Merchant.SignatureSecret = "secret"

	s, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &HMACSigner{}, s)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	keyFile := filepath.Join(t.TempDir(), "private.pem")
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))

	cfg.Signature.Driver = "RSA"
	cfg.Signature.PrivateKeyFile = keyFile
	s, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &RSASigner{}, s)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Signature.Driver = "ed25519" }},
		{"hmac without secret", func(c *config.Config) { c.Merchant.SignatureSecret = "" }},
		{"rsa without keys", func(c *config.Config) { c.Signature.Driver = "rsa" }},
		{"rsa missing file", func(c *config.Config) {
			c.Signature.Driver = "rsa"
			c.Signature.PublicKeyFile = "/does/not/exist.pem"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Merchant.SignatureSecret = "secret"
			tt.mutate(cfg)

			_, err := New(cfg)
			var cfgErr *apperr.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}
