// Package signer computes and verifies payload signatures shared with the
// installment API. Every implementation signs the canonical encoding
// produced by Canonical, which is also the exact request body sent on the
// wire.
package signer

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
	"github.com/juancollazo-ch/monoparts-service/internal/config"
)

// Drivers accepted by New.
const (
	DriverHMAC = "hmac"
	DriverRSA  = "rsa"
)

// Signer is the contract every signature scheme satisfies. Sign and Verify
// work on the Canonical encoding of a payload; the Bytes variants work on an
// already encoded body. Implementations hold no per-call state and are safe
// for concurrent use.
type Signer interface {
	Sign(payload map[string]any) (string, error)
	// Verify never panics and returns false for empty or malformed signatures.
	Verify(payload map[string]any, signature string) bool
	SignBytes(body []byte) (string, error)
	VerifyBytes(body []byte, signature string) bool
}

// Canonical encodes payload as compact JSON with sorted keys and without
// HTML escaping.
func Canonical(payload map[string]any) ([]byte, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, &apperr.EncodingError{Cause: err}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Compact strips insignificant whitespace from a JSON document while keeping
// the sender's key order and escaping.
func Compact(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, &apperr.EncodingError{Cause: err}
	}
	return buf.Bytes(), nil
}

// New builds the signer selected by cfg.Signature.Driver. Unknown drivers
// and incomplete key material fail here, at startup.
func New(cfg *config.Config) (Signer, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Signature.Driver))
	if driver == "" {
		driver = DriverHMAC
	}

	switch driver {
	case DriverHMAC:
		return NewHMAC(cfg.Merchant.SignatureSecret, cfg.Signature.Algo)
	case DriverRSA:
		var privPEM, pubPEM []byte
		var err error
		if cfg.Signature.PrivateKeyFile != "" {
			if privPEM, err = os.ReadFile(cfg.Signature.PrivateKeyFile); err != nil {
				return nil, apperr.NewConfigurationError("reading private key: %v", err)
			}
		}
		if cfg.Signature.PublicKeyFile != "" {
			if pubPEM, err = os.ReadFile(cfg.Signature.PublicKeyFile); err != nil {
				return nil, apperr.NewConfigurationError("reading public key: %v", err)
			}
		}
		return NewRSA(privPEM, pubPEM)
	default:
		return nil, apperr.NewConfigurationError("unsupported signature driver [%s]", driver)
	}
}
