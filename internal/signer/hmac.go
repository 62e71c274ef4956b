package signer

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"hash"
	"strings"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
)

var hashes = map[string]func() hash.Hash{
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// HMACSigner signs with a shared merchant secret; output is base64 of the raw MAC.
type HMACSigner struct {
	secret []byte
	algo   string
	newH   func() hash.Hash
}

// NewHMAC validates the secret and algorithm up front.
func NewHMAC(secret, algo string) (*HMACSigner, error) {
	if secret == "" {
		return nil, apperr.NewConfigurationError("signature secret is not configured")
	}
	algo = strings.ToLower(strings.TrimSpace(algo))
	if algo == "" {
		algo = "sha256"
	}
	newH, ok := hashes[algo]
	if !ok {
		return nil, apperr.NewConfigurationError("unsupported signature algorithm [%s]", algo)
	}
	return &HMACSigner{secret: []byte(secret), algo: algo, newH: newH}, nil
}

// Algo returns the configured hash name.
func (s *HMACSigner) Algo() string { return s.algo }

func (s *HMACSigner) Sign(payload map[string]any) (string, error) {
	body, err := Canonical(payload)
	if err != nil {
		return "", err
	}
	return s.SignBytes(body)
}

func (s *HMACSigner) Verify(payload map[string]any, signature string) bool {
	body, err := Canonical(payload)
	if err != nil {
		return false
	}
	return s.VerifyBytes(body, signature)
}

func (s *HMACSigner) SignBytes(body []byte) (string, error) {
	return base64.StdEncoding.EncodeToString(s.mac(body)), nil
}

func (s *HMACSigner) VerifyBytes(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	provided, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(s.mac(body), provided)
}

func (s *HMACSigner) mac(body []byte) []byte {
	m := hmac.New(s.newH, s.secret)
	m.Write(body)
	return m.Sum(nil)
}
