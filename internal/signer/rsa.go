package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
)

// RSASigner signs with PKCS#1 v1.5 over SHA-256 of the canonical bytes.
// A signer built from a public key only can verify but not sign.
type RSASigner struct {
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

// NewRSA parses PEM key material. At least one key is required; when only
// the private key is given its public half is used for verification.
func NewRSA(privatePEM, publicPEM []byte) (*RSASigner, error) {
	s := &RSASigner{}
	if len(privatePEM) > 0 {
		priv, err := parsePrivateKey(privatePEM)
		if err != nil {
			return nil, err
		}
		s.priv = priv
		s.pub = &priv.PublicKey
	}
	if len(publicPEM) > 0 {
		pub, err := parsePublicKey(publicPEM)
		if err != nil {
			return nil, err
		}
		s.pub = pub
	}
	if s.pub == nil {
		return nil, apperr.NewConfigurationError("rsa signer needs a private or public key")
	}
	return s, nil
}

// NewRSAFromKey is used when the key is already in memory.
func NewRSAFromKey(priv *rsa.PrivateKey) *RSASigner {
	return &RSASigner{priv: priv, pub: &priv.PublicKey}
}

func (s *RSASigner) Sign(payload map[string]any) (string, error) {
	body, err := Canonical(payload)
	if err != nil {
		return "", err
	}
	return s.SignBytes(body)
}

func (s *RSASigner) Verify(payload map[string]any, signature string) bool {
	body, err := Canonical(payload)
	if err != nil {
		return false
	}
	return s.VerifyBytes(body, signature)
}

func (s *RSASigner) SignBytes(body []byte) (string, error) {
	if s.priv == nil {
		return "", apperr.NewConfigurationError("rsa signer has no private key")
	}
	digest := sha256.Sum256(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.priv, crypto.SHA256, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

func (s *RSASigner) VerifyBytes(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(body)
	return rsa.VerifyPKCS1v15(s.pub, crypto.SHA256, digest[:], sig) == nil
}

func parsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, apperr.NewConfigurationError("private key is not PEM encoded")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, apperr.NewConfigurationError("parsing private key: %v", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, apperr.NewConfigurationError("private key is not RSA")
	}
	return rsaKey, nil
}

func parsePublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, apperr.NewConfigurationError("public key is not PEM encoded")
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, apperr.NewConfigurationError("parsing public key: %v", err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, apperr.NewConfigurationError("public key is not RSA")
	}
	return rsaKey, nil
}
