package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
)

// JWK represents a public key in JSON Web Key format (RFC 7517). Only the
// OKP/Ed25519 shape is supported; the service signs everything with EdDSA.
type JWK struct {
	Kty string `json:"kty"`           // key type: "OKP"
	Use string `json:"use,omitempty"` // "sig"
	Alg string `json:"alg,omitempty"` // "EdDSA"
	Kid string `json:"kid,omitempty"` // key ID

	Crv string `json:"crv,omitempty"` // curve: "Ed25519"
	X   string `json:"x,omitempty"`   // base64url encoded public key
}

// JWKS is a JSON Web Key Set (RFC 7517).
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewEd25519JWK builds a JWK for an Ed25519 public key.
func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}

// parseJWKToKey converts a JWK into a usable crypto public key.
func parseJWKToKey(j JWK) (any, error) {
	if j.Kty != "OKP" || j.Crv != "Ed25519" {
		return nil, errors.New("jwtx: unsupported key type")
	}

	raw, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, errors.New("jwtx: invalid x value in JWK")
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 public key size")
	}
	return ed25519.PublicKey(raw), nil
}
