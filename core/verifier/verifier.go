package verifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"purchase-manager/core/entitlement"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AlgorithmHS256 = "HS256"
	AlgorithmES256 = "ES256"
)

// ErrNotConfigured is returned when the verifier has no key for its algorithm.
var ErrNotConfigured = errors.New("transaction verifier is not configured")

// transactionClaims is the payload of a signed transaction.
type transactionClaims struct {
	jwt.RegisteredClaims
	Transaction entitlement.PurchaseRecord `json:"transaction"`
}

// JWSVerifier verifies transactions signed as JWS tokens.
type JWSVerifier struct {
	algorithm string
	key       any
	issuer    string
}

// New creates a verifier from configuration.
func New(cfg Config) (*JWSVerifier, error) {
	v := &JWSVerifier{algorithm: cfg.Algorithm, issuer: cfg.Issuer}

	switch cfg.Algorithm {
	case AlgorithmHS256:
		if cfg.Secret == "" {
			return nil, fmt.Errorf("%w: secret is required for %s", ErrNotConfigured, cfg.Algorithm)
		}
		v.key = []byte(cfg.Secret)
	case AlgorithmES256:
		if strings.TrimSpace(cfg.PublicKey) == "" {
			return nil, fmt.Errorf("%w: public key is required for %s", ErrNotConfigured, cfg.Algorithm)
		}
		key, err := jwt.ParseECPublicKeyFromPEM([]byte(cfg.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		v.key = key
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", cfg.Algorithm)
	}

	return v, nil
}

// Verify checks the signature of tx and returns its record. When verification
// fails the record is still decoded if possible.
func (v *JWSVerifier) Verify(_ context.Context, tx entitlement.SignedTransaction) (entitlement.PurchaseRecord, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{v.algorithm})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims transactionClaims
	_, err := jwt.ParseWithClaims(tx.JWS, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return Decode(tx), mapJWTError(err)
	}
	if claims.Transaction.ID == "" {
		return claims.Transaction, errors.New("transaction id is missing")
	}
	return claims.Transaction, nil
}

// Decode returns the payload of tx without verifying it. It returns a zero
// record when the token cannot be decoded.
func Decode(tx entitlement.SignedTransaction) entitlement.PurchaseRecord {
	var claims transactionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tx.JWS, &claims); err != nil {
		return entitlement.PurchaseRecord{}
	}
	return claims.Transaction
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("transaction is malformed: %w", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("transaction signature is invalid: %w", err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("transaction algorithm is not accepted: %w", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("transaction issuer mismatch: %w", err)
	default:
		return fmt.Errorf("transaction is invalid: %w", err)
	}
}
