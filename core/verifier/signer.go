package verifier

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"purchase-manager/core/entitlement"

	"github.com/golang-jwt/jwt/v5"
)

// Signer produces signed transactions. It is used by the local platform
// simulator and by tests.
type Signer struct {
	method jwt.SigningMethod
	key    any
	issuer string
	now    func() time.Time
}

// NewHMACSigner creates an HS256 signer.
func NewHMACSigner(secret, issuer string) *Signer {
	return &Signer{method: jwt.SigningMethodHS256, key: []byte(secret), issuer: issuer, now: time.Now}
}

// NewECDSASigner creates an ES256 signer.
func NewECDSASigner(key *ecdsa.PrivateKey, issuer string) *Signer {
	return &Signer{method: jwt.SigningMethodES256, key: key, issuer: issuer, now: time.Now}
}

// Sign signs record into a transaction token.
func (s *Signer) Sign(record entitlement.PurchaseRecord) (entitlement.SignedTransaction, error) {
	claims := transactionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       record.ID,
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
		Transaction: record,
	}
	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.key)
	if err != nil {
		return entitlement.SignedTransaction{}, fmt.Errorf("failed to sign transaction %s: %w", record.ID, err)
	}
	return entitlement.SignedTransaction{JWS: token}, nil
}
