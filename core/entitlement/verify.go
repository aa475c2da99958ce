package entitlement

import "context"

// Verifier checks the provenance of a signed transaction.
// Implementations return the decoded record even when verification fails, as long
// as the payload could be decoded, so that failures can be reported with context.
type Verifier interface {
	Verify(ctx context.Context, tx SignedTransaction) (PurchaseRecord, error)
}

// VerificationOutcome is either Verified or Unverified.
type VerificationOutcome interface {
	// Record returns the payload regardless of the verification result.
	Record() PurchaseRecord
	sealed()
}

// Verified carries a record whose provenance was confirmed.
type Verified struct {
	Transaction PurchaseRecord
}

// Unverified carries a record that failed verification and the reason why.
type Unverified struct {
	Transaction PurchaseRecord
	Reason      error
}

func (v Verified) Record() PurchaseRecord   { return v.Transaction }
func (u Unverified) Record() PurchaseRecord { return u.Transaction }
func (Verified) sealed()                    {}
func (Unverified) sealed()                  {}

// Verify wraps the verifier result into a VerificationOutcome. It never retries.
func Verify(ctx context.Context, verifier Verifier, tx SignedTransaction) VerificationOutcome {
	record, err := verifier.Verify(ctx, tx)
	if err != nil {
		return Unverified{Transaction: record, Reason: err}
	}
	return Verified{Transaction: record}
}
