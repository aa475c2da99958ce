package entitlement

import "fmt"

// VerificationError is reported when a record fails provenance verification.
type VerificationError struct {
	Record PurchaseRecord
	Reason error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("failed to verify transaction %s (%s): %v", e.Record.ID, e.Record.ProductID, e.Reason)
}

func (e *VerificationError) Unwrap() error { return e.Reason }

// PurchaseError is reported when the purchase flow failed before producing a record.
type PurchaseError struct {
	Err error
}

func (e *PurchaseError) Error() string {
	return fmt.Sprintf("failed to purchase: %v", e.Err)
}

func (e *PurchaseError) Unwrap() error { return e.Err }

// QuantityParseError is reported when a consumable product id carries no quantity.
type QuantityParseError struct {
	ProductID string
}

func (e *QuantityParseError) Error() string {
	return fmt.Sprintf("failed to get consumable quantity from product id %q", e.ProductID)
}

// CatalogLoadError is reported when the catalog could not be loaded.
type CatalogLoadError struct {
	Err error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("failed to load catalog: %v", e.Err)
}

func (e *CatalogLoadError) Unwrap() error { return e.Err }
