package entitlements

import "purchase-manager/core/entitlement"

// Purchase result statuses accepted by POST /entitlements/purchases.
const (
	StatusSuccess   = "success"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// PurchaseRequest is the outcome of a purchase flow reported by the client.
type PurchaseRequest struct {
	Status            string `json:"status"`
	SignedTransaction string `json:"signed_transaction,omitempty"`
	Error             string `json:"error,omitempty"`
}

// State is the entitlement state of the user.
type State struct {
	Balance   int              `json:"balance"`
	Plan      entitlement.Plan `json:"plan"`
	Owned     []string         `json:"owned"`
	LastError string           `json:"last_error,omitempty"`
}

// Ownership answers whether a single product is owned.
type Ownership struct {
	ProductID string `json:"product_id"`
	Owned     bool   `json:"owned"`
}

// Listings are the loaded products grouped for display.
type Listings struct {
	Consumables    []entitlement.ProductDescriptor `json:"consumables"`
	NonConsumables []entitlement.ProductDescriptor `json:"non_consumables"`
	Subscriptions  []entitlement.ProductDescriptor `json:"subscriptions"`
}
