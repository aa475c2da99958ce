package entitlement

import (
	"strings"
	"time"
)

// ProductKind classifies a purchasable product.
type ProductKind string

const (
	// KindConsumable is spent or granted as a quantity delta.
	KindConsumable ProductKind = "consumable"
	// KindNonConsumable is a persistent one-time unlock.
	KindNonConsumable ProductKind = "nonConsumable"
	// KindAutoRenewable is a subscription tier inside a subscription group.
	KindAutoRenewable ProductKind = "autoRenewable"
	// KindNonRenewable is a time-bounded subscription that does not renew.
	KindNonRenewable ProductKind = "nonRenewable"
)

// OwnershipType distinguishes how an entitlement was obtained.
type OwnershipType string

const (
	// OwnershipPurchased is an entitlement bought by the user.
	OwnershipPurchased OwnershipType = "purchased"
	// OwnershipFamilyShared is an entitlement obtained through family sharing.
	OwnershipFamilyShared OwnershipType = "familyShared"
)

// RevocationReason explains why a transaction was revoked.
type RevocationReason string

const (
	RevocationDeveloperIssue RevocationReason = "developerIssue"
	RevocationOther          RevocationReason = "other"
)

// RenewalState is the externally observed state of a subscription.
type RenewalState string

const (
	StateSubscribed     RenewalState = "subscribed"
	StateInGracePeriod  RenewalState = "inGracePeriod"
	StateInBillingRetry RenewalState = "inBillingRetry"
	StateExpired        RenewalState = "expired"
	StateRevoked        RenewalState = "revoked"
)

// PurchaseRecord is an immutable purchase fact observed from the platform.
// A refund or revocation is the same ID re-observed with the revocation fields set.
type PurchaseRecord struct {
	// ID is the platform transaction identifier.
	ID string `json:"id"`
	// ProductID encodes category and, for consumables, the quantity as its last segment.
	ProductID string `json:"product_id"`
	// ProductKind selects the state transition applied by the processor.
	ProductKind ProductKind `json:"product_kind"`
	// PurchaseDate is when the purchase happened.
	PurchaseDate time.Time `json:"purchase_date"`
	// Quantity is the number of units bought in the transaction.
	Quantity int `json:"quantity"`
	// RevocationDate is set once the platform revoked the transaction.
	RevocationDate *time.Time `json:"revocation_date,omitempty"`
	// RevocationReason is set once the platform revoked the transaction.
	RevocationReason RevocationReason `json:"revocation_reason,omitempty"`
	// SubscriptionGroupID is only set for subscription products.
	SubscriptionGroupID string `json:"subscription_group_id,omitempty"`
	// OwnershipType keys independent status slots within a group.
	OwnershipType OwnershipType `json:"ownership_type"`
}

// IsRevoked reports whether either revocation field is present.
func (r PurchaseRecord) IsRevoked() bool {
	return r.RevocationDate != nil || r.RevocationReason != ""
}

// SignedTransaction is a transaction as delivered by the platform, before verification.
type SignedTransaction struct {
	// JWS is the compact signed representation of the record.
	JWS string `json:"signed_transaction"`
}

// SignedStatus is a subscription status as delivered by the platform.
type SignedStatus struct {
	// Transaction is the latest transaction of the subscription.
	Transaction SignedTransaction `json:"transaction"`
	// State is the renewal state reported by the platform.
	State RenewalState `json:"state"`
}

// GroupStatuses is one entry of the current-statuses enumeration.
type GroupStatuses struct {
	GroupID  string
	Statuses []SignedStatus
}

// SubscriptionStatus is a subscription status after verification.
type SubscriptionStatus struct {
	Outcome       VerificationOutcome
	State         RenewalState
	OwnershipType OwnershipType
}

// SubscriptionInfo is the subscription part of a catalog product.
type SubscriptionInfo struct {
	// GroupID is the subscription group the product belongs to.
	GroupID string `json:"group_id"`
	// TierLevel ranks products in a group; a larger value is a higher tier.
	TierLevel int `json:"tier_level"`
}

// ProductDescriptor is a purchasable item returned by the catalog.
type ProductDescriptor struct {
	ID           string            `json:"id"`
	Kind         ProductKind       `json:"kind"`
	DisplayName  string            `json:"display_name"`
	Description  string            `json:"description"`
	DisplayPrice string            `json:"display_price"`
	Subscription *SubscriptionInfo `json:"subscription,omitempty"`
}

// Plan is the resolved feature plan of the user.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPlus    Plan = "plus"
	PlanPremium Plan = "premium"
)

// PlanFromProductID maps a subscription product id to its plan using the last
// dot-separated segment. Unknown segments resolve to PlanFree.
func PlanFromProductID(productID string) Plan {
	segments := strings.Split(productID, ".")
	switch p := Plan(segments[len(segments)-1]); p {
	case PlanPlus, PlanPremium:
		return p
	default:
		return PlanFree
	}
}
