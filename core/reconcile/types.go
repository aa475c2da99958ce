package reconcile

import (
	"context"

	"purchase-manager/core/entitlement"
)

// History enumerates every transaction ever recorded, oldest first.
type History interface {
	All(ctx context.Context) <-chan entitlement.SignedTransaction
}

// Spec describes what a balance reconciliation compares.
type Spec struct {
	// BalanceKey is the key the consumable balance is persisted under.
	BalanceKey string

	// ConsumableIdentifier must appear in a consumable product id for its
	// quantity to be parsed. Empty accepts any trailing number.
	ConsumableIdentifier string
}

// ReconcileResult is the replay outcome of a single consumable transaction.
type ReconcileResult struct {
	// TransactionID is the platform transaction identifier.
	TransactionID string `json:"transaction_id"`

	// ProductID is the purchased consumable.
	ProductID string `json:"product_id"`

	// Verified is false when the signature check failed. Unverified
	// transactions never move the balance.
	Verified bool `json:"verified"`

	// Revoked marks a refund, replayed as a debit.
	Revoked bool `json:"revoked"`

	// Quantity is parsed from the product id. Zero when unparseable.
	Quantity int `json:"quantity"`

	// Mismatch lists why the transaction was left out of the expected balance.
	Mismatch []string `json:"mismatch,omitempty"`
}

// Applied reports whether the transaction moved the expected balance.
func (r ReconcileResult) Applied() bool {
	return len(r.Mismatch) == 0
}

// ActionType identifies the kind of repair an action performs.
type ActionType string

const (
	// ActionSyncBalance overwrites the persisted balance with the replayed one.
	ActionSyncBalance ActionType = "sync_balance"
)

// Action is a single planned repair.
type Action struct {
	// Type is the repair to perform.
	Type ActionType `json:"type"`

	// Key is the store key the action writes.
	Key string `json:"key"`

	// Value is written under Key.
	Value int `json:"value"`

	// Reason explains why the action is needed.
	Reason string `json:"reason"`
}

// PlanSummary aggregates the replay.
type PlanSummary struct {
	Transactions int `json:"transactions"`
	Consumables  int `json:"consumables"`
	Unverified   int `json:"unverified"`
	Unparseable  int `json:"unparseable"`
	Revoked      int `json:"revoked"`
	Expected     int `json:"expected"`
	Persisted    int `json:"persisted"`
	Drift        int `json:"drift"`
	SyncActions  int `json:"sync_actions"`
}

// ReconcilePlan holds the replay results and the actions that would repair
// the persisted balance.
type ReconcilePlan struct {
	Results []ReconcileResult `json:"results"`
	Actions []Action          `json:"actions"`
	Summary PlanSummary       `json:"summary"`
}

// InSync reports whether the persisted balance matches the replay.
func (p *ReconcilePlan) InSync() bool {
	return p.Summary.Drift == 0
}

// ReconcileOptions controls which actions are planned and whether they run.
type ReconcileOptions struct {
	// DoSync plans a balance overwrite when drift is detected.
	DoSync bool

	// DryRun plans actions without executing them.
	DryRun bool

	// Confirmed must be set for ApplyPlan to write anything.
	Confirmed bool
}
