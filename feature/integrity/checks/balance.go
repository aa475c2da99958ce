package checks

import (
	"context"
	"fmt"

	"purchase-manager/core/entitlement"
	"purchase-manager/core/reconcile"
)

// BalanceAudit groups what a balance check replays and compares.
type BalanceAudit struct {
	Spec     *reconcile.Spec
	History  reconcile.History
	Verifier entitlement.Verifier
	Store    entitlement.KeyValueStore
}

// CheckBalance replays the history and reports the drift of the persisted
// balance. It never repairs anything.
func CheckBalance(ctx context.Context, audit BalanceAudit) (*reconcile.PlanSummary, error) {
	if audit.Spec == nil || audit.History == nil || audit.Verifier == nil || audit.Store == nil {
		return nil, fmt.Errorf("balance audit is not configured")
	}

	plan, err := reconcile.ReconcileWithPlan(ctx, audit.Spec, audit.History, audit.Verifier, audit.Store, reconcile.ReconcileOptions{})
	if err != nil {
		return nil, err
	}
	return &plan.Summary, nil
}
