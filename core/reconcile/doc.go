// Package reconcile audits the persisted consumable balance against the
// transaction history.
//
// The history is replayed through the same verification, quantity parsing and
// saturating arithmetic the entitlement processor uses. The replayed balance
// is compared with the one in the key-value store and any drift is reported.
//
// # Usage Example
//
//	spec := &reconcile.Spec{BalanceKey: "gachaStone", ConsumableIdentifier: "gachaStone"}
//	opts := reconcile.ReconcileOptions{DoSync: true}
//
//	plan, err := reconcile.ReconcileWithPlan(ctx, spec, journal, verifier, balances, opts)
//
//	// After confirmation
//	opts.Confirmed = true
//	executed, err := reconcile.ApplyPlan(ctx, balances, plan, opts)
package reconcile
