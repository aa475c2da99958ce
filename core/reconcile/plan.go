package reconcile

import (
	"context"
	"fmt"
	"math"

	"purchase-manager/core/entitlement"
)

// ReconcileWithPlan replays the history, compares it with the persisted
// balance and plans the repairs allowed by opts.
// It does NOT execute actions; use ApplyPlan for that.
func ReconcileWithPlan(
	ctx context.Context,
	spec *Spec,
	history History,
	verifier entitlement.Verifier,
	kv entitlement.KeyValueStore,
	opts ReconcileOptions,
) (*ReconcilePlan, error) {
	results, summary, err := Replay(ctx, spec, history, verifier)
	if err != nil {
		return nil, err
	}

	persisted, err := kv.Get(ctx, spec.BalanceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance %q: %w", spec.BalanceKey, err)
	}
	summary.Persisted = persisted
	summary.Drift = drift(persisted, summary.Expected)

	actions := buildActions(spec, summary, opts)
	summary.SyncActions = len(actions)

	return &ReconcilePlan{
		Results: results,
		Actions: actions,
		Summary: summary,
	}, nil
}

// ApplyPlan executes the actions in a reconcile plan and returns how many ran.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, kv entitlement.KeyValueStore, plan *ReconcilePlan, opts ReconcileOptions) (int, error) {
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	executed := 0
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionSyncBalance:
			if err := kv.Set(ctx, action.Key, action.Value); err != nil {
				return executed, fmt.Errorf("failed to sync %s: %w", action.Key, err)
			}
		default:
			return executed, fmt.Errorf("unknown action type %q", action.Type)
		}
		executed++
	}
	return executed, nil
}

func buildActions(spec *Spec, summary PlanSummary, opts ReconcileOptions) []Action {
	if !opts.DoSync || summary.Drift == 0 {
		return nil
	}
	return []Action{{
		Type:   ActionSyncBalance,
		Key:    spec.BalanceKey,
		Value:  summary.Expected,
		Reason: fmt.Sprintf("persisted=%d expected=%d", summary.Persisted, summary.Expected),
	}}
}

// drift returns persisted-expected, clamped to the int range.
func drift(persisted, expected int) int {
	d := persisted - expected
	switch {
	case expected > 0 && d > persisted:
		return math.MinInt
	case expected < 0 && d < persisted:
		return math.MaxInt
	}
	return d
}
