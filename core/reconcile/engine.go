package reconcile

import (
	"context"
	"fmt"

	"purchase-manager/core/entitlement"
	"purchase-manager/core/kvstore"
)

// Replay verifies every transaction in history and folds the verified
// consumables into the balance they should have produced, starting from zero.
// Credits and refunds saturate exactly like the live processor.
//
// Each journaled transaction counts once, so a persisted balance above the
// replay usually means a transaction was credited twice.
func Replay(ctx context.Context, spec *Spec, history History, verifier entitlement.Verifier) ([]ReconcileResult, PlanSummary, error) {
	ledger, err := entitlement.NewStore(ctx, kvstore.NewMemoryStore(), spec.BalanceKey)
	if err != nil {
		return nil, PlanSummary{}, err
	}

	var (
		results []ReconcileResult
		summary PlanSummary
	)
	for tx := range history.All(ctx) {
		summary.Transactions++

		outcome := entitlement.Verify(ctx, verifier, tx)
		unverified, failed := outcome.(entitlement.Unverified)
		if failed {
			summary.Unverified++
		}

		record := outcome.Record()
		if record.ProductKind != entitlement.KindConsumable {
			continue
		}
		summary.Consumables++

		result := ReconcileResult{
			TransactionID: record.ID,
			ProductID:     record.ProductID,
			Verified:      !failed,
			Revoked:       record.IsRevoked(),
		}
		if failed {
			result.Mismatch = append(result.Mismatch, fmt.Sprintf("signature: %v", unverified.Reason))
		}
		if quantity, ok := entitlement.ParseQuantity(record.ProductID, spec.ConsumableIdentifier); ok {
			result.Quantity = quantity
		} else {
			summary.Unparseable++
			result.Mismatch = append(result.Mismatch, "quantity: product id has no trailing number")
		}
		if result.Revoked {
			summary.Revoked++
		}

		if result.Applied() {
			if err := apply(ctx, ledger, result); err != nil {
				return nil, PlanSummary{}, err
			}
		}
		results = append(results, result)
	}

	if err := ctx.Err(); err != nil {
		return nil, PlanSummary{}, err
	}

	summary.Expected = ledger.Balance()
	return results, summary, nil
}

func apply(ctx context.Context, ledger *entitlement.Store, result ReconcileResult) error {
	var err error
	if result.Revoked {
		_, err = ledger.Debit(ctx, result.Quantity)
	} else {
		_, err = ledger.Credit(ctx, result.Quantity)
	}
	if err != nil {
		return fmt.Errorf("failed to replay transaction %s: %w", result.TransactionID, err)
	}
	return nil
}
