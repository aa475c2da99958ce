package reconcile

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"purchase-manager/core/entitlement"
	"purchase-manager/core/kvstore"
	"purchase-manager/core/verifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "reconcile-secret"

// history is an in-memory transaction history.
type history []entitlement.SignedTransaction

func (h history) All(context.Context) <-chan entitlement.SignedTransaction {
	ch := make(chan entitlement.SignedTransaction, len(h))
	for _, tx := range h {
		ch <- tx
	}
	close(ch)
	return ch
}

// failingStore fails every read and write.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (int, error) { return 0, errors.New("store down") }
func (failingStore) Set(context.Context, string, int) error   { return errors.New("store down") }

var spec = &Spec{BalanceKey: "gachaStone", ConsumableIdentifier: "gachaStone"}

func signWith(t *testing.T, key string, record entitlement.PurchaseRecord) entitlement.SignedTransaction {
	t.Helper()
	tx, err := verifier.NewHMACSigner(key, "").Sign(record)
	require.NoError(t, err)
	return tx
}

func consumable(id, productID string) entitlement.PurchaseRecord {
	return entitlement.PurchaseRecord{
		ID:           id,
		ProductID:    productID,
		ProductKind:  entitlement.KindConsumable,
		PurchaseDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Quantity:     1,
	}
}

func refunded(record entitlement.PurchaseRecord) entitlement.PurchaseRecord {
	revokedAt := record.PurchaseDate.Add(time.Hour)
	record.RevocationDate = &revokedAt
	record.RevocationReason = entitlement.RevocationOther
	return record
}

func newVerifier(t *testing.T) entitlement.Verifier {
	t.Helper()
	v, err := verifier.New(verifier.Config{Algorithm: verifier.AlgorithmHS256, Secret: secret})
	require.NoError(t, err)
	return v
}

func sampleHistory(t *testing.T) history {
	small := consumable("tx-2", "consumable.gachaStone.100")
	return history{
		signWith(t, secret, consumable("tx-1", "consumable.gachaStone.500")),
		signWith(t, secret, small),
		signWith(t, secret, entitlement.PurchaseRecord{ID: "tx-3", ProductID: "nonconsumable.removeAds", ProductKind: entitlement.KindNonConsumable}),
		signWith(t, secret, refunded(small)),
		signWith(t, "forged", consumable("tx-4", "consumable.gachaStone.10000")),
		signWith(t, secret, consumable("tx-5", "consumable.gachaStone.bundle")),
	}
}

func TestReplay(t *testing.T) {
	results, summary, err := Replay(context.Background(), spec, sampleHistory(t), newVerifier(t))
	require.NoError(t, err)

	assert.Equal(t, PlanSummary{
		Transactions: 6,
		Consumables:  5,
		Unverified:   1,
		Unparseable:  1,
		Revoked:      1,
		Expected:     500,
	}, summary)

	require.Len(t, results, 5)
	assert.True(t, results[0].Applied())
	assert.Equal(t, 500, results[0].Quantity)
	assert.True(t, results[2].Revoked)
	assert.True(t, results[2].Applied())

	assert.False(t, results[3].Verified)
	assert.False(t, results[3].Applied())
	assert.Contains(t, results[3].Mismatch[0], "signature")

	assert.True(t, results[4].Verified)
	assert.Equal(t, []string{"quantity: product id has no trailing number"}, results[4].Mismatch)
}

func TestReplay_RefundBeforeCreditGoesNegative(t *testing.T) {
	h := history{signWith(t, secret, refunded(consumable("tx-1", "consumable.gachaStone.300")))}

	_, summary, err := Replay(context.Background(), spec, h, newVerifier(t))
	require.NoError(t, err)
	assert.Equal(t, -300, summary.Expected)
}

func TestReplay_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Replay(ctx, spec, history{}, newVerifier(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReconcileWithPlan(t *testing.T) {
	tests := []struct {
		name      string
		persisted int
		opts      ReconcileOptions
		drift     int
		actions   int
	}{
		{name: "In sync", persisted: 500, opts: ReconcileOptions{DoSync: true}},
		{name: "Report only", persisted: 1000, drift: 500},
		{name: "Double credit", persisted: 1000, opts: ReconcileOptions{DoSync: true}, drift: 500, actions: 1},
		{name: "Missing credit", persisted: 0, opts: ReconcileOptions{DoSync: true}, drift: -500, actions: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := kvstore.NewMemoryStore()
			require.NoError(t, kv.Set(ctx, spec.BalanceKey, tt.persisted))

			plan, err := ReconcileWithPlan(ctx, spec, sampleHistory(t), newVerifier(t), kv, tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.persisted, plan.Summary.Persisted)
			assert.Equal(t, tt.drift, plan.Summary.Drift)
			assert.Equal(t, tt.drift == 0, plan.InSync())
			assert.Len(t, plan.Actions, tt.actions)
			assert.Equal(t, tt.actions, plan.Summary.SyncActions)
			if tt.actions > 0 {
				assert.Equal(t, Action{
					Type:   ActionSyncBalance,
					Key:    "gachaStone",
					Value:  500,
					Reason: "persisted=" + strconv.Itoa(tt.persisted) + " expected=500",
				}, plan.Actions[0])
			}
		})
	}
}

func TestReconcileWithPlan_StoreError(t *testing.T) {
	_, err := ReconcileWithPlan(context.Background(), spec, history{}, newVerifier(t), failingStore{}, ReconcileOptions{})
	assert.ErrorContains(t, err, "store down")
}

func TestApplyPlan(t *testing.T) {
	plan := &ReconcilePlan{Actions: []Action{{Type: ActionSyncBalance, Key: "gachaStone", Value: 500}}}

	tests := []struct {
		name     string
		opts     ReconcileOptions
		executed int
		balance  int
	}{
		{name: "Not confirmed", opts: ReconcileOptions{DoSync: true}, balance: 1000},
		{name: "Dry run", opts: ReconcileOptions{DoSync: true, DryRun: true, Confirmed: true}, balance: 1000},
		{name: "Confirmed", opts: ReconcileOptions{DoSync: true, Confirmed: true}, executed: 1, balance: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := kvstore.NewMemoryStore()
			require.NoError(t, kv.Set(ctx, "gachaStone", 1000))

			executed, err := ApplyPlan(ctx, kv, plan, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.executed, executed)

			balance, _ := kv.Get(ctx, "gachaStone")
			assert.Equal(t, tt.balance, balance)
		})
	}
}

func TestApplyPlan_Errors(t *testing.T) {
	opts := ReconcileOptions{Confirmed: true}

	_, err := ApplyPlan(context.Background(), failingStore{}, &ReconcilePlan{Actions: []Action{{Type: ActionSyncBalance, Key: "k"}}}, opts)
	assert.ErrorContains(t, err, "failed to sync k")

	_, err = ApplyPlan(context.Background(), kvstore.NewMemoryStore(), &ReconcilePlan{Actions: []Action{{Type: "purge"}}}, opts)
	assert.ErrorContains(t, err, "unknown action type")
}

func TestDrift(t *testing.T) {
	assert.Equal(t, 0, drift(5, 5))
	assert.Equal(t, -5, drift(0, 5))
	assert.Equal(t, math.MinInt, drift(math.MinInt, 1))
	assert.Equal(t, math.MaxInt, drift(math.MaxInt, -1))
}
