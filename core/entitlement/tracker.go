package entitlement

import (
	"context"

	"go.uber.org/zap"
)

// Tracker records the latest observed subscription status per group and
// ownership type. It has no transition logic of its own.
type Tracker struct {
	store    *Store
	verifier Verifier
	report   Reporter
	logger   *zap.Logger
}

// NewTracker creates a subscription status tracker.
func NewTracker(store *Store, verifier Verifier, report Reporter, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:    store,
		verifier: verifier,
		report:   report,
		logger:   logger,
	}
}

// Track verifies a status update and merges it into the store.
func (t *Tracker) Track(ctx context.Context, signed SignedStatus) {
	t.Apply(t.verify(ctx, signed))
}

// Apply merges an already verified status. Unverified statuses are reported and
// statuses without a subscription group are dropped.
func (t *Tracker) Apply(status SubscriptionStatus) {
	switch o := status.Outcome.(type) {
	case Verified:
		groupID := o.Transaction.SubscriptionGroupID
		if groupID == "" {
			t.logger.Debug("Dropping subscription status without group",
				zap.String("transaction_id", o.Transaction.ID))
			return
		}
		t.store.MergeStatus(groupID, status)
	case Unverified:
		t.report(&VerificationError{Record: o.Transaction, Reason: o.Reason})
	}
}

// Load replaces the statuses of a group with its current enumeration. Only
// verified statuses are kept.
func (t *Tracker) Load(ctx context.Context, group GroupStatuses) {
	statuses := make([]SubscriptionStatus, 0, len(group.Statuses))
	for _, signed := range group.Statuses {
		status := t.verify(ctx, signed)
		if u, ok := status.Outcome.(Unverified); ok {
			t.report(&VerificationError{Record: u.Transaction, Reason: u.Reason})
			continue
		}
		statuses = append(statuses, status)
	}

	t.logger.Info("Loaded subscription statuses",
		zap.String("group_id", group.GroupID),
		zap.Int("count", len(statuses)),
	)
	t.store.ReplaceGroup(group.GroupID, statuses)
}

func (t *Tracker) verify(ctx context.Context, signed SignedStatus) SubscriptionStatus {
	outcome := Verify(ctx, t.verifier, signed.Transaction)
	return SubscriptionStatus{
		Outcome:       outcome,
		State:         signed.State,
		OwnershipType: outcome.Record().OwnershipType,
	}
}
