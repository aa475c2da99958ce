package platform

import (
	"context"
	"fmt"
	"time"

	"purchase-manager/core/entitlement"
	"purchase-manager/core/verifier"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const streamBuffer = 64

// Journal is a gorm-backed platform. It implements entitlement.Platform.
type Journal struct {
	db       *gorm.DB
	logger   *zap.Logger
	updates  *broadcaster[entitlement.SignedTransaction]
	statuses *broadcaster[entitlement.SignedStatus]
	now      func() time.Time
}

// NewJournal creates a journal over db.
func NewJournal(db *gorm.DB, logger *zap.Logger) *Journal {
	return &Journal{
		db:       db,
		logger:   logger,
		updates:  newBroadcaster[entitlement.SignedTransaction](),
		statuses: newBroadcaster[entitlement.SignedStatus](),
		now:      time.Now,
	}
}

// Migrate creates or updates the journal tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&TransactionRow{}, &StatusRow{}); err != nil {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}
	return nil
}

// Ingest appends a signed transaction to the journal and publishes it to the
// live update stream. Indexed columns come from the unverified payload; the
// entitlement manager verifies the token itself.
func (j *Journal) Ingest(ctx context.Context, tx entitlement.SignedTransaction) error {
	if err := j.Record(ctx, tx); err != nil {
		return err
	}
	j.updates.publish(tx)
	return nil
}

// Record appends a signed transaction without publishing it. Purchases
// completed in the app are delivered through the purchase result instead of
// the update stream, but still belong to the history.
func (j *Journal) Record(ctx context.Context, tx entitlement.SignedTransaction) error {
	record := verifier.Decode(tx)
	if record.ID == "" {
		return fmt.Errorf("transaction payload cannot be decoded")
	}

	row := TransactionRow{
		ID:            uuid.NewString(),
		TransactionID: record.ID,
		ProductID:     record.ProductID,
		ProductKind:   string(record.ProductKind),
		Revoked:       record.IsRevoked(),
		JWS:           tx.JWS,
		CreatedAt:     j.now(),
	}
	if err := j.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to journal transaction %s: %w", record.ID, err)
	}
	return nil
}

// IngestStatus appends a subscription status to the journal and publishes it
// to the live status stream.
func (j *Journal) IngestStatus(ctx context.Context, status entitlement.SignedStatus) error {
	record := verifier.Decode(status.Transaction)
	if record.ID == "" {
		return fmt.Errorf("status transaction payload cannot be decoded")
	}

	row := StatusRow{
		ID:            uuid.NewString(),
		GroupID:       record.SubscriptionGroupID,
		OwnershipType: string(record.OwnershipType),
		State:         string(status.State),
		JWS:           status.Transaction.JWS,
		CreatedAt:     j.now(),
	}
	if err := j.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to journal status of %s: %w", record.ID, err)
	}

	j.statuses.publish(status)
	return nil
}

// Updates streams transactions ingested after the call.
func (j *Journal) Updates(ctx context.Context) <-chan entitlement.SignedTransaction {
	return j.updates.subscribe(ctx, streamBuffer)
}

// StatusUpdates streams statuses ingested after the call.
func (j *Journal) StatusUpdates(ctx context.Context) <-chan entitlement.SignedStatus {
	return j.statuses.subscribe(ctx, streamBuffer)
}

// CurrentEntitlements enumerates the latest observation of every
// non-consumable and subscription product that is not revoked.
func (j *Journal) CurrentEntitlements(ctx context.Context) <-chan entitlement.SignedTransaction {
	return j.enumerate(ctx, "current entitlements", func(db *gorm.DB) ([]entitlement.SignedTransaction, error) {
		var rows []TransactionRow
		err := db.Where("product_kind IN ?", []string{
			string(entitlement.KindNonConsumable),
			string(entitlement.KindAutoRenewable),
			string(entitlement.KindNonRenewable),
		}).Order("created_at, id").Find(&rows).Error
		if err != nil {
			return nil, err
		}

		latest := make(map[string]TransactionRow)
		var order []string
		for _, row := range rows {
			if _, seen := latest[row.ProductID]; !seen {
				order = append(order, row.ProductID)
			}
			latest[row.ProductID] = row
		}

		var txs []entitlement.SignedTransaction
		for _, productID := range order {
			if row := latest[productID]; !row.Revoked {
				txs = append(txs, entitlement.SignedTransaction{JWS: row.JWS})
			}
		}
		return txs, nil
	})
}

// Unfinished enumerates transactions that were never finished.
func (j *Journal) Unfinished(ctx context.Context) <-chan entitlement.SignedTransaction {
	return j.enumerate(ctx, "unfinished transactions", func(db *gorm.DB) ([]entitlement.SignedTransaction, error) {
		return loadTransactions(db.Where("finished = ?", false))
	})
}

// All enumerates the whole transaction history, oldest first.
func (j *Journal) All(ctx context.Context) <-chan entitlement.SignedTransaction {
	return j.enumerate(ctx, "transaction history", loadTransactions)
}

// CurrentStatuses enumerates, per subscription group, the latest status of
// every ownership type.
func (j *Journal) CurrentStatuses(ctx context.Context) <-chan entitlement.GroupStatuses {
	out := make(chan entitlement.GroupStatuses)

	go func() {
		defer close(out)

		var rows []StatusRow
		if err := j.db.WithContext(ctx).Where("group_id <> ?", "").Order("created_at, id").Find(&rows).Error; err != nil {
			j.logger.Error("Failed to enumerate subscription statuses", zap.Error(err))
			return
		}

		groups := make(map[string]map[string]StatusRow)
		var order []string
		for _, row := range rows {
			if _, ok := groups[row.GroupID]; !ok {
				groups[row.GroupID] = make(map[string]StatusRow)
				order = append(order, row.GroupID)
			}
			groups[row.GroupID][row.OwnershipType] = row
		}

		for _, groupID := range order {
			group := entitlement.GroupStatuses{GroupID: groupID}
			for _, row := range groups[groupID] {
				group.Statuses = append(group.Statuses, entitlement.SignedStatus{
					Transaction: entitlement.SignedTransaction{JWS: row.JWS},
					State:       entitlement.RenewalState(row.State),
				})
			}
			select {
			case out <- group:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Finish marks every observation of the transaction as finished. Finishing an
// unknown or already finished transaction is not an error.
func (j *Journal) Finish(ctx context.Context, transactionID string) error {
	err := j.db.WithContext(ctx).Model(&TransactionRow{}).
		Where("transaction_id = ? AND finished = ?", transactionID, false).
		Update("finished", true).Error
	if err != nil {
		return fmt.Errorf("failed to finish transaction %s: %w", transactionID, err)
	}
	return nil
}

// Sync is a no-op: the journal is its own source of truth.
func (j *Journal) Sync(ctx context.Context) error {
	return ctx.Err()
}

func (j *Journal) enumerate(ctx context.Context, name string, load func(*gorm.DB) ([]entitlement.SignedTransaction, error)) <-chan entitlement.SignedTransaction {
	out := make(chan entitlement.SignedTransaction)

	go func() {
		defer close(out)

		txs, err := load(j.db.WithContext(ctx))
		if err != nil {
			j.logger.Error("Failed to enumerate journal", zap.String("stream", name), zap.Error(err))
			return
		}

		for _, tx := range txs {
			select {
			case out <- tx:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func loadTransactions(db *gorm.DB) ([]entitlement.SignedTransaction, error) {
	var rows []TransactionRow
	if err := db.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, err
	}

	txs := make([]entitlement.SignedTransaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, entitlement.SignedTransaction{JWS: row.JWS})
	}
	return txs, nil
}
