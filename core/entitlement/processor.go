package entitlement

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Finalizer acknowledges to the platform that a transaction was fully processed.
// Finishing the same transaction twice must be harmless.
type Finalizer interface {
	Finish(ctx context.Context, transactionID string) error
}

// Reporter receives every failure captured while processing.
type Reporter func(err error)

// Processor applies verified transactions to the store and finalizes them.
type Processor struct {
	store                *Store
	finalizer            Finalizer
	consumableIdentifier string
	report               Reporter
	logger               *zap.Logger
}

// NewProcessor creates a transaction processor. Quantities are only parsed from
// product ids containing consumableIdentifier; an empty identifier accepts all.
func NewProcessor(store *Store, finalizer Finalizer, consumableIdentifier string, report Reporter, logger *zap.Logger) *Processor {
	return &Processor{
		store:                store,
		finalizer:            finalizer,
		consumableIdentifier: consumableIdentifier,
		report:               report,
		logger:               logger,
	}
}

// Process applies a verification outcome. Unverified outcomes are reported and
// never mutate state.
func (p *Processor) Process(ctx context.Context, outcome VerificationOutcome) {
	switch o := outcome.(type) {
	case Verified:
		p.ProcessTransaction(ctx, o.Transaction)
	case Unverified:
		p.report(&VerificationError{Record: o.Transaction, Reason: o.Reason})
	default:
		p.report(fmt.Errorf("unknown verification outcome %T", outcome))
	}
}

// ProcessTransaction dispatches a verified record by product kind.
// Subscriptions are finalized without mutation; their ownership comes from the
// status tracker. A consumable whose balance could not be persisted stays
// unfinished so the platform delivers it again.
func (p *Processor) ProcessTransaction(ctx context.Context, record PurchaseRecord) {
	switch record.ProductKind {
	case KindConsumable:
		if !p.processConsumable(ctx, record) {
			return
		}
	case KindNonConsumable:
		p.processNonConsumable(record)
	case KindAutoRenewable, KindNonRenewable:
	default:
		p.logger.Warn("Finishing transaction of unknown product kind",
			zap.String("transaction_id", record.ID),
			zap.String("product_kind", string(record.ProductKind)),
		)
	}
	p.finish(ctx, record)
}

// processConsumable credits or debits the encoded quantity and reports whether
// the transaction may be finished. Re-delivery of the same transaction applies
// the delta again.
func (p *Processor) processConsumable(ctx context.Context, record PurchaseRecord) bool {
	quantity, ok := p.ParseQuantity(record.ProductID)
	if !ok {
		p.report(&QuantityParseError{ProductID: record.ProductID})
		return true
	}

	var (
		balance int
		err     error
	)
	if record.IsRevoked() {
		balance, err = p.store.Debit(ctx, quantity)
	} else {
		balance, err = p.store.Credit(ctx, quantity)
	}
	if err != nil {
		p.report(fmt.Errorf("transaction %s left unfinished: %w", record.ID, err))
		return false
	}

	p.logger.Debug("Applied consumable transaction",
		zap.String("transaction_id", record.ID),
		zap.String("product_id", record.ProductID),
		zap.Int("quantity", quantity),
		zap.Bool("revoked", record.IsRevoked()),
		zap.Int("balance", balance),
	)
	return true
}

func (p *Processor) processNonConsumable(record PurchaseRecord) {
	if record.IsRevoked() {
		p.store.Revoke(record.ProductID)
		return
	}
	p.store.Grant(record.ProductID)
}

func (p *Processor) finish(ctx context.Context, record PurchaseRecord) {
	if err := p.finalizer.Finish(ctx, record.ID); err != nil {
		p.report(fmt.Errorf("failed to finish transaction %s: %w", record.ID, err))
	}
}

// ParseQuantity returns the trailing numeric segment of a consumable product id.
func (p *Processor) ParseQuantity(productID string) (int, bool) {
	return ParseQuantity(productID, p.consumableIdentifier)
}

// ParseQuantity returns the trailing numeric segment of productID. When
// consumableIdentifier is set, ids that do not contain it are rejected.
func ParseQuantity(productID, consumableIdentifier string) (int, bool) {
	if consumableIdentifier != "" && !strings.Contains(productID, consumableIdentifier) {
		return 0, false
	}
	return parseTrailingInt(productID)
}

func parseTrailingInt(productID string) (int, bool) {
	segment := productID[strings.LastIndex(productID, ".")+1:]
	quantity, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	return quantity, true
}
