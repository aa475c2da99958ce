package notifications

import (
	"context"
	"errors"
	"fmt"

	"purchase-manager/core/entitlement"
)

// ErrInvalidNotification is returned for a notification that cannot be ingested.
var ErrInvalidNotification = errors.New("invalid notification")

// Ingester appends platform notifications to the journal.
type Ingester interface {
	Ingest(ctx context.Context, tx entitlement.SignedTransaction) error
	IngestStatus(ctx context.Context, status entitlement.SignedStatus) error
}

// Service validates platform notifications before ingesting them.
type Service struct {
	ingester Ingester
}

// NewService creates a new notifications service.
func NewService(ingester Ingester) *Service {
	return &Service{ingester: ingester}
}

// Transaction ingests a signed transaction notification.
func (s *Service) Transaction(ctx context.Context, tx entitlement.SignedTransaction) error {
	if tx.JWS == "" {
		return fmt.Errorf("%w: signed_transaction is required", ErrInvalidNotification)
	}
	if err := s.ingester.Ingest(ctx, tx); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	return nil
}

// Status ingests a subscription status notification.
func (s *Service) Status(ctx context.Context, status entitlement.SignedStatus) error {
	if status.Transaction.JWS == "" {
		return fmt.Errorf("%w: transaction.signed_transaction is required", ErrInvalidNotification)
	}
	switch status.State {
	case entitlement.StateSubscribed, entitlement.StateExpired, entitlement.StateInBillingRetry,
		entitlement.StateInGracePeriod, entitlement.StateRevoked:
	default:
		return fmt.Errorf("%w: unknown state %q", ErrInvalidNotification, status.State)
	}
	if err := s.ingester.IngestStatus(ctx, status); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNotification, err)
	}
	return nil
}
