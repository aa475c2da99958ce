package entitlements

import (
	"context"
	"errors"
	"fmt"

	"purchase-manager/core/entitlement"

	"go.uber.org/zap"
)

// ErrInvalidPurchase is returned for a purchase request that cannot be mapped
// to a purchase result.
var ErrInvalidPurchase = errors.New("invalid purchase request")

// Manager is the part of entitlement.Manager the HTTP surface relies on.
type Manager interface {
	Balance() int
	Owns(productID string) bool
	Owned() []string
	Plan() entitlement.Plan
	Transactions(ctx context.Context) []entitlement.PurchaseRecord
	LastError() error
	SubmitPurchaseResult(ctx context.Context, result entitlement.PurchaseResult) error
	Restore(ctx context.Context) error
	LoadProducts(ctx context.Context)
	ConsumableProducts() []entitlement.ProductDescriptor
	NonConsumableProducts() []entitlement.ProductDescriptor
	SubscriptionProducts() []entitlement.ProductDescriptor
}

// Recorder keeps successful purchases in the transaction history.
type Recorder interface {
	Record(ctx context.Context, tx entitlement.SignedTransaction) error
}

// Service adapts the entitlement manager to request and response models.
type Service struct {
	manager  Manager
	recorder Recorder
	logger   *zap.Logger
}

// NewService creates a new entitlements service. recorder may be nil.
func NewService(manager Manager, recorder Recorder, logger *zap.Logger) *Service {
	return &Service{manager: manager, recorder: recorder, logger: logger}
}

// State snapshots the current entitlement state.
func (s *Service) State() State {
	state := State{
		Balance: s.manager.Balance(),
		Plan:    s.manager.Plan(),
		Owned:   s.manager.Owned(),
	}
	if state.Owned == nil {
		state.Owned = []string{}
	}
	if err := s.manager.LastError(); err != nil {
		state.LastError = err.Error()
	}
	return state
}

// Submit maps req to a purchase result and hands it to the manager.
func (s *Service) Submit(ctx context.Context, req PurchaseRequest) (State, error) {
	result, err := toPurchaseResult(req)
	if err != nil {
		return State{}, err
	}
	if success, ok := result.(entitlement.PurchaseSuccess); ok && s.recorder != nil {
		// The manager still processes a purchase the history could not keep.
		if err := s.recorder.Record(ctx, success.Transaction); err != nil {
			s.logger.Warn("Failed to record purchase", zap.Error(err))
		}
	}
	if err := s.manager.SubmitPurchaseResult(ctx, result); err != nil {
		return State{}, err
	}
	return s.State(), nil
}

// Restore resynchronizes with the platform.
func (s *Service) Restore(ctx context.Context) (State, error) {
	if err := s.manager.Restore(ctx); err != nil {
		return State{}, err
	}
	return s.State(), nil
}

// Listings groups the loaded products, reloading the catalog first if asked.
func (s *Service) Listings(ctx context.Context, reload bool) Listings {
	if reload {
		s.manager.LoadProducts(ctx)
	}
	return Listings{
		Consumables:    orEmpty(s.manager.ConsumableProducts()),
		NonConsumables: orEmpty(s.manager.NonConsumableProducts()),
		Subscriptions:  orEmpty(s.manager.SubscriptionProducts()),
	}
}

func toPurchaseResult(req PurchaseRequest) (entitlement.PurchaseResult, error) {
	switch req.Status {
	case StatusSuccess:
		if req.SignedTransaction == "" {
			return nil, fmt.Errorf("%w: signed_transaction is required", ErrInvalidPurchase)
		}
		return entitlement.PurchaseSuccess{
			Transaction: entitlement.SignedTransaction{JWS: req.SignedTransaction},
		}, nil
	case StatusPending:
		return entitlement.PurchasePending{}, nil
	case StatusCancelled:
		return entitlement.PurchaseCancelled{}, nil
	case StatusFailed:
		msg := req.Error
		if msg == "" {
			msg = "purchase failed"
		}
		return entitlement.PurchaseFailure{Err: errors.New(msg)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidPurchase, req.Status)
	}
}

func orEmpty(products []entitlement.ProductDescriptor) []entitlement.ProductDescriptor {
	if products == nil {
		return []entitlement.ProductDescriptor{}
	}
	return products
}
