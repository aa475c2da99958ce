package entitlement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CatalogLoader loads purchasable products from the external catalog.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, productIDs []string) ([]ProductDescriptor, error)
}

// Syncer asks the platform to resynchronize with its source of truth.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Platform bundles every collaborator the manager consumes from the platform.
type Platform interface {
	TransactionSource
	StatusSource
	Finalizer
	Syncer
}

// Config holds the entitlement settings of the manager.
type Config struct {
	// BalanceKey is the key under which the consumable balance is persisted.
	BalanceKey string
	// ConsumableIdentifier must be part of every consumable product id.
	ConsumableIdentifier string
	// SubscriptionGroupID is the group resolved into a Plan.
	SubscriptionGroupID string
	// ProductIDs are requested from the catalog.
	ProductIDs []string
}

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("entitlement manager is closed")

// Manager reconciles platform events into entitlement state and exposes it to
// the presentation layer.
type Manager struct {
	cfg       Config
	platform  Platform
	verifier  Verifier
	catalog   CatalogLoader
	logger    *zap.Logger
	store     *Store
	processor *Processor
	tracker   *Tracker
	mux       *Multiplexer

	mu       sync.RWMutex
	lastErr  error
	products []ProductDescriptor

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewManager creates a manager. The balance is hydrated from kv immediately;
// call Start to begin consuming the platform streams.
func NewManager(ctx context.Context, cfg Config, platform Platform, verifier Verifier, catalog CatalogLoader, kv KeyValueStore, logger *zap.Logger) (*Manager, error) {
	store, err := NewStore(ctx, kv, cfg.BalanceKey)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:      cfg,
		platform: platform,
		verifier: verifier,
		catalog:  catalog,
		logger:   logger,
		store:    store,
	}
	m.processor = NewProcessor(store, platform, cfg.ConsumableIdentifier, m.reportError, logger)
	m.tracker = NewTracker(store, verifier, m.reportError, logger)
	m.mux = NewMultiplexer(platform, platform, verifier, m.processor, m.tracker, logger)
	return m, nil
}

// Start launches the listener loops and loads the catalog.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx, m.cancel = context.WithCancel(ctx)
	runCtx := m.ctx
	m.mu.Unlock()

	m.mux.Start(runCtx)
	m.mux.Go(func() { m.LoadProducts(runCtx) })
}

// Close cancels every loop and waits for them to return, including a catalog
// load started by Start. In-flight finalizations may not complete.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.mux.Wait()
}

// LoadProducts loads the configured products from the catalog. A failure is
// reported and leaves the previous products in place; callers retry explicitly.
func (m *Manager) LoadProducts(ctx context.Context) {
	products, err := m.catalog.LoadCatalog(ctx, m.cfg.ProductIDs)
	if err != nil {
		m.reportError(&CatalogLoadError{Err: err})
		return
	}

	m.mu.Lock()
	m.products = products
	m.mu.Unlock()
	m.logger.Info("Loaded products", zap.Int("count", len(products)))
}

// PurchaseResult is the outcome of the external purchase flow: one of
// PurchaseSuccess, PurchasePending, PurchaseCancelled or PurchaseFailure.
type PurchaseResult interface {
	purchaseResult()
}

// PurchaseSuccess carries the signed transaction produced by the purchase.
type PurchaseSuccess struct {
	Transaction SignedTransaction
}

// PurchasePending is a purchase that may complete later through Updates.
type PurchasePending struct{}

// PurchaseCancelled is a purchase the user cancelled.
type PurchaseCancelled struct{}

// PurchaseFailure is a purchase flow that failed before producing a record.
type PurchaseFailure struct {
	Err error
}

func (PurchaseSuccess) purchaseResult()   {}
func (PurchasePending) purchaseResult()   {}
func (PurchaseCancelled) purchaseResult() {}
func (PurchaseFailure) purchaseResult()   {}

// SubmitPurchaseResult processes the result of a purchase flow.
func (m *Manager) SubmitPurchaseResult(ctx context.Context, result PurchaseResult) error {
	if m.isClosed() {
		return ErrClosed
	}

	switch r := result.(type) {
	case PurchaseSuccess:
		m.processor.Process(ctx, Verify(ctx, m.verifier, r.Transaction))
	case PurchasePending:
		m.logger.Info("Purchase pending")
	case PurchaseCancelled:
		m.logger.Info("Purchase cancelled by user")
	case PurchaseFailure:
		m.reportError(&PurchaseError{Err: r.Err})
	default:
		return fmt.Errorf("unknown purchase result %T", result)
	}
	return nil
}

// Restore asks the platform to resynchronize and replays the current
// entitlements snapshot.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.RLock()
	runCtx, closed := m.ctx, m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if runCtx == nil {
		runCtx = ctx
	}

	if err := m.platform.Sync(ctx); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}

	// The replay is tracked so Close waits for it; it is refused once Close began.
	done := make(chan struct{})
	if !m.mux.Go(func() {
		defer close(done)
		m.mux.LoadCurrentEntitlements(runCtx)
	}) {
		return ErrClosed
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Balance returns the consumable balance.
func (m *Manager) Balance() int {
	return m.store.Balance()
}

// Owns reports whether a non-consumable is owned.
func (m *Manager) Owns(productID string) bool {
	return m.store.Owns(productID)
}

// Owned returns every owned non-consumable.
func (m *Manager) Owned() []string {
	return m.store.Owned()
}

// Plan resolves the effective plan of the configured subscription group.
func (m *Manager) Plan() Plan {
	return ResolvePlan(m.cfg.SubscriptionGroupID, m.store.Statuses(m.cfg.SubscriptionGroupID), m.Products())
}

// Transactions enumerates the verified transaction history.
func (m *Manager) Transactions(ctx context.Context) []PurchaseRecord {
	var records []PurchaseRecord
	consume(ctx, m.platform.All(ctx), func(tx SignedTransaction) {
		if v, ok := Verify(ctx, m.verifier, tx).(Verified); ok {
			records = append(records, v.Transaction)
		}
	})
	return records
}

// LastError returns the most recent failure, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Products returns every loaded product.
func (m *Manager) Products() []ProductDescriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ProductDescriptor(nil), m.products...)
}

// ConsumableProducts returns consumables sorted by their encoded quantity.
func (m *Manager) ConsumableProducts() []ProductDescriptor {
	var products []ProductDescriptor
	for _, p := range m.Products() {
		if p.Kind == KindConsumable && strings.Contains(p.ID, m.cfg.ConsumableIdentifier) {
			products = append(products, p)
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		qi, _ := m.processor.ParseQuantity(products[i].ID)
		qj, _ := m.processor.ParseQuantity(products[j].ID)
		return qi < qj
	})
	return products
}

// NonConsumableProducts returns non-consumables sorted by display name.
func (m *Manager) NonConsumableProducts() []ProductDescriptor {
	var products []ProductDescriptor
	for _, p := range m.Products() {
		if p.Kind == KindNonConsumable {
			products = append(products, p)
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].DisplayName < products[j].DisplayName
	})
	return products
}

// SubscriptionProducts returns the products of the configured subscription
// group sorted by ascending tier.
func (m *Manager) SubscriptionProducts() []ProductDescriptor {
	var products []ProductDescriptor
	for _, p := range m.Products() {
		if p.Kind == KindAutoRenewable && p.Subscription != nil && p.Subscription.GroupID == m.cfg.SubscriptionGroupID {
			products = append(products, p)
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Subscription.TierLevel < products[j].Subscription.TierLevel
	})
	return products
}

func (m *Manager) reportError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	m.logger.Error("Entitlement error", zap.Error(err))
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
