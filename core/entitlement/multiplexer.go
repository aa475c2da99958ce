package entitlement

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// TransactionSource delivers signed transactions from the platform. Every
// method returns a channel that is closed once the sequence ends or ctx is done.
type TransactionSource interface {
	// Updates streams new purchases, refunds and external-device transactions.
	Updates(ctx context.Context) <-chan SignedTransaction
	// CurrentEntitlements enumerates the currently owned non-consumables and
	// subscriptions. Consumables are not part of it.
	CurrentEntitlements(ctx context.Context) <-chan SignedTransaction
	// Unfinished enumerates transactions that were never finished.
	Unfinished(ctx context.Context) <-chan SignedTransaction
	// All enumerates the whole transaction history. It can be restarted.
	All(ctx context.Context) <-chan SignedTransaction
}

// StatusSource delivers subscription statuses from the platform.
type StatusSource interface {
	// StatusUpdates streams subscription status changes.
	StatusUpdates(ctx context.Context) <-chan SignedStatus
	// CurrentStatuses enumerates the statuses of every subscription group once.
	CurrentStatuses(ctx context.Context) <-chan GroupStatuses
}

// Multiplexer owns the listener loops feeding the processor and the tracker.
type Multiplexer struct {
	transactions TransactionSource
	statuses     StatusSource
	verifier     Verifier
	processor    *Processor
	tracker      *Tracker
	logger       *zap.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewMultiplexer creates a multiplexer over the given sources.
func NewMultiplexer(transactions TransactionSource, statuses StatusSource, verifier Verifier, processor *Processor, tracker *Tracker, logger *zap.Logger) *Multiplexer {
	return &Multiplexer{
		transactions: transactions,
		statuses:     statuses,
		verifier:     verifier,
		processor:    processor,
		tracker:      tracker,
		logger:       logger,
	}
}

// Start launches every loop. The live streams are subscribed before Start
// returns. The status snapshot is applied before the first live status update,
// which queue up in the meantime. All loops stop when ctx is cancelled.
func (m *Multiplexer) Start(ctx context.Context) {
	updates := m.transactions.Updates(ctx)
	statuses := m.statuses.StatusUpdates(ctx)

	m.goLoop(func() { m.observeTransactions(ctx, updates) })
	m.goLoop(func() {
		m.LoadCurrentStatuses(ctx)
		m.observeStatuses(ctx, statuses)
	})
	m.goLoop(func() { m.LoadCurrentEntitlements(ctx) })
	m.goLoop(func() { m.CheckUnfinished(ctx) })
}

// Go runs fn on a goroutine tracked by Wait. It reports false and does not run
// fn once Wait was called.
func (m *Multiplexer) Go(fn func()) bool {
	return m.goLoop(fn)
}

// Wait stops accepting new work and blocks until every loop and spawned
// processing unit returned.
func (m *Multiplexer) Wait() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()

	m.wg.Wait()
}

// ObserveTransactionUpdates processes live transaction updates in arrival order.
func (m *Multiplexer) ObserveTransactionUpdates(ctx context.Context) {
	m.observeTransactions(ctx, m.transactions.Updates(ctx))
}

// ObserveStatusUpdates merges live subscription status updates in arrival order.
func (m *Multiplexer) ObserveStatusUpdates(ctx context.Context) {
	m.observeStatuses(ctx, m.statuses.StatusUpdates(ctx))
}

// LoadCurrentStatuses replaces the status table with the current enumeration.
func (m *Multiplexer) LoadCurrentStatuses(ctx context.Context) {
	consume(ctx, m.statuses.CurrentStatuses(ctx), func(group GroupStatuses) {
		m.safely("subscription status", func() { m.tracker.Load(ctx, group) })
	})
}

// LoadCurrentEntitlements replays the current entitlements snapshot. Each item
// is processed by its own goroutine.
func (m *Multiplexer) LoadCurrentEntitlements(ctx context.Context) {
	consume(ctx, m.transactions.CurrentEntitlements(ctx), func(tx SignedTransaction) {
		m.spawn(ctx, "current entitlement", tx)
	})
}

// CheckUnfinished processes the backlog of unfinished transactions. Each item
// is processed by its own goroutine.
func (m *Multiplexer) CheckUnfinished(ctx context.Context) {
	consume(ctx, m.transactions.Unfinished(ctx), func(tx SignedTransaction) {
		m.spawn(ctx, "unfinished transaction", tx)
	})
}

func (m *Multiplexer) observeTransactions(ctx context.Context, updates <-chan SignedTransaction) {
	consume(ctx, updates, func(tx SignedTransaction) {
		m.safely("transaction update", func() { m.handleTransaction(ctx, "update", tx) })
	})
}

func (m *Multiplexer) observeStatuses(ctx context.Context, statuses <-chan SignedStatus) {
	consume(ctx, statuses, func(status SignedStatus) {
		m.safely("subscription status update", func() { m.tracker.Track(ctx, status) })
	})
}

func (m *Multiplexer) spawn(ctx context.Context, source string, tx SignedTransaction) {
	m.goLoop(func() {
		if ctx.Err() != nil {
			return
		}
		m.safely(source, func() { m.handleTransaction(ctx, source, tx) })
	})
}

func (m *Multiplexer) handleTransaction(ctx context.Context, source string, tx SignedTransaction) {
	outcome := Verify(ctx, m.verifier, tx)
	m.logger.Debug("Received transaction",
		zap.String("source", source),
		zap.String("product_id", outcome.Record().ProductID),
	)
	m.processor.Process(ctx, outcome)
}

func (m *Multiplexer) goLoop(fn func()) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped {
		return false
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
	return true
}

// safely runs fn and turns a panic into a reported error so the calling loop
// keeps consuming its stream.
func (m *Multiplexer) safely(source string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.processor.report(fmt.Errorf("panic while handling %s: %v", source, r))
		}
	}()
	fn()
}

func consume[T any](ctx context.Context, ch <-chan T, handle func(T)) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-ch:
			if !ok {
				return
			}
			handle(item)
		}
	}
}
