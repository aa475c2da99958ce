package entitlement

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// KeyValueStore persists integer values under well-known keys.
// Get returns 0 and no error for a key that was never set.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (int, error)
	Set(ctx context.Context, key string, value int) error
}

// Store is the single owner of entitlement state. Every mutation takes the
// write lock, so read-modify-write sequences from concurrent producers are
// serialized.
type Store struct {
	mu       sync.RWMutex
	kv       KeyValueStore
	key      string
	balance  int
	owned    map[string]struct{}
	statuses map[string][]SubscriptionStatus
}

// NewStore creates a store and hydrates the consumable balance from kv.
func NewStore(ctx context.Context, kv KeyValueStore, balanceKey string) (*Store, error) {
	balance, err := kv.Get(ctx, balanceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load balance %q: %w", balanceKey, err)
	}
	return &Store{
		kv:       kv,
		key:      balanceKey,
		balance:  balance,
		owned:    make(map[string]struct{}),
		statuses: make(map[string][]SubscriptionStatus),
	}, nil
}

// Credit adds quantity to the balance, saturating at math.MaxInt, and persists it.
// On a persist error the balance is left unchanged.
func (s *Store) Credit(ctx context.Context, quantity int) (int, error) {
	return s.updateBalance(ctx, func(b int) int { return saturatingAdd(b, quantity) })
}

// Debit subtracts quantity from the balance, saturating at math.MinInt, and persists it.
func (s *Store) Debit(ctx context.Context, quantity int) (int, error) {
	return s.updateBalance(ctx, func(b int) int { return saturatingSub(b, quantity) })
}

func (s *Store) updateBalance(ctx context.Context, apply func(int) int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := apply(s.balance)
	if err := s.kv.Set(ctx, s.key, next); err != nil {
		return s.balance, fmt.Errorf("failed to persist balance: %w", err)
	}
	s.balance = next
	return next, nil
}

// Grant marks a non-consumable as owned.
func (s *Store) Grant(productID string) {
	s.mu.Lock()
	s.owned[productID] = struct{}{}
	s.mu.Unlock()
}

// Revoke removes a non-consumable from the owned set.
func (s *Store) Revoke(productID string) {
	s.mu.Lock()
	delete(s.owned, productID)
	s.mu.Unlock()
}

// MergeStatus replaces the entry of the same ownership type in the group and
// keeps entries of every other ownership type.
func (s *Store) MergeStatus(groupID string, status SubscriptionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.statuses[groupID]
	merged := make([]SubscriptionStatus, 0, len(current)+1)
	for _, existing := range current {
		if existing.OwnershipType != status.OwnershipType {
			merged = append(merged, existing)
		}
	}
	s.statuses[groupID] = append(merged, status)
}

// ReplaceGroup sets the full status list of a group. When several statuses share
// an ownership type, the last one wins.
func (s *Store) ReplaceGroup(groupID string, statuses []SubscriptionStatus) {
	byOwnership := make(map[OwnershipType]int, len(statuses))
	deduped := make([]SubscriptionStatus, 0, len(statuses))
	for _, status := range statuses {
		if i, ok := byOwnership[status.OwnershipType]; ok {
			deduped[i] = status
			continue
		}
		byOwnership[status.OwnershipType] = len(deduped)
		deduped = append(deduped, status)
	}

	s.mu.Lock()
	s.statuses[groupID] = deduped
	s.mu.Unlock()
}

// Balance returns the consumable balance.
func (s *Store) Balance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Owns reports whether the non-consumable is owned.
func (s *Store) Owns(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owned[productID]
	return ok
}

// Owned returns the owned non-consumables, sorted.
func (s *Store) Owned() []string {
	s.mu.RLock()
	owned := make([]string, 0, len(s.owned))
	for id := range s.owned {
		owned = append(owned, id)
	}
	s.mu.RUnlock()

	sort.Strings(owned)
	return owned
}

// Statuses returns a copy of the statuses recorded for a group.
func (s *Store) Statuses(groupID string) []SubscriptionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SubscriptionStatus(nil), s.statuses[groupID]...)
}

func saturatingAdd(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	default:
		return a + b
	}
}

func saturatingSub(a, b int) int {
	switch {
	case b > 0 && a < math.MinInt+b:
		return math.MinInt
	case b < 0 && a > math.MaxInt+b:
		return math.MaxInt
	default:
		return a - b
	}
}
