package entitlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errBadSignature = errors.New("bad signature")

// fakeVerifier maps opaque tokens to records. Tokens issued by forge fail verification.
type fakeVerifier struct {
	mu      sync.Mutex
	seq     int
	records map[string]PurchaseRecord
	invalid map[string]bool
	panics  map[string]bool
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{
		records: make(map[string]PurchaseRecord),
		invalid: make(map[string]bool),
		panics:  make(map[string]bool),
	}
}

func (f *fakeVerifier) sign(record PurchaseRecord) SignedTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	token := fmt.Sprintf("%s#%d", record.ID, f.seq)
	f.records[token] = record
	return SignedTransaction{JWS: token}
}

func (f *fakeVerifier) forge(record PurchaseRecord) SignedTransaction {
	tx := f.sign(record)
	f.mu.Lock()
	f.invalid[tx.JWS] = true
	f.mu.Unlock()
	return tx
}

func (f *fakeVerifier) poison(record PurchaseRecord) SignedTransaction {
	tx := f.sign(record)
	f.mu.Lock()
	f.panics[tx.JWS] = true
	f.mu.Unlock()
	return tx
}

func (f *fakeVerifier) Verify(_ context.Context, tx SignedTransaction) (PurchaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics[tx.JWS] {
		panic("verifier exploded")
	}
	record := f.records[tx.JWS]
	if f.invalid[tx.JWS] {
		return record, errBadSignature
	}
	return record, nil
}

// memoryKV is an in-memory KeyValueStore.
type memoryKV struct {
	mu     sync.Mutex
	values map[string]int
	sets   int
	err    error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string]int)}
}

func (m *memoryKV) Get(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], m.err
}

func (m *memoryKV) Set(_ context.Context, key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sets++
	m.values[key] = value
	return nil
}

// recordingFinalizer remembers every finished transaction id.
type recordingFinalizer struct {
	mu       sync.Mutex
	finished []string
	onFinish func(id string)
}

func (r *recordingFinalizer) Finish(_ context.Context, id string) error {
	if r.onFinish != nil {
		r.onFinish(id)
	}
	r.mu.Lock()
	r.finished = append(r.finished, id)
	r.mu.Unlock()
	return nil
}

func (r *recordingFinalizer) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.finished...)
}

// errorSink collects reported errors.
type errorSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *errorSink) report(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *errorSink) all() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// fakePlatform serves fixed snapshots and test-controlled live channels.
type fakePlatform struct {
	recordingFinalizer
	updates       chan SignedTransaction
	statusUpdates chan SignedStatus
	entitlements  []SignedTransaction
	unfinished    []SignedTransaction
	history       []SignedTransaction
	current       []GroupStatuses
	syncErr       error
	syncs         int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		updates:       make(chan SignedTransaction),
		statusUpdates: make(chan SignedStatus),
	}
}

func (p *fakePlatform) Updates(context.Context) <-chan SignedTransaction { return p.updates }

func (p *fakePlatform) StatusUpdates(context.Context) <-chan SignedStatus { return p.statusUpdates }

func (p *fakePlatform) CurrentEntitlements(context.Context) <-chan SignedTransaction {
	return fromSlice(p.entitlements)
}

func (p *fakePlatform) Unfinished(context.Context) <-chan SignedTransaction {
	return fromSlice(p.unfinished)
}

func (p *fakePlatform) All(context.Context) <-chan SignedTransaction {
	return fromSlice(p.history)
}

func (p *fakePlatform) CurrentStatuses(context.Context) <-chan GroupStatuses {
	return fromSlice(p.current)
}

func (p *fakePlatform) Sync(context.Context) error {
	p.mu.Lock()
	p.syncs++
	p.mu.Unlock()
	return p.syncErr
}

func fromSlice[T any](items []T) <-chan T {
	ch := make(chan T, len(items))
	for _, item := range items {
		ch <- item
	}
	close(ch)
	return ch
}

const testGroup = "C4E9A6CF"

func consumable(id string, productID string) PurchaseRecord {
	return PurchaseRecord{
		ID:            id,
		ProductID:     productID,
		ProductKind:   KindConsumable,
		PurchaseDate:  time.Date(2025, 11, 11, 0, 0, 0, 0, time.UTC),
		Quantity:      1,
		OwnershipType: OwnershipPurchased,
	}
}

func nonConsumable(id string, productID string) PurchaseRecord {
	r := consumable(id, productID)
	r.ProductKind = KindNonConsumable
	return r
}

func subscription(id string, productID string, ownership OwnershipType) PurchaseRecord {
	r := consumable(id, productID)
	r.ProductKind = KindAutoRenewable
	r.SubscriptionGroupID = testGroup
	r.OwnershipType = ownership
	return r
}

func revoked(r PurchaseRecord) PurchaseRecord {
	at := r.PurchaseDate.Add(24 * time.Hour)
	r.RevocationDate = &at
	r.RevocationReason = RevocationOther
	return r
}

func tieredCatalog() []ProductDescriptor {
	return []ProductDescriptor{
		{ID: "consumable.gachaStone.100", Kind: KindConsumable, DisplayName: "100 Stones"},
		{ID: "subscription.autoRenew.features.plus", Kind: KindAutoRenewable, DisplayName: "Plus",
			Subscription: &SubscriptionInfo{GroupID: testGroup, TierLevel: 1}},
		{ID: "subscription.autoRenew.features.premium", Kind: KindAutoRenewable, DisplayName: "Premium",
			Subscription: &SubscriptionInfo{GroupID: testGroup, TierLevel: 2}},
	}
}
