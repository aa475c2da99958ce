package kvstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Store persists integer values under string keys.
type Store interface {
	// Get returns the value of key, or 0 if it was never set.
	Get(ctx context.Context, key string) (int, error)
	// Set stores value under key.
	Set(ctx context.Context, key string, value int) error
}

// New creates the store selected by cfg.Backend. db is required for the
// database backend and rdb for the redis backend.
func New(cfg Config, db *gorm.DB, rdb *redis.Client) (Store, error) {
	switch cfg.Backend {
	case BackendDatabase:
		if db == nil {
			return nil, fmt.Errorf("database backend requires a database connection")
		}
		return NewGormStore(db, cfg.Prefix), nil
	case BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis backend requires a redis client")
		}
		return NewRedisStore(rdb, cfg.Prefix), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]int
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]int)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value int) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}
