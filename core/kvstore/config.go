package kvstore

// Config holds configuration for the balance store.
type Config struct {
	// Backend selects the store implementation (database, redis, memory).
	Backend string `mapstructure:"backend" default:"database"`
	// BalanceKey is the well-known key of the consumable balance.
	BalanceKey string `mapstructure:"balance_key" default:"gachaStone"`
	// Prefix is prepended to every key on shared backends.
	Prefix string `mapstructure:"prefix" default:"purchase-manager:"`
}

const (
	BackendDatabase = "database"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// IsValidBackend checks if the configured backend is supported.
func (c Config) IsValidBackend() bool {
	switch c.Backend {
	case BackendDatabase, BackendRedis, BackendMemory:
		return true
	default:
		return false
	}
}
