// Package kvstore provides the persisted key-value backends used for the
// consumable balance.
//
// # Backends
//
//   - database: a gorm table (kv_entries) on MySQL or SQLite.
//   - redis: plain string keys on a Redis server.
//   - memory: a process-local map, useful for tests and ephemeral runs.
//
// Every backend returns 0 for a key that was never written.
//
// # Usage
//
//	kv, err := kvstore.New(cfg.Store, db, rdb)
//	balance, err := kv.Get(ctx, "gachaStone")
package kvstore
