// Package database opens the relational store backing the purchase journal
// and the persisted balance.
//
// Connect wraps GORM and supports MySQL for deployments and SQLite for local
// runs and tests. The inspector helpers read a table's columns back from the
// database so the migrate command can confirm that the schema it just applied
// is actually in place.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "kv_entries", []string{"entry_key", "value"})
package database
