// Package platform implements the purchase platform collaborator on top of a
// local journal.
//
// Signed transactions and subscription statuses are ingested (for example from
// the notifications HTTP endpoints), appended to the journal and published to
// live subscribers. The journal then answers the enumerations the entitlement
// manager needs at startup: current entitlements, unfinished transactions,
// full history and current subscription statuses.
//
// # Tables
//
//   - journal_transactions: one row per observed transaction, with a finished flag.
//   - journal_statuses: one row per observed subscription status.
//
// # Usage
//
//	journal := platform.NewJournal(db, logger)
//	if err := platform.Migrate(db); err != nil {
//	    return err
//	}
//	err := journal.Ingest(ctx, signed)
package platform
