// Package entitlement reconciles purchase facts arriving from several
// asynchronous, overlapping platform streams into one local entitlement state:
// a consumable balance, a set of owned non-consumables and a resolved
// subscription plan.
//
// # Components
//
//   - Verify: wraps the platform verifier result into Verified or Unverified.
//   - Store: the single owner of mutable state. Every mutation goes through its lock.
//   - Processor: applies verified transactions by product kind, then finalizes them.
//   - Tracker: merges subscription statuses per (group, ownership type).
//   - ResolvePlan: picks the highest-tier non-expired subscription of a group.
//   - Multiplexer: runs the live update, snapshot, backlog and status loops.
//   - Manager: the facade consumed by the HTTP layer and the CLI.
//
// # Delivery semantics
//
// The platform delivers at least once and without ordering across streams, so
// the same transaction may arrive from the snapshot, the unfinished backlog and
// the live stream concurrently. Non-consumable grants are idempotent. Consumable
// credits are not: a re-delivered transaction is credited again.
//
// # Usage
//
//	mgr, err := entitlement.NewManager(ctx, cfg, platform, verifier, catalog, kv, logger)
//	if err != nil {
//	    return err
//	}
//	mgr.Start(ctx)
//	defer mgr.Close()
//
//	fmt.Println(mgr.Balance(), mgr.Plan())
package entitlement
