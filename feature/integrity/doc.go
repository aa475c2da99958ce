// Package integrity provides system health checks.
//
// Unlike the 'reconcile' command which can repair the balance, this package
// only reports on the infrastructure the entitlement manager depends on.
//
// # Checks Provided
//
//   - Structure: Checks that the catalog folders exist in the storage bucket.
//   - Catalog: Verifies the published catalog lists every configured product id.
//   - Schema: Validates that the journal and balance tables expose the expected columns.
//   - Balance: Replays the transaction history and reports drift of the persisted balance.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/catalog : Runs catalog check.
//   - GET /integrity/schema : Runs schema check.
//   - GET /integrity/balance : Runs balance check.
package integrity
