// Package verifier checks the provenance of signed transactions delivered by
// the platform.
//
// Transactions travel as compact JWS tokens whose "transaction" claim carries
// the purchase record. The verifier accepts a single configured algorithm
// (HS256 with a shared secret, or ES256 with a PEM public key) and rejects
// tokens signed with anything else.
//
// A token that fails verification still yields its decoded payload so the
// failure can be reported with the transaction it concerns.
package verifier
