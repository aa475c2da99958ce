// Package entitlements exposes the entitlement manager over HTTP.
//
// Queries return the consumable balance, the resolved plan, owned products,
// the verified transaction history and the product listings. Commands submit
// the outcome of a purchase flow and restore purchases from the platform.
package entitlements
