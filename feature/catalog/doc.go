// Package catalog serves the product catalog kept in object storage.
//
// The catalog is a JSON document at catalog/products.json listing every
// purchasable product with its kind, display strings and, for subscriptions,
// the group and tier. Service implements entitlement.CatalogLoader on top of
// it, caching the document for a configurable TTL and collapsing concurrent
// refreshes into a single download. Publishing validates the document, uploads
// it and keeps an archived copy per revision.
//
// # Routes
//
//   - GET /catalog: the configured products present in the catalog.
//   - GET /catalog/history: archived revisions.
package catalog
