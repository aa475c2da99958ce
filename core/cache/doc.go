// Package cache connects to Redis, which can hold the persisted balance
// instead of the relational database.
package cache
