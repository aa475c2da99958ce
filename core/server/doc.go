// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber application itself; this package only
// describes where it listens, which API key protects it, whether the
// notification ingest endpoints are mounted and how long shutdown may take.
package server
