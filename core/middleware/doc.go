// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every non-documentation route.
//   - rayid: a request id per request, stored in the context for the logger
//     and echoed in the response headers.
package middleware
