// Package logger provides a structured logging facility based on Zap.
//
// New builds a development logger for the debug level and a production logger
// otherwise, encoding either as json or as colored console output.
//
// # Context Awareness
//
// WithRayID extracts the request id that the rayid middleware stored in the
// Fiber context and attaches it to the log entry, so every line written while
// serving a request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
