// Package storelog provides the structured logger shared by the disk
// manager and buffer pool. The disk manager logs page allocations with
// the file name and the buffer pool logs evictions with the page id, both
// at debug level; I/O failures are returned as errors, not logged.
package storelog

import "go.uber.org/zap"

// New builds a production zap.Logger suitable for the engine's default
// wiring. Callers that already have a *zap.Logger (e.g. an embedding
// application) should just use that one instead.
func New() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		// Fall back to a no-op logger rather than fail engine startup over
		// a logging misconfiguration.
		return zap.NewNop()
	}
	return logger
}

// Nop returns a logger that discards everything, for tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
