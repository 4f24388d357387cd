package internal

import (
	"log/slog"
	"sync/atomic"
)

// logger is the process-wide handler for errors the reactive graph itself
// must swallow to keep its invariants: a re-run's exceptions are caught and
// either delivered to a registered error handler or logged here. Swappable
// via SetLogger so a host application can route these through its own slog
// handler.
var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.Default())
}

// Log returns the current process-wide logger.
func Log() *slog.Logger { return logger.Load() }

// SetLogger replaces the process-wide logger used for effect panics,
// cleanup panics, and other swallowed reactive-graph errors.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	logger.Store(l)
}
