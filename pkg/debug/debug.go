// Package debug provides conditional debug logging for stageboard.
//
// Debug logging is enabled by setting the STAGEBOARD_DEBUG environment variable:
//
//	STAGEBOARD_DEBUG=1 stageboard render --source board.json -o board.svg
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
//
// Usage:
//
//	import "github.com/vanderheijden86/stageboard/pkg/debug"
//
//	func myFunc() {
//	    debug.Log("built %d tiles", len(tiles))
//	    // ...
//	    debug.LogTiming("myFunc", elapsed)
//	}
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	// enabled is true when STAGEBOARD_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [STAGEBOARD] prefix
	logger *log.Logger
	// out is where a lazily created logger writes
	out io.Writer = os.Stderr
)

func init() {
	if os.Getenv("STAGEBOARD_DEBUG") != "" {
		enabled = true
		logger = newLogger(out)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
// Note: This also requires initializing the logger if not already done.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = newLogger(out)
	}
}

// SetOutput redirects debug output. The TUI host points it at a log file so
// messages do not tear the alternate screen.
func SetOutput(w io.Writer) {
	out = w
	if logger != nil {
		logger.SetOutput(w)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "[STAGEBOARD] ", log.Ltime|log.Lmicroseconds)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}
