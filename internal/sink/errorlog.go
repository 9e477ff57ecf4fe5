package sink

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ErrorLog appends human-readable failure lines to a persistent log file.
// It implements the crawler's ErrorSink capability.
//
// The log is strictly best-effort: if the file cannot be opened or
// written, the failure is reported on the diagnostic logger and otherwise
// swallowed. Nothing ever propagates back to the traversal.
type ErrorLog struct {
	// path is the log file location.
	path string

	// mu serializes writes from concurrent batch runs.
	mu sync.Mutex

	// logger receives diagnostics about the log itself.
	logger *slog.Logger
}

// NewErrorLog creates an ErrorLog writing to the given path.
func NewErrorLog(path string, logger *slog.Logger) *ErrorLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorLog{path: path, logger: logger}
}

// Log appends one line to the log file, prefixed with a timestamp.
func (e *ErrorLog) Log(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		e.logger.Error("failed to open error log", "path", e.path, "error", err)
		return
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s\n", time.Now().Format(time.RFC3339), msg)
	if _, err := f.WriteString(line); err != nil {
		e.logger.Error("failed to write error log", "path", e.path, "error", err)
	}
}
