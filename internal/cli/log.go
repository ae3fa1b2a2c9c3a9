package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// opTimer tracks the start time of an operation and logs completion with
// elapsed duration. It is not safe for concurrent use.
type opTimer struct {
	logger *log.Logger
	start  time.Time
}

func newOpTimer(l *log.Logger) *opTimer {
	return &opTimer{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time since the timer was
// created, e.g. "wrote layout nodes=42 elapsed=1.234s".
func (p *opTimer) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}
