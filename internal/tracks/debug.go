package tracks

import (
	"io"
	"log"
)

var debugLogger *log.Logger

// SetDebugLogger installs a debug logger that receives verbose tracking
// diagnostics. Pass nil to disable debug logging.
func SetDebugLogger(w io.Writer) {
	if w == nil {
		debugLogger = nil
		return
	}
	debugLogger = log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}

// debugf logs formatted debug messages when a debug logger is configured.
func debugf(format string, args ...interface{}) {
	if debugLogger != nil {
		debugLogger.Printf(format, args...)
	}
}

// DebugCollector receives state machine internals for visualisation.
// Implementations must tolerate calls from several goroutines when tracks
// are updated in parallel.
type DebugCollector interface {
	IsEnabled() bool
	RecordResidual(trackID, frameIdx int, residual, threshold float64)
	RecordEstimationFailure(trackID, frameIdx, failureStreak int)
	RecordTransition(trackID, frameIdx int, from, to State)
}
