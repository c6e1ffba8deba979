package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf reports an anomaly that the caller should act on but that does not
// stop processing, such as dropping a track that still owns a reconstruction.
// It goes through Logf so SetLogger also captures warnings.
func Warnf(format string, v ...interface{}) {
	Logf("[WARN] "+format, v...)
}
