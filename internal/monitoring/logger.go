// Package monitoring holds the diagnostic logger shared by the control loop,
// sensors and setup code.
package monitoring

import (
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// RotatingFile returns a size-rotated log file writer. The terminal UI owns
// stdout, so diagnostics go here while it runs.
func RotatingFile(path string, maxSizeMB, maxBackups int) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   false,
	}
}

// LogToFile points the standard logger, and therefore the default Logf, at a
// rotating file. The returned closer flushes and closes it.
func LogToFile(path string, maxSizeMB, maxBackups int) io.Closer {
	w := RotatingFile(path, maxSizeMB, maxBackups)
	log.SetOutput(w)
	return w
}
