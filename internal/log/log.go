/*
Package log contains the singleton object and helper functions for logging within envlink.
*/
package log

import "github.com/blackwell-systems/envlink/internal/logger"

// log is the singleton used to facilitate logging internally within envlink
var log logger.Logger = logger.NopLogger{}

// Set replaces the package logger. The CLI calls it once during startup.
func Set(l logger.Logger) {
	if l == nil {
		l = logger.NopLogger{}
	}
	log = l
}

// Get returns the current package logger.
func Get() logger.Logger {
	return log
}

// Errorf takes a formatted template string and template arguments for the error logging level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Error logs the given arguments at the error logging level.
func Error(args ...interface{}) {
	log.Error(args...)
}

// Warnf takes a formatted template string and template arguments for the warning logging level.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Warn logs the given arguments at the warning logging level.
func Warn(args ...interface{}) {
	log.Warn(args...)
}

// Infof takes a formatted template string and template arguments for the info logging level.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Info logs the given arguments at the info logging level.
func Info(args ...interface{}) {
	log.Info(args...)
}

// Debugf takes a formatted template string and template arguments for the debug logging level.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Debug logs the given arguments at the debug logging level.
func Debug(args ...interface{}) {
	log.Debug(args...)
}

// Tracef takes a formatted template string and template arguments for the trace logging level.
func Tracef(format string, args ...interface{}) {
	log.Tracef(format, args...)
}

// WithFields returns a logger that attaches the given key-value fields to every line.
func WithFields(fields map[string]interface{}) logger.Logger {
	return log.WithFields(fields)
}
