// Package logger defines the logging interface used across envlink and the
// logrus-backed implementation the CLI installs at startup.
package logger

// Logger is the set of leveled logging calls envlink packages rely on.
type Logger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	WithFields(fields map[string]interface{}) Logger
}
