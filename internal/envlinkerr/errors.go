// Package envlinkerr defines the classes of fatal errors envlink reports.
// None of them are retried; they propagate to the top-level command and end
// the run with a non-zero exit status.
package envlinkerr

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates that output expected from an external tool was
// absent or unparseable, e.g. no version string in `poetry --version`.
type ConfigurationError struct {
	Reason string
	Err    error
}

// NewConfigurationError builds a ConfigurationError with a formatted reason.
func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UnsupportedVersionError indicates that an installed tool is older than the
// minimum version envlink supports.
type UnsupportedVersionError struct {
	Tool    string
	Current string
	Minimum string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s is the wrong version: you have %s but need %s or newer", e.Tool, e.Current, e.Minimum)
}

// NotFoundError indicates that no active environment could be found, or that
// a discovered or given path does not exist on disk.
type NotFoundError struct {
	What string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return e.What
	}
	return fmt.Sprintf("%s: %q", e.What, e.Path)
}

// IsExpected reports whether err belongs to one of the classes above, as
// opposed to an unexpected I/O or subprocess failure.
func IsExpected(err error) bool {
	var cfgErr *ConfigurationError
	var verErr *UnsupportedVersionError
	var nfErr *NotFoundError
	return errors.As(err, &cfgErr) || errors.As(err, &verErr) || errors.As(err, &nfErr)
}
