package store

import (
	"errors"
	"strings"
)

var (
	// ErrNotInitialized is returned when the history tables do not exist yet.
	ErrNotInitialized = errors.New("no link history yet: run 'envlink link' first")
	// ErrNoEvents is returned when a project has no recorded link events.
	ErrNoEvents = errors.New("no link events recorded")
)

// wrapNoTable maps sqlite's missing-table error onto ErrNotInitialized.
func wrapNoTable(err error) error {
	if err != nil && strings.Contains(err.Error(), "no such table") {
		return ErrNotInitialized
	}
	return err
}
