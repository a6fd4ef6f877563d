package store

import "time"

// LinkEvent records one successful link replacement.
type LinkEvent struct {
	ID             int64
	ProjectDir     string
	LinkPath       string
	Target         string
	PreviousTarget string // empty when no link existed before
	ToolVersion    string // poetry version, empty for explicit targets
	CreatedAt      time.Time
}
