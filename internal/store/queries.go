package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// timeLayout is fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// InsertLinkEvent records a link event and returns its id. A zero CreatedAt
// is replaced with the current time.
func (s *Store) InsertLinkEvent(event *LinkEvent) (int64, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO link_events
		(project_dir, link_path, target, previous_target, tool_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		event.ProjectDir,
		event.LinkPath,
		event.Target,
		event.PreviousTarget,
		event.ToolVersion,
		event.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert link event: %w", wrapNoTable(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get link event ID: %w", err)
	}
	event.ID = id
	return id, nil
}

// ListLinkEvents returns events for projectDir, newest first. An empty
// projectDir lists every project. A limit of zero or less means no limit.
func (s *Store) ListLinkEvents(projectDir string, limit int) ([]*LinkEvent, error) {
	query := `
		SELECT id, project_dir, link_path, target, previous_target, tool_version, created_at
		FROM link_events
		WHERE (? = '' OR project_dir = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(query, projectDir, projectDir, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list link events: %w", wrapNoTable(err))
	}
	defer rows.Close()

	var events []*LinkEvent
	for rows.Next() {
		event, err := scanLinkEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link events: %w", err)
	}

	return events, nil
}

// LatestLinkEvent returns the most recent event for projectDir.
func (s *Store) LatestLinkEvent(projectDir string) (*LinkEvent, error) {
	query := `
		SELECT id, project_dir, link_path, target, previous_target, tool_version, created_at
		FROM link_events
		WHERE project_dir = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	event, err := scanLinkEvent(s.db.QueryRow(query, projectDir))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoEvents
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// CountLinkEvents returns the number of events recorded for every project.
func (s *Store) CountLinkEvents() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM link_events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count link events: %w", wrapNoTable(err))
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLinkEvent(row rowScanner) (*LinkEvent, error) {
	var event LinkEvent
	var createdAt string

	err := row.Scan(
		&event.ID,
		&event.ProjectDir,
		&event.LinkPath,
		&event.Target,
		&event.PreviousTarget,
		&event.ToolVersion,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan link event: %w", wrapNoTable(err))
	}

	event.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for link event %d: %w", event.ID, err)
	}
	return &event, nil
}
