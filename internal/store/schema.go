package store

const schema = `
CREATE TABLE IF NOT EXISTS link_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_dir TEXT NOT NULL,
    link_path TEXT NOT NULL,
    target TEXT NOT NULL,
    previous_target TEXT NOT NULL DEFAULT '',
    tool_version TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_link_events_project ON link_events(project_dir);
CREATE INDEX IF NOT EXISTS idx_link_events_created ON link_events(created_at);
`
