package audit

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the audit database schema.
const Schema = `
-- Access decision records
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    decided_at TIMESTAMP NOT NULL,
    tool TEXT,
    operation TEXT NOT NULL,
    path TEXT NOT NULL,
    allowed BOOLEAN NOT NULL,
    reason TEXT NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_decisions_decided_at ON decisions(decided_at);
CREATE INDEX IF NOT EXISTS idx_decisions_reason ON decisions(reason);
CREATE INDEX IF NOT EXISTS idx_decisions_tool ON decisions(tool);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
