package store

import "database/sql"

// SchemaVersion is bumped whenever the table layout changes in a way
// that requires a rebuild.
const SchemaVersion = 1

const ddl = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS functions (
    id                     INTEGER PRIMARY KEY AUTOINCREMENT,
    name                   TEXT NOT NULL,
    return_type            TEXT NOT NULL,
    return_type_normalized TEXT NOT NULL,
    params_json            TEXT NOT NULL DEFAULT '[]',
    file_path              TEXT NOT NULL,
    line_number            INTEGER NOT NULL DEFAULT 0,
    source                 TEXT NOT NULL DEFAULT '',
    doc_comment            TEXT NOT NULL DEFAULT '',
    UNIQUE(name, file_path)
);

CREATE INDEX IF NOT EXISTS idx_functions_return ON functions(return_type_normalized);
CREATE INDEX IF NOT EXISTS idx_functions_name ON functions(name);

CREATE TABLE IF NOT EXISTS types (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    name             TEXT NOT NULL UNIQUE,
    category         TEXT NOT NULL,
    enum_values_json TEXT NOT NULL DEFAULT '[]',
    file_path        TEXT NOT NULL DEFAULT '',
    source           TEXT NOT NULL DEFAULT '',
    pointer_to       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_types_category ON types(category);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Init creates the schema tables if they don't exist.
func Init(db *sql.DB) error {
	_, err := db.Exec(ddl)
	return err
}
