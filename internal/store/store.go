package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"chisel/internal/model"
)

// ErrIndexNotFound reports that no index file exists at the queried
// path. It is distinct from a function being absent in a valid index,
// so callers can decide between rebuilding and trying another name.
var ErrIndexNotFound = errors.New("index not found")

// Meta keys written during a build.
const (
	MetaSchemaVersion = "schema_version"
	MetaLastIndexed   = "last_indexed"
	MetaFileCount     = "file_count"
)

// Stats summarizes an existing index.
type Stats struct {
	Functions     int
	Types         int
	FileCount     int
	LastIndexed   string
	SchemaVersion int
}

// Store persists function and type records in SQLite.
//
// Types are keyed globally by bare name with last-write-wins semantics:
// two unrelated headers defining same-named types will silently collide.
// That matches the indexing contract; callers must not rely on per-file
// type scoping.
type Store struct {
	db *sql.DB
}

// Open creates or opens the index database at path and initializes the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if _, err := db.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		MetaSchemaVersion, strconv.Itoa(SchemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("write schema version: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenExisting opens an index for querying. It returns ErrIndexNotFound
// when no index file exists at path.
func OpenExisting(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, path)
	}
	return Open(path)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertFunction inserts or replaces a function row keyed by
// (name, file_path).
func (s *Store) UpsertFunction(f model.FunctionInfo, returnTypeNormalized string) error {
	paramsJSON, err := json.Marshal(f.Params)
	if err != nil {
		return fmt.Errorf("marshal params for %s: %w", f.Name, err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO functions
		(name, return_type, return_type_normalized, params_json,
		 file_path, line_number, source, doc_comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.Name, f.ReturnType, returnTypeNormalized, string(paramsJSON),
		f.FilePath, f.LineNumber, f.Source, f.DocComment)
	if err != nil {
		return fmt.Errorf("upsert function %s: %w", f.Name, err)
	}
	return nil
}

// UpsertType inserts or replaces a type row keyed by bare name. A later
// build overwrites an earlier definition with the same name.
func (s *Store) UpsertType(t model.TypeInfo) error {
	enumJSON, err := json.Marshal(t.EnumValues)
	if err != nil {
		return fmt.Errorf("marshal enum values for %s: %w", t.Name, err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO types
		(name, category, enum_values_json, file_path, source, pointer_to)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.Name, t.Category.String(), string(enumJSON), t.FilePath, t.Source, t.PointerTo)
	if err != nil {
		return fmt.Errorf("upsert type %s: %w", t.Name, err)
	}
	return nil
}

const functionColumns = "name, return_type, params_json, file_path, line_number, source, doc_comment"

func scanFunctions(rows *sql.Rows) ([]model.FunctionInfo, error) {
	var funcs []model.FunctionInfo
	for rows.Next() {
		var f model.FunctionInfo
		var paramsJSON string
		if err := rows.Scan(&f.Name, &f.ReturnType, &paramsJSON,
			&f.FilePath, &f.LineNumber, &f.Source, &f.DocComment); err != nil {
			return nil, err
		}
		if paramsJSON != "" {
			if err := json.Unmarshal([]byte(paramsJSON), &f.Params); err != nil {
				return nil, fmt.Errorf("unmarshal params for %s: %w", f.Name, err)
			}
		}
		funcs = append(funcs, f)
	}
	return funcs, rows.Err()
}

// FunctionsByName returns every row recorded under a name, one per file.
func (s *Store) FunctionsByName(name string) ([]model.FunctionInfo, error) {
	rows, err := s.db.Query(
		"SELECT "+functionColumns+" FROM functions WHERE name = ? ORDER BY id", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunctions(rows)
}

// FunctionsByReturnType returns functions whose normalized return type
// equals normalized, documented rows first.
func (s *Store) FunctionsByReturnType(normalized string) ([]model.FunctionInfo, error) {
	rows, err := s.db.Query(`
		SELECT `+functionColumns+` FROM functions
		WHERE return_type_normalized = ?
		ORDER BY (doc_comment != '') DESC, id
	`, normalized)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunctions(rows)
}

// FunctionsNameLikeAny returns functions whose name matches any of the
// SQL LIKE patterns, documented rows first.
func (s *Store) FunctionsNameLikeAny(patterns []string) ([]model.FunctionInfo, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	clauses := make([]string, len(patterns))
	args := make([]any, len(patterns))
	for i, p := range patterns {
		clauses[i] = "name LIKE ?"
		args[i] = p
	}
	query := "SELECT " + functionColumns + " FROM functions WHERE " +
		strings.Join(clauses, " OR ") +
		" ORDER BY (doc_comment != '') DESC, id"
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunctions(rows)
}

// FunctionsParamsContaining returns functions whose serialized parameter
// list contains the given text, documented rows first.
func (s *Store) FunctionsParamsContaining(text string) ([]model.FunctionInfo, error) {
	rows, err := s.db.Query(`
		SELECT `+functionColumns+` FROM functions
		WHERE params_json LIKE '%' || ? || '%'
		ORDER BY (doc_comment != '') DESC, id
	`, text)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunctions(rows)
}

// SearchFunctions returns functions whose name contains pattern.
func (s *Store) SearchFunctions(pattern string, limit int) ([]model.FunctionInfo, error) {
	rows, err := s.db.Query(`
		SELECT `+functionColumns+` FROM functions
		WHERE name LIKE '%' || ? || '%'
		ORDER BY name
		LIMIT ?
	`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunctions(rows)
}

// AllFunctions returns indexed functions ordered by name.
func (s *Store) AllFunctions(limit int) ([]model.FunctionInfo, error) {
	rows, err := s.db.Query(
		"SELECT "+functionColumns+" FROM functions ORDER BY name LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFunctions(rows)
}

// TypeByName looks a type up by raw or normalized name.
func (s *Store) TypeByName(name, normalized string) (*model.TypeInfo, error) {
	row := s.db.QueryRow(`
		SELECT name, category, enum_values_json, file_path, source, pointer_to
		FROM types
		WHERE name = ? OR name = ?
		LIMIT 1
	`, name, normalized)

	var t model.TypeInfo
	var category, enumJSON string
	err := row.Scan(&t.Name, &category, &enumJSON, &t.FilePath, &t.Source, &t.PointerTo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Category = model.ParseCategory(category)
	if enumJSON != "" {
		if err := json.Unmarshal([]byte(enumJSON), &t.EnumValues); err != nil {
			return nil, fmt.Errorf("unmarshal enum values for %s: %w", t.Name, err)
		}
	}
	return &t, nil
}

// GetMeta returns a metadata value by key, or "" if not set.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetMeta sets a metadata key-value pair.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// Stats reports table counts and build metadata.
func (s *Store) Stats() (*Stats, error) {
	var st Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM functions").Scan(&st.Functions); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM types").Scan(&st.Types); err != nil {
		return nil, err
	}
	var err error
	if st.LastIndexed, err = s.GetMeta(MetaLastIndexed); err != nil {
		return nil, err
	}
	if v, err := s.GetMeta(MetaFileCount); err != nil {
		return nil, err
	} else if v != "" {
		st.FileCount, _ = strconv.Atoi(v)
	}
	if v, err := s.GetMeta(MetaSchemaVersion); err != nil {
		return nil, err
	} else if v != "" {
		st.SchemaVersion, _ = strconv.Atoi(v)
	}
	return &st, nil
}
