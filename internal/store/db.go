package store

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Store owns the sqlite handle for datasets, the mapping cache and usage
// stats. Construct one per process and pass it to whatever needs it.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	datasetTable := `
	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		file_id TEXT UNIQUE,
		name TEXT,
		description TEXT,
		file_name TEXT,
		data_category TEXT,
		mappings TEXT,
		target_fields TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	cacheTable := `
	CREATE TABLE IF NOT EXISTS mapping_cache (
		data_category TEXT,
		fields_key TEXT,
		input_fields TEXT,
		mappings TEXT,
		created_at DATETIME,
		PRIMARY KEY (data_category, fields_key)
	);
	`
	statsTable := `
	CREATE TABLE IF NOT EXISTS usage_stats (
		stat_key TEXT PRIMARY KEY,
		count INTEGER
	);
	`

	for _, stmt := range []string{datasetTable, cacheTable, statsTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
