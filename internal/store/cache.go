package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jigardalal/databridge/internal/model"
)

// CacheRetention is how long a cached mapping stays valid.
const CacheRetention = 7 * 24 * time.Hour

// FieldsKey builds the order-independent cache key component from an input
// field list: sorted and joined, so permutations of the same set collide.
func FieldsKey(inputFields []string) string {
	sorted := make([]string, len(inputFields))
	copy(sorted, inputFields)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}

// GetCachedMappings looks up a memoized mapping result. Entries past the
// retention window are treated as a miss and removed best-effort.
func (s *Store) GetCachedMappings(category string, inputFields []string) ([]model.CachedMapping, bool, error) {
	key := FieldsKey(inputFields)

	var mappingsJSON string
	var createdAt time.Time
	err := s.db.QueryRow(`
		SELECT mappings, created_at FROM mapping_cache
		WHERE data_category = ? AND fields_key = ?`, category, key).
		Scan(&mappingsJSON, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	if time.Since(createdAt) > CacheRetention {
		// Lazy expiry; a failed delete just means the next read retries it.
		s.db.Exec(`DELETE FROM mapping_cache WHERE data_category = ? AND fields_key = ?`, category, key)
		return nil, false, nil
	}

	var mappings []model.CachedMapping
	if err := json.Unmarshal([]byte(mappingsJSON), &mappings); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return mappings, true, nil
}

// PutCachedMappings stores a mapping result. Concurrent writers for the same
// key race benignly: derivation is idempotent, last write wins.
func (s *Store) PutCachedMappings(category string, inputFields []string, mappings []model.CachedMapping) error {
	mappingsJSON, err := json.Marshal(mappings)
	if err != nil {
		return err
	}
	fieldsJSON, err := json.Marshal(inputFields)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO mapping_cache (data_category, fields_key, input_fields, mappings, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(data_category, fields_key) DO UPDATE SET
			mappings = excluded.mappings,
			created_at = excluded.created_at`,
		category, FieldsKey(inputFields), string(fieldsJSON), string(mappingsJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}
