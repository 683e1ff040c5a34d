package store

import "fmt"

// Well-known usage stat keys. Per-mapping frequency keys are built with
// MappingStatKey.
const (
	StatTotalCalls = "mapping_calls_total"
	StatCacheHits  = "mapping_cache_hits"
)

// MappingStatKey builds the frequency key for one (category, output field)
// mapping decision.
func MappingStatKey(category, outputField string) string {
	return fmt.Sprintf("mapped:%s:%s", category, outputField)
}

// IncrementStat bumps a usage counter. Stats are advisory, used for
// calibration and analytics, never for correctness.
func (s *Store) IncrementStat(key string) error {
	_, err := s.db.Exec(`
		INSERT INTO usage_stats (stat_key, count) VALUES (?, 1)
		ON CONFLICT(stat_key) DO UPDATE SET count = count + 1`, key)
	return err
}

// StatsSnapshot returns all counters.
func (s *Store) StatsSnapshot() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT stat_key, count FROM usage_stats`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		snapshot[key] = count
	}
	return snapshot, rows.Err()
}
