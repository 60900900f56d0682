package metrics

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

// store persists counters in the metrics table.
type store struct {
	db *sqlx.DB
	mu sync.Mutex
}

type counterRow struct {
	Key   string `db:"key"`
	Value int    `db:"value"`
}

// New creates a new MetricsStore.
func New(db *sql.DB) MetricsStore {
	return &store{
		db: sqlx.NewDb(db, "sqlite3"),
	}
}

// Increment adds one to the counter under key, creating it when missing.
// Failures are logged only; a lost increment never fails the caller.
func (s *store) Increment(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO metrics (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1`, key)
	if err != nil {
		log.Error("Failed to increment persisted counter", "error", err, "key", key)
		return
	}
	log.Debug("Incremented persisted counter", "key", key)
}

// GetAll returns every persisted counter.
func (s *store) GetAll() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []counterRow
	if err := s.db.Select(&rows, "SELECT key, value FROM metrics"); err != nil {
		return nil, err
	}
	counters := make(map[string]int, len(rows))
	for _, r := range rows {
		counters[r.Key] = r.Value
	}
	return counters, nil
}
