package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fcastellanos/reventa/internal/eval"
	"github.com/fcastellanos/reventa/internal/market"
	_ "modernc.org/sqlite"
)

// EvaluationRecord is a persisted evaluation outcome.
type EvaluationRecord struct {
	ID              int64
	Producto        string
	PrecioPublicado int
	Decision        string
	ScoreTotal      float64
	MargenBruto     int
	Result          eval.Result
	CreatedAt       time.Time
}

// SnapshotRecord is a persisted market aggregation result, kept as an audit
// trail of what the aggregator observed for a query.
type SnapshotRecord struct {
	ID        int64
	Query     string
	Source    string
	Count     int
	Median    int
	Stats     market.Stats
	CreatedAt time.Time
}

// SQLiteStore persists evaluations and market snapshots.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and busy timeout for concurrent evaluation requests.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	evaluationsQuery := `
	CREATE TABLE IF NOT EXISTS evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		producto TEXT NOT NULL,
		precio_publicado INTEGER NOT NULL,
		decision TEXT NOT NULL,
		score_total REAL NOT NULL,
		margen_bruto INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(evaluationsQuery); err != nil {
		return fmt.Errorf("failed to create evaluations table: %w", err)
	}

	snapshotsQuery := `
	CREATE TABLE IF NOT EXISTS market_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		source TEXT NOT NULL,
		count INTEGER NOT NULL,
		median INTEGER NOT NULL,
		stats_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(snapshotsQuery); err != nil {
		return fmt.Errorf("failed to create market_snapshots table: %w", err)
	}

	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_snapshots_query ON market_snapshots(query, created_at)"); err != nil {
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return nil
}

// SaveEvaluation stores a completed evaluation. Implements
// eval.HistoryRecorder.
func (s *SQLiteStore) SaveEvaluation(producto string, precio int, result eval.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO evaluations (producto, precio_publicado, decision, score_total, margen_bruto, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, producto, precio, string(result.Recomendacion.Decision), result.Evaluacion.ScoreTotal,
		result.Proyeccion.MargenBruto, string(resultJSON), time.Now())

	if err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// RecentEvaluations returns the most recent evaluations, newest first.
func (s *SQLiteStore) RecentEvaluations(limit int) ([]EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, producto, precio_publicado, decision, score_total, margen_bruto, result_json, created_at
		FROM evaluations ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluations: %w", err)
	}
	defer rows.Close()

	var records []EvaluationRecord
	for rows.Next() {
		var rec EvaluationRecord
		var resultJSON string
		if err := rows.Scan(&rec.ID, &rec.Producto, &rec.PrecioPublicado, &rec.Decision,
			&rec.ScoreTotal, &rec.MargenBruto, &resultJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result for evaluation %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SaveSnapshot stores a market aggregation result. Implements
// market.SnapshotRecorder.
func (s *SQLiteStore) SaveSnapshot(query string, stats market.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO market_snapshots (query, source, count, median, stats_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, query, stats.Source, stats.Count, stats.Median, string(statsJSON), time.Now())

	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest snapshot for a normalized query, or nil
// when none exists.
func (s *SQLiteStore) LatestSnapshot(query string) (*SnapshotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rec SnapshotRecord
	var statsJSON string
	err := s.db.QueryRow(`
		SELECT id, query, source, count, median, stats_json, created_at
		FROM market_snapshots WHERE query = ? ORDER BY created_at DESC, id DESC LIMIT 1
	`, query).Scan(&rec.ID, &rec.Query, &rec.Source, &rec.Count, &rec.Median, &statsJSON, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(statsJSON), &rec.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats for snapshot %d: %w", rec.ID, err)
	}
	return &rec, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Interface conformance.
var (
	_ eval.HistoryRecorder    = (*SQLiteStore)(nil)
	_ market.SnapshotRecorder = (*SQLiteStore)(nil)
)
