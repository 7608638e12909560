// Package storage provides SQLite-based persistence for bridge sessions.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for session records.
type Store struct {
	db *sql.DB
}

// Session is the record of one bridge run.
type Session struct {
	ID              int64
	CoreID          string
	Host            string // tui, tcell, headless, android, desktop
	Profile         string // power profile, empty for none
	StartedAt       time.Time
	Duration        time.Duration
	Ticks           uint64
	Presents        uint64
	DroppedPresents uint64
	SkippedTicks    uint64
	Underruns       uint64
	Overruns        uint64
	Fault           string // empty when the run ended normally
	CreatedAt       time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			core_id TEXT NOT NULL,
			host TEXT NOT NULL,
			profile TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			presents INTEGER NOT NULL DEFAULT 0,
			dropped_presents INTEGER NOT NULL DEFAULT 0,
			skipped_ticks INTEGER NOT NULL DEFAULT 0,
			underruns INTEGER NOT NULL DEFAULT 0,
			overruns INTEGER NOT NULL DEFAULT 0,
			fault TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_core_id ON sessions(core_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveSession(sess Session) (int64, error) {
	var fault sql.NullString
	if sess.Fault != "" {
		fault = sql.NullString{String: sess.Fault, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO sessions
		 (core_id, host, profile, started_at, duration_ms, ticks, presents,
		  dropped_presents, skipped_ticks, underruns, overruns, fault)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.CoreID,
		sess.Host,
		sess.Profile,
		sess.StartedAt.UTC().Format(timeLayout),
		sess.Duration.Milliseconds(),
		int64(sess.Ticks),
		int64(sess.Presents),
		int64(sess.DroppedPresents),
		int64(sess.SkippedTicks),
		int64(sess.Underruns),
		int64(sess.Overruns),
		fault,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const sessionColumns = `id, core_id, host, profile, started_at, duration_ms, ticks, presents,
		        dropped_presents, skipped_ticks, underruns, overruns, fault, created_at`

// RecentSessions retrieves the most recent sessions across all cores.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	return scanSessions(rows)
}

// SessionsByCore retrieves the most recent sessions of one core.
func (s *Store) SessionsByCore(coreID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+sessionColumns+`
		 FROM sessions
		 WHERE core_id = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`,
		coreID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess                 Session
			startedAt, createdAt any
			durationMs           int64
			ticks, presents      int64
			dropped, skipped     int64
			underruns, overruns  int64
			fault                sql.NullString
		)
		if err := rows.Scan(
			&sess.ID,
			&sess.CoreID,
			&sess.Host,
			&sess.Profile,
			&startedAt,
			&durationMs,
			&ticks,
			&presents,
			&dropped,
			&skipped,
			&underruns,
			&overruns,
			&fault,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}

		sess.StartedAt = parseTime(startedAt)
		sess.CreatedAt = parseTime(createdAt)
		sess.Duration = time.Duration(durationMs) * time.Millisecond
		sess.Ticks = uint64(ticks)
		sess.Presents = uint64(presents)
		sess.DroppedPresents = uint64(dropped)
		sess.SkippedTicks = uint64(skipped)
		sess.Underruns = uint64(underruns)
		sess.Overruns = uint64(overruns)
		if fault.Valid {
			sess.Fault = fault.String
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// ClearSessions deletes all sessions of the given core.
func (s *Store) ClearSessions(coreID string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE core_id = ?", coreID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

// CoreStats contains aggregated statistics for a core.
type CoreStats struct {
	CoreID        string
	Sessions      int
	Faults        int
	TotalTicks    int64
	TotalPlay     time.Duration
	DropRate      float64 // dropped presents per attempted present
	LastSessionAt time.Time
}

// GetCoreStats retrieves aggregated statistics for a specific core.
func (s *Store) GetCoreStats(coreID string) (*CoreStats, error) {
	rows, err := s.db.Query(coreStatsQuery+` WHERE core_id = ? GROUP BY core_id`, coreID)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get core stats: %w", err)
	}
	stats, err := scanCoreStats(rows)
	if err != nil {
		return nil, err
	}
	if st, ok := stats[coreID]; ok {
		return st, nil
	}
	return &CoreStats{CoreID: coreID}, nil
}

// GetAllCoreStats retrieves statistics for all cores that have sessions.
func (s *Store) GetAllCoreStats() (map[string]*CoreStats, error) {
	rows, err := s.db.Query(coreStatsQuery + ` GROUP BY core_id`)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all core stats: %w", err)
	}
	return scanCoreStats(rows)
}

const coreStatsQuery = `SELECT core_id, COUNT(*), COUNT(fault), SUM(ticks), SUM(duration_ms),
		SUM(presents), SUM(dropped_presents), MAX(started_at)
		FROM sessions`

func scanCoreStats(rows *sql.Rows) (map[string]*CoreStats, error) {
	defer rows.Close()

	stats := make(map[string]*CoreStats)
	for rows.Next() {
		var (
			st                CoreStats
			durationMs        int64
			presents, dropped int64
			lastSession       any
		)
		if err := rows.Scan(&st.CoreID, &st.Sessions, &st.Faults, &st.TotalTicks, &durationMs,
			&presents, &dropped, &lastSession); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}

		st.TotalPlay = time.Duration(durationMs) * time.Millisecond
		if attempts := presents + dropped; attempts > 0 {
			st.DropRate = float64(dropped) / float64(attempts)
		}
		st.LastSessionAt = parseTime(lastSession)
		stats[st.CoreID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

const timeLayout = "2006-01-02 15:04:05"

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
