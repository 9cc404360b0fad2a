package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers do not block recording.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS run_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			ticker        TEXT NOT NULL,
			period        TEXT,
			status        TEXT,
			attempts      INTEGER,
			current_price REAL,
			files_written INTEGER,
			output_dir    TEXT,
			duration_ms   INTEGER,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_ts ON run_history(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_run_ticker ON run_history(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO run_history
		(timestamp, ticker, period, status, attempts, current_price,
		 files_written, output_dir, duration_ms, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Ticker, rec.Period, rec.Status, rec.Attempts,
		rec.CurrentPrice, rec.FilesWritten, rec.OutputDir, rec.DurationMS, rec.Error,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Debug().Msg("closing sqlite recorder")
	return r.db.Close()
}
