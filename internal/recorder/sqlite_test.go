package recorder

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestSQLiteRecorder(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	r, err := NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	recs := []*RunRecord{
		{Ticker: "AAPL", Period: "2y", Status: "success", Attempts: 1, CurrentPrice: 230.5, FilesWritten: 4, OutputDir: "/tmp/out", DurationMS: 1200},
		{Ticker: "NOPE", Period: "2y", Status: "failed", Attempts: 3, Error: "no historical data available for NOPE"},
	}
	for _, rec := range recs {
		if err := r.RecordRun(rec); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM run_history").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	var status, errMsg string
	row := db.QueryRow("SELECT status, error FROM run_history WHERE ticker = ?", "NOPE")
	if err := row.Scan(&status, &errMsg); err != nil {
		t.Fatal(err)
	}
	if status != "failed" {
		t.Errorf("status = %q, want failed", status)
	}
	if errMsg == "" {
		t.Error("error message not recorded")
	}
}

func TestSQLiteRecorderReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	r, err := NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.RecordRun(&RunRecord{Ticker: "AAPL", Status: "success"}); err != nil {
		t.Fatal(err)
	}
	r.Close()

	// migrations are idempotent, existing rows survive
	r2, err := NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()
	if err := r2.RecordRun(&RunRecord{Ticker: "MSFT", Status: "success"}); err != nil {
		t.Fatal(err)
	}
}
