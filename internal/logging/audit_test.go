package logging

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE evaluation_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id       TEXT NOT NULL,
		document     TEXT,
		indicator_id TEXT,
		label        TEXT NOT NULL,
		verdict      TEXT NOT NULL,
		artifacts    INTEGER NOT NULL DEFAULT 0,
		capped       INTEGER NOT NULL DEFAULT 0,
		description  TEXT,
		created_at   TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}
// #endregion helpers

// #region log-evaluation-tests
func TestLogEvaluation_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	ctx := context.Background()

	entry := EvaluationEntry{
		RunID:       "run-1",
		Document:    "apt.yaml",
		IndicatorID: "ind-1",
		Label:       "Evil dropper",
		Verdict:     "TRUE",
		Artifacts:   3,
		Description: "FileObject: Found 3 matches",
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogEvaluation(ctx, db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Evaluations(ctx, db, "run-1")
	if err != nil {
		t.Fatalf("Evaluations: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0] != entry {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got[0], entry)
	}
}

func TestLogEvaluation_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	err := LogEvaluation(context.Background(), db, EvaluationEntry{RunID: "r", Label: "l", Verdict: "FALSE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM evaluation_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogEvaluation_EmptyOptionalFields(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := EvaluationEntry{
		RunID:   "r",
		Label:   "Unnamed indicator(s)",
		Verdict: "INDETERMINATE",
		Capped:  true,
	}
	if err := LogEvaluation(context.Background(), db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var document, indicatorID, description sql.NullString
	var capped int
	db.QueryRow("SELECT document, indicator_id, description, capped FROM evaluation_log").Scan(
		&document, &indicatorID, &description, &capped,
	)
	if document.Valid {
		t.Error("expected NULL document for empty string")
	}
	if indicatorID.Valid {
		t.Error("expected NULL indicator_id for empty string")
	}
	if description.Valid {
		t.Error("expected NULL description for empty string")
	}
	if capped != 1 {
		t.Errorf("expected capped=1, got %d", capped)
	}
}

func TestLogEvaluation_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	err := LogEvaluation(context.Background(), db, EvaluationEntry{RunID: "r", Label: "l", Verdict: "TRUE"})
	if err == nil {
		t.Fatal("expected error on closed db")
	}
}

func TestEvaluations_FiltersByRun(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	ctx := context.Background()

	for _, run := range []string{"a", "b", "a"} {
		if err := LogEvaluation(ctx, db, EvaluationEntry{RunID: run, Label: "l", Verdict: "FALSE"}); err != nil {
			t.Fatalf("LogEvaluation: %v", err)
		}
	}
	got, err := Evaluations(ctx, db, "a")
	if err != nil {
		t.Fatalf("Evaluations: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 rows for run a, got %d", len(got))
	}
}
// #endregion log-evaluation-tests

// #region null-if-empty-tests
func TestNullIfEmpty_Empty(t *testing.T) {
	result := nullIfEmpty("")
	if result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
}

func TestNullIfEmpty_NonEmpty(t *testing.T) {
	result := nullIfEmpty("hello")
	if result != "hello" {
		t.Errorf("expected 'hello', got %v", result)
	}
}
// #endregion null-if-empty-tests
