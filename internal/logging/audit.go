package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// #region log-evaluation
// LogEvaluation writes one indicator verdict to the evaluation_log table.
func LogEvaluation(ctx context.Context, db *sql.DB, entry EvaluationEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO evaluation_log (run_id, document, indicator_id, label, verdict, artifacts, capped, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		nullIfEmpty(entry.Document),
		nullIfEmpty(entry.IndicatorID),
		entry.Label,
		entry.Verdict,
		entry.Artifacts,
		entry.Capped,
		nullIfEmpty(entry.Description),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log evaluation: %w", err)
	}
	return nil
}
// #endregion log-evaluation

// #region list-evaluations
// Evaluations returns the audit rows of one run in insertion order.
func Evaluations(ctx context.Context, db *sql.DB, runID string) ([]EvaluationEntry, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT run_id, document, indicator_id, label, verdict, artifacts, capped, description, created_at
		 FROM evaluation_log WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var out []EvaluationEntry
	for rows.Next() {
		var e EvaluationEntry
		var doc, indID, desc sql.NullString
		var created string
		if err := rows.Scan(&e.RunID, &doc, &indID, &e.Label, &e.Verdict, &e.Artifacts, &e.Capped, &desc, &created); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		e.Document = doc.String
		e.IndicatorID = indID.String
		e.Description = desc.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-evaluations

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
