package logging

import "time"

// #region evaluation-entry
// EvaluationEntry is a single row in the evaluation_log table.
type EvaluationEntry struct {
	RunID       string
	Document    string
	IndicatorID string
	Label       string
	Verdict     string // "TRUE" | "FALSE" | "INDETERMINATE"
	Artifacts   int
	Capped      bool
	Description string
	CreatedAt   time.Time
}
// #endregion evaluation-entry
