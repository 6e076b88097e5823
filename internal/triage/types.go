package triage

import (
	"github.com/danielpatrickdp/stix-triage/internal/correlate"
	"github.com/danielpatrickdp/stix-triage/internal/cybox"
	"github.com/danielpatrickdp/stix-triage/internal/result"
)

// #region report
// Report is the verdict for one indicator.
type Report struct {
	Indicator *cybox.Indicator
	Label     string
	Result    result.ObservableResult
	Outcome   correlate.Outcome
}

// Summary is the outcome of one Run. Reports keeps document order and holds
// only True indicators unless ReportAll is set; the counts cover every
// evaluated indicator.
type Summary struct {
	RunID         string
	Document      string
	Hives         int
	Evaluated     int
	True          int
	False         int
	Indeterminate int
	Artifacts     int
	Reports       []Report
}
// #endregion report
