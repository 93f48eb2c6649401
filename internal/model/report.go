package model

import "time"

// RowResult pairs one input row with its verdict
type RowResult struct {
	Index     int     `json:"index"`                // 0-based row index in the input table
	WorkOrder string  `json:"work_order,omitempty"` // Work order the row belongs to, if known
	Verdict   Verdict `json:"verdict"`
}

// Summary aggregates verdict counts for a batch run
type Summary struct {
	Total            int `json:"total"`
	Valid            int `json:"valid"`
	MissingReference int `json:"missing_reference"`
	MissingRevision  int `json:"missing_revision"`
	WrongFormat      int `json:"wrong_format"`
	NotApplicable    int `json:"not_applicable"`
	Echoed           int `json:"echoed"`     // Blank/placeholder rows passed through verbatim
	CacheHits        int `json:"cache_hits"` // Rows answered from the verdict memo cache
}

// Add counts one verdict into the summary
func (s *Summary) Add(v Verdict) {
	s.Total++
	switch v {
	case VerdictValid:
		s.Valid++
	case VerdictMissingReference:
		s.MissingReference++
	case VerdictMissingRevision:
		s.MissingRevision++
	case VerdictWrongFormat:
		s.WrongFormat++
	case VerdictNotApplicable:
		s.NotApplicable++
	default:
		s.Echoed++
	}
}

// Consistent reports whether every row landed in exactly one category.
// A false result means an uncategorized verdict slipped through.
func (s *Summary) Consistent() bool {
	counted := s.Valid + s.MissingReference + s.MissingRevision + s.WrongFormat + s.NotApplicable + s.Echoed
	return counted == s.Total
}

// BatchReport describes one complete batch run
type BatchReport struct {
	RunID      string    `json:"run_id"`
	InputFile  string    `json:"input_file,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    Summary   `json:"summary"`
}

// Duration returns the wall-clock time the run took
func (r *BatchReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
