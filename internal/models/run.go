package models

import "time"

// RunSummary describes one tree conversion.
type RunSummary struct {
	ID          string     `json:"id"`
	InputRoot   string     `json:"input_root"`
	OutputRoot  string     `json:"output_root"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Total       int        `json:"total"`
	Success     int        `json:"success"`
	Empty       int        `json:"empty"`
	Failed      int        `json:"failed"`
	Unsupported int        `json:"unsupported"`
	Skipped     int        `json:"skipped"`
	Unchanged   int        `json:"unchanged"`
	// Failures lists failed sources with their diagnostics. It is not persisted.
	Failures []*FileResult `json:"failures,omitempty"`
}

// Add counts r into the summary.
func (s *RunSummary) Add(r *FileResult) {
	s.Total++
	switch r.Status {
	case "success":
		s.Success++
	case "empty":
		s.Empty++
	case "failed":
		s.Failed++
		s.Failures = append(s.Failures, r)
	case "unsupported":
		s.Unsupported++
	case StatusSkipped:
		s.Skipped++
	case StatusUnchanged:
		s.Unchanged++
	}
}

// Written returns the number of output files produced by the run.
func (s *RunSummary) Written() int {
	return s.Success + s.Empty + s.Failed
}
