// Package models defines the records shared by the converter, the manifest, the output
// index and the HTTP API.
package models

import "time"

// Outcome values recorded for a source file beyond the extraction statuses
// (success, empty, failed, unsupported).
const (
	// StatusUnchanged marks a source skipped by an incremental run because its size and
	// modification time match the manifest and its output still exists.
	StatusUnchanged = "unchanged"
	// StatusSkipped marks a source whose output path is already claimed by another
	// source in the same directory.
	StatusSkipped = "skipped"
)

// ExtractionRecord is the manifest entry for one source file: the last extraction
// outcome and the source attributes used for incremental runs.
type ExtractionRecord struct {
	ID            string    `json:"id" db:"id"`
	SourcePath    string    `json:"source_path" db:"source_path"`
	OutputPath    string    `json:"output_path" db:"output_path"`
	Format        string    `json:"format" db:"format"`
	Status        string    `json:"status" db:"status"`
	Error         string    `json:"error,omitempty" db:"error"`
	SourceSize    int64     `json:"source_size" db:"source_size"`
	SourceModTime time.Time `json:"source_mtime" db:"source_mtime"`
	TextBytes     int64     `json:"text_bytes" db:"text_bytes"`
	RunID         string    `json:"run_id,omitempty" db:"run_id"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// FileResult is the outcome of converting one source file.
type FileResult struct {
	SourcePath string `json:"source_path"`
	// OutputPath is empty when nothing was written (unsupported or skipped sources).
	OutputPath string `json:"output_path,omitempty"`
	Format     string `json:"format"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	TextBytes  int    `json:"text_bytes"`
}

// Written reports whether the conversion produced an output file.
func (r *FileResult) Written() bool {
	switch r.Status {
	case "success", "empty", "failed":
		return true
	}
	return false
}
