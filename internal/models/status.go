package models

// StatusReport summarizes the manifest, the output index and their footprint on disk.
type StatusReport struct {
	Extractions      int64            `json:"extractions"`
	ByStatus         map[string]int64 `json:"by_status"`
	IndexedDocuments uint64           `json:"indexed_documents"`
	LatestRun        *RunSummary      `json:"latest_run,omitempty"`
	DatabasePath     string           `json:"database_path"`
	IndexPath        string           `json:"index_path"`
	DiskUsageBytes   int64            `json:"disk_usage_bytes"`
}
