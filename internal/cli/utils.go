// Package cli provides output helpers for the doctxt command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/doctxt/internal/extract"
	"github.com/hyperjump/doctxt/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per item, tab separated.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a -output flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputCompact, OutputJSON:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteRunSummary writes the outcome of a tree conversion to w.
func WriteRunSummary(w io.Writer, run *models.RunSummary, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, run)
	case OutputCompact:
		_, err := fmt.Fprintf(w, "total=%d\tsuccess=%d\tempty=%d\tfailed=%d\tunsupported=%d\tskipped=%d\tunchanged=%d\n",
			run.Total, run.Success, run.Empty, run.Failed, run.Unsupported, run.Skipped, run.Unchanged)
		return err
	default:
		fmt.Fprintf(w, "\nProcessed %d file(s) from %s\n", run.Total, run.InputRoot)
		fmt.Fprintf(w, "  success:      %d\n", run.Success)
		fmt.Fprintf(w, "  empty:        %d\n", run.Empty)
		fmt.Fprintf(w, "  failed:       %d\n", run.Failed)
		fmt.Fprintf(w, "  unsupported:  %d\n", run.Unsupported)
		if run.Skipped > 0 {
			fmt.Fprintf(w, "  skipped:      %d\n", run.Skipped)
		}
		if run.Unchanged > 0 {
			fmt.Fprintf(w, "  unchanged:    %d\n", run.Unchanged)
		}
		if len(run.Failures) > 0 {
			fmt.Fprintln(w, "Failures:")
			for _, f := range run.Failures {
				fmt.Fprintf(w, "  %s: %s\n", f.SourcePath, f.Error)
			}
		}
		_, err := fmt.Fprintf(w, "All converted files are in: %s\n", run.OutputRoot)
		return err
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, hit := range response.Hits {
			if _, err := fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", hit.Rank, hit.Score, hit.Path, hit.OutputPath); err != nil {
				return err
			}
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
	for _, hit := range response.Hits {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%d] %s | Score: %.4f\n", hit.Rank, hit.Title, hit.Score)
		fmt.Fprintf(w, "Source: %s\n", hit.Path)
		if hit.OutputPath != "" {
			fmt.Fprintf(w, "Text:   %s\n", hit.OutputPath)
		}
		for _, frag := range hit.Fragments["content"] {
			fmt.Fprintf(w, "  %s\n", Truncate(strings.Join(strings.Fields(frag), " "), 200))
		}
		fmt.Fprintln(w)
	}
}

// WriteStatus writes a status report to w. Compact is treated as text.
func WriteStatus(w io.Writer, report *models.StatusReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "extractions:        %d   # sources recorded in the manifest\n", report.Extractions)
	statuses := make([]string, 0, len(report.ByStatus))
	for s := range report.ByStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-16s  %d\n", s+":", report.ByStatus[s])
	}
	fmt.Fprintf(w, "indexed_documents:  %d   # outputs searchable in the index\n", report.IndexedDocuments)
	fmt.Fprintf(w, "disk_usage_bytes:   %d   # manifest + index on disk\n", report.DiskUsageBytes)
	if run := report.LatestRun; run != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# latest run")
		fmt.Fprintf(w, "id:                 %s\n", run.ID)
		fmt.Fprintf(w, "input_root:         %s\n", run.InputRoot)
		fmt.Fprintf(w, "output_root:        %s\n", run.OutputRoot)
		fmt.Fprintf(w, "started_at:         %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		if run.FinishedAt != nil {
			fmt.Fprintf(w, "finished_at:        %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintf(w, "written:            %d of %d\n", run.Written(), run.Total)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "# configuration")
	fmt.Fprintf(w, "database_path:      %s\n", report.DatabasePath)
	_, err := fmt.Fprintf(w, "index_path:         %s\n", report.IndexPath)
	return err
}

type extractionOutput struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error,omitempty"`
}

// WriteExtraction writes the result of extracting a single document. Text and compact
// output print the extracted text as is.
func WriteExtraction(w io.Writer, res extract.Result, format OutputFormat) error {
	if format == OutputJSON {
		out := extractionOutput{
			Path:   res.Path,
			Format: string(res.Format),
			Status: string(res.Status),
			Text:   res.Text,
		}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}
		return writeJSON(w, out)
	}
	_, err := io.WriteString(w, res.Text)
	return err
}

// Truncate truncates s to maxLen bytes and appends "..." if truncated.
// The cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
