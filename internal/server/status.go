package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/doctxt/internal/config"
	"github.com/hyperjump/doctxt/internal/keyword"
	"github.com/hyperjump/doctxt/internal/models"
	"github.com/hyperjump/doctxt/internal/storage"
)

// BuildStatus collects the status report shared by GET /api/v1/status and the status
// command. index may be nil.
func BuildStatus(ctx context.Context, manifest storage.Manifest, index keyword.KeywordIndex, storageCfg config.StorageConfig) (*models.StatusReport, error) {
	report := &models.StatusReport{
		DatabasePath: storageCfg.DatabasePath,
		IndexPath:    storageCfg.IndexPath,
	}
	var err error
	if report.Extractions, err = manifest.CountExtractions(ctx); err != nil {
		return nil, fmt.Errorf("count extractions: %w", err)
	}
	if report.ByStatus, err = manifest.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	run, err := manifest.LatestRun(ctx)
	switch {
	case err == nil:
		report.LatestRun = run
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("latest run: %w", err)
	}
	if index != nil {
		if report.IndexedDocuments, err = index.DocCount(); err != nil {
			return nil, fmt.Errorf("index doc count: %w", err)
		}
	}
	if n, err := storage.DiskUsageBytes(storageCfg.DatabasePath, storageCfg.IndexPath); err == nil {
		report.DiskUsageBytes = n
	}
	return report, nil
}
