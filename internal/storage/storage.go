// Package storage defines the persistence interface for the extraction manifest.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/doctxt/internal/models"
)

// ErrNotFound is returned when a manifest record or run does not exist.
var ErrNotFound = errors.New("not found")

// Manifest records the last extraction outcome per source file and the history of runs.
type Manifest interface {
	// Extraction records
	PutExtraction(ctx context.Context, rec *models.ExtractionRecord) error
	GetExtraction(ctx context.Context, id string) (*models.ExtractionRecord, error)
	DeleteExtraction(ctx context.Context, id string) error
	ListExtractions(ctx context.Context, offset, limit int) ([]*models.ExtractionRecord, error)

	// Runs
	CreateRun(ctx context.Context, run *models.RunSummary) error
	FinishRun(ctx context.Context, run *models.RunSummary) error
	LatestRun(ctx context.Context) (*models.RunSummary, error)

	// Stats
	CountExtractions(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)

	Close() error
}
