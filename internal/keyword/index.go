// Package keyword provides full-text indexing and search over extracted document text.
package keyword

import (
	"context"
	"errors"

	"github.com/hyperjump/doctxt/internal/models"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("empty query")

// Document is the indexed form of one extraction output.
type Document struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
	Format     string `json:"format"`
}

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution from matches in the title (filename) field.
	// Values > 1 make filename matches rank higher. Use 1.0 for no boost.
	TitleBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Default is 1.
	Fuzziness int
	// Highlight requests content fragments around the matched terms.
	Highlight bool
}

// KeywordIndex defines keyword search operations.
type KeywordIndex interface {
	Index(ctx context.Context, doc *Document) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) (*models.SearchResponse, error)
	Delete(ctx context.Context, id string) error
	// DocCount returns the total number of documents in the index.
	DocCount() (uint64, error)
	Close() error
}
