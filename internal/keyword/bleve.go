// Package keyword provides Bleve implementation of KeywordIndex.
package keyword

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/doctxt/internal/models"
)

const defaultFuzziness = 1

// storedFields are returned with every hit.
var storedFields = []string{"path", "output_path", "format"}

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path.
// If the path already exists, the existing index is opened and reused so that
// incremental runs keep documents of unchanged sources searchable.
// If you change the index mapping in code, remove the index directory to force a full re-index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}
	index, err := bleve.New(path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so queries match exact words.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	for _, f := range append([]string{"id"}, storedFields...) {
		docMapping.AddFieldMappingsAt(f, keywordFieldMapping)
	}
	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping
	return im
}

// Index indexes doc under doc.ID, replacing any previous version.
func (b *BleveIndex) Index(ctx context.Context, doc *Document) error {
	indexed := *doc
	indexed.Title = normalizeTitleForKeywordSearch(doc.Title)
	return b.index.Index(doc.ID, &indexed)
}

// normalizeTitleForKeywordSearch returns the title with underscores, dashes and dots
// replaced by spaces so that "q3_board-deck.pptx" is searchable as "board deck".
func normalizeTitleForKeywordSearch(title string) string {
	return strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(title)
}

// Search runs query over title and content and returns up to limit hits ranked by score.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) (*models.SearchResponse, error) {
	start := time.Now()
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}
	titleBoost := 1.0
	fuzzyEnabled := false
	fuzziness := defaultFuzziness
	highlight := false
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzyEnabled = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
		highlight = opts.Highlight
	}

	var titleQuery, contentQuery blevequery.Query
	if fuzzyEnabled {
		titleQuery = buildFuzzyQuery(query, fuzziness, "title", titleBoost)
		contentQuery = buildFuzzyQuery(query, fuzziness, "content", 1)
	} else {
		tq := bleve.NewMatchQuery(query)
		tq.SetField("title")
		tq.SetBoost(titleBoost)
		titleQuery = tq
		cq := bleve.NewMatchQuery(query)
		cq.SetField("content")
		contentQuery = cq
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(titleQuery, contentQuery), limit, 0, false)
	req.Fields = storedFields
	if highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("content")
	}
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	resp := &models.SearchResponse{
		Query: query,
		Hits:  make([]*models.SearchHit, len(results.Hits)),
		Total: results.Total,
	}
	for i, hit := range results.Hits {
		path := fieldString(hit.Fields, "path")
		resp.Hits[i] = &models.SearchHit{
			ID:         hit.ID,
			Path:       path,
			OutputPath: fieldString(hit.Fields, "output_path"),
			Title:      filepath.Base(path),
			Format:     fieldString(hit.Fields, "format"),
			Score:      hit.Score,
			Fragments:  hit.Fragments,
			Rank:       i + 1,
		}
	}
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp, nil
}

func fieldString(fields map[string]interface{}, name string) string {
	if s, ok := fields[name].(string); ok {
		return s
	}
	return ""
}

// tokenizeQuery splits query into lowercase terms, filtering out empty strings.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per query term, on field.
func buildFuzzyQuery(queryStr string, fuzziness int, field string, boost float64) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a document from the index. Deleting a missing document is not an error.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}
