package keyword

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex(filepath.Join(t.TempDir(), "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBleveIndex_SearchFindsContent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	doc := &Document{
		ID:         "file:abc123",
		Title:      "Monthly Report 17 - May 2023.docx",
		Content:    "This report mentions Omnisyan and other findings. The Bayes app is also referenced.",
		Path:       "/in/reports/Monthly Report 17 - May 2023.docx",
		OutputPath: "/out/reports/Monthly Report 17 - May 2023.txt",
		Format:     "docx",
	}
	if err := idx.Index(ctx, doc); err != nil {
		t.Fatalf("Index: %v", err)
	}

	resp, err := idx.Search(ctx, "Omnisyan", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) == 0 {
		t.Fatal("expected a hit for \"Omnisyan\" in content")
	}
	hit := resp.Hits[0]
	if hit.ID != doc.ID {
		t.Errorf("hit ID = %q, want %q", hit.ID, doc.ID)
	}
	if hit.Path != doc.Path || hit.OutputPath != doc.OutputPath || hit.Format != "docx" {
		t.Errorf("hit = %+v", hit)
	}
	if hit.Title != "Monthly Report 17 - May 2023.docx" || hit.Rank != 1 {
		t.Errorf("hit title/rank = %q/%d", hit.Title, hit.Rank)
	}
	if resp.Total != 1 || resp.Query != "Omnisyan" {
		t.Errorf("resp = %+v", resp)
	}

	// No stemming: "bayes" matches "Bayes".
	resp, err = idx.Search(ctx, "bayes", 10, nil)
	if err != nil {
		t.Fatalf("Search bayes: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Errorf("bayes hits = %d, want 1", len(resp.Hits))
	}
}

func TestBleveIndex_SearchFindsTitleWords(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	if err := idx.Index(ctx, &Document{ID: "d1", Title: "q3_board-deck.pptx", Content: "numbers", Path: "/in/q3_board-deck.pptx"}); err != nil {
		t.Fatalf("Index: %v", err)
	}
	resp, err := idx.Search(ctx, "board", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].ID != "d1" {
		t.Errorf("hits = %+v", resp.Hits)
	}
	if resp.Hits[0].Title != "q3_board-deck.pptx" {
		t.Errorf("title = %q, want the original file name", resp.Hits[0].Title)
	}
}

func TestBleveIndex_TitleBoostRanksFilenameFirst(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_ = idx.Index(ctx, &Document{ID: "body", Title: "notes.docx", Content: "budget budget budget review", Path: "/in/notes.docx"})
	_ = idx.Index(ctx, &Document{ID: "name", Title: "budget.pdf", Content: "quarterly figures", Path: "/in/budget.pdf"})

	resp, err := idx.Search(ctx, "budget", 10, &SearchOptions{TitleBoost: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(resp.Hits))
	}
	if resp.Hits[0].ID != "name" {
		t.Errorf("first hit = %q, want the filename match", resp.Hits[0].ID)
	}
}

func TestBleveIndex_FuzzySearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_ = idx.Index(ctx, &Document{ID: "d1", Title: "a.pdf", Content: "extraction pipeline"})

	resp, err := idx.Search(ctx, "pipelime", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 0 {
		t.Errorf("exact search for a typo should not match, got %d", len(resp.Hits))
	}
	resp, err = idx.Search(ctx, "pipelime", 10, &SearchOptions{FuzzyEnabled: true})
	if err != nil {
		t.Fatalf("fuzzy Search: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Errorf("fuzzy hits = %d, want 1", len(resp.Hits))
	}
}

func TestBleveIndex_Highlight(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_ = idx.Index(ctx, &Document{ID: "d1", Title: "a.pdf", Content: "the quick brown fox"})

	resp, err := idx.Search(ctx, "brown", 10, &SearchOptions{Highlight: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(resp.Hits))
	}
	if len(resp.Hits[0].Fragments["content"]) == 0 {
		t.Errorf("expected content fragments, got %v", resp.Hits[0].Fragments)
	}
}

func TestBleveIndex_EmptyQuery(t *testing.T) {
	idx := newTestIndex(t)
	if _, err := idx.Search(context.Background(), "   ", 10, nil); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestBleveIndex_ReopenKeepsDocuments(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "bleve")
	ctx := context.Background()

	idx1, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	if err := idx1.Index(ctx, &Document{ID: "doc1", Title: "T", Content: "uniqueword"}); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := idx1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx2, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex (open existing): %v", err)
	}
	defer func() { _ = idx2.Close() }()

	resp, err := idx2.Search(ctx, "uniqueword", 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Hits) != 1 {
		t.Errorf("after reopen got %d hits, want 1", len(resp.Hits))
	}
}

func TestBleveIndex_DeleteAndDocCount(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()
	_ = idx.Index(ctx, &Document{ID: "d1", Title: "a", Content: "alpha"})
	_ = idx.Index(ctx, &Document{ID: "d2", Title: "b", Content: "beta"})
	// Re-indexing the same id replaces the document.
	_ = idx.Index(ctx, &Document{ID: "d2", Title: "b", Content: "gamma"})

	n, err := idx.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("DocCount = %d, want 2", n)
	}
	if resp, _ := idx.Search(ctx, "beta", 10, nil); len(resp.Hits) != 0 {
		t.Errorf("replaced content still matches")
	}

	if err := idx.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := idx.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
	n, _ = idx.DocCount()
	if n != 1 {
		t.Errorf("DocCount after delete = %d, want 1", n)
	}
	if resp, _ := idx.Search(ctx, "alpha", 10, nil); len(resp.Hits) != 0 {
		t.Errorf("deleted doc still matches")
	}
}

func TestNewBleveIndex_createsDir(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "nested", "bleve")
	idx, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	defer func() { _ = idx.Close() }()
	if _, err := os.Stat(indexPath); err != nil {
		t.Errorf("index dir not created: %v", err)
	}
}

func TestNormalizeTitleForKeywordSearch(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"q3_board-deck.pptx", "q3 board deck pptx"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeTitleForKeywordSearch(tt.in); got != tt.want {
			t.Errorf("normalizeTitleForKeywordSearch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
