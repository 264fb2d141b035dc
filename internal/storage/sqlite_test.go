package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/doctxt/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStorage_ExtractionCRUD(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	mtime := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.UTC)
	rec := &models.ExtractionRecord{
		ID:            "file:abc",
		SourcePath:    "/in/deck.pptx",
		OutputPath:    "/out/deck.txt",
		Format:        "pptx",
		Status:        "success",
		SourceSize:    2048,
		SourceModTime: mtime,
		TextBytes:     42,
		RunID:         "run-1",
	}
	if err := store.PutExtraction(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}

	got, err := store.GetExtraction(ctx, "file:abc")
	if err != nil {
		t.Fatal(err)
	}
	if got.SourcePath != rec.SourcePath || got.OutputPath != rec.OutputPath || got.Status != "success" {
		t.Errorf("got %+v", got)
	}
	if !got.SourceModTime.Equal(mtime) {
		t.Errorf("SourceModTime = %v, want %v", got.SourceModTime, mtime)
	}
	if got.SourceSize != 2048 || got.TextBytes != 42 || got.RunID != "run-1" {
		t.Errorf("got %+v", got)
	}

	rec.Status = "failed"
	rec.Error = "cannot open document"
	rec.TextBytes = 0
	if err := store.PutExtraction(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, _ = store.GetExtraction(ctx, "file:abc")
	if got.Status != "failed" || got.Error != "cannot open document" || got.TextBytes != 0 {
		t.Errorf("after update got %+v", got)
	}

	n, err := store.CountExtractions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("CountExtractions = %d, want 1", n)
	}

	if err := store.DeleteExtraction(ctx, "file:abc"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetExtraction(ctx, "file:abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExtraction after delete: err = %v, want ErrNotFound", err)
	}
	if err := store.DeleteExtraction(ctx, "file:abc"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSQLiteStorage_PutExtractionRequiresID(t *testing.T) {
	store := newTestStorage(t)
	if err := store.PutExtraction(context.Background(), &models.ExtractionRecord{SourcePath: "/a.pdf"}); err == nil {
		t.Error("expected error for record without id")
	}
}

func TestSQLiteStorage_ListAndCountByStatus(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	for _, r := range []struct{ id, path, status string }{
		{"3", "/in/c.pdf", "failed"},
		{"1", "/in/a.pdf", "success"},
		{"2", "/in/b.docx", "success"},
		{"4", "/in/d.key", "empty"},
	} {
		rec := &models.ExtractionRecord{ID: r.id, SourcePath: r.path, Format: "pdf", Status: r.status}
		if err := store.PutExtraction(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.ListExtractions(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/in/a.pdf", "/in/b.docx", "/in/c.pdf", "/in/d.key"}
	if len(list) != len(want) {
		t.Fatalf("len = %d, want %d", len(list), len(want))
	}
	for i, rec := range list {
		if rec.SourcePath != want[i] {
			t.Errorf("list[%d] = %s, want %s", i, rec.SourcePath, want[i])
		}
	}

	page, err := store.ListExtractions(ctx, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].SourcePath != "/in/b.docx" {
		t.Errorf("page = %+v", page)
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["success"] != 2 || counts["failed"] != 1 || counts["empty"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestSQLiteStorage_Runs(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if _, err := store.LatestRun(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestRun on empty db: err = %v, want ErrNotFound", err)
	}

	first := &models.RunSummary{InputRoot: "/in", OutputRoot: "/out", StartedAt: time.Now().Add(-time.Hour)}
	if err := store.CreateRun(ctx, first); err != nil {
		t.Fatal(err)
	}
	if first.ID == "" {
		t.Fatal("CreateRun should assign an id")
	}

	second := &models.RunSummary{InputRoot: "/in", OutputRoot: "/out"}
	if err := store.CreateRun(ctx, second); err != nil {
		t.Fatal(err)
	}
	if second.ID == first.ID {
		t.Error("run ids should differ")
	}

	latest, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.ID || latest.FinishedAt != nil {
		t.Errorf("latest = %+v", latest)
	}

	second.Total, second.Success, second.Failed, second.Unchanged = 5, 3, 1, 1
	if err := store.FinishRun(ctx, second); err != nil {
		t.Fatal(err)
	}
	latest, err = store.LatestRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}
	if latest.Total != 5 || latest.Success != 3 || latest.Failed != 1 || latest.Unchanged != 1 {
		t.Errorf("latest counts = %+v", latest)
	}

	if err := store.FinishRun(ctx, &models.RunSummary{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("FinishRun missing: err = %v, want ErrNotFound", err)
	}
}

func TestNewSQLiteStorage_createsDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "manifest.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Close()
}

func TestNewSQLiteStorage_reopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")
	ctx := context.Background()
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.PutExtraction(ctx, &models.ExtractionRecord{ID: "x", SourcePath: "/x.pdf", Format: "pdf", Status: "empty"}); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	store, err = NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.GetExtraction(ctx, "x"); err != nil {
		t.Errorf("record lost after reopen: %v", err)
	}
}
