// Package converter walks an input tree, extracts text from every supported document and
// writes it to a mirrored .txt tree, recording outcomes in the manifest and output index.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/doctxt/internal/extract"
	"github.com/hyperjump/doctxt/internal/fileid"
	"github.com/hyperjump/doctxt/internal/keyword"
	"github.com/hyperjump/doctxt/internal/models"
	"github.com/hyperjump/doctxt/internal/storage"
)

const outputExt = ".txt"

var (
	// ErrInputRoot is returned when the input root is missing or not a directory.
	ErrInputRoot = errors.New("input root is not a directory")
	// ErrOutsideRoot is returned for a source path that is not inside the input root.
	ErrOutsideRoot = errors.New("path is outside the input root")
)

// Converter converts document trees to text trees.
type Converter struct {
	extractor   *extract.Extractor
	manifest    storage.Manifest
	index       keyword.KeywordIndex
	workers     int
	incremental bool
	extensions  map[string]bool
	progress    io.Writer
	progressMu  sync.Mutex
	logger      *zap.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets a logger for per-file outcomes.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithManifest records every outcome and run in m.
func WithManifest(m storage.Manifest) Option {
	return func(c *Converter) { c.manifest = m }
}

// WithIndex indexes successful outputs into idx and removes stale documents from it.
func WithIndex(idx keyword.KeywordIndex) Option {
	return func(c *Converter) { c.index = idx }
}

// WithWorkers sets the number of files converted concurrently. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(c *Converter) { c.workers = n }
}

// WithIncremental skips sources whose size and modification time match the manifest.
// It has no effect without a manifest.
func WithIncremental(on bool) Option {
	return func(c *Converter) { c.incremental = on }
}

// WithExtensions restricts conversion to a subset of the supported extensions.
// Other files are reported as unsupported. Empty means all supported extensions.
func WithExtensions(exts []string) Option {
	return func(c *Converter) {
		if len(exts) == 0 {
			c.extensions = nil
			return
		}
		c.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			c.extensions["."+strings.TrimPrefix(strings.ToLower(e), ".")] = true
		}
	}
}

// WithProgress writes one human-readable line per file event to w.
func WithProgress(w io.Writer) Option {
	return func(c *Converter) { c.progress = w }
}

// New returns a Converter using extractor.
func New(extractor *extract.Extractor, opts ...Option) *Converter {
	c := &Converter{extractor: extractor, workers: 1}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.extractor == nil {
		c.extractor = extract.NewExtractor(extract.WithLogger(c.logger))
	}
	return c
}

// OutputPath maps a source path under inRoot to its mirrored text path under outRoot:
// inRoot/R/name.ext becomes outRoot/R/name.txt.
func OutputPath(inRoot, outRoot, path string) (string, error) {
	rel, err := filepath.Rel(inRoot, path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	return filepath.Join(outRoot, strings.TrimSuffix(rel, filepath.Ext(rel))+outputExt), nil
}

// task is one source scheduled for conversion.
type task struct {
	path    string
	outPath string
	info    fs.FileInfo
}

// ConvertTree converts every supported document under inRoot into outRoot. Every input
// directory is mirrored, even when it holds no documents. Per-file failures are counted
// in the summary and never abort the run; the returned error reports only a missing
// input root, an unusable output root or cancellation.
func (c *Converter) ConvertTree(ctx context.Context, inRoot, outRoot string) (*models.RunSummary, error) {
	inRoot, outRoot, err := absRoots(inRoot, outRoot)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(inRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", inRoot, ErrInputRoot)
	}
	if err := os.MkdirAll(outRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}

	run := &models.RunSummary{InputRoot: inRoot, OutputRoot: outRoot, StartedAt: time.Now()}
	if c.manifest != nil {
		if err := c.manifest.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	} else {
		run.ID = uuid.New().String()
	}
	c.logger.Info("conversion started",
		zap.String("run_id", run.ID), zap.String("input", inRoot), zap.String("output", outRoot),
		zap.Int("workers", c.workers), zap.Bool("incremental", c.incremental))

	// Results keep walk order so the summary does not depend on scheduling.
	var results []*models.FileResult
	var tasks []task
	var slots []int
	claimed := make(map[string]string)

	walkErr := filepath.WalkDir(inRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			c.logger.Warn("walk error", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() && path != inRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != inRoot && (path == outRoot || isWithin(outRoot, path)) {
				return filepath.SkipDir
			}
			mirror, _ := filepath.Rel(inRoot, path)
			if err := os.MkdirAll(filepath.Join(outRoot, mirror), 0755); err != nil {
				c.logger.Warn("failed to mirror directory", zap.String("path", path), zap.Error(err))
			}
			return nil
		}
		finfo, err := os.Stat(path)
		if err != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		format := extract.Detect(path)
		if !c.enabled(format, path) {
			results = append(results, &models.FileResult{SourcePath: path, Format: string(format), Status: string(extract.StatusUnsupported)})
			return nil
		}
		outPath, err := OutputPath(inRoot, outRoot, path)
		if err != nil {
			return nil
		}
		if owner, ok := claimed[outPath]; ok {
			c.logger.Warn("output already claimed", zap.String("path", path), zap.String("output", outPath), zap.String("owner", owner))
			c.report("Skipped: %s (output %s already written for %s)", path, outPath, owner)
			results = append(results, &models.FileResult{
				SourcePath: path,
				Format:     string(format),
				Status:     models.StatusSkipped,
				Error:      fmt.Sprintf("output %s already claimed by %s", outPath, owner),
			})
			return nil
		}
		claimed[outPath] = path
		slots = append(slots, len(results))
		results = append(results, nil)
		tasks = append(tasks, task{path: path, outPath: outPath, info: finfo})
		return nil
	})

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[slots[i]] = c.convert(ctx, run.ID, t)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r != nil {
			run.Add(r)
		}
	}
	finished := time.Now()
	run.FinishedAt = &finished
	if c.manifest != nil {
		// The run row is finished even when ctx was cancelled mid-walk.
		if err := c.manifest.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			c.logger.Warn("failed to record run summary", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	c.logger.Info("conversion finished",
		zap.String("run_id", run.ID), zap.Int("total", run.Total), zap.Int("success", run.Success),
		zap.Int("empty", run.Empty), zap.Int("failed", run.Failed), zap.Int("unsupported", run.Unsupported),
		zap.Int("skipped", run.Skipped), zap.Int("unchanged", run.Unchanged),
		zap.Duration("elapsed", finished.Sub(run.StartedAt)))

	if walkErr != nil {
		return run, walkErr
	}
	return run, ctx.Err()
}

// ConvertFile converts a single source under inRoot, writing its mirrored output.
// Unlike ConvertTree it does not check for output collisions with sibling sources.
func (c *Converter) ConvertFile(ctx context.Context, inRoot, outRoot, path string) (*models.FileResult, error) {
	inRoot, outRoot, err := absRoots(inRoot, outRoot)
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	outPath, err := OutputPath(inRoot, outRoot, absPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", absPath)
	}
	format := extract.Detect(absPath)
	if !c.enabled(format, absPath) {
		return &models.FileResult{SourcePath: absPath, Format: string(format), Status: string(extract.StatusUnsupported)}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.convert(ctx, "", task{path: absPath, outPath: outPath, info: info}), nil
}

// RemoveFile deletes the mirrored output of a removed source together with its manifest
// record and index document. With a manifest, the output is removed only if the manifest
// shows this source wrote it, so a sibling that shares the output name keeps its text.
func (c *Converter) RemoveFile(ctx context.Context, inRoot, outRoot, path string) error {
	inRoot, outRoot, err := absRoots(inRoot, outRoot)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	if !c.enabled(extract.Detect(absPath), absPath) {
		return nil
	}
	outPath, err := OutputPath(inRoot, outRoot, absPath)
	if err != nil {
		return err
	}
	docID := fileid.FileDocID(absPath)

	if c.manifest != nil {
		rec, err := c.manifest.GetExtraction(ctx, docID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			outPath = ""
		case err != nil:
			return fmt.Errorf("failed to read manifest: %w", err)
		default:
			outPath = rec.OutputPath
		}
		if err := c.manifest.DeleteExtraction(ctx, docID); err != nil {
			return fmt.Errorf("failed to delete manifest record: %w", err)
		}
	}
	if outPath != "" {
		if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove output: %w", err)
		}
	}
	if c.index != nil {
		if err := c.index.Delete(ctx, docID); err != nil {
			return fmt.Errorf("failed to delete from index: %w", err)
		}
	}
	c.logger.Info("source removed", zap.String("path", absPath), zap.String("output", outPath))
	if outPath != "" {
		c.report("Removed: %s", outPath)
	}
	return nil
}

// convert extracts one source and writes its output. It never fails: write and
// bookkeeping errors are folded into the result or logged.
func (c *Converter) convert(ctx context.Context, runID string, t task) *models.FileResult {
	format := extract.Detect(t.path)
	docID := fileid.FileDocID(t.path)
	if c.unchanged(ctx, docID, t) {
		c.logger.Debug("skipping unchanged file", zap.String("path", t.path))
		return &models.FileResult{SourcePath: t.path, OutputPath: t.outPath, Format: string(format), Status: models.StatusUnchanged}
	}

	c.report("Converting: %s ...", t.path)
	res := c.extractor.Extract(t.path)
	text := strings.ToValidUTF8(res.Text, "\uFFFD")
	result := &models.FileResult{
		SourcePath: t.path,
		OutputPath: t.outPath,
		Format:     string(res.Format),
		Status:     string(res.Status),
		TextBytes:  len(text),
	}
	if res.Err != nil {
		result.Error = res.Err.Error()
	}

	// Failed sources still get an empty output file.
	if err := writeOutput(t.outPath, text); err != nil {
		result.Status = string(extract.StatusFailed)
		result.Error = err.Error()
		result.TextBytes = 0
		text = ""
	}

	switch extract.Status(result.Status) {
	case extract.StatusSuccess:
		c.logger.Info("converted", zap.String("path", t.path), zap.String("output", t.outPath), zap.Int("bytes", result.TextBytes))
		c.report("Saved: %s", t.outPath)
	case extract.StatusEmpty:
		c.logger.Info("no text found", zap.String("path", t.path), zap.String("output", t.outPath))
		c.report("No text found in: %s", t.path)
	default:
		c.logger.Warn("conversion failed", zap.String("path", t.path), zap.String("error", result.Error))
		c.report("Error with %s: %s", t.path, result.Error)
	}

	c.record(ctx, runID, docID, t, result)
	c.indexOutput(ctx, docID, result, text)
	return result
}

// unchanged reports whether an incremental run may skip t.
func (c *Converter) unchanged(ctx context.Context, docID string, t task) bool {
	if !c.incremental || c.manifest == nil {
		return false
	}
	rec, err := c.manifest.GetExtraction(ctx, docID)
	if err != nil {
		return false
	}
	if rec.SourcePath != t.path || rec.OutputPath != t.outPath {
		return false
	}
	if rec.SourceSize != t.info.Size() || rec.SourceModTime.UnixNano() != t.info.ModTime().UnixNano() {
		return false
	}
	if _, err := os.Stat(t.outPath); err != nil {
		return false
	}
	return true
}

func (c *Converter) record(ctx context.Context, runID, docID string, t task, r *models.FileResult) {
	if c.manifest == nil {
		return
	}
	rec := &models.ExtractionRecord{
		ID:            docID,
		SourcePath:    t.path,
		OutputPath:    t.outPath,
		Format:        r.Format,
		Status:        r.Status,
		Error:         r.Error,
		SourceSize:    t.info.Size(),
		SourceModTime: t.info.ModTime(),
		TextBytes:     int64(r.TextBytes),
		RunID:         runID,
	}
	if err := c.manifest.PutExtraction(ctx, rec); err != nil {
		c.logger.Warn("failed to record extraction", zap.String("path", t.path), zap.Error(err))
	}
}

func (c *Converter) indexOutput(ctx context.Context, docID string, r *models.FileResult, text string) {
	if c.index == nil {
		return
	}
	var err error
	if r.Status == string(extract.StatusSuccess) {
		err = c.index.Index(ctx, &keyword.Document{
			ID:         docID,
			Title:      filepath.Base(r.SourcePath),
			Content:    text,
			Path:       r.SourcePath,
			OutputPath: r.OutputPath,
			Format:     r.Format,
		})
	} else {
		err = c.index.Delete(ctx, docID)
	}
	if err != nil {
		c.logger.Warn("failed to update index", zap.String("path", r.SourcePath), zap.Error(err))
	}
}

func (c *Converter) enabled(format extract.Format, path string) bool {
	if format == extract.FormatUnsupported {
		return false
	}
	if c.extensions == nil {
		return true
	}
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}

func (c *Converter) report(format string, args ...any) {
	if c.progress == nil {
		return
	}
	c.progressMu.Lock()
	defer c.progressMu.Unlock()
	fmt.Fprintf(c.progress, format+"\n", args...)
}

// writeOutput writes text to path through a temporary file in the same directory, so a
// reader never sees a partially written output.
func writeOutput(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if _, err := io.WriteString(tmp, text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func absRoots(inRoot, outRoot string) (string, string, error) {
	in, err := filepath.Abs(inRoot)
	if err != nil {
		return "", "", fmt.Errorf("absolute path: %w", err)
	}
	out, err := filepath.Abs(outRoot)
	if err != nil {
		return "", "", fmt.Errorf("absolute path: %w", err)
	}
	return in, out, nil
}

// isWithin reports whether path lies strictly inside dir.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
