// Package extract provides text extraction from PDF, PPTX, DOCX and Keynote documents.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrOpen wraps every failure to open or parse a document container.
	ErrOpen = errors.New("cannot open document")
	// ErrUnsupportedFormat is reported for extensions outside the recognized set.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Extractor extracts plain text from document files.
type Extractor struct {
	logger *zap.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets a logger for extraction failures and skipped pages or entries.
func WithLogger(l *zap.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Extract routes path to the extractor for its extension and classifies the outcome.
// It never fails: open and parse errors, including panics inside third-party parsers,
// come back as StatusFailed with empty text and a diagnostic in Result.Err.
// Unsupported extensions come back as StatusUnsupported without touching the file.
func (e *Extractor) Extract(path string) (res Result) {
	format := Detect(path)
	res = Result{Path: path, Format: format}
	if format == FormatUnsupported {
		res.Status = StatusUnsupported
		return res
	}
	defer func() {
		if r := recover(); r != nil {
			res.Text = ""
			res.Status = StatusFailed
			res.Err = fmt.Errorf("extract %s %s: %w: panic: %v", format, path, ErrOpen, r)
			e.logger.Warn("extraction panicked", zap.String("path", path), zap.Any("panic", r))
		}
	}()

	text, err := e.extract(format, path)
	if err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("extract %s %s: %w", format, path, err)
		e.logger.Warn("extraction failed", zap.String("path", path), zap.String("format", string(format)), zap.Error(err))
		return res
	}
	res.Text = text
	if strings.TrimSpace(text) == "" {
		res.Status = StatusEmpty
	} else {
		res.Status = StatusSuccess
	}
	return res
}

func (e *Extractor) extract(format Format, path string) (string, error) {
	switch format {
	case FormatPDF:
		return e.extractPDF(path)
	case FormatPPTX:
		return e.extractPPTX(path)
	case FormatKey:
		return e.extractKeynote(path)
	case FormatDOCX:
		return e.extractDOCX(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// openError marks err as a failure to open the container.
func openError(err error) error {
	return fmt.Errorf("%w: %w", ErrOpen, err)
}
