package extract

import (
	"path/filepath"
	"strings"
)

// Format is the container type of a source document, derived from its extension.
type Format string

const (
	FormatPDF         Format = "pdf"
	FormatPPTX        Format = "pptx"
	FormatKey         Format = "key"
	FormatDOCX        Format = "docx"
	FormatUnsupported Format = "unsupported"
)

var formatsByExt = map[string]Format{
	".pdf":  FormatPDF,
	".pptx": FormatPPTX,
	".key":  FormatKey,
	".docx": FormatDOCX,
}

// Detect returns the format for path by its extension, ignoring case.
func Detect(path string) Format {
	if f, ok := formatsByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return FormatUnsupported
}

// SupportedExtensions returns the recognized extensions with their leading dot.
func SupportedExtensions() []string {
	return []string{".pdf", ".pptx", ".key", ".docx"}
}

// Status classifies the outcome of extracting one document.
type Status string

const (
	// StatusSuccess means the document opened and yielded non-blank text.
	StatusSuccess Status = "success"
	// StatusEmpty means the document opened cleanly but held no extractable text.
	StatusEmpty Status = "empty"
	// StatusFailed means the document could not be opened or parsed; Text is empty.
	StatusFailed Status = "failed"
	// StatusUnsupported means the extension is not recognized and nothing was read.
	StatusUnsupported Status = "unsupported"
)

// Result is the outcome of Extractor.Extract.
type Result struct {
	Path   string
	Format Format
	Text   string
	Status Status
	// Err is set only when Status is StatusFailed.
	Err error
}
