package extract

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// extractPDF concatenates the plain text of every page in physical order. A page whose
// content cannot be interpreted is skipped; only a document that fails to open is an error.
func (e *Extractor) extractPDF(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", openError(err)
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", openError(fmt.Errorf("open PDF: %w", err))
	}
	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		text, err := pageText(r, i)
		if err != nil {
			e.logger.Debug("pdf page skipped", zap.String("path", path), zap.Int("page", i), zap.Error(err))
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func pageText(r *pdf.Reader, n int) (text string, err error) {
	// The content-stream interpreter panics on some malformed operators.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", n, rec)
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	return text, nil
}
