package extract

import (
	"strings"

	"github.com/hyperjump/doctxt/internal/archive"
	"github.com/hyperjump/doctxt/internal/markup"
	"go.uber.org/zap"
)

// keynoteSuffixes are the entry suffixes holding presentation markup.
var keynoteSuffixes = []string{".xml", ".apxl"}

// extractKeynote harvests text from every markup entry of a Keynote archive. A corrupt
// entry is skipped; only an archive that cannot be opened is an error.
func (e *Extractor) extractKeynote(path string) (string, error) {
	ar, err := archive.Open(path)
	if err != nil {
		return "", openError(err)
	}
	defer ar.Close()

	var buf strings.Builder
	for _, name := range ar.Names() {
		if !hasKeynoteSuffix(name) {
			continue
		}
		data, err := ar.ReadEntry(name)
		if err != nil {
			e.logger.Debug("keynote entry skipped", zap.String("path", path), zap.String("entry", name), zap.Error(err))
			continue
		}
		for _, line := range markup.Harvest(data) {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

func hasKeynoteSuffix(name string) bool {
	for _, s := range keynoteSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
