package markup

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// declEncoding captures the encoding label from an XML declaration.
var declEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*?encoding\s*=\s*["']([A-Za-z0-9._:\-]+)["']`)

// normalize converts data to valid UTF-8 containing only XML characters. A byte order
// mark wins; otherwise valid UTF-8 is kept as it is whatever the declaration says, and
// only bytes that are not UTF-8 are transcoded with the declared charset. A label that
// is readable as ASCII cannot name a 16 or 32 bit encoding, so those are ignored.
func normalize(data []byte) []byte {
	switch {
	case hasBOM(data):
		if out, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data); err == nil {
			data = out
		}
	case utf8.Valid(data):
	default:
		if m := declEncoding.FindSubmatch(head(data)); m != nil {
			if enc, name := charset.Lookup(string(m[1])); enc != nil && name != "utf-8" && !isWide(name) {
				if out, err := enc.NewDecoder().Bytes(data); err == nil {
					data = out
				}
			}
		}
	}
	return bytes.Map(xmlChar, data)
}

func isWide(name string) bool {
	return strings.HasPrefix(name, "utf-16") || strings.HasPrefix(name, "utf-32")
}

// xmlChar drops runes outside the XML 1.0 Char production. Invalid UTF-8 arrives here
// as utf8.RuneError and is kept as U+FFFD.
func xmlChar(r rune) rune {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return r
	case r >= 0x20 && r <= 0xD7FF:
		return r
	case r >= 0xE000 && r <= 0xFFFD:
		return r
	case r >= 0x10000 && r <= utf8.MaxRune:
		return r
	}
	return -1
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}

func head(data []byte) []byte {
	if len(data) > 256 {
		return data[:256]
	}
	return data
}

// passthroughCharset accepts any declared charset: normalize already produced UTF-8.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
