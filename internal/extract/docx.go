package extract

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/hyperjump/doctxt/internal/archive"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// extractDOCX appends each non-empty top-level body paragraph followed by a line break.
// Tables, headers, footers and text boxes are not traversed.
func (e *Extractor) extractDOCX(path string) (string, error) {
	ar, err := archive.Open(path)
	if err != nil {
		return "", openError(err)
	}
	defer ar.Close()

	docPath := mainPart(ar, docxMainContentType, docxDocumentXMLPath)
	data, err := ar.ReadEntry(docPath)
	if err != nil {
		return "", openError(err)
	}
	paras, err := bodyParagraphs(data)
	if err != nil {
		return "", openError(err)
	}
	var buf strings.Builder
	for _, p := range paras {
		if p == "" {
			continue
		}
		buf.WriteString(p)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

// bodyParagraphs returns the text of the direct w:p children of w:body in order.
func bodyParagraphs(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "body" {
			break
		}
	}
	var paras []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "p" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			var b strings.Builder
			if err := readWordInline(dec, &b); err != nil {
				return nil, err
			}
			paras = append(paras, b.String())
		case xml.EndElement:
			return paras, nil
		}
	}
}

// readWordInline reads the runs of a paragraph or hyperlink until its end tag.
func readWordInline(dec *xml.Decoder, b *strings.Builder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				err = readWordRun(dec, b)
			case "hyperlink":
				err = readWordInline(dec, b)
			default:
				err = dec.Skip()
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func readWordRun(dec *xml.Decoder, b *strings.Builder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var s string
				if err := dec.DecodeElement(&s, &t); err != nil {
					return err
				}
				b.WriteString(s)
				continue
			}
			switch t.Name.Local {
			case "tab", "ptab":
				b.WriteByte('\t')
			case "br":
				// Page and column breaks carry no text.
				if typ := xmlAttr(t.Attr, "type"); typ == "" || typ == "textWrapping" {
					b.WriteByte('\n')
				}
			case "cr":
				b.WriteByte('\n')
			case "noBreakHyphen":
				b.WriteByte('-')
			}
			if err := dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}
