package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/doctxt/internal/archive"
)

// pptxMainContentType is the content type of ppt/presentation.xml.
const pptxMainContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"

// presentation lists slide relationship ids in presentation order.
type presentation struct {
	SlideIDs []struct {
		Attrs []xml.Attr `xml:",any,attr"`
	} `xml:"sldIdLst>sldId"`
}

// extractPPTX walks slides in presentation order and, within each slide, the top-level
// shapes of the shape tree. Every non-empty shape text is followed by a line break.
func (e *Extractor) extractPPTX(path string) (string, error) {
	ar, err := archive.Open(path)
	if err != nil {
		return "", openError(err)
	}
	defer ar.Close()

	pres := mainPart(ar, pptxMainContentType, "ppt/presentation.xml")
	if err := requirePart(ar, pres); err != nil {
		return "", openError(err)
	}
	slides, err := slideParts(ar, pres)
	if err != nil {
		return "", openError(err)
	}

	var buf strings.Builder
	for _, slide := range slides {
		data, err := ar.ReadEntry(slide)
		if err != nil {
			return "", openError(err)
		}
		texts, err := slideShapeTexts(data)
		if err != nil {
			return "", openError(fmt.Errorf("parse %s: %w", slide, err))
		}
		for _, t := range texts {
			if t == "" {
				continue
			}
			buf.WriteString(t)
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

// slideParts resolves sldIdLst entries to slide part names through the presentation's
// relationships.
func slideParts(ar *archive.Reader, pres string) ([]string, error) {
	var p presentation
	if err := ar.ReadXMLEntry(pres, &p); err != nil {
		return nil, err
	}
	if len(p.SlideIDs) == 0 {
		return nil, nil
	}
	rels, err := readRels(ar, pres)
	if err != nil {
		return nil, err
	}
	parts := make([]string, 0, len(p.SlideIDs))
	for _, s := range p.SlideIDs {
		rid := relationshipID(s.Attrs)
		rel, ok := rels[rid]
		if !ok {
			return nil, fmt.Errorf("slide relationship %q not found", rid)
		}
		if err := requirePart(ar, rel.Target); err != nil {
			return nil, err
		}
		parts = append(parts, rel.Target)
	}
	return parts, nil
}

// relationshipID returns the namespaced r:id attribute, which sits next to a plain id.
func relationshipID(attrs []xml.Attr) string {
	for _, a := range attrs {
		if a.Name.Local == "id" && a.Name.Space != "" {
			return a.Value
		}
	}
	return ""
}

// slideShapeTexts returns the text of each top-level p:sp in the slide's p:spTree,
// in document order. Other shape kinds are skipped.
func slideShapeTexts(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "spTree" {
			return readShapeTree(dec)
		}
	}
}

func readShapeTree(dec *xml.Decoder) ([]string, error) {
	var texts []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "sp" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			text, err := readShapeText(dec)
			if err != nil {
				return nil, err
			}
			texts = append(texts, text)
		case xml.EndElement:
			return texts, nil
		}
	}
}

// readShapeText joins the paragraphs of the shape's p:txBody with newlines.
func readShapeText(dec *xml.Decoder) (string, error) {
	var paras []string
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "txBody" {
				if err := dec.Skip(); err != nil {
					return "", err
				}
				continue
			}
			if paras, err = readTextBody(dec); err != nil {
				return "", err
			}
		case xml.EndElement:
			return strings.Join(paras, "\n"), nil
		}
	}
}

func readTextBody(dec *xml.Decoder) ([]string, error) {
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
			p, err := readDrawingParagraph(dec)
			if err != nil {
				return nil, err
			}
			paras = append(paras, p)
		case xml.EndElement:
			return paras, nil
		}
	}
}

// readDrawingParagraph reads a:p: runs and fields contribute a:t, a:br is a newline.
func readDrawingParagraph(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r", "fld":
				if err := readDrawingRun(dec, &b); err != nil {
					return "", err
				}
			case "br":
				b.WriteByte('\n')
				if err := dec.Skip(); err != nil {
					return "", err
				}
			default:
				if err := dec.Skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

func readDrawingRun(dec *xml.Decoder, b *strings.Builder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "t" {
				if err := dec.Skip(); err != nil {
					return err
				}
				continue
			}
			var s string
			if err := dec.DecodeElement(&s, &t); err != nil {
				return err
			}
			b.WriteString(s)
		case xml.EndElement:
			return nil
		}
	}
}
