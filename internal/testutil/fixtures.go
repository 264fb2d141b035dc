// Package testutil builds in-memory document fixtures (OOXML packages, Keynote archives,
// PDFs) for tests across packages.
package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
)

// Entry is one archive member.
type Entry struct {
	Name string
	Body []byte
}

// Zip returns a zip archive holding entries in the given order. Entries are stored
// uncompressed so tests can corrupt payload bytes in place.
func Zip(entries ...Entry) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		fw, _ := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Store})
		_, _ = fw.Write(e.Body)
	}
	_ = w.Close()
	return buf.Bytes()
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// TextShape returns a p:sp whose text body has one a:p per paragraph.
func TextShape(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="TextBox"/></p:nvSpPr><p:txBody><a:bodyPr/><a:lstStyle/>`)
	for _, p := range paragraphs {
		b.WriteString(`<a:p>`)
		if p != "" {
			b.WriteString(`<a:r><a:rPr lang="en-US"/><a:t>` + escape(p) + `</a:t></a:r>`)
		}
		b.WriteString(`</a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

// PictureShape returns a p:pic, which carries no text.
func PictureShape() string {
	return `<p:pic><p:nvPicPr><p:cNvPr id="4" name="Picture" descr="alt text"/></p:nvPicPr><p:blipFill><a:blip r:embed="rId9"/></p:blipFill></p:pic>`
}

// GroupShape returns a p:grpSp wrapping the given shapes.
func GroupShape(shapes ...string) string {
	return `<p:grpSp><p:nvGrpSpPr><p:cNvPr id="5" name="Group"/></p:nvGrpSpPr>` + strings.Join(shapes, "") + `</p:grpSp>`
}

// PPTX returns a presentation package. Slide parts are numbered in reverse so that only
// the presentation's slide list, not part names, yields the order given here.
func PPTX(slides ...[]string) []byte {
	n := len(slides)
	var sldIDs, rels strings.Builder
	entries := []Entry{
		{"[Content_Types].xml", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/></Types>`)},
		{"_rels/.rels", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="` + relOfficeDocument + `" Target="ppt/presentation.xml"/></Relationships>`)},
	}
	for i, shapes := range slides {
		part := fmt.Sprintf("slide%d.xml", n-i)
		rid := fmt.Sprintf("rId%d", i+2)
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="%s"/>`, 256+i, rid)
		fmt.Fprintf(&rels, `<Relationship Id="%s" Type="%s" Target="slides/%s"/>`, rid, relSlide, part)
		entries = append(entries, Entry{"ppt/slides/" + part, []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/></p:nvGrpSpPr><p:grpSpPr/>` +
			strings.Join(shapes, "") + `</p:spTree></p:cSld></p:sld>`)})
	}
	entries = append(entries,
		Entry{"ppt/presentation.xml", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:sldIdLst>` + sldIDs.String() + `</p:sldIdLst></p:presentation>`)},
		Entry{"ppt/_rels/presentation.xml.rels", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + rels.String() + `</Relationships>`)},
	)
	return Zip(entries...)
}

// Paragraph returns a w:p with a single run holding text.
func Paragraph(text string) string {
	if text == "" {
		return `<w:p/>`
	}
	return `<w:p><w:pPr><w:pStyle w:val="Normal"/></w:pPr><w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r></w:p>`
}

// Table returns a one-cell w:tbl holding text.
func Table(text string) string {
	return `<w:tbl><w:tr><w:tc>` + Paragraph(text) + `</w:tc></w:tr></w:tbl>`
}

// DOCX returns a word-processing package whose body is the given raw WordprocessingML.
func DOCX(body ...string) []byte {
	return Zip(
		Entry{"[Content_Types].xml", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`)},
		Entry{"_rels/.rels", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="` + relOfficeDocument + `" Target="word/document.xml"/></Relationships>`)},
		Entry{"word/document.xml", []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `"><w:body>` + strings.Join(body, "") + `<w:sectPr/></w:body></w:document>`)},
	)
}

// PDF returns a minimal PDF with one page per entry of pages, each showing its text in
// Helvetica. Object offsets in the cross-reference table are exact.
func PDF(pages ...string) []byte {
	// Objects: 1 catalog, 2 page tree, 3 font, then a page and a content stream per page.
	var objs []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
		stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + r.Replace(text) + ") Tj\nET"
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xrefOffset := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objs)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xrefOffset)
	return []byte(b.String())
}
