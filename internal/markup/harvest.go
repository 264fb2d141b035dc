// Package markup harvests human-readable text from XML that may be partially corrupt.
package markup

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Harvest parses data as XML and returns, in document order, the trimmed direct text
// of every element followed by its trimmed attribute values. Comments and processing
// instructions inside the root contribute their content. Blank values are dropped, as
// are attributes written without a value.
//
// Parsing never fails: a syntax error ends the current fragment, and harvesting resumes
// at the next '<' after the error. Lines collected before the error are kept.
func Harvest(data []byte) []string {
	data = normalize(data)
	h := &harvester{}
	off := 0
	for off < len(data) {
		n, err := h.parse(data[off:])
		h.flush()
		if err == nil {
			break
		}
		next := off + n
		if next <= off {
			next = off + 1
		}
		if next >= len(data) {
			break
		}
		i := bytes.IndexByte(data[next:], '<')
		if i < 0 {
			break
		}
		off = next + i
	}
	return h.lines
}

// node is the element whose direct text is still being collected.
type node struct {
	attrs []xml.Attr
	text  strings.Builder
}

type harvester struct {
	pending *node
	depth   int
	lines   []string
}

// parse decodes one fragment. It returns the number of bytes consumed and nil when
// the fragment ran cleanly to EOF, or the offset of the failure and its error.
func (h *harvester) parse(data []byte) (int, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = passthroughCharset
	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return len(data), nil
		}
		if err != nil {
			return int(dec.InputOffset()), err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			h.flush()
			h.depth++
			h.pending = &node{attrs: valuedAttrs(t.Attr, data[start:dec.InputOffset()])}
		case xml.CharData:
			if h.pending != nil {
				h.pending.text.Write(t)
			}
		case xml.EndElement:
			h.flush()
			if h.depth > 0 {
				h.depth--
			}
		case xml.Comment:
			// Direct text stops at the first child node.
			h.flush()
			h.emit(string(t))
		case xml.ProcInst:
			h.flush()
			if t.Target != "xml" {
				h.emit(string(t.Inst))
			}
		}
	}
}

// emit appends the trimmed content of a comment or processing instruction. Nodes
// outside the root element are not part of the document text.
func (h *harvester) emit(s string) {
	if h.depth == 0 {
		return
	}
	if s = strings.TrimSpace(s); s != "" {
		h.lines = append(h.lines, s)
	}
}

// valuedAttrs drops attributes written without '=' in the raw start tag. The
// non-strict decoder reports those with their own name as the value.
func valuedAttrs(attrs []xml.Attr, raw []byte) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Value == a.Name.Local && !assigned(raw, a.Name.Local) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// assigned reports whether raw contains name as an attribute followed by '='.
func assigned(raw []byte, name string) bool {
	for i := 0; i < len(raw); {
		j := bytes.Index(raw[i:], []byte(name))
		if j < 0 {
			return false
		}
		j += i
		end := j + len(name)
		if j > 0 && (isSpace(raw[j-1]) || raw[j-1] == ':') {
			k := end
			for k < len(raw) && isSpace(raw[k]) {
				k++
			}
			if k < len(raw) && raw[k] == '=' {
				return true
			}
		}
		i = end
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (h *harvester) flush() {
	n := h.pending
	if n == nil {
		return
	}
	h.pending = nil
	if s := strings.TrimSpace(n.text.String()); s != "" {
		h.lines = append(h.lines, s)
	}
	for _, a := range n.attrs {
		if isNamespaceDecl(a.Name) {
			continue
		}
		if v := strings.TrimSpace(a.Value); v != "" {
			h.lines = append(h.lines, v)
		}
	}
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}
