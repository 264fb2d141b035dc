package extract

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/hyperjump/doctxt/internal/archive"
)

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// officeDocumentRel is the relationship type suffix pointing at a package's main part.
// Transitional and Strict OOXML use different namespaces with the same suffix.
const officeDocumentRel = "/officeDocument"

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationships struct {
	Items []relationship `xml:"Relationship"`
}

type contentTypes struct {
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// relsPath returns the relationships part for part; "" is the package root.
func relsPath(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget resolves a relationship target against the part that declares it.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(path.Dir(source), target)
}

// readRels returns the relationships declared by part, keyed by id.
func readRels(ar *archive.Reader, part string) (map[string]relationship, error) {
	var rels relationships
	if err := ar.ReadXMLEntry(relsPath(part), &rels); err != nil {
		return nil, err
	}
	out := make(map[string]relationship, len(rels.Items))
	for _, r := range rels.Items {
		if strings.EqualFold(r.TargetMode, "External") {
			continue
		}
		r.Target = resolveTarget(part, r.Target)
		out[r.ID] = r
	}
	return out, nil
}

// mainPart locates a package's main document part: first through the root
// relationships, then through [Content_Types].xml, finally falling back to fallback.
func mainPart(ar *archive.Reader, contentType, fallback string) string {
	if rels, err := readRels(ar, ""); err == nil {
		for _, r := range rels {
			if strings.HasSuffix(r.Type, officeDocumentRel) && ar.Has(r.Target) {
				return r.Target
			}
		}
	}
	var ct contentTypes
	if err := ar.ReadXMLEntry(contentTypesPath, &ct); err == nil {
		for _, o := range ct.Overrides {
			name := strings.TrimPrefix(o.PartName, "/")
			if o.ContentType == contentType && ar.Has(name) {
				return name
			}
		}
	}
	return fallback
}

// requirePart returns an error unless the archive holds part.
func requirePart(ar *archive.Reader, part string) error {
	if !ar.Has(part) {
		return fmt.Errorf("part %s not found", part)
	}
	return nil
}

// xmlAttr returns the value of the first attribute with the given local name.
func xmlAttr(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
