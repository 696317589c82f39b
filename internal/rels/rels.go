// Package rels parses OOXML relationship parts (.rels) and resolves their
// targets to archive paths.
//
// workbook/ and worksheet/ both need it and cannot import each other.
package rels

import (
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// TargetModeExternal marks a relationship whose target lies outside the
// package (hyperlink URLs, linked files).
const TargetModeExternal = "External"

// Relationship is one entry in a .rels document.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the target is outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, TargetModeExternal)
}

type relationships struct {
	Relationships []Relationship `xml:"Relationship"`
}

// Map is the set of relationships of one part keyed by Id.
type Map map[string]Relationship

// Target returns the raw target for id, or "" when id is unknown.
func (m Map) Target(id string) string {
	return m[id].Target
}

// Parse reads a .rels document.
func Parse(r io.Reader) (Map, error) {
	var doc relationships
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse rels XML: %w", err)
	}
	m := make(Map, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		m[rel.ID] = rel
	}
	return m, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (Map, error) {
	return Parse(strings.NewReader(string(data)))
}

// ResolvePath turns a relationship target into an archive path.  Relative
// targets are resolved against baseDir (the directory of the source part,
// e.g. "xl"); absolute targets ("/xl/worksheets/sheet1.xml") are taken from
// the package root.
func ResolvePath(baseDir, target string) string {
	target = strings.ReplaceAll(target, `\`, "/")
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Clean(path.Join(baseDir, target)), "/")
}

// PathFor returns the .rels path belonging to part:
// "xl/worksheets/sheet1.xml" → "xl/worksheets/_rels/sheet1.xml.rels".
func PathFor(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}
