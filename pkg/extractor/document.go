// Package extractor turns fetched wiki pages into raw wiki entities.
//
// Each page is parsed once into a Document whose Shape records which
// top-level tag it carries; the per-entity extractors switch on that shape
// instead of probing the markup again.
package extractor

import (
	"regexp"
	"strings"

	"github.com/gnana997/gmodts/pkg/markup"
	"github.com/gnana997/gmodts/pkg/wiki"
)

// Shape identifies the top-level tag of a page.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeFunction
	ShapeHook
	ShapeType
	ShapePanel
	ShapeStructure
	ShapeEnum
)

var shapeTags = []struct {
	tag   string
	shape Shape
}{
	{"function", ShapeFunction},
	{"hook", ShapeHook},
	{"type", ShapeType},
	{"panel", ShapePanel},
	{"structure", ShapeStructure},
	{"enum", ShapeEnum},
}

func (s Shape) String() string {
	for _, st := range shapeTags {
		if st.shape == s {
			return st.tag
		}
	}
	return "none"
}

// Document is a parsed page.
type Document struct {
	Page  wiki.Page
	Root  *markup.Node
	Shape Shape

	// Node is the top-level element matching Shape, nil for ShapeNone.
	Node *markup.Node
}

// Parse parses the page markup and detects its shape. Markup that cannot be
// repaired returns a *markup.MarkupError carrying the page address.
func Parse(page wiki.Page) (*Document, error) {
	root, err := markup.Parse(page.Markup, page.Address)
	if err != nil {
		return nil, err
	}

	doc := &Document{Page: page, Root: root}
	for _, st := range shapeTags {
		if n := root.Child(st.tag); n != nil {
			doc.Shape = st.shape
			doc.Node = n
			break
		}
	}
	return doc, nil
}

var titleNameRe = regexp.MustCompile(`^(.*?)[.:](.+)$`)

// SplitTitle derives (parent, name) from a "Parent.Name" or "Parent:Name"
// title. ok is false when the title has no separator.
func SplitTitle(title string) (parent, name string, ok bool) {
	m := titleNameRe.FindStringSubmatch(title)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// IsMemberTitle reports whether a title names a member ("Entity:SetPos",
// "math.Round") rather than a container.
func IsMemberTitle(title string) bool {
	return strings.ContainsAny(title, ".:")
}
