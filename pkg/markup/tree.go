package markup

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Node is one element of parsed markup.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node

	// Text is the concatenated character data directly under this element,
	// with entities decoded.
	Text string

	// Inner is the raw markup between the start and end tags, entities and
	// nested tags left untouched. Description-like elements are consumed
	// from Inner so their embedded hints survive.
	Inner string

	start int
}

// Attr returns the named attribute, or "".
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[name]
}

// HasAttr reports whether the attribute is present, even if empty.
func (n *Node) HasAttr(name string) bool {
	if n == nil {
		return false
	}
	_, ok := n.Attrs[name]
	return ok
}

// Child returns the first direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first descendant (depth first) with the given name.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// TextContent returns the trimmed direct character data.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

// InnerMarkup returns the trimmed raw inner markup.
func (n *Node) InnerMarkup() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Inner)
}

// Parse normalizes raw wiki markup, validates it and returns the synthetic
// root element. address identifies the page in any MarkupError.
//
// Unclosed, stray or mismatched tags are tolerated since the wiki uses
// free-form pseudo-tags in prose; any other syntax problem is a MarkupError.
func Parse(raw, address string) (*Node, error) {
	src := Normalize(raw)

	if err := validate(src, address); err != nil {
		return nil, err
	}

	return build(src, address)
}

func entityMap() map[string]string {
	m := make(map[string]string, len(xml.HTMLEntity)+2)
	for k, v := range xml.HTMLEntity {
		m[k] = v
	}
	m["grave"] = "`"
	m["apos"] = "'"
	return m
}

var entities = entityMap()

// validate runs a strict pass over src and classifies the first error.
func validate(src, address string) error {
	d := xml.NewDecoder(strings.NewReader(src))
	d.Strict = true
	d.Entity = entities

	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err == nil {
			continue
		}

		var syn *xml.SyntaxError
		if errors.As(err, &syn) {
			if isTagError(syn.Msg) {
				return nil
			}
			return &MarkupError{Address: address, Line: syn.Line, Msg: syn.Msg}
		}
		return &MarkupError{Address: address, Msg: err.Error()}
	}
}

// isTagError reports whether a strict-mode syntax error is about element
// structure (unknown, unclosed or mismatched tags) rather than lexical
// damage.
func isTagError(msg string) bool {
	for _, frag := range []string{
		"closed by",
		"unexpected end element",
		"unexpected EOF",
	} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

// build tokenizes leniently and assembles the tree. End tags close the
// nearest open element with the same name; stray end tags are dropped and
// elements left open are closed at end of input.
func build(src, address string) (*Node, error) {
	d := xml.NewDecoder(strings.NewReader(src))
	d.Strict = false
	d.Entity = entities

	doc := &Node{Name: "#document"}
	stack := []*Node{doc}

	for {
		offset := int(d.InputOffset())
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syn *xml.SyntaxError
			if errors.As(err, &syn) {
				return nil, &MarkupError{Address: address, Line: syn.Line, Msg: syn.Msg}
			}
			return nil, &MarkupError{Address: address, Msg: err.Error()}
		}

		top := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{
				Name:  qualifiedName(t.Name),
				Attrs: make(map[string]string, len(t.Attr)),
				start: int(d.InputOffset()),
			}
			for _, a := range t.Attr {
				n.Attrs[qualifiedName(a.Name)] = a.Value
			}
			top.Children = append(top.Children, n)
			stack = append(stack, n)

		case xml.EndElement:
			name := qualifiedName(t.Name)
			idx := -1
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Name == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				continue
			}
			for i := len(stack) - 1; i >= idx; i-- {
				closeNode(stack[i], src, offset)
			}
			stack = stack[:idx]

		case xml.CharData:
			top.Text += string(t)
		}
	}

	for i := len(stack) - 1; i > 0; i-- {
		closeNode(stack[i], src, len(src))
	}

	root := doc.Child("root")
	if root == nil {
		return nil, &MarkupError{Address: address, Msg: "missing root element"}
	}
	return root, nil
}

func closeNode(n *Node, src string, end int) {
	if end < n.start {
		end = n.start
	}
	n.Inner = src[n.start:end]
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
