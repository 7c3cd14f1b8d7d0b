package queries

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// wrapperName names the synthetic container snippets are parsed inside.
const wrapperName = "__Extras"

var leadingDeclareRe = regexp.MustCompile(`(?m)^(\s*)declare\s+`)

// Member is one top-level declaration found in a snippet.
type Member struct {
	Name string

	// Text is the declaration source including attached leading comments.
	Text string

	// Line is the 1-based line in the snippet where Text starts, that is
	// the first attached leading comment when there is one.
	Line uint32
}

// SyntaxError is one error or missing-token node in a parse tree.
type SyntaxError struct {
	Line    uint32
	Column  uint32
	Text    string
	Missing bool
}

func (e SyntaxError) String() string {
	if e.Missing {
		return fmt.Sprintf("%d:%d: missing %q", e.Line, e.Column, e.Text)
	}
	return fmt.Sprintf("%d:%d: unexpected %q", e.Line, e.Column, e.Text)
}

// SyntaxErrors is returned when a snippet does not parse cleanly.
type SyntaxErrors []SyntaxError

func (errs SyntaxErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.String()
	}
	return "syntax errors: " + strings.Join(parts, "; ")
}

// InterfaceMembers lists the property and method signatures of a snippet
// written as interface body members.
func (qm *QueryManager) InterfaceMembers(snippet string) ([]Member, error) {
	src := "interface " + wrapperName + " {\n" + snippet + "\n}\n"
	members, err := qm.members(QueryTypeInterfaceMembers, []byte(src), func(def *ts.Node, source []byte) bool {
		owner := def.Parent()
		if owner == nil || owner.Kind() != "interface_body" {
			return false
		}
		return isWrapper(owner.Parent(), source)
	})
	if err != nil {
		return nil, err
	}
	for i := range members {
		m := &members[i]
		m.Name = strings.Trim(m.Name, `"'`)
		if !strings.HasSuffix(m.Text, ";") && !strings.HasSuffix(m.Text, ",") {
			m.Text += ";"
		}
	}
	return members, nil
}

// NamespaceMembers lists the top-level declarations of a snippet written as
// namespace body statements. A leading `declare` is dropped.
func (qm *QueryManager) NamespaceMembers(snippet string) ([]Member, error) {
	src := "declare namespace " + wrapperName + " {\n" + leadingDeclareRe.ReplaceAllString(snippet, "$1") + "\n}\n"
	return qm.members(QueryTypeNamespaceMembers, []byte(src), func(def *ts.Node, source []byte) bool {
		stmt := statementOf(def)
		block := stmt.Parent()
		if block == nil || block.Kind() != "statement_block" {
			return false
		}
		return isWrapper(block.Parent(), source)
	})
}

// SyntaxErrors parses source and lists its error and missing-token nodes
// in source order. A clean parse returns nil.
func (qm *QueryManager) SyntaxErrors(source []byte) ([]SyntaxError, error) {
	tree, err := qm.parserManager.Parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return qm.syntaxErrors(tree, source, 0)
}

func (qm *QueryManager) syntaxErrors(tree *ts.Tree, source []byte, lineOffset uint32) ([]SyntaxError, error) {
	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}

	query, err := qm.GetQuery(QueryTypeErrors)
	if err != nil {
		return nil, err
	}
	matches, err := qm.ExecuteQuery(tree, query, source)
	if err != nil {
		return nil, err
	}

	var out []SyntaxError
	for _, m := range matches {
		for _, c := range m.Captures {
			out = append(out, SyntaxError{
				Line:   shiftLine(c.Location.StartLine, lineOffset),
				Column: c.Location.StartColumn,
				Text:   abbreviate(c.Text),
			})
		}
	}
	collectMissing(root, lineOffset, &out)

	if len(out) == 0 {
		// HasError without a located node; report the root.
		out = append(out, SyntaxError{Line: 1, Column: 1, Text: abbreviate(string(source))})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out, nil
}

type ownerFilter func(def *ts.Node, source []byte) bool

func (qm *QueryManager) members(qtype QueryType, source []byte, keep ownerFilter) ([]Member, error) {
	tree, err := qm.parserManager.Parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	// The wrapper adds one line above the snippet.
	if errs, err := qm.syntaxErrors(tree, source, 1); err != nil {
		return nil, err
	} else if len(errs) > 0 {
		return nil, SyntaxErrors(errs)
	}

	query, err := qm.GetQuery(qtype)
	if err != nil {
		return nil, err
	}
	matches, err := qm.ExecuteQuery(tree, query, source)
	if err != nil {
		return nil, err
	}

	var out []Member
	seen := make(map[uint]bool)
	for _, m := range matches {
		name, ok := m.Capture("member.name")
		if !ok {
			continue
		}
		def, ok := m.Capture("member.definition")
		if !ok || !keep(def.Node, source) {
			continue
		}

		stmt := statementOf(def.Node)
		if seen[stmt.StartByte()] {
			continue
		}
		seen[stmt.StartByte()] = true

		start, row := leadingCommentStart(stmt)
		out = append(out, Member{
			Name: name.Text,
			Text: strings.TrimSpace(string(source[start:stmt.EndByte()])),
			Line: shiftLine(uint32(row+1), 1),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out, nil
}

// statementOf returns the statement node wrapping def, so `export` and
// expression wrappers are kept in the member text.
func statementOf(def *ts.Node) *ts.Node {
	stmt := def
	for {
		p := stmt.Parent()
		if p == nil {
			return stmt
		}
		switch p.Kind() {
		case "expression_statement", "export_statement", "ambient_declaration":
			stmt = p
		default:
			return stmt
		}
	}
}

func isWrapper(n *ts.Node, source []byte) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "interface_declaration", "internal_module":
	default:
		return false
	}
	name := n.ChildByFieldName("name")
	return name != nil && name.Utf8Text(source) == wrapperName
}

// leadingCommentStart returns the start byte and row of the comments
// directly above n, or n's own when there are none. A comment trailing the
// previous member on its line belongs to that member.
func leadingCommentStart(n *ts.Node) (uint, uint) {
	start := n.StartByte()
	row := n.StartPosition().Row
	for prev := n.PrevNamedSibling(); prev != nil && prev.Kind() == "comment"; prev = prev.PrevNamedSibling() {
		if prev.EndPosition().Row+1 < row {
			break
		}
		if before := prev.PrevSibling(); before != nil && before.EndPosition().Row == prev.StartPosition().Row {
			break
		}
		start = prev.StartByte()
		row = prev.StartPosition().Row
	}
	return start, row
}

func collectMissing(n *ts.Node, lineOffset uint32, out *[]SyntaxError) {
	if n.IsMissing() {
		pos := n.StartPosition()
		*out = append(*out, SyntaxError{
			Line:    shiftLine(uint32(pos.Row+1), lineOffset),
			Column:  uint32(pos.Column + 1),
			Text:    n.Kind(),
			Missing: true,
		})
		return
	}
	if !n.HasError() {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			collectMissing(child, lineOffset, out)
		}
	}
}

func shiftLine(line, offset uint32) uint32 {
	if line > offset {
		return line - offset
	}
	return 1
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}
