package printer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gnana997/gmodts/pkg/catalog"
)

var (
	leadingDeclareRe = regexp.MustCompile(`(?m)^(\s*)declare\s+`)
	identifierRe     = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// Collection renders an interface, or a namespace for library collections.
func (p *Printer) Collection(c catalog.Collection) (string, error) {
	if c.Namespace {
		return p.namespace(c, true)
	}
	return p.iface(c)
}

// Collections renders each collection, separated by blank lines.
func (p *Printer) Collections(cols []catalog.Collection) (string, error) {
	blocks := make([]string, 0, len(cols))
	for _, c := range cols {
		s, err := p.Collection(c)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, s)
	}
	return joinBlocks(blocks...), nil
}

func (p *Printer) iface(c catalog.Collection) (string, error) {
	fields := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		opt := ""
		if f.Optional {
			opt = "?"
		}
		fields = append(fields, withDoc(f.DocComment, propertyKey(f.Identifier)+opt+": "+f.Type+";"))
	}

	functions := make([]string, 0, len(c.Functions))
	for _, fn := range c.Functions {
		s, err := p.function(KindInterface, c.Identifier, fn, "", fn.Optional)
		if err != nil {
			return "", err
		}
		functions = append(functions, s)
	}

	extras, err := p.extras(KindInterface, c)
	if err != nil {
		return "", err
	}

	head := "interface " + c.Identifier + " {"
	if c.Parent != "" {
		head = "interface " + c.Identifier + " extends " + c.Parent + " {"
	}
	out := block(c.DocComment, head, joinBlocks(
		strings.Join(fields, "\n\n"),
		strings.Join(functions, "\n\n"),
		strings.Join(extras, "\n\n"),
	))

	// Interfaces cannot nest namespaces; inner collections go into a
	// merged namespace of the same name.
	if len(c.InnerCollections) > 0 {
		inner := make([]string, 0, len(c.InnerCollections))
		for _, ic := range c.InnerCollections {
			s, err := p.namespace(ic, false)
			if err != nil {
				return "", err
			}
			inner = append(inner, s)
		}
		out += "\n\n" + block("", "declare namespace "+c.Identifier+" {", strings.Join(inner, "\n\n"))
	}
	return out, nil
}

func (p *Printer) namespace(c catalog.Collection, top bool) (string, error) {
	fields := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, withDoc(f.DocComment, "const "+f.Identifier+": "+f.Type+";"))
	}

	functions := make([]string, 0, len(c.Functions))
	for _, fn := range c.Functions {
		s, err := p.function(KindNamespace, c.Identifier, fn, "function ", false)
		if err != nil {
			return "", err
		}
		functions = append(functions, s)
	}

	extras, err := p.extras(KindNamespace, c)
	if err != nil {
		return "", err
	}

	inner := make([]string, 0, len(c.InnerCollections))
	for _, ic := range c.InnerCollections {
		s, err := p.namespace(ic, false)
		if err != nil {
			return "", err
		}
		inner = append(inner, s)
	}

	head := "namespace " + c.Identifier + " {"
	if top {
		head = "declare " + head
	}
	return block(c.DocComment, head, joinBlocks(
		strings.Join(fields, "\n\n"),
		strings.Join(functions, "\n\n"),
		strings.Join(extras, "\n\n"),
		strings.Join(inner, "\n\n"),
	)), nil
}

// function renders one member function. An override replaces the
// signature but keeps the generated doc comment.
func (p *Printer) function(kind Kind, container string, fn catalog.Function, prefix string, optional bool) (string, error) {
	text, ok, err := p.overrides.Override(kind, container, fn.Identifier)
	if err != nil {
		return "", fmt.Errorf("load override for %s.%s: %w", container, fn.Identifier, err)
	}
	if ok {
		p.logger.Debug("using override", "kind", kind, "container", container, "member", fn.Identifier)
		return withDoc(fn.DocComment, leadingDeclareRe.ReplaceAllString(text, "$1")), nil
	}
	return withDoc(fn.DocComment, signature(fn, prefix, optional)), nil
}

// extras loads the container's extras and rejects any that shadow a
// generated member.
func (p *Printer) extras(kind Kind, c catalog.Collection) ([]string, error) {
	extras, err := p.overrides.Extras(kind, c.Identifier)
	if err != nil {
		return nil, fmt.Errorf("load extras for %s: %w", c.Identifier, err)
	}
	if len(extras) == 0 {
		return nil, nil
	}

	generated := make(map[string]bool, len(c.Fields)+len(c.Functions))
	for _, f := range c.Fields {
		generated[f.Identifier] = true
	}
	for _, fn := range c.Functions {
		generated[fn.Identifier] = true
	}

	out := make([]string, 0, len(extras))
	for _, e := range extras {
		if generated[e.Name] {
			return nil, &OverrideConflictError{Kind: kind, Container: c.Identifier, Member: e.Name}
		}
		text := strings.TrimSpace(e.Text)
		if kind == KindNamespace {
			text = leadingDeclareRe.ReplaceAllString(text, "$1")
		}
		out = append(out, text)
	}
	return out, nil
}

// Enum renders an enum. Members-only enums are const enums tagged
// @compileMembersOnly.
func (p *Printer) Enum(e catalog.Enum) string {
	doc := e.DocComment
	kw := "declare enum "
	if e.CompileMembersOnly {
		doc = strings.TrimSpace(doc + "\n@compileMembersOnly")
		kw = "declare const enum "
	}

	members := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		members[i] = withDoc(f.DocComment, f.Identifier+" = "+f.Value+",")
	}
	return block(doc, kw+e.Identifier+" {", strings.Join(members, "\n\n"))
}

// Enums renders each enum, separated by blank lines.
func (p *Printer) Enums(enums []catalog.Enum) string {
	blocks := make([]string, len(enums))
	for i, e := range enums {
		blocks[i] = p.Enum(e)
	}
	return joinBlocks(blocks...)
}

// TypeMap renders a type alias mapping each key to its payload shape.
func (p *Printer) TypeMap(t *catalog.TypeMap) string {
	if t == nil {
		return ""
	}
	entries := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		fields := make([]string, len(e.Fields))
		for j, f := range e.Fields {
			opt := ""
			if f.Optional {
				opt = "?"
			}
			fields[j] = withDoc(f.DocComment, propertyKey(f.Identifier)+opt+": "+f.Type+";")
		}
		if len(fields) == 0 {
			entries[i] = withDoc(e.DocComment, propertyKey(e.Key)+": {};")
			continue
		}
		entries[i] = withDoc(e.DocComment, propertyKey(e.Key)+": {\n"+IndentBlock(strings.Join(fields, "\n"), Indent)+"\n};")
	}
	return withDoc(t.DocComment, "type "+t.Identifier+" = {\n"+IndentBlock(strings.Join(entries, "\n"), Indent)+"\n};")
}

// block renders "head", the indented body and a closing brace.
func block(doc, head, body string) string {
	if strings.TrimSpace(body) == "" {
		return withDoc(doc, head+"\n}")
	}
	return withDoc(doc, head+"\n"+IndentBlock(body, Indent)+"\n}")
}

// propertyKey quotes keys that are not plain identifiers.
func propertyKey(k string) string {
	if identifierRe.MatchString(k) {
		return k
	}
	return fmt.Sprintf("%q", k)
}
