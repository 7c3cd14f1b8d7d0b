// Package printer renders the declaration model as TypeScript declaration
// text, splicing in hand-maintained overrides and extras.
package printer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gnana997/gmodts/pkg/catalog"
)

// Indent is one nesting level.
const Indent = "    "

// Kind selects the override folder a member is looked up in.
type Kind string

const (
	KindGlobal    Kind = "global"
	KindInterface Kind = "interface"
	KindNamespace Kind = "namespace"
)

// Extra is one hand-maintained member injected into a container.
type Extra struct {
	Name string
	Text string
}

// OverrideSource supplies manual overrides and extras.
type OverrideSource interface {
	// Override returns replacement text for one member's signature.
	// container is empty for globals.
	Override(kind Kind, container, member string) (string, bool, error)

	// Extras returns supplemental members for a container, keyed by its
	// final identifier.
	Extras(kind Kind, container string) ([]Extra, error)
}

type noOverrides struct{}

func (noOverrides) Override(Kind, string, string) (string, bool, error) { return "", false, nil }
func (noOverrides) Extras(Kind, string) ([]Extra, error)                 { return nil, nil }

// Printer renders catalog entities.
type Printer struct {
	overrides OverrideSource
	logger    *slog.Logger
}

// New creates a Printer. A nil source renders without overrides or extras.
func New(src OverrideSource, logger *slog.Logger) *Printer {
	if src == nil {
		src = noOverrides{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Printer{overrides: src, logger: logger}
}

// DocComment renders comment as a JSDoc block, or "" when it is blank.
func DocComment(comment string) string {
	raw := strings.TrimSpace(comment)
	if raw == "" {
		return ""
	}
	for strings.Contains(raw, "\n\n\n") {
		raw = strings.ReplaceAll(raw, "\n\n\n", "\n\n")
	}

	var b strings.Builder
	b.WriteString("/**\n")
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString(" *\n")
			continue
		}
		b.WriteString(" * ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(" */")
	return b.String()
}

// IndentBlock prefixes every non-empty line of s with indent.
func IndentBlock(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = indent + l
		}
	}
	return strings.Join(lines, "\n")
}

// joinBlocks joins the non-empty blocks with a blank line.
func joinBlocks(blocks ...string) string {
	var kept []string
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}

// withDoc puts a doc comment above body.
func withDoc(doc, body string) string {
	if d := DocComment(doc); d != "" {
		return d + "\n" + body
	}
	return body
}

// GlobalFunction renders a top-level function declaration.
func (p *Printer) GlobalFunction(fn catalog.Function) (string, error) {
	text, ok, err := p.overrides.Override(KindGlobal, "", fn.Identifier)
	if err != nil {
		return "", fmt.Errorf("load override for %s: %w", fn.Identifier, err)
	}
	if ok {
		return withDoc(fn.DocComment, text), nil
	}
	return withDoc(fn.DocComment, signature(fn, "declare function ", false)), nil
}

// Globals renders top-level functions separated by blank lines.
func (p *Printer) Globals(fns []catalog.Function) (string, error) {
	blocks := make([]string, 0, len(fns))
	for _, fn := range fns {
		s, err := p.GlobalFunction(fn)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, s)
	}
	return joinBlocks(blocks...), nil
}
