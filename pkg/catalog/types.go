package catalog

import "strings"

// Collection is a generated interface (class, panel, struct, hook
// container) or namespace (library).
type Collection struct {
	Identifier       string       `json:"identifier"`
	DocComment       string       `json:"doc_comment,omitempty"`
	Fields           []Field      `json:"fields,omitempty"`
	Functions        []Function   `json:"functions,omitempty"`
	InnerCollections []Collection `json:"inner_collections,omitempty"`

	// Parent is a comma-joined list of parent types.
	Parent string `json:"parent,omitempty"`

	// Namespace collections render as flattened function/const containers.
	Namespace bool `json:"namespace"`
}

// Parents splits Parent into trimmed, non-empty entries.
func (c Collection) Parents() []string {
	return SplitParents(c.Parent)
}

// Clone returns a deep copy.
func (c Collection) Clone() Collection {
	out := c
	out.Fields = append([]Field(nil), c.Fields...)
	out.Functions = make([]Function, len(c.Functions))
	for i, f := range c.Functions {
		out.Functions[i] = f.Clone()
	}
	if c.Functions == nil {
		out.Functions = nil
	}
	out.InnerCollections = make([]Collection, len(c.InnerCollections))
	for i, inner := range c.InnerCollections {
		out.InnerCollections[i] = inner.Clone()
	}
	if c.InnerCollections == nil {
		out.InnerCollections = nil
	}
	return out
}

type Field struct {
	Identifier string `json:"identifier"`
	Type       string `json:"type"`
	Optional   bool   `json:"optional,omitempty"`
	DocComment string `json:"doc_comment,omitempty"`
}

type Function struct {
	Identifier string     `json:"identifier"`
	Args       []Argument `json:"args,omitempty"`
	Ret        string     `json:"ret"`
	DocComment string     `json:"doc_comment,omitempty"`

	// Optional functions may be absent at runtime (hook slots).
	Optional bool `json:"optional,omitempty"`
}

// Clone returns a deep copy.
func (f Function) Clone() Function {
	out := f
	if f.Args != nil {
		out.Args = make([]Argument, len(f.Args))
		for i, a := range f.Args {
			out.Args[i] = a
			if a.Default != nil {
				d := *a.Default
				out.Args[i].Default = &d
			}
		}
	}
	return out
}

// Argument is one function parameter. A non-nil Default marks it optional.
type Argument struct {
	Identifier string  `json:"identifier"`
	Type       string  `json:"type"`
	Default    *string `json:"default,omitempty"`
}

type Enum struct {
	Identifier         string      `json:"identifier"`
	DocComment         string      `json:"doc_comment,omitempty"`
	Fields             []EnumField `json:"fields"`
	CompileMembersOnly bool        `json:"compile_members_only,omitempty"`
}

type EnumField struct {
	Identifier string `json:"identifier"`
	DocComment string `json:"doc_comment,omitempty"`
	Value      string `json:"value"`
}

// TypeMap is a name → payload-shape mapping (game events).
type TypeMap struct {
	Identifier string         `json:"identifier"`
	DocComment string         `json:"doc_comment,omitempty"`
	Entries    []TypeMapEntry `json:"entries"`
}

type TypeMapEntry struct {
	Key        string  `json:"key"`
	Fields     []Field `json:"fields"`
	DocComment string  `json:"doc_comment,omitempty"`
}

// SplitParents splits a comma-joined parent list, trimming entries and
// dropping empty ones. Commas inside type arguments, as in
// Omit<Panel, "Paint">, do not split.
func SplitParents(parent string) []string {
	var (
		out   []string
		depth int
		start int
	)
	flush := func(end int) {
		if p := strings.TrimSpace(parent[start:end]); p != "" {
			out = append(out, p)
		}
	}
	for i, r := range parent {
		switch r {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(parent))
	return out
}

// JoinParents de-duplicates and joins parent entries with ", ".
func JoinParents(parents []string) string {
	seen := make(map[string]bool, len(parents))
	out := make([]string, 0, len(parents))
	for _, p := range parents {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
