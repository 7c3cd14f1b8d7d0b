// Package merge combines independently transformed collections: aliased
// containers are unified, structs fold into same-named classes and the
// gamemode hook enum is derived.
package merge

import (
	"strconv"
	"strings"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/transform"
)

const (
	// GamemodeIdentifier is the canonical gamemode interface name.
	GamemodeIdentifier = "Gamemode"

	// PanelIdentifier is the canonical base panel name.
	PanelIdentifier = "Panel"

	// HookEnumIdentifier names the enum of gamemode hook names.
	HookEnumIdentifier = "GMHook"
)

// aliases maps placeholder container names to their canonical identifier.
var aliases = map[string]string{
	"GM":      GamemodeIdentifier,
	"SANDBOX": GamemodeIdentifier,
	"PANEL":   PanelIdentifier,
}

// Canonical returns the canonical identifier for id.
func Canonical(id string) string {
	if c, ok := aliases[id]; ok {
		return c
	}
	return id
}

// Result is the outcome of Classes.
type Result struct {
	// Classes are the merged interfaces, in first-seen order.
	Classes []catalog.Collection

	// Structs are structs that did not fold into a class.
	Structs []catalog.Collection
}

// Classes canonicalizes class identifiers, merges classes sharing an
// identifier, folds same-named structs into them and removes self
// references from parent lists. Inputs are not modified.
func Classes(classes, structs []catalog.Collection) Result {
	var (
		merged []catalog.Collection
		index  = map[string]int{}
	)
	for _, c := range classes {
		c = c.Clone()
		c.Identifier = Canonical(c.Identifier)
		c.Parent = canonicalParents(c.Parents())
		if i, ok := index[c.Identifier]; ok {
			merged[i] = Merge(merged[i], c)
			continue
		}
		index[c.Identifier] = len(merged)
		merged = append(merged, c)
	}

	var rest []catalog.Collection
	for _, s := range structs {
		s = s.Clone()
		s.Identifier = Canonical(s.Identifier)
		s.Parent = canonicalParents(s.Parents())
		if i, ok := index[s.Identifier]; ok {
			merged[i] = FoldStruct(merged[i], s)
			continue
		}
		rest = append(rest, s)
	}

	for i := range merged {
		merged[i].Parent = dropSelfParent(merged[i])
	}
	for i := range rest {
		rest[i].Parent = dropSelfParent(rest[i])
	}

	return Result{Classes: merged, Structs: rest}
}

// Merge unions two collections sharing an identifier. Doc comments
// concatenate, fields and functions union by identifier (optional wins,
// differing docs concatenate), inner collections concatenate and parent
// lists union.
func Merge(a, b catalog.Collection) catalog.Collection {
	out := a.Clone()
	out.DocComment = joinDocs(a.DocComment, b.DocComment)
	out.Fields = unionFields(a.Fields, b.Fields)
	out.Functions = unionFunctions(a.Functions, b.Functions)
	out.InnerCollections = concatInner(a.InnerCollections, b.InnerCollections)
	out.Parent = canonicalParents(append(a.Parents(), b.Parents()...))
	out.Namespace = a.Namespace || b.Namespace
	return out
}

// FoldStruct folds a struct into a class of the same identifier. The
// struct's doc comment comes first; class functions and parents are kept
// as they are.
func FoldStruct(class, s catalog.Collection) catalog.Collection {
	out := class.Clone()
	out.DocComment = joinDocs(s.DocComment, class.DocComment)
	out.Fields = unionFields(class.Fields, s.Fields)
	out.InnerCollections = concatInner(class.InnerCollections, s.InnerCollections)
	return out
}

// HookEnum derives the hook name enum from the gamemode collection. Each
// distinct function becomes a member whose value is its source name.
// It returns nil when there is no gamemode collection.
func HookEnum(classes []catalog.Collection) *catalog.Enum {
	var gm *catalog.Collection
	for i := range classes {
		if classes[i].Identifier == GamemodeIdentifier {
			gm = &classes[i]
			break
		}
	}
	if gm == nil {
		return nil
	}

	seen := make(map[string]bool, len(gm.Functions))
	fields := make([]catalog.EnumField, 0, len(gm.Functions))
	for _, fn := range gm.Functions {
		name := strings.TrimSpace(fn.Identifier)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, catalog.EnumField{
			Identifier: transform.TransformIdentifier(name),
			Value:      strconv.Quote(name),
		})
	}

	return &catalog.Enum{
		Identifier:         HookEnumIdentifier,
		Fields:             fields,
		CompileMembersOnly: true,
	}
}

func joinDocs(docs ...string) string {
	var kept []string
	for _, d := range docs {
		if d = strings.TrimSpace(d); d != "" {
			kept = append(kept, d)
		}
	}
	return strings.Join(kept, "\n\n")
}

// mergeDoc concatenates differing doc comments and keeps equal ones once.
func mergeDoc(a, b string) string {
	if strings.TrimSpace(a) == strings.TrimSpace(b) {
		return a
	}
	return joinDocs(a, b)
}

func unionFields(a, b []catalog.Field) []catalog.Field {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]catalog.Field, 0, len(a)+len(b))
	index := make(map[string]int, len(a)+len(b))
	for _, f := range append(append([]catalog.Field(nil), a...), b...) {
		if i, ok := index[f.Identifier]; ok {
			out[i].Optional = out[i].Optional || f.Optional
			out[i].DocComment = mergeDoc(out[i].DocComment, f.DocComment)
			continue
		}
		index[f.Identifier] = len(out)
		out = append(out, f)
	}
	return out
}

func unionFunctions(a, b []catalog.Function) []catalog.Function {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]catalog.Function, 0, len(a)+len(b))
	index := make(map[string]int, len(a)+len(b))
	for _, list := range [][]catalog.Function{a, b} {
		for _, fn := range list {
			if i, ok := index[fn.Identifier]; ok {
				out[i].Optional = out[i].Optional || fn.Optional
				out[i].DocComment = mergeDoc(out[i].DocComment, fn.DocComment)
				continue
			}
			index[fn.Identifier] = len(out)
			out = append(out, fn.Clone())
		}
	}
	return out
}

func concatInner(a, b []catalog.Collection) []catalog.Collection {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]catalog.Collection, 0, len(a)+len(b))
	for _, c := range a {
		out = append(out, c.Clone())
	}
	for _, c := range b {
		out = append(out, c.Clone())
	}
	return out
}

// canonicalParents aliases each parent entry and joins the result.
func canonicalParents(parents []string) string {
	for i, p := range parents {
		parents[i] = Canonical(p)
	}
	return catalog.JoinParents(parents)
}

func dropSelfParent(c catalog.Collection) string {
	var kept []string
	for _, p := range c.Parents() {
		if p != c.Identifier {
			kept = append(kept, p)
		}
	}
	return catalog.JoinParents(kept)
}
