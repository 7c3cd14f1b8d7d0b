package transform

import (
	"regexp"
	"strings"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/mods"
	"github.com/gnana997/gmodts/pkg/wiki"
)

var dottedNameRe = regexp.MustCompile(`^([^.\s]+)\.(.+)$`)

// Collection assembles one container and its members into a collection.
// members should already be filtered to those whose parent is the
// container's name.
//
// Steps run in a fixed order: inner_namespace carve-outs, parent list
// assembly with add_parent and omit_parent_fields, member conversion,
// dotted-name regrouping for namespaces, then add_field rules.
func (t *Transformer) Collection(container wiki.FunctionCollection, members []wiki.Member) catalog.Collection {
	rules := t.mods.For(container.Address)
	pool := append([]wiki.Member(nil), members...)

	var inner []catalog.Collection
	for _, carve := range mods.Of[mods.InnerNamespace](rules) {
		var ns catalog.Collection
		ns, pool = t.carveNamespace(carve.Prefix, pool, container.IsHookContainer)
		inner = append(inner, ns)
	}

	parent := assembleParents(container, rules)

	var (
		functions []catalog.Function
		fields    []catalog.Field
	)
	for _, m := range pool {
		switch {
		case m.Function != nil:
			fn := t.Function(*m.Function)
			if container.Library {
				fn.Identifier = stripContainerPrefix(fn.Identifier, container.Name)
			}
			if container.IsHookContainer {
				fn.Optional = true
			}
			functions = append(functions, fn)
		case m.Item != nil:
			fields = append(fields, t.StructField(*m.Item))
		}
	}

	if container.Library {
		var groups []catalog.Collection
		functions, groups = regroupDotted(functions)
		inner = append(inner, groups...)
		functions = dropPlaceholders(functions, inner)
	}

	for _, add := range mods.Of[mods.AddField](rules) {
		fields = append(fields, add.Field)
	}

	id := TransformIdentifier(container.Name)
	if id == MissingIdentifier {
		t.logger.Warn("collection without a name", "address", container.Address)
	}

	return catalog.Collection{
		Identifier:       id,
		DocComment:       TransformDescription(container.Description),
		Fields:           fields,
		Functions:        functions,
		InnerCollections: inner,
		Parent:           parent,
		Namespace:        container.Library,
	}
}

// carveNamespace moves every member under prefix into a nested namespace
// and returns it together with the remaining pool.
func (t *Transformer) carveNamespace(prefix string, pool []wiki.Member, hooks bool) (catalog.Collection, []wiki.Member) {
	qualified := prefix + "."
	ns := catalog.Collection{Identifier: prefix, Namespace: true}

	var rest []wiki.Member
	for _, m := range pool {
		if m.Name() == prefix {
			desc := ""
			if m.Function != nil {
				desc = m.Function.Description
			} else if m.Item != nil {
				desc = m.Item.Description
			}
			ns.DocComment = TransformDescription(desc)
			continue
		}
		if !strings.Contains(m.Address(), qualified) {
			rest = append(rest, m)
			continue
		}

		switch {
		case m.Function != nil:
			fn := t.Function(*m.Function)
			fn.Identifier = strings.Replace(fn.Identifier, qualified, "", 1)
			if hooks {
				fn.Optional = true
			}
			ns.Functions = append(ns.Functions, fn)
		case m.Item != nil:
			item := *m.Item
			item.Name = strings.Replace(item.Name, qualified, "", 1)
			ns.Fields = append(ns.Fields, t.StructField(item))
		}
	}
	return ns, rest
}

// assembleParents builds the parent list: add_parent rules first, then the
// container's own parent, with omit_parent_fields rewriting one entry.
func assembleParents(container wiki.FunctionCollection, rules []mods.Modification) string {
	var parents []string
	for _, add := range mods.Of[mods.AddParent](rules) {
		parents = append(parents, add.Parent)
	}
	if container.Parent != "" {
		parents = append(parents, container.Parent)
	}

	for _, omit := range mods.Of[mods.OmitParentFields](rules) {
		if len(parents) == 0 {
			break
		}
		idx := 0
		if omit.Parent != "" {
			idx = indexOf(parents, omit.Parent)
		}
		if idx < 0 {
			continue
		}
		quoted := make([]string, len(omit.Omit))
		for i, o := range omit.Omit {
			quoted[i] = `"` + o + `"`
		}
		parents[idx] = "Omit<" + parents[idx] + ", " + strings.Join(quoted, " | ") + ">"
	}

	return catalog.JoinParents(parents)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// stripContainerPrefix removes a leading "name." or "name:" from id,
// case-insensitively.
func stripContainerPrefix(id, name string) string {
	if name == "" || len(id) <= len(name) {
		return id
	}
	sep := id[len(name)]
	if (sep == '.' || sep == ':') && strings.EqualFold(id[:len(name)], name) {
		return id[len(name)+1:]
	}
	return id
}

// regroupDotted moves "seg.rest" functions into nested namespaces named
// seg, in order of first appearance.
func regroupDotted(functions []catalog.Function) ([]catalog.Function, []catalog.Collection) {
	var (
		flat   []catalog.Function
		groups []catalog.Collection
		index  = map[string]int{}
	)
	for _, fn := range functions {
		m := dottedNameRe.FindStringSubmatch(fn.Identifier)
		if m == nil {
			flat = append(flat, fn)
			continue
		}
		seg, rest := m[1], m[2]
		i, ok := index[seg]
		if !ok {
			i = len(groups)
			index[seg] = i
			groups = append(groups, catalog.Collection{
				Identifier: TransformIdentifier(seg),
				Namespace:  true,
			})
		}
		fn.Identifier = rest
		groups[i].Functions = append(groups[i].Functions, fn)
	}
	return flat, groups
}

// dropPlaceholders removes zero-argument void functions that only exist to
// document a nested namespace of the same name.
func dropPlaceholders(functions []catalog.Function, inner []catalog.Collection) []catalog.Function {
	if len(inner) == 0 {
		return functions
	}
	names := make(map[string]bool, len(inner))
	for _, c := range inner {
		names[c.Identifier] = true
	}
	var kept []catalog.Function
	for _, fn := range functions {
		if names[fn.Identifier] && len(fn.Args) == 0 && fn.Ret == "void" {
			continue
		}
		kept = append(kept, fn)
	}
	return kept
}
