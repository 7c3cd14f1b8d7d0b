// Package mods is the declarative modification database: per-page rules
// that rename types, adjust inheritance, add fields, patch argument and
// return types, or carve members out into an inner namespace.
//
// Rules are keyed by the unmodified wiki page address and consulted at fixed
// points in the transform pipeline.
package mods

import (
	"sort"

	"github.com/gnana997/gmodts/pkg/catalog"
)

// Kind tags a Modification.
type Kind string

const (
	KindRenameIdentifier Kind = "rename_identifier"
	KindAddParent        Kind = "add_parent"
	KindOmitParentFields Kind = "omit_parent_fields"
	KindAddField         Kind = "add_field"
	KindModifyArgument   Kind = "modify_argument"
	KindModifyReturn     Kind = "modify_return"
	KindInnerNamespace   Kind = "inner_namespace"
)

// Modification is one rule. The concrete types below are the only
// implementations.
type Modification interface {
	Kind() Kind
}

// RenameIdentifier makes every type reference to the page resolve to Name.
type RenameIdentifier struct {
	Name string
}

// AddParent prepends a parent type to a container.
type AddParent struct {
	Parent string
}

// OmitParentFields rewrites one parent entry into Omit<Parent, ...>.
// An empty Parent targets the first entry of the parent list.
type OmitParentFields struct {
	Parent string
	Omit   []string
}

// AddField appends a field to a container verbatim.
type AddField struct {
	Field catalog.Field
}

// ModifyArgument overrides the type (and optionally the default) of the
// named argument.
type ModifyArgument struct {
	Argument string
	Type     string
	Default  *string
}

// ModifyReturn overrides a function's whole return type.
type ModifyReturn struct {
	Type string
}

// InnerNamespace carves "<Prefix>.*" members of a container out into a
// nested namespace named Prefix.
type InnerNamespace struct {
	Prefix string
}

func (RenameIdentifier) Kind() Kind { return KindRenameIdentifier }
func (AddParent) Kind() Kind        { return KindAddParent }
func (OmitParentFields) Kind() Kind { return KindOmitParentFields }
func (AddField) Kind() Kind         { return KindAddField }
func (ModifyArgument) Kind() Kind   { return KindModifyArgument }
func (ModifyReturn) Kind() Kind     { return KindModifyReturn }
func (InnerNamespace) Kind() Kind   { return KindInnerNamespace }

// Lookup returns the modifications registered for a page address.
type Lookup interface {
	For(address string) []Modification
}

// DB is an immutable address → modifications table.
type DB struct {
	byAddress map[string][]Modification
}

// Empty returns a DB with no rules.
func Empty() *DB {
	return &DB{byAddress: map[string][]Modification{}}
}

// New builds a DB from a map. The map is copied.
func New(rules map[string][]Modification) *DB {
	db := Empty()
	for addr, ms := range rules {
		db.byAddress[addr] = append([]Modification(nil), ms...)
	}
	return db
}

// For returns the rules for address, in declaration order.
func (db *DB) For(address string) []Modification {
	if db == nil {
		return nil
	}
	return db.byAddress[address]
}

// Addresses returns every address with at least one rule, sorted.
func (db *DB) Addresses() []string {
	out := make([]string, 0, len(db.byAddress))
	for addr := range db.byAddress {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of rules.
func (db *DB) Len() int {
	n := 0
	for _, ms := range db.byAddress {
		n += len(ms)
	}
	return n
}

// Merge returns a new DB holding the rules of base followed by those of
// overlay for every address.
func Merge(base, overlay *DB) *DB {
	out := Empty()
	for _, db := range []*DB{base, overlay} {
		if db == nil {
			continue
		}
		for addr, ms := range db.byAddress {
			out.byAddress[addr] = append(out.byAddress[addr], ms...)
		}
	}
	return out
}

// Of filters ms down to the modifications of concrete type T.
func Of[T Modification](ms []Modification) []T {
	var out []T
	for _, m := range ms {
		if t, ok := m.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// First returns the first modification of type T, if any.
func First[T Modification](ms []Modification) (T, bool) {
	for _, m := range ms {
		if t, ok := m.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
