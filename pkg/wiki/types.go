// Package wiki holds the raw entities scraped from the game wiki and the
// page sources that fetch them.
package wiki

import "strings"

// Realm is the execution context a function or member is available in.
// Besides the four canonical values the wiki uses combined forms such as
// "Client and Menu"; those are kept verbatim.
type Realm string

const (
	RealmShared Realm = "Shared"
	RealmClient Realm = "Client"
	RealmServer Realm = "Server"
	RealmMenu   Realm = "Menu"
)

// ParseRealm trims s and defaults an empty realm to Shared.
func ParseRealm(s string) Realm {
	s = strings.TrimSpace(s)
	if s == "" {
		return RealmShared
	}
	return Realm(s)
}

// Page is one fetched wiki page.
type Page struct {
	Title   string `json:"title"`
	Markup  string `json:"markup"`
	Address string `json:"address"`
}

// Argument is one documented function argument. A non-nil Default marks the
// argument optional.
type Argument struct {
	Name        string
	Type        string
	Description string
	Default     *string
}

// Return is one documented return value.
type Return struct {
	Name        string
	Type        string
	Description string
}

type Function struct {
	Name        string
	Parent      string
	Description string
	Realm       Realm
	Args        []Argument
	Rets        []Return
	Address     string
}

// StructItem is a non-callable member of a struct or class.
type StructItem struct {
	Name        string
	Parent      string
	Type        string
	Description string
	Default     *string
	Address     string
}

// FunctionCollection is a named container of members: a class, panel,
// library or hook container.
type FunctionCollection struct {
	Name        string
	Parent      string
	Description string

	// Library containers hold free functions and render as namespaces.
	Library bool

	// Hook containers hold engine-invoked callback slots; every member
	// function is optional.
	IsHookContainer bool

	Address string
}

type Struct struct {
	Name        string
	Realm       Realm
	Description string
	Items       []StructItem
	Address     string
}

type EnumItem struct {
	Key         string
	Value       string
	Description string
}

type Enum struct {
	Name        string
	Realm       Realm
	Description string
	Items       []EnumItem
	Address     string
}

// GameEvent describes the payload of one engine game event.
type GameEvent struct {
	Name        string
	Description string
	Fields      []StructItem
	Address     string
}

// Member is a function or a struct item that belongs to a container.
// Exactly one of the two pointers is set.
type Member struct {
	Function *Function
	Item     *StructItem
}

// Name returns the member's name.
func (m Member) Name() string {
	if m.Function != nil {
		return m.Function.Name
	}
	if m.Item != nil {
		return m.Item.Name
	}
	return ""
}

// Parent returns the member's parent container name.
func (m Member) Parent() string {
	if m.Function != nil {
		return m.Function.Parent
	}
	if m.Item != nil {
		return m.Item.Parent
	}
	return ""
}

// Address returns the address of the page the member came from.
func (m Member) Address() string {
	if m.Function != nil {
		return m.Function.Address
	}
	if m.Item != nil {
		return m.Item.Address
	}
	return ""
}
