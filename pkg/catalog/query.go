package catalog

import (
	"sort"
	"strings"
)

// MemberSearchResult is one function or field matched by SearchMembers.
type MemberSearchResult struct {
	Container string `json:"container"`
	Kind      string `json:"kind"` // "function", "field" or "global"
	Member    string `json:"member"`
	Signature string `json:"signature"`
}

// CollectionSummary is the short listing form of a collection.
type CollectionSummary struct {
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`
	Parent     string `json:"parent,omitempty"`
	Functions  int    `json:"functions"`
	Fields     int    `json:"fields"`
}

// QueryService provides read-only query methods over a loaded catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a validated catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// LoadAndQuery loads a model from file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// ListCollections returns collections filtered by kind ("class", "struct",
// "library") and keyword. Both filters are optional; the keyword matches
// identifiers and doc comments case-insensitively.
func (q *QueryService) ListCollections(kind, keyword string) []CollectionSummary {
	keyword = strings.ToLower(keyword)
	result := make([]CollectionSummary, 0)

	visit := func(cols []Collection, k string) {
		if kind != "" && kind != k {
			return
		}
		for _, col := range cols {
			if keyword != "" &&
				!strings.Contains(strings.ToLower(col.Identifier), keyword) &&
				!strings.Contains(strings.ToLower(col.DocComment), keyword) {
				continue
			}
			result = append(result, CollectionSummary{
				Identifier: col.Identifier,
				Kind:       k,
				Parent:     col.Parent,
				Functions:  len(col.Functions),
				Fields:     len(col.Fields),
			})
		}
	}
	visit(q.Catalog.Classes, "class")
	visit(q.Catalog.Structs, "struct")
	visit(q.Catalog.Libraries, "library")

	return result
}

// GetCollection looks up a collection by identifier, falling back to a
// case-insensitive match. The string is the collection kind.
func (q *QueryService) GetCollection(name string) (*Collection, string, bool) {
	if col, ok := q.Index.CollectionByName[name]; ok {
		return col, q.Index.KindByName[name], true
	}
	if col, ok := q.Index.CollectionByLower[strings.ToLower(name)]; ok {
		return col, q.Index.KindByName[col.Identifier], true
	}
	return nil, "", false
}

// GetEnum looks up an enum (including the hook enum) by identifier.
func (q *QueryService) GetEnum(name string) (*Enum, bool) {
	e, ok := q.Index.EnumByName[name]
	return e, ok
}

// GetGlobal looks up a global function.
func (q *QueryService) GetGlobal(name string) (*Function, bool) {
	fn, ok := q.Index.GlobalByName[name]
	return fn, ok
}

// GetGameEvent looks up one game event payload.
func (q *QueryService) GetGameEvent(name string) (*TypeMapEntry, bool) {
	e, ok := q.Index.EventByKey[name]
	return e, ok
}

// ListHooks returns the hook names of the hook enum, sorted.
func (q *QueryService) ListHooks() []string {
	if q.Catalog.HookEnum == nil {
		return nil
	}
	names := make([]string, 0, len(q.Catalog.HookEnum.Fields))
	for _, f := range q.Catalog.HookEnum.Fields {
		names = append(names, strings.Trim(f.Value, `"`))
	}
	sort.Strings(names)
	return names
}

// SearchMembers performs a case-insensitive substring search over member
// names of every collection and over global functions.
func (q *QueryService) SearchMembers(query string, limit int) []MemberSearchResult {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}

	var results []MemberSearchResult
	full := func() bool { return limit > 0 && len(results) >= limit }

	var visit func(container string, col Collection)
	visit = func(container string, col Collection) {
		for _, fn := range col.Functions {
			if full() {
				return
			}
			if strings.Contains(strings.ToLower(fn.Identifier), query) {
				results = append(results, MemberSearchResult{
					Container: container,
					Kind:      "function",
					Member:    fn.Identifier,
					Signature: Signature(fn),
				})
			}
		}
		for _, f := range col.Fields {
			if full() {
				return
			}
			if strings.Contains(strings.ToLower(f.Identifier), query) {
				results = append(results, MemberSearchResult{
					Container: container,
					Kind:      "field",
					Member:    f.Identifier,
					Signature: f.Identifier + ": " + f.Type,
				})
			}
		}
		for _, inner := range col.InnerCollections {
			visit(container+"."+inner.Identifier, inner)
		}
	}

	for _, group := range [][]Collection{q.Catalog.Classes, q.Catalog.Structs, q.Catalog.Libraries} {
		for _, col := range group {
			visit(col.Identifier, col)
		}
	}

	for _, fn := range q.Catalog.Globals {
		if full() {
			break
		}
		if strings.Contains(strings.ToLower(fn.Identifier), query) {
			results = append(results, MemberSearchResult{
				Kind:      "global",
				Member:    fn.Identifier,
				Signature: Signature(fn),
			})
		}
	}

	return results
}

// Signature renders a compact one-line form of fn.
func Signature(fn Function) string {
	args := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		opt := ""
		if a.Default != nil {
			opt = "?"
		}
		args[i] = a.Identifier + opt + ": " + a.Type
	}
	return fn.Identifier + "(" + strings.Join(args, ", ") + "): " + fn.Ret
}
