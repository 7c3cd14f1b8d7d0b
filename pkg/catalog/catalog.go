package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Catalog is the complete generated type model of one run. It is what the
// printer renders and what `serve`/`inspect` load back from disk.
type Catalog struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`

	// Classes are merged interfaces: classes, panels, hook containers and
	// structs folded into a same-named class.
	Classes []Collection `json:"classes"`

	// Structs are structures with no same-named class.
	Structs []Collection `json:"structs"`

	Libraries  []Collection `json:"libraries"`
	Enums      []Enum       `json:"enums"`
	HookEnum   *Enum        `json:"hook_enum,omitempty"`
	GameEvents *TypeMap     `json:"game_events,omitempty"`
	Globals    []Function   `json:"globals"`
}

// CatalogIndex provides O(1) lookups into the catalog.
type CatalogIndex struct {
	// CollectionByName maps identifier -> collection across classes,
	// structs and libraries. Classes win over libraries on a clash.
	CollectionByName map[string]*Collection

	// CollectionByLower maps lower-cased identifier -> collection.
	CollectionByLower map[string]*Collection

	// KindByName maps identifier -> "class", "struct" or "library".
	KindByName map[string]string

	EnumByName   map[string]*Enum
	GlobalByName map[string]*Function
	EventByKey   map[string]*TypeMapEntry
}

// Validate checks the catalog for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (c *Catalog) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("catalog name is required"))
	}

	interfaces := make(map[string]bool, len(c.Classes)+len(c.Structs))
	for _, group := range []struct {
		label string
		cols  []Collection
	}{
		{"classes", c.Classes},
		{"structs", c.Structs},
	} {
		for i, col := range group.cols {
			if col.Identifier == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: identifier is required", group.label, i))
				continue
			}
			if interfaces[col.Identifier] {
				errs = append(errs, fmt.Errorf("%s[%d]: duplicate interface %q", group.label, i, col.Identifier))
				continue
			}
			interfaces[col.Identifier] = true
			errs = append(errs, validateCollection(col, col.Identifier)...)
		}
	}

	libraries := make(map[string]bool, len(c.Libraries))
	for i, lib := range c.Libraries {
		if lib.Identifier == "" {
			errs = append(errs, fmt.Errorf("libraries[%d]: identifier is required", i))
			continue
		}
		if libraries[lib.Identifier] {
			errs = append(errs, fmt.Errorf("libraries[%d]: duplicate namespace %q", i, lib.Identifier))
			continue
		}
		libraries[lib.Identifier] = true
		errs = append(errs, validateCollection(lib, lib.Identifier)...)
	}

	enums := make(map[string]bool, len(c.Enums))
	for i, e := range c.Enums {
		if e.Identifier == "" {
			errs = append(errs, fmt.Errorf("enums[%d]: identifier is required", i))
			continue
		}
		if enums[e.Identifier] {
			errs = append(errs, fmt.Errorf("enums[%d]: duplicate enum %q", i, e.Identifier))
			continue
		}
		enums[e.Identifier] = true
	}

	for i, fn := range c.Globals {
		if fn.Identifier == "" {
			errs = append(errs, fmt.Errorf("globals[%d]: identifier is required", i))
		}
	}

	if c.GameEvents != nil {
		seen := make(map[string]bool, len(c.GameEvents.Entries))
		for i, entry := range c.GameEvents.Entries {
			if seen[entry.Key] {
				errs = append(errs, fmt.Errorf("game_events[%d]: duplicate key %q", i, entry.Key))
			}
			seen[entry.Key] = true
		}
	}

	return errs
}

func validateCollection(col Collection, path string) []error {
	var errs []error
	for j, f := range col.Fields {
		if f.Identifier == "" {
			errs = append(errs, fmt.Errorf("%s fields[%d]: identifier is required", path, j))
		}
		if f.Type == "" {
			errs = append(errs, fmt.Errorf("%s field %q: type is required", path, f.Identifier))
		}
	}
	for j, fn := range col.Functions {
		if fn.Identifier == "" {
			errs = append(errs, fmt.Errorf("%s functions[%d]: identifier is required", path, j))
		}
		if fn.Ret == "" {
			errs = append(errs, fmt.Errorf("%s function %q: return type is required", path, fn.Identifier))
		}
	}
	for _, inner := range col.InnerCollections {
		errs = append(errs, validateCollection(inner, path+"."+inner.Identifier)...)
	}
	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		CollectionByName:  make(map[string]*Collection),
		CollectionByLower: make(map[string]*Collection),
		KindByName:        make(map[string]string),
		EnumByName:        make(map[string]*Enum, len(c.Enums)),
		GlobalByName:      make(map[string]*Function, len(c.Globals)),
		EventByKey:        make(map[string]*TypeMapEntry),
	}

	add := func(cols []Collection, kind string) {
		for i := range cols {
			col := &cols[i]
			if _, taken := idx.CollectionByName[col.Identifier]; taken {
				continue
			}
			idx.CollectionByName[col.Identifier] = col
			lower := strings.ToLower(col.Identifier)
			if prev, taken := idx.CollectionByLower[lower]; !taken || preferOnFold(col.Identifier, prev.Identifier) {
				idx.CollectionByLower[lower] = col
			}
			idx.KindByName[col.Identifier] = kind
		}
	}
	add(c.Classes, "class")
	add(c.Structs, "struct")
	add(c.Libraries, "library")

	for i := range c.Enums {
		idx.EnumByName[c.Enums[i].Identifier] = &c.Enums[i]
	}
	if c.HookEnum != nil {
		idx.EnumByName[c.HookEnum.Identifier] = c.HookEnum
	}
	for i := range c.Globals {
		idx.GlobalByName[c.Globals[i].Identifier] = &c.Globals[i]
	}
	if c.GameEvents != nil {
		for i := range c.GameEvents.Entries {
			idx.EventByKey[c.GameEvents.Entries[i].Key] = &c.GameEvents.Entries[i]
		}
	}

	return idx
}

// preferOnFold reports whether id should replace prev as the
// case-insensitive match. Upper-case hook containers such as ENTITY lose to
// the class they shadow; otherwise the first one wins.
func preferOnFold(id, prev string) bool {
	return isUpper(prev) && !isUpper(id)
}

func isUpper(s string) bool {
	return strings.ToUpper(s) == s && strings.ToLower(s) != s
}

// LoadFromFile loads a catalog from a JSON file, validates it, and builds the index.
func LoadFromFile(path string) (*Catalog, *CatalogIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a catalog from raw JSON bytes, validates it, and builds the index.
func LoadFromBytes(data []byte) (*Catalog, *CatalogIndex, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}

	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("model validation failed: %w", errors.Join(errs...))
	}

	return &catalog, catalog.BuildIndex(), nil
}

// Marshal renders the catalog as indented JSON with a trailing newline.
func (c *Catalog) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return append(data, '\n'), nil
}

// SaveToFile writes the catalog as JSON, creating parent directories.
func (c *Catalog) SaveToFile(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}
