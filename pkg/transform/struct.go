package transform

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/wiki"
)

// GameEventIdentifier names the game event type map.
const GameEventIdentifier = "gameevent"

// StructField converts a struct item. A field with a default is optional
// and documents the default.
func (t *Transformer) StructField(item wiki.StructItem) catalog.Field {
	typ := t.InferType(item.Type, item.Description)
	if sig, ok := CallbackSignature(item.Description, t.mods); ok {
		typ = PreferCallbackType(typ, sig)
	}
	if !IsFunctionType(typ) {
		typ = TransformType(typ)
	}

	doc := TransformDescription(item.Description)
	if item.Default != nil && *item.Default != "" {
		doc = strings.TrimSpace(doc + "\n@default " + UnescapeEntities(*item.Default))
	}

	id := TransformIdentifier(item.Name)
	if id == MissingIdentifier {
		t.logger.Warn("field without a name", "address", item.Address)
	}

	return catalog.Field{
		Identifier: id,
		Type:       typ,
		Optional:   item.Default != nil,
		DocComment: doc,
	}
}

// Struct converts a structure page into an interface collection.
func (t *Transformer) Struct(s wiki.Struct) catalog.Collection {
	fields := make([]catalog.Field, len(s.Items))
	for i, item := range s.Items {
		fields[i] = t.StructField(item)
	}
	return catalog.Collection{
		Identifier: TransformIdentifier(leafName(s.Name)),
		DocComment: joinDoc(RealmBadge(s.Realm), TransformDescription(s.Description)),
		Fields:     fields,
	}
}

// Enum converts an enumeration page. Members are bare globals unless a key
// is qualified with a dot, in which case the enum is a real object.
func (t *Transformer) Enum(e wiki.Enum) catalog.Enum {
	membersOnly := true
	fields := make([]catalog.EnumField, 0, len(e.Items))
	for _, item := range e.Items {
		key := item.Key
		if i := strings.LastIndexByte(key, '.'); i >= 0 {
			membersOnly = false
			key = key[i+1:]
		}
		fields = append(fields, catalog.EnumField{
			Identifier: TransformIdentifier(key),
			DocComment: TransformDescription(item.Description),
			Value:      enumValue(item.Value),
		})
	}
	return catalog.Enum{
		Identifier:         TransformIdentifier(leafName(e.Name)),
		DocComment:         joinDoc(RealmBadge(e.Realm), TransformDescription(e.Description)),
		Fields:             fields,
		CompileMembersOnly: membersOnly,
	}
}

func enumValue(v string) string {
	v = strings.TrimSpace(UnescapeEntities(v))
	if _, err := strconv.ParseInt(v, 0, 64); err == nil {
		return v
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return strconv.Quote(v)
}

// GameEvents builds the game event type map, sorted by event name.
func (t *Transformer) GameEvents(events []wiki.GameEvent, description string) *catalog.TypeMap {
	entries := make([]catalog.TypeMapEntry, 0, len(events))
	for _, ev := range events {
		fields := make([]catalog.Field, len(ev.Fields))
		for i, f := range ev.Fields {
			fields[i] = t.StructField(f)
		}
		entries = append(entries, catalog.TypeMapEntry{
			Key:        ev.Name,
			Fields:     fields,
			DocComment: TransformDescription(ev.Description),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return &catalog.TypeMap{
		Identifier: GameEventIdentifier,
		DocComment: TransformDescription(description),
		Entries:    entries,
	}
}

// leafName drops any "Category/" path prefix.
func leafName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
