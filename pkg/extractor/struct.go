package extractor

import (
	"strings"

	"github.com/gnana997/gmodts/pkg/markup"
	"github.com/gnana997/gmodts/pkg/wiki"
)

// Struct extracts a structure page. Each field item may carry a default.
func (d *Document) Struct() wiki.Struct {
	n := d.Node
	if d.Shape != ShapeStructure {
		n = d.Root
	}
	name := strings.TrimSpace(d.Page.Title)
	return wiki.Struct{
		Name:        name,
		Realm:       wiki.ParseRealm(n.Child("realm").TextContent()),
		Description: n.Child("description").InnerMarkup(),
		Items:       fieldItems(n.Find("fields"), name, d.Page.Address),
		Address:     d.Page.Address,
	}
}

// Enum extracts an enumeration page.
func (d *Document) Enum() wiki.Enum {
	n := d.Node
	if d.Shape != ShapeEnum {
		n = d.Root
	}

	var items []wiki.EnumItem
	for _, it := range listItems(n, "items", "item") {
		items = append(items, wiki.EnumItem{
			Key:         strings.TrimSpace(it.Attr("key")),
			Value:       strings.TrimSpace(it.Attr("value")),
			Description: it.InnerMarkup(),
		})
	}

	return wiki.Enum{
		Name:        strings.TrimSpace(d.Page.Title),
		Realm:       wiki.ParseRealm(n.Child("realm").TextContent()),
		Description: n.Child("description").InnerMarkup(),
		Items:       items,
		Address:     d.Page.Address,
	}
}

// GameEvent extracts one game event page. Field items without both a name
// and a type are skipped.
func (d *Document) GameEvent() wiki.GameEvent {
	name := strings.TrimSpace(d.Page.Title)
	var fields []wiki.StructItem
	for _, f := range fieldItems(d.Root.Find("fields"), name, d.Page.Address) {
		if f.Name == "" || f.Type == "" {
			continue
		}
		fields = append(fields, f)
	}
	return wiki.GameEvent{
		Name:        name,
		Description: d.Description(),
		Fields:      fields,
		Address:     d.Page.Address,
	}
}

// Description returns the first <description> anywhere on the page.
func (d *Document) Description() string {
	return d.Root.Find("description").InnerMarkup()
}

func fieldItems(fields *markup.Node, parent, address string) []wiki.StructItem {
	if fields == nil {
		return nil
	}
	var items []wiki.StructItem
	for _, it := range fields.ChildrenNamed("item") {
		item := wiki.StructItem{
			Name:        strings.TrimSpace(it.Attr("name")),
			Parent:      parent,
			Type:        strings.TrimSpace(it.Attr("type")),
			Description: it.InnerMarkup(),
			Address:     address,
		}
		if it.HasAttr("default") {
			def := it.Attr("default")
			item.Default = &def
		}
		items = append(items, item)
	}
	return items
}
