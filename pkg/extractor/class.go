package extractor

import (
	"regexp"
	"strings"

	"github.com/gnana997/gmodts/pkg/wiki"
)

// DefaultPanelParent is the parent of a panel that names none.
const DefaultPanelParent = "Panel"

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	hooksSuffixRe = regexp.MustCompile(`(?i)_Hooks$`)
)

// Class extracts a class, panel or hook container.
func (d *Document) Class() wiki.FunctionCollection {
	title := whitespaceRe.ReplaceAllString(strings.TrimSpace(d.Page.Title), "_")
	col := wiki.FunctionCollection{
		IsHookContainer: hooksSuffixRe.MatchString(title),
		Address:         d.Page.Address,
	}

	switch d.Shape {
	case ShapeType:
		col.Name = d.Node.Attr("name")
		col.Parent = d.Node.Attr("parent")
		col.Description = summary(d)
		if col.Name == "" {
			col.Name = hooksSuffixRe.ReplaceAllString(title, "")
		}

	case ShapePanel:
		col.Name = title
		col.Description = summary(d)
		switch {
		case d.Node.HasAttr("parent"):
			col.Parent = d.Node.Attr("parent")
		case d.Node.Child("parent").TextContent() != "":
			col.Parent = d.Node.Child("parent").TextContent()
		default:
			col.Parent = DefaultPanelParent
		}

	default:
		col.Name = hooksSuffixRe.ReplaceAllString(title, "")
	}

	return col
}

// Library extracts a library container: a namespace of free functions.
func (d *Document) Library() wiki.FunctionCollection {
	col := wiki.FunctionCollection{
		Name:    strings.TrimSpace(d.Page.Title),
		Library: true,
		Address: d.Page.Address,
	}
	if d.Shape == ShapeType {
		if name := d.Node.Attr("name"); name != "" {
			col.Name = name
		}
		col.Description = summary(d)
	}
	return col
}

// summary returns the container description, which the wiki keeps in
// <summary> for types and <description> for panels.
func summary(d *Document) string {
	if s := d.Node.Child("summary").InnerMarkup(); s != "" {
		return s
	}
	return d.Node.Child("description").InnerMarkup()
}
