package extractor

import (
	"strings"

	"github.com/gnana997/gmodts/pkg/markup"
	"github.com/gnana997/gmodts/pkg/wiki"
)

// UnnamedArgument names an argument the wiki left unnamed.
const UnnamedArgument = "__unnamedArg"

// notAFunctionMarker flags fallback pages that document a value, not a call.
const notAFunctionMarker = "# Not a function"

// Function extracts a function, hook or, for pages without a recognized
// tag, a fallback member. Parent and name come from the page title when it
// has the "Parent:Name" form and from the tag attributes otherwise.
func (d *Document) Function() wiki.Member {
	titleParent, titleName, fromTitle := SplitTitle(d.Page.Title)

	switch d.Shape {
	case ShapeFunction, ShapeHook:
		n := d.Node
		parent, name := n.Attr("parent"), n.Attr("name")
		if fromTitle {
			parent, name = titleParent, titleName
		}
		return wiki.Member{Function: &wiki.Function{
			Name:        name,
			Parent:      parent,
			Description: n.Child("description").InnerMarkup(),
			Realm:       wiki.ParseRealm(n.Child("realm").TextContent()),
			Args:        arguments(n),
			Rets:        returns(n),
			Address:     d.Page.Address,
		}}
	}

	parent, name := titleParent, titleName
	if !fromTitle {
		parent, name = "", d.Page.Title
	}
	description := d.Root.InnerMarkup()

	if strings.Contains(description, notAFunctionMarker) {
		return wiki.Member{Item: &wiki.StructItem{
			Name:        name,
			Parent:      parent,
			Type:        "any",
			Description: description,
			Address:     d.Page.Address,
		}}
	}
	return wiki.Member{Function: &wiki.Function{
		Name:        name,
		Parent:      parent,
		Description: description,
		Realm:       wiki.RealmShared,
		Address:     d.Page.Address,
	}}
}

// listItems returns the <item> children of the first <list> child, also
// accepting items placed directly under n.
func listItems(n *markup.Node, list, item string) []*markup.Node {
	if l := n.Child(list); l != nil {
		return l.ChildrenNamed(item)
	}
	return n.ChildrenNamed(item)
}

func arguments(n *markup.Node) []wiki.Argument {
	nodes := listItems(n, "args", "arg")
	if len(nodes) == 0 {
		return nil
	}
	args := make([]wiki.Argument, 0, len(nodes))
	for _, a := range nodes {
		arg := wiki.Argument{
			Name:        strings.TrimSpace(a.Attr("name")),
			Type:        strings.TrimSpace(a.Attr("type")),
			Description: a.InnerMarkup(),
		}
		if a.HasAttr("default") {
			def := a.Attr("default")
			arg.Default = &def
		}
		if arg.Name == "" {
			arg.Name = UnnamedArgument
		}
		if name, def, ok := strings.Cut(arg.Name, "="); ok {
			arg.Name = strings.TrimSpace(name)
			def = strings.TrimSpace(def)
			arg.Default = &def
		}
		args = append(args, arg)
	}
	return args
}

func returns(n *markup.Node) []wiki.Return {
	nodes := listItems(n, "rets", "ret")
	if len(nodes) == 0 {
		return nil
	}
	rets := make([]wiki.Return, 0, len(nodes))
	for _, r := range nodes {
		rets = append(rets, wiki.Return{
			Name:        strings.TrimSpace(r.Attr("name")),
			Type:        strings.TrimSpace(r.Attr("type")),
			Description: r.InnerMarkup(),
		})
	}
	return rets
}
