package markup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"wraps in root", "text", "<root>text</root>"},
		{"bare ampersand", "a & b", "<root>a &amp; b</root>"},
		{"comparison operators", "if a < b and c > d", "<root>if a &lt; b and c &gt; d</root>"},
		{"php", "<?php echo 1 ?>", "<root>&lt;?php echo 1 ?&gt;</root>"},
		{"backtick", "`code`", "<root>&grave;code&grave;</root>"},
		{"trailing comma in attributes", `<arg name="x", type="number">d</arg>`, `<root><arg name="x" type="number">d</arg></root>`},
		{"escaped quotes in attributes", `<arg name="x" default="\"a\"">d</arg>`, `<root><arg name="x" default="&quot;a&quot;">d</arg></root>`},
		{"placeholder", "called as GAMEMODE:<hookName> by the engine", "<root>called as GAMEMODE:&lt;hookName&gt; by the engine</root>"},
		{"brackets in attribute value", `<ret name="" type="table<Player>">d</ret>`, `<root><ret name="" type="table&lt;Player&gt;">d</ret></root>`},
		{"map type in attribute value", `<arg name="t", type="table<string,number>"/>`, `<root><arg name="t" type="table&lt;string,number&gt;"/></root>`},
		{"self closing tag kept", `<realm value="Client"/>`, `<root><realm value="Client"/></root>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestParse_Function(t *testing.T) {
	raw := `<function name="SetPos" parent="Entity" type="classfunc">
	<description>Moves the entity. See <page>Entity:GetPos</page> & friends.</description>
	<realm>Shared</realm>
	<args>
		<arg name="position" type="Vector">The new position.</arg>
	</args>
</function>`

	root, err := Parse(raw, "Entity:SetPos")
	require.NoError(t, err)

	fn := root.Child("function")
	require.NotNil(t, fn)
	assert.Equal(t, "SetPos", fn.Attr("name"))
	assert.Equal(t, "Entity", fn.Attr("parent"))

	desc := fn.Child("description")
	require.NotNil(t, desc)
	assert.Equal(t, "Moves the entity. See <page>Entity:GetPos</page> &amp; friends.", desc.InnerMarkup())

	assert.Equal(t, "Shared", fn.Child("realm").TextContent())

	args := fn.Child("args").ChildrenNamed("arg")
	require.Len(t, args, 1)
	assert.Equal(t, "position", args[0].Attr("name"))
	assert.Equal(t, "Vector", args[0].Attr("type"))
	assert.Equal(t, "The new position.", args[0].InnerMarkup())
}

func TestParse_DecodesEntitiesInTextAndAttributes(t *testing.T) {
	root, err := Parse(`<item name="a" default="\"x\"">1 < 2 & 3</item>`, "p")
	require.NoError(t, err)

	item := root.Child("item")
	require.NotNil(t, item)
	assert.Equal(t, `"x"`, item.Attr("default"))
	assert.Equal(t, "1 < 2 & 3", item.TextContent())
}

func TestParse_GenericTypeAttribute(t *testing.T) {
	root, err := Parse(`<rets><ret name="" type="table<string, Player>">Players by name.</ret></rets>`, "player.GetAll")
	require.NoError(t, err)

	ret := root.Child("rets").Child("ret")
	require.NotNil(t, ret)
	assert.Equal(t, "table<string, Player>", ret.Attr("type"))
	assert.Equal(t, "Players by name.", ret.TextContent())
}

func TestParse_ToleratesInformalTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unclosed", "<description>see <b>bold text</description>"},
		{"stray end tag", "<description>text</i> more</description>"},
		{"never closed", "<description>never closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Parse(tt.raw, "Some/Page")
			require.NoError(t, err)
			assert.NotNil(t, root.Find("description"))
		})
	}
}

func TestParse_MarkupError(t *testing.T) {
	_, err := Parse(`<arg name=unquoted>x</arg>`, "Broken/Page")
	require.Error(t, err)

	var me *MarkupError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "Broken/Page", me.Address)
	assert.Contains(t, err.Error(), "Broken/Page")
}

func TestParse_SelfClosingHasEmptyInner(t *testing.T) {
	root, err := Parse(`<type name="Entity" parent="" is="class"/><summary>Base entity.</summary>`, "Entity")
	require.NoError(t, err)

	typ := root.Child("type")
	require.NotNil(t, typ)
	assert.Empty(t, typ.Inner)
	assert.True(t, typ.HasAttr("parent"))
	assert.Equal(t, "Base entity.", root.Child("summary").TextContent())
}

func TestNode_NilSafe(t *testing.T) {
	var n *Node
	assert.Nil(t, n.Child("x"))
	assert.Nil(t, n.Find("x"))
	assert.Empty(t, n.Attr("x"))
	assert.Empty(t, n.TextContent())
	assert.Empty(t, n.InnerMarkup())
}
