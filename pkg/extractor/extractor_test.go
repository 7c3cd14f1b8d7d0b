package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/gmodts/pkg/markup"
	"github.com/gnana997/gmodts/pkg/wiki"
)

func mustParse(t *testing.T, title, address, body string) *Document {
	t.Helper()
	doc, err := Parse(wiki.Page{Title: title, Address: address, Markup: body})
	require.NoError(t, err)
	return doc
}

func TestParse_Shape(t *testing.T) {
	tests := []struct {
		body string
		want Shape
	}{
		{`<function name="A"></function>`, ShapeFunction},
		{`<hook name="A"></hook>`, ShapeHook},
		{`<type name="A"></type>`, ShapeType},
		{`<panel></panel>`, ShapePanel},
		{`<structure></structure>`, ShapeStructure},
		{`<enum></enum>`, ShapeEnum},
		{`Just prose.`, ShapeNone},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			doc := mustParse(t, "X", "X", tt.body)
			assert.Equal(t, tt.want, doc.Shape)
		})
	}
}

func TestParse_MarkupError(t *testing.T) {
	_, err := Parse(wiki.Page{Title: "Bad", Address: "Bad", Markup: `<arg name=unquoted>x</arg>`})
	require.Error(t, err)

	var merr *markup.MarkupError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "Bad", merr.Address)
}

func TestFunction_FromTitle(t *testing.T) {
	doc := mustParse(t, "Entity:SetPos", "Entity:SetPos", `
<function name="Ignored" parent="Ignored" type="classfunc">
	<description>Moves the entity.</description>
	<realm>Shared</realm>
	<args>
		<arg name="pos" type="Vector">The new position.</arg>
	</args>
</function>`)

	m := doc.Function()
	require.NotNil(t, m.Function)
	fn := m.Function
	assert.Equal(t, "Entity", fn.Parent)
	assert.Equal(t, "SetPos", fn.Name)
	assert.Equal(t, "Moves the entity.", fn.Description)
	assert.Equal(t, wiki.RealmShared, fn.Realm)
	require.Len(t, fn.Args, 1)
	assert.Equal(t, "pos", fn.Args[0].Name)
	assert.Equal(t, "Vector", fn.Args[0].Type)
	assert.Nil(t, fn.Args[0].Default)
	assert.Empty(t, fn.Rets)
	assert.Equal(t, "Entity:SetPos", fn.Address)
}

func TestFunction_AttributesWhenTitleHasNoSeparator(t *testing.T) {
	doc := mustParse(t, "print", "print", `
<function name="print" parent="Global">
	<realm>Client</realm>
	<rets><ret name="" type="string">Text.</ret></rets>
</function>`)

	fn := doc.Function().Function
	require.NotNil(t, fn)
	assert.Equal(t, "Global", fn.Parent)
	assert.Equal(t, "print", fn.Name)
	assert.Equal(t, wiki.RealmClient, fn.Realm)
	require.Len(t, fn.Rets, 1)
	assert.Equal(t, "string", fn.Rets[0].Type)
}

func TestFunction_Arguments(t *testing.T) {
	doc := mustParse(t, "util.Thing", "util.Thing", `
<function>
	<args>
		<arg type="number">Unnamed.</arg>
		<arg name="size = 5" type="number">Size.</arg>
		<arg name="flags" type="number" default="0">Flags.</arg>
		<arg name="fmt" type="string" default="`+"`nil`"+`">Format.</arg>
		<arg name="dock" type="number">One of <page>Enums/DOCK</page>.</arg>
	</args>
</function>`)

	fn := doc.Function().Function
	require.NotNil(t, fn)
	require.Len(t, fn.Args, 5)

	assert.Equal(t, UnnamedArgument, fn.Args[0].Name)

	assert.Equal(t, "size", fn.Args[1].Name)
	require.NotNil(t, fn.Args[1].Default)
	assert.Equal(t, "5", *fn.Args[1].Default)

	require.NotNil(t, fn.Args[2].Default)
	assert.Equal(t, "0", *fn.Args[2].Default)

	require.NotNil(t, fn.Args[3].Default)
	assert.Equal(t, "`nil`", *fn.Args[3].Default)

	assert.Equal(t, "One of <page>Enums/DOCK</page>.", fn.Args[4].Description)
}

func TestFunction_GenericReturnType(t *testing.T) {
	doc := mustParse(t, "player.GetAll", "/gmod/player.GetAll", `
<function name="GetAll" parent="player" type="libraryfunc">
	<realm>Shared</realm>
	<rets><ret name="" type="table<Player>">The players.</ret></rets>
</function>`)

	fn := doc.Function().Function
	require.NotNil(t, fn)
	require.Len(t, fn.Rets, 1)
	assert.Equal(t, "table<Player>", fn.Rets[0].Type)
	assert.Equal(t, "The players.", fn.Rets[0].Description)
}

func TestFunction_HookShape(t *testing.T) {
	doc := mustParse(t, "GM:PlayerSpawn", "GM:PlayerSpawn", `
<hook name="PlayerSpawn" parent="GM">
	<realm>Server</realm>
	<args><arg name="ply" type="Player">The player.</arg></args>
</hook>`)

	fn := doc.Function().Function
	require.NotNil(t, fn)
	assert.Equal(t, "GM", fn.Parent)
	assert.Equal(t, "PlayerSpawn", fn.Name)
	assert.Equal(t, wiki.RealmServer, fn.Realm)
}

func TestFunction_Fallback(t *testing.T) {
	t.Run("zero argument function", func(t *testing.T) {
		doc := mustParse(t, "math.pi_func", "math.pi_func", `Returns something.`)
		m := doc.Function()
		require.NotNil(t, m.Function)
		assert.Equal(t, "math", m.Function.Parent)
		assert.Equal(t, "pi_func", m.Function.Name)
		assert.Empty(t, m.Function.Args)
		assert.Equal(t, wiki.RealmShared, m.Function.Realm)
	})

	t.Run("not a function", func(t *testing.T) {
		doc := mustParse(t, "math.pi", "math.pi", "# Not a function\nThe constant.")
		m := doc.Function()
		require.NotNil(t, m.Item)
		assert.Equal(t, "math", m.Item.Parent)
		assert.Equal(t, "pi", m.Item.Name)
		assert.Equal(t, "any", m.Item.Type)
	})

	t.Run("title without separator", func(t *testing.T) {
		doc := mustParse(t, "Standalone", "Standalone", `Text.`)
		m := doc.Function()
		require.NotNil(t, m.Function)
		assert.Equal(t, "", m.Function.Parent)
		assert.Equal(t, "Standalone", m.Function.Name)
	})
}

func TestClass(t *testing.T) {
	t.Run("type tag", func(t *testing.T) {
		doc := mustParse(t, "Entity", "Entity", `<type name="Entity" category="classfunc" is="class"><summary>An entity.</summary></type>`)
		col := doc.Class()
		assert.Equal(t, "Entity", col.Name)
		assert.Equal(t, "An entity.", col.Description)
		assert.False(t, col.Library)
		assert.False(t, col.IsHookContainer)
	})

	t.Run("panel with attribute parent", func(t *testing.T) {
		doc := mustParse(t, "DButton", "DButton", `<panel parent="DLabel"><description>A button.</description></panel>`)
		col := doc.Class()
		assert.Equal(t, "DButton", col.Name)
		assert.Equal(t, "DLabel", col.Parent)
		assert.Equal(t, "A button.", col.Description)
	})

	t.Run("panel with parent node", func(t *testing.T) {
		doc := mustParse(t, "Material Select", "Material_Select", `<panel><parent>DPanel</parent></panel>`)
		col := doc.Class()
		assert.Equal(t, "Material_Select", col.Name)
		assert.Equal(t, "DPanel", col.Parent)
	})

	t.Run("panel default parent", func(t *testing.T) {
		doc := mustParse(t, "DFrame", "DFrame", `<panel></panel>`)
		assert.Equal(t, DefaultPanelParent, doc.Class().Parent)
	})

	t.Run("hook index page", func(t *testing.T) {
		doc := mustParse(t, "GM_Hooks", "GM_Hooks", `Hooks of the gamemode.`)
		col := doc.Class()
		assert.Equal(t, "GM", col.Name)
		assert.True(t, col.IsHookContainer)
	})

	t.Run("hook index page with type tag", func(t *testing.T) {
		doc := mustParse(t, "WEAPON_hooks", "WEAPON_Hooks", `<type name="WEAPON" is="class"><summary>Weapon hooks.</summary></type>`)
		col := doc.Class()
		assert.Equal(t, "WEAPON", col.Name)
		assert.True(t, col.IsHookContainer)
	})
}

func TestLibrary(t *testing.T) {
	doc := mustParse(t, "math", "math", `<type name="math" category="libraryfunc" is="library"><summary>Math helpers.</summary></type>`)
	col := doc.Library()
	assert.Equal(t, "math", col.Name)
	assert.True(t, col.Library)
	assert.Equal(t, "Math helpers.", col.Description)
}

func TestStruct(t *testing.T) {
	doc := mustParse(t, "HTTPRequest", "Structures/HTTPRequest", `
<structure>
	<realm>Shared</realm>
	<description>Request options.</description>
	<fields>
		<item name="url" type="string">The URL.</item>
		<item name="method" type="string" default="GET">Method.</item>
	</fields>
</structure>`)

	s := doc.Struct()
	assert.Equal(t, "HTTPRequest", s.Name)
	assert.Equal(t, wiki.RealmShared, s.Realm)
	assert.Equal(t, "Request options.", s.Description)
	require.Len(t, s.Items, 2)
	assert.Nil(t, s.Items[0].Default)
	require.NotNil(t, s.Items[1].Default)
	assert.Equal(t, "GET", *s.Items[1].Default)
}

func TestEnum(t *testing.T) {
	doc := mustParse(t, "DOCK", "Enums/DOCK", `
<enum>
	<realm>Client</realm>
	<description>Docking modes.</description>
	<items>
		<item key="NODOCK" value="0">No docking.</item>
		<item key="FILL" value="1">Fill.</item>
	</items>
</enum>`)

	e := doc.Enum()
	assert.Equal(t, "DOCK", e.Name)
	assert.Equal(t, wiki.RealmClient, e.Realm)
	require.Len(t, e.Items, 2)
	assert.Equal(t, wiki.EnumItem{Key: "NODOCK", Value: "0", Description: "No docking."}, e.Items[0])
}

func TestGameEvent(t *testing.T) {
	doc := mustParse(t, "player_spawn", "gameevent/player_spawn", `
<type name="player_spawn">
	<description>Called when a player spawns.</description>
	<fields>
		<item name="userid" type="number">The user id.</item>
		<item name="broken">No type.</item>
	</fields>
</type>`)

	ev := doc.GameEvent()
	assert.Equal(t, "player_spawn", ev.Name)
	assert.Equal(t, "Called when a player spawns.", ev.Description)
	require.Len(t, ev.Fields, 1)
	assert.Equal(t, "userid", ev.Fields[0].Name)
}

func TestSplitTitle(t *testing.T) {
	parent, name, ok := SplitTitle("Entity:SetPos")
	assert.True(t, ok)
	assert.Equal(t, "Entity", parent)
	assert.Equal(t, "SetPos", name)

	parent, name, ok = SplitTitle("math.ease.InBack")
	assert.True(t, ok)
	assert.Equal(t, "math", parent)
	assert.Equal(t, "ease.InBack", name)

	_, _, ok = SplitTitle("Entity")
	assert.False(t, ok)

	assert.True(t, IsMemberTitle("GM:Think"))
	assert.False(t, IsMemberTitle("DButton"))
}
