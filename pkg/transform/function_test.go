package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/gmodts/pkg/catalog"
	"github.com/gnana997/gmodts/pkg/mods"
	"github.com/gnana997/gmodts/pkg/util"
	"github.com/gnana997/gmodts/pkg/wiki"
)

func newTestTransformer(rules map[string][]mods.Modification) *Transformer {
	return New(mods.New(rules), util.Discard())
}

func TestFunction_SetPos(t *testing.T) {
	tr := newTestTransformer(nil)

	fn := tr.Function(wiki.Function{
		Name:    "SetPos",
		Parent:  "Entity",
		Realm:   wiki.RealmShared,
		Args:    []wiki.Argument{{Name: "pos", Type: "Vector", Description: "The new position."}},
		Address: "Entity:SetPos",
	})

	assert.Equal(t, "SetPos", fn.Identifier)
	assert.Equal(t, "void", fn.Ret)
	require.Len(t, fn.Args, 1)
	assert.Equal(t, catalog.Argument{Identifier: "pos", Type: "Vector"}, fn.Args[0])
	assert.False(t, fn.Optional)
}

func TestFunction_MissingName(t *testing.T) {
	fn := newTestTransformer(nil).Function(wiki.Function{Address: "broken"})
	assert.Equal(t, MissingIdentifier, fn.Identifier)
}

func TestArgs(t *testing.T) {
	t.Run("enum hint upgrades any", func(t *testing.T) {
		args := newTestTransformer(nil).Args(wiki.Function{
			Args: []wiki.Argument{{Name: "align", Type: "any", Description: "See <page>Enums/TEXT_ALIGN</page>"}},
		})
		require.Len(t, args, 1)
		assert.Equal(t, "TEXT_ALIGN", args[0].Type)
	})

	t.Run("defaults", func(t *testing.T) {
		args := newTestTransformer(nil).Args(wiki.Function{
			Args: []wiki.Argument{
				{Name: "a", Type: "number", Default: catalog.StringPtr("5")},
				{Name: "b", Type: "table", Default: catalog.StringPtr("`{}`")},
				{Name: "c", Type: "string", Default: catalog.StringPtr("&quot;x&quot;")},
			},
		})
		require.Len(t, args, 3)
		assert.Equal(t, "5", *args[0].Default)
		assert.Equal(t, "nil", *args[1].Default)
		assert.Equal(t, "any", args[1].Type)
		assert.Equal(t, `"x"`, *args[2].Default)
	})

	t.Run("modify argument rule", func(t *testing.T) {
		tr := newTestTransformer(map[string][]mods.Modification{
			"Entity:SetBodyGroups": {mods.ModifyArgument{Argument: "subModelIds", Type: "SubModelIds"}},
		})
		args := tr.Args(wiki.Function{
			Name:    "SetBodyGroups",
			Parent:  "Entity",
			Args:    []wiki.Argument{{Name: "subModelIds", Type: "string"}},
			Address: "Entity:SetBodyGroups",
		})
		require.Len(t, args, 1)
		assert.Equal(t, "SubModelIds", args[0].Type)
	})

	t.Run("argument callback", func(t *testing.T) {
		args := newTestTransformer(nil).Args(wiki.Function{
			Args: []wiki.Argument{{
				Name:        "callback",
				Type:        "function",
				Description: `Called per player.<callback><arg name="ply" type="Player">p</arg></callback>`,
			}},
		})
		require.Len(t, args, 1)
		assert.Equal(t, "(ply: Player) => void", args[0].Type)
	})

	t.Run("function level callback only for callables", func(t *testing.T) {
		args := newTestTransformer(nil).Args(wiki.Function{
			Description: `Runs later.<callback><arg name="ok" type="boolean">x</arg></callback>`,
			Args: []wiki.Argument{
				{Name: "name", Type: "string"},
				{Name: "func", Type: "function"},
			},
		})
		require.Len(t, args, 2)
		assert.Equal(t, "string", args[0].Type)
		assert.Equal(t, "(ok: boolean) => void", args[1].Type)
	})

	t.Run("vararg", func(t *testing.T) {
		args := newTestTransformer(nil).Args(wiki.Function{
			Args: []wiki.Argument{
				{Name: "...", Type: "vararg"},
			},
		})
		require.Len(t, args, 1)
		assert.Equal(t, "...vararg", args[0].Identifier)
		assert.Equal(t, "any[]", args[0].Type)
	})

	t.Run("reserved name", func(t *testing.T) {
		args := newTestTransformer(nil).Args(wiki.Function{
			Args: []wiki.Argument{{Name: "class", Type: "string"}},
		})
		assert.Equal(t, "class_", args[0].Identifier)
	})
}

func TestReturns(t *testing.T) {
	tr := newTestTransformer(map[string][]mods.Modification{
		"util.Patched": {mods.ModifyReturn{Type: "LuaIterable<Player>"}},
	})

	assert.Equal(t, "void", tr.Returns(wiki.Function{}))
	assert.Equal(t, "any", tr.Returns(wiki.Function{Rets: []wiki.Return{{Type: "table"}}}))
	assert.Equal(t, "any", tr.Returns(wiki.Function{Rets: []wiki.Return{{Type: "vararg"}}}))
	assert.Equal(t, "DOCK", tr.Returns(wiki.Function{Rets: []wiki.Return{{Type: "number", Description: "<page>Enums/DOCK</page>"}}}))
	assert.Equal(t, "LuaMultiReturn<[number, string]>", tr.Returns(wiki.Function{
		Rets: []wiki.Return{{Type: "number"}, {Type: "string"}},
	}))
	assert.Equal(t, "LuaIterable<Player>", tr.Returns(wiki.Function{
		Rets:    []wiki.Return{{Type: "table"}},
		Address: "util.Patched",
	}))
}

func TestFunctionDoc(t *testing.T) {
	fn := newTestTransformer(nil).Function(wiki.Function{
		Name:        "SetSize",
		Realm:       wiki.RealmClient,
		Description: "Sets the size.",
		Args: []wiki.Argument{
			{Name: "w", Type: "number", Description: "Width."},
			{Name: "h", Type: "number", Description: "Height.", Default: catalog.StringPtr("5")},
		},
		Rets: []wiki.Return{{Type: "boolean"}},
	})

	assert.Contains(t, fn.DocComment, "[Client]")
	assert.Contains(t, fn.DocComment, "Sets the size.")
	assert.Contains(t, fn.DocComment, "@param w - Width.")
	assert.Contains(t, fn.DocComment, "@param [h = 5] - Height.")
	assert.NotContains(t, fn.DocComment, "@returns")
}
