package mods

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/gmodts/pkg/catalog"
)

const sampleRules = `
- address: "Enums/DOCK"
  modifications:
    - type: rename_identifier
      name: DOCK
- address: "DFrame"
  modifications:
    - type: add_parent
      parent: EditablePanel
    - type: omit_parent_fields
      parent: EditablePanel
      omit: [Paint, Think]
    - type: add_field
      field:
        identifier: btnClose
        type: DButton
        optional: true
        doc: Close button.
- address: "Entity:GetNetworkVars"
  modifications:
    - type: modify_return
      new_type: Record<string, any>
- address: "hook"
  modifications:
    - type: inner_namespace
      prefix: Run
`

func TestParse(t *testing.T) {
	db, err := Parse([]byte(sampleRules), "test.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"DFrame", "Entity:GetNetworkVars", "Enums/DOCK", "hook"}, db.Addresses())
	assert.Equal(t, 6, db.Len())

	assert.Equal(t, []Modification{RenameIdentifier{Name: "DOCK"}}, db.For("Enums/DOCK"))

	frame := db.For("DFrame")
	require.Len(t, frame, 3)
	assert.Equal(t, AddParent{Parent: "EditablePanel"}, frame[0])
	assert.Equal(t, OmitParentFields{Parent: "EditablePanel", Omit: []string{"Paint", "Think"}}, frame[1])
	assert.Equal(t, AddField{Field: catalog.Field{
		Identifier: "btnClose", Type: "DButton", Optional: true, DocComment: "Close button.",
	}}, frame[2])

	assert.Equal(t, []Modification{ModifyReturn{Type: "Record<string, any>"}}, db.For("Entity:GetNetworkVars"))
	assert.Equal(t, []Modification{InnerNamespace{Prefix: "Run"}}, db.For("hook"))
	assert.Empty(t, db.For("Unknown"))
}

func TestParse_InvalidRules(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing address", "- modifications: []", "address is required"},
		{"unknown type", "- address: A\n  modifications:\n    - type: nope", `unknown type "nope"`},
		{"rename without name", "- address: A\n  modifications:\n    - type: rename_identifier", "needs name"},
		{"argument without type", "- address: A\n  modifications:\n    - type: modify_argument\n      argument: x", "needs argument and new_type"},
		{"field without type", "- address: A\n  modifications:\n    - type: add_field\n      field: {identifier: x}", "needs field.identifier and field.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), "bad.yaml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRule))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("address: [unclosed"), "broken.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse broken.yaml")
}

func TestDefaults(t *testing.T) {
	db, err := Defaults()
	require.NoError(t, err)

	arg, ok := First[ModifyArgument](db.For("Entity:SetBodyGroups"))
	require.True(t, ok)
	assert.Equal(t, "subModelIds", arg.Argument)
	assert.Equal(t, "SubModelIds", arg.Type)
	assert.Nil(t, arg.Default)

	hands, ok := First[ModifyArgument](db.For("player_manager.AddValidHands"))
	require.True(t, ok)
	require.NotNil(t, hands.Default)
	assert.Equal(t, "0000000", *hands.Default)
}

func TestLoadAndMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mods.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- address: "Entity:SetBodyGroups"
  modifications:
    - type: modify_return
      new_type: Entity
`), 0o644))

	user, err := Load(path)
	require.NoError(t, err)

	defaults, err := Defaults()
	require.NoError(t, err)

	merged := Merge(defaults, user)
	ms := merged.For("Entity:SetBodyGroups")
	require.Len(t, ms, 2)
	assert.Equal(t, KindModifyArgument, ms[0].Kind())
	assert.Equal(t, KindModifyReturn, ms[1].Kind())

	// Inputs are untouched.
	assert.Len(t, defaults.For("Entity:SetBodyGroups"), 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOfAndFirst(t *testing.T) {
	ms := []Modification{
		AddParent{Parent: "A"},
		RenameIdentifier{Name: "X"},
		AddParent{Parent: "B"},
	}

	assert.Equal(t, []AddParent{{Parent: "A"}, {Parent: "B"}}, Of[AddParent](ms))
	assert.Nil(t, Of[InnerNamespace](ms))

	_, ok := First[ModifyReturn](ms)
	assert.False(t, ok)

	var nilDB *DB
	assert.Nil(t, nilDB.For("anything"))
	assert.Empty(t, New(nil).Addresses())
}
