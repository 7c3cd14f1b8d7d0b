package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/gmodts/pkg/wiki"
)

func TestTransformDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"page link", "Hello <page>Entity:SetPos</page> world", "Hello Entity:SetPos world"},
		{"page text attribute", `See <page text="the hook">GM:Think</page>.`, "See the hook."},
		{"note", "Text.<note>Careful</note>", "Text.\n\nNote: Careful"},
		{"warning", "<warning>Slow</warning>", "Warning: Slow"},
		{"deprecated", "<deprecated>Use X</deprecated>", "@deprecated Use X"},
		{"key", "Press <key>E</key>", "Press `E`"},
		{"blank lines collapse", "a\n\n\n\nb", "a\n\nb"},
		{"comment terminator escaped", "a */ b", `a *\/ b`},
		{"entities", "a &lt; b &amp; c", "a < b & c"},
		{"unknown tags stripped", "<rendercontext hook=\"false\"></rendercontext>Draws", "Draws"},
		{"callback removed", "Sets it.<callback><arg name=\"a\" type=\"number\">x</arg></callback>", "Sets it."},
		{"trailing whitespace", "line   \nnext", "line\nnext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransformDescription(tt.in))
		})
	}
}

func TestTransformDescription_Code(t *testing.T) {
	out := TransformDescription("Example:<code>print(1)</code>")
	assert.Contains(t, out, "```lua\nprint(1)\n```")
}

func TestRealmBadge(t *testing.T) {
	assert.Equal(t, "[Client]", RealmBadge(wiki.RealmClient))
	assert.Equal(t, "[Shared]", RealmBadge(wiki.RealmShared))
	assert.Equal(t, "", RealmBadge(""))
}

func TestJoinDoc(t *testing.T) {
	assert.Equal(t, "a\n\nb", joinDoc("a", "", "  ", "b"))
	assert.Equal(t, "", joinDoc("", " "))
}
