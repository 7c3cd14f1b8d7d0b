package overrides

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/gmodts/pkg/printer"
	"github.com/gnana997/gmodts/pkg/util"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func newStore(t *testing.T) (*DirStore, string, string) {
	t.Helper()
	root := t.TempDir()
	overridesDir := filepath.Join(root, "overrides")
	extrasDir := filepath.Join(root, "extras")

	s := NewDirStore(Config{
		OverridesDir: overridesDir,
		ExtrasDir:    extrasDir,
		Logger:       util.Discard(),
	})
	t.Cleanup(func() { s.Close() })
	return s, overridesDir, extrasDir
}

func TestOverride_InterfaceMember(t *testing.T) {
	s, overridesDir, _ := newStore(t)
	writeFile(t, overridesDir, "interface/Panel/SetPos.d.ts", "SetPos(x: number, y: number): void;\r\n")

	text, ok, err := s.Override(printer.KindInterface, "Panel", "SetPos")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/* Manual override from: interface/Panel/SetPos */\nSetPos(x: number, y: number): void;", text)

	_, ok, err = s.Override(printer.KindInterface, "Panel", "SetSize")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOverride_CaseInsensitive(t *testing.T) {
	s, overridesDir, _ := newStore(t)
	writeFile(t, overridesDir, "namespace/hook/call.d.ts", "declare function Call(name: string): any;")

	text, ok, err := s.Override(printer.KindNamespace, "HOOK", "Call")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, text, "/* Manual override from: namespace/HOOK/Call */")
}

func TestOverride_FolderFallbacks(t *testing.T) {
	s, overridesDir, _ := newStore(t)
	writeFile(t, overridesDir, "namespace/Entity/Fire.d.ts", "Fire(): void;")
	writeFile(t, overridesDir, "namespace/pairs.d.ts", "declare function pairs(t: any): any;")

	text, ok, err := s.Override(printer.KindInterface, "Entity", "Fire")
	require.NoError(t, err)
	require.True(t, ok, "interface lookups fall back to the namespace folder")
	assert.Contains(t, text, "namespace/Entity/Fire")

	_, ok, err = s.Override(printer.KindGlobal, "", "pairs")
	require.NoError(t, err)
	assert.True(t, ok, "global lookups fall back to the namespace folder")

	writeFile(t, overridesDir, "interface/hook/Add.d.ts", "Add(): void;")
	_, ok, err = s.Override(printer.KindNamespace, "hook", "Add")
	require.NoError(t, err)
	assert.False(t, ok, "namespace lookups never read the interface folder")
}

func TestOverride_GlobalAndEmptyFiles(t *testing.T) {
	s, overridesDir, _ := newStore(t)
	writeFile(t, overridesDir, "global/pairs.d.ts", "declare function pairs<T>(t: T[]): LuaIterable<T>;\n")
	writeFile(t, overridesDir, "global/ipairs.d.ts", "  \n")

	text, ok, err := s.Override(printer.KindGlobal, "", "pairs")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/* Manual override from: global/pairs */\ndeclare function pairs<T>(t: T[]): LuaIterable<T>;", text)

	_, ok, err = s.Override(printer.KindGlobal, "", "ipairs")
	require.NoError(t, err)
	assert.False(t, ok, "empty files are ignored")

	_, ok, err = s.Override(printer.KindInterface, "", "pairs")
	require.NoError(t, err)
	assert.False(t, ok, "member lookups need a container")
}

func TestOverride_MissingDirectories(t *testing.T) {
	s := NewDirStore(Config{
		OverridesDir: filepath.Join(t.TempDir(), "nope"),
		Logger:       util.Discard(),
	})
	defer s.Close()

	_, ok, err := s.Override(printer.KindInterface, "Panel", "SetPos")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.Roots())
}

func TestExtras_InterfaceMembers(t *testing.T) {
	s, _, extrasDir := newStore(t)
	writeFile(t, extrasDir, "interface/Vector/operator-methods.d.ts",
		"/** a + b */ add: LuaAdditionMethod<Vector, Vector>;\n/** -a */ unm: LuaNegationMethod<Vector>;\n")
	writeFile(t, extrasDir, "interface/DButton/extra.d.ts",
		"Depressed?: boolean;\nDoClick?: (this: DButton, val?: any) => void;\n")

	extras, err := s.Extras(printer.KindInterface, "Vector")
	require.NoError(t, err)
	require.Len(t, extras, 2)
	assert.Equal(t, printer.Extra{Name: "add", Text: "/** a + b */ add: LuaAdditionMethod<Vector, Vector>;"}, extras[0])
	assert.Equal(t, "unm", extras[1].Name)

	extras, err = s.Extras(printer.KindInterface, "dbutton")
	require.NoError(t, err)
	require.Len(t, extras, 2)
	assert.Equal(t, "Depressed", extras[0].Name)
	assert.Equal(t, "DoClick", extras[1].Name)

	extras, err = s.Extras(printer.KindNamespace, "DButton")
	require.NoError(t, err)
	assert.Empty(t, extras, "extras are keyed by kind")
}

func TestExtras_NamespaceMembersAcrossFiles(t *testing.T) {
	s, _, extrasDir := newStore(t)
	writeFile(t, extrasDir, "namespace/net/a.d.ts", "declare function Receive(name: string): void;\n")
	writeFile(t, extrasDir, "namespace/net/b.d.ts", "function Receive(): void;\nconst MAX: number;\n")

	extras, err := s.Extras(printer.KindNamespace, "net")
	require.NoError(t, err)
	require.Len(t, extras, 2, "the duplicate from the second file is dropped")
	assert.Equal(t, "Receive", extras[0].Name)
	assert.Equal(t, "function Receive(name: string): void;", extras[0].Text)
	assert.Equal(t, "MAX", extras[1].Name)
}

func TestExtras_SyntaxError(t *testing.T) {
	s, _, extrasDir := newStore(t)
	writeFile(t, extrasDir, "interface/Panel/broken.d.ts", "Broken?: ;\n")

	_, err := s.Extras(printer.KindInterface, "Panel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.d.ts")
}

func TestInvalidate_PicksUpChanges(t *testing.T) {
	s, overridesDir, _ := newStore(t)

	_, ok, err := s.Override(printer.KindInterface, "Panel", "SetPos")
	require.NoError(t, err)
	require.False(t, ok)

	file := writeFile(t, overridesDir, "interface/Panel/SetPos.d.ts", "SetPos(x: number): void;")
	s.Invalidate(file)

	text, ok, err := s.Override(printer.KindInterface, "Panel", "SetPos")
	require.NoError(t, err)
	require.True(t, ok, "new files are indexed after Invalidate")
	assert.Contains(t, text, "SetPos(x: number): void;")

	writeFile(t, overridesDir, "interface/Panel/SetPos.d.ts", "SetPos(x: number, y: number): void;")
	s.Invalidate(file)

	text, _, err = s.Override(printer.KindInterface, "Panel", "SetPos")
	require.NoError(t, err)
	assert.Contains(t, text, "SetPos(x: number, y: number): void;", "changed content is re-read")

	s.Reset()
	assert.Len(t, s.Roots(), 1)
}
