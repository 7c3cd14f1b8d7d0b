package queries

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/gmodts/pkg/parser"
)

func setupTest(t *testing.T) *QueryManager {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	pm := parser.NewParserManager(logger)
	qm := NewQueryManager(pm, logger)

	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return qm
}

func memberNames(members []Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

func TestQueryCompilation(t *testing.T) {
	qm := setupTest(t)

	for _, qtype := range []QueryType{QueryTypeInterfaceMembers, QueryTypeNamespaceMembers, QueryTypeErrors} {
		t.Run(qtype.String(), func(t *testing.T) {
			query, err := qm.GetQuery(qtype)
			require.NoError(t, err)
			require.NotNil(t, query)

			again, err := qm.GetQuery(qtype)
			require.NoError(t, err)
			assert.Same(t, query, again, "compiled queries are cached")
		})
	}

	_, err := qm.GetQuery(QueryType(99))
	assert.Error(t, err)
}

func TestInterfaceMembers(t *testing.T) {
	qm := setupTest(t)

	members, err := qm.InterfaceMembers(`/**
 * Whether the button is held down.
 */
Depressed?: boolean;

DoClick?: (this: DButton, val?: any) => void;
IsHovered(): boolean
"quoted-key": string;
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"Depressed", "DoClick", "IsHovered", "quoted-key"}, memberNames(members))
	assert.Equal(t, "/**\n * Whether the button is held down.\n */\nDepressed?: boolean;", members[0].Text)
	assert.Equal(t, "DoClick?: (this: DButton, val?: any) => void;", members[1].Text)
	assert.Equal(t, "IsHovered(): boolean;", members[2].Text, "a missing separator is added")
	assert.Equal(t, uint32(1), members[0].Line, "a member starts at its doc comment")
	assert.Equal(t, uint32(6), members[1].Line)
	assert.Equal(t, uint32(7), members[2].Line)
}

func TestInterfaceMembers_IgnoresNestedObjectTypes(t *testing.T) {
	qm := setupTest(t)

	members, err := qm.InterfaceMembers(`Options: { width: number; height: number };`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Options"}, memberNames(members))
}

func TestNamespaceMembers(t *testing.T) {
	qm := setupTest(t)

	members, err := qm.NamespaceMembers(`// Adds a hook.
declare function Add(name: string, id: string, cb: Function): void;

const MAX_HOOKS: number;

namespace inner {
    function Nested(): void;
}
`)
	require.NoError(t, err)

	assert.Equal(t, []string{"Add", "MAX_HOOKS", "inner"}, memberNames(members), "nested declarations are not members")
	assert.Equal(t, "// Adds a hook.\nfunction Add(name: string, id: string, cb: Function): void;", members[0].Text)
	assert.Equal(t, "const MAX_HOOKS: number;", members[1].Text)
	assert.Equal(t, []uint32{1, 4, 6}, []uint32{members[0].Line, members[1].Line, members[2].Line})
}

func TestMembers_SyntaxError(t *testing.T) {
	qm := setupTest(t)

	_, err := qm.InterfaceMembers("Broken?: ;\n")
	require.Error(t, err)

	var syntaxErrs SyntaxErrors
	require.True(t, errors.As(err, &syntaxErrs))
	require.NotEmpty(t, syntaxErrs)
	assert.Equal(t, uint32(1), syntaxErrs[0].Line, "lines are relative to the snippet")
}

func TestSyntaxErrors(t *testing.T) {
	qm := setupTest(t)

	errs, err := qm.SyntaxErrors([]byte("declare function print(...args: any[]): void;\n"))
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = qm.SyntaxErrors([]byte("interface A {\n    x: number;\n}\n\ninterface B {\n    y: ;\n}\n"))
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.GreaterOrEqual(t, errs[0].Line, uint32(5))
}

func TestConcurrentMembers(t *testing.T) {
	qm := setupTest(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			members, err := qm.InterfaceMembers("A: number;\nB(): void;")
			if err != nil {
				errs <- err
				return
			}
			if len(members) != 2 {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestParseCaptureName(t *testing.T) {
	category, field := parseCaptureName("member.name")
	assert.Equal(t, "member", category)
	assert.Equal(t, "name", field)

	category, field = parseCaptureName("error")
	assert.Equal(t, "error", category)
	assert.Equal(t, "", field)
}
