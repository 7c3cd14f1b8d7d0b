package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAgents replaces detection so that only the named binaries are on PATH
// and only the named paths exist. nil paths stats relative paths for real
// and hides every absolute one, keeping the user's own agent configs out.
func stubAgents(t *testing.T, binaries []string, paths []string) {
	t.Helper()
	origLookPath, origStat, origRun := lookPathFunc, statFunc, runAgentFunc
	t.Cleanup(func() {
		lookPathFunc, statFunc, runAgentFunc = origLookPath, origStat, origRun
	})

	lookPathFunc = func(name string) (string, error) {
		for _, b := range binaries {
			if b == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
	if paths == nil {
		statFunc = func(name string) (os.FileInfo, error) {
			if filepath.IsAbs(name) {
				return nil, os.ErrNotExist
			}
			return os.Stat(name)
		}
	} else {
		statFunc = func(name string) (os.FileInfo, error) {
			for _, p := range paths {
				if p == name {
					return nil, nil
				}
			}
			return nil, os.ErrNotExist
		}
	}
}

func serversIn(t *testing.T, data []byte, key string) map[string]any {
	t.Helper()
	var config map[string]any
	require.NoError(t, json.Unmarshal(data, &config))
	servers, ok := config[key].(map[string]any)
	require.True(t, ok, "missing %q", key)
	return servers
}

// --- JSON merge ---

func TestMergeServerEntry(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		out, err := mergeServerEntry(nil, "mcpServers", nil)
		require.NoError(t, err)
		entry := serversIn(t, out, "mcpServers")["gmodts"].(map[string]any)
		assert.Equal(t, "gmodts", entry["command"])
		assert.Equal(t, []any{"serve"}, entry["args"])
		assert.Equal(t, byte('\n'), out[len(out)-1])
	})

	t.Run("keeps other servers", func(t *testing.T) {
		out, err := mergeServerEntry([]byte(`{"mcpServers": {"other": {"command": "other"}}}`), "mcpServers", nil)
		require.NoError(t, err)
		servers := serversIn(t, out, "mcpServers")
		assert.Contains(t, servers, "other")
		assert.Contains(t, servers, "gmodts")
	})

	t.Run("already configured", func(t *testing.T) {
		out, err := mergeServerEntry([]byte(`{"mcpServers": {"gmodts": {"command": "gmodts"}}}`), "mcpServers", nil)
		assert.NoError(t, err)
		assert.Nil(t, out)
	})

	t.Run("vscode format", func(t *testing.T) {
		out, err := mergeServerEntry(nil, "servers", map[string]string{"type": "stdio"})
		require.NoError(t, err)
		entry := serversIn(t, out, "servers")["gmodts"].(map[string]any)
		assert.Equal(t, "stdio", entry["type"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := mergeServerEntry([]byte("not json"), "mcpServers", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON")
	})
}

// --- Prompts ---

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"\n", true},
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"", true},
	}
	for _, tt := range tests {
		r := bufio.NewReader(strings.NewReader(tt.input))
		assert.Equal(t, tt.want, promptYesNo(r, io.Discard, "Continue?"), "input %q", tt.input)
	}
}

func TestPromptScope(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1\n", "project"},
		{"2\n", "user"},
		{"3\n", ""},
		{"\n", "project"},
		{"", "project"},
	}
	for _, tt := range tests {
		r := bufio.NewReader(strings.NewReader(tt.input))
		assert.Equal(t, tt.want, promptScope(r, io.Discard, "Claude Code"), "input %q", tt.input)
	}
}

// --- Detection ---

func TestDetectAgents(t *testing.T) {
	t.Run("cli on path", func(t *testing.T) {
		stubAgents(t, []string{"claude"}, []string{})
		detected := detectAgents()
		require.Len(t, detected, 1)
		assert.Equal(t, "claude_code", detected[0].Def.ID)
	})

	t.Run("none", func(t *testing.T) {
		stubAgents(t, nil, []string{})
		assert.Empty(t, detectAgents())
	})

	t.Run("file based", func(t *testing.T) {
		stubAgents(t, nil, []string{".vscode"})
		detected := detectAgents()
		require.Len(t, detected, 1)
		assert.Equal(t, "vscode_copilot", detected[0].Def.ID)
		assert.Equal(t, filepath.Join(".vscode", "mcp.json"), detected[0].ResolvedConfig)
	})
}

// --- End to end ---

func TestExecuteSetup_NoAgents(t *testing.T) {
	stubAgents(t, nil, []string{})

	var w bytes.Buffer
	executeSetup(strings.NewReader(""), &w, setupOptions{})
	assert.Contains(t, w.String(), "No supported AI agents detected.")
}

func TestExecuteSetup_AutoFileAgent(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.MkdirAll(".vscode", 0o755))
	stubAgents(t, nil, nil)

	var w bytes.Buffer
	executeSetup(strings.NewReader(""), &w, setupOptions{auto: true})

	data, err := os.ReadFile(filepath.Join(".vscode", "mcp.json"))
	require.NoError(t, err)
	entry := serversIn(t, data, "servers")["gmodts"].(map[string]any)
	assert.Equal(t, "gmodts", entry["command"])
	assert.Equal(t, "stdio", entry["type"])
	assert.Contains(t, w.String(), "VS Code Copilot configured")

	// A second run finds the entry and leaves it alone.
	w.Reset()
	executeSetup(strings.NewReader(""), &w, setupOptions{auto: true})
	assert.Contains(t, w.String(), "already configured")
}

func TestExecuteSetup_CLIAgentPromptsForScope(t *testing.T) {
	t.Chdir(t.TempDir())
	stubAgents(t, []string{"claude"}, []string{})

	var gotArgs []string
	runAgentFunc = func(binary string, args []string, _ io.Writer) error {
		gotArgs = append([]string{binary}, args...)
		return nil
	}

	var w bytes.Buffer
	executeSetup(strings.NewReader("y\n2\n"), &w, setupOptions{})

	assert.Equal(t, []string{"claude", "mcp", "add", "--scope", "user", "gmodts", "--", "gmodts", "serve"}, gotArgs)
	assert.Contains(t, w.String(), "Claude Code configured (scope: user)")
}

func TestConfigureFileAgent(t *testing.T) {
	dir := t.TempDir()

	fresh := filepath.Join(dir, "sub", "mcp.json")
	require.NoError(t, configureFileAgent(AgentDef{ServersKey: "mcpServers"}, fresh))
	data, err := os.ReadFile(fresh)
	require.NoError(t, err)
	assert.Contains(t, serversIn(t, data, "mcpServers"), "gmodts")

	existing := filepath.Join(dir, "mcp.json")
	require.NoError(t, os.WriteFile(existing, []byte(`{"mcpServers": {"other": {"command": "other"}}}`), 0o644))
	require.NoError(t, configureFileAgent(AgentDef{ServersKey: "mcpServers"}, existing))
	data, err = os.ReadFile(existing)
	require.NoError(t, err)
	servers := serversIn(t, data, "mcpServers")
	assert.Contains(t, servers, "other")
	assert.Contains(t, servers, "gmodts")
}
