package cli

import (
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depsentry/internal/app"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"scan", "exec", "fix"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestScanCommandFlags(t *testing.T) {
	cmd := newScanCommand()
	flags := []string{
		"manifest", "ideal-graph", "actual-graph", "policy", "subcommand",
		"dry-run", "accept-risks", "view-all-risks",
		"include-unchanged", "include-unknown-origin",
	}
	for _, name := range flags {
		flag := cmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

func TestExecCommandFlags(t *testing.T) {
	cmd := newExecCommand()
	assert.NotNil(t, cmd.Flags().Lookup("policy"))
	assert.NotNil(t, cmd.Flags().Lookup("accept-risks"))
	assert.NotNil(t, cmd.Flags().Lookup("view-all-risks"))
	assert.NotNil(t, cmd.Flags().Lookup("dry-run"))
}

func TestFixCommandFlags(t *testing.T) {
	cmd := newFixCommand()
	for _, name := range []string{"graph", "output", "target", "first-patched"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	assert.Equal(t, "explicit", resolveString(nil, "explicit", "test_key", "test-flag"))
	assert.Equal(t, "", resolveString(nil, "", "test_key", "test-flag"))
}

func TestResolveBool(t *testing.T) {
	assert.True(t, resolveBool(nil, true, "test_key", "test-flag"))
	assert.False(t, resolveBool(nil, false, "test_key", "test-flag"))
}

func TestParseFixTargets(t *testing.T) {
	targets, err := parseFixTargets([]string{"lodash=<4.17.21", "leftpad"}, "4.17.21")
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, app.FixTarget{Name: "lodash", VulnerableRange: "<4.17.21", FirstPatched: "4.17.21"}, targets[0])
	assert.Equal(t, app.FixTarget{Name: "leftpad", FirstPatched: "4.17.21"}, targets[1])

	_, err = parseFixTargets([]string{"=<1.0.0"}, "")
	require.Error(t, err)
}

// ---------- Exit code mapping ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{errInstallBlocked, exitCodeBlocked},
		{errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("bad input"), 2},
		{errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("missing"), 4},
		{errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("boom"), 5},
		{errors.New("plain"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, exitCodeForError(tt.err))
	}
}
