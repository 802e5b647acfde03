package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depsentry/internal/types"
)

const policyFixture = `accept_risks: true
view_all_risks: true
include_unknown_origin: true
registry_url: "https://registry.internal.example.com"
`

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan-policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPolicy(t *testing.T) {
	adapter := NewPolicyFileAdapter()
	policy, err := adapter.LoadPolicy(writePolicy(t, policyFixture))
	require.NoError(t, err)

	want := types.ScanPolicy{
		AcceptRisks:          true,
		ViewAllRisks:         true,
		IncludeUnknownOrigin: true,
		RegistryURL:          "https://registry.internal.example.com",
	}
	assert.Equal(t, want, policy)
}

func TestLoadPolicyDefaultsWhenKeysAbsent(t *testing.T) {
	adapter := NewPolicyFileAdapter()
	policy, err := adapter.LoadPolicy(writePolicy(t, "include_unchanged: true\n"))
	require.NoError(t, err)
	assert.True(t, policy.IncludeUnchanged)
	assert.False(t, policy.AcceptRisks)
	assert.Empty(t, policy.RegistryURL)
}

func TestLoadPolicyMissingFile(t *testing.T) {
	adapter := NewPolicyFileAdapter()
	_, err := adapter.LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestLoadPolicyRejectsMalformedYAML(t *testing.T) {
	adapter := NewPolicyFileAdapter()
	_, err := adapter.LoadPolicy(writePolicy(t, "accept_risks: [not, a, bool]\n"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
