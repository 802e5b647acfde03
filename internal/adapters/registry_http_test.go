package adapters

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depsentry/internal/shared"
)

const packumentFixture = `{
  "name": "lodash",
  "dist-tags": {"latest": "4.17.21"},
  "versions": {
    "4.17.11": {
      "version": "4.17.11",
      "dist": {"tarball": "https://registry.npmjs.org/lodash/-/lodash-4.17.11.tgz", "integrity": "sha512-old"}
    },
    "4.17.21": {
      "version": "4.17.21",
      "dependencies": {"leftpad": "^1.0.0"},
      "deprecated": "",
      "dist": {"tarball": "https://registry.npmjs.org/lodash/-/lodash-4.17.21.tgz", "integrity": "sha512-new"}
    }
  }
}`

func TestPackumentFetch(t *testing.T) {
	var capturedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, packumentFixture)
	}))
	defer server.Close()

	adapter := NewRegistryHTTPAdapter(server.URL, 5)
	packument, err := adapter.Packument(context.Background(), "lodash")
	require.NoError(t, err)

	assert.Equal(t, "/lodash", capturedPath)
	assert.Equal(t, "lodash", packument.Name)
	assert.Equal(t, "4.17.21", packument.DistTags["latest"])
	require.Contains(t, packument.Versions, "4.17.21")
	assert.Equal(t, "sha512-new", packument.Versions["4.17.21"].Integrity)
	assert.Equal(t, map[string]string{"leftpad": "^1.0.0"}, packument.Versions["4.17.21"].Dependencies)
}

func TestPackumentScopedNameIsPathEscaped(t *testing.T) {
	var capturedURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedURI = r.RequestURI
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"name": "@types/node", "versions": {}}`)
	}))
	defer server.Close()

	adapter := NewRegistryHTTPAdapter(server.URL, 5)
	_, err := adapter.Packument(context.Background(), "@types/node")
	require.NoError(t, err)
	assert.Equal(t, "/@types%2Fnode", capturedURI)
}

func TestPackumentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewRegistryHTTPAdapter(server.URL, 5)
	_, err := adapter.Packument(context.Background(), "no-such-package")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestPackumentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "upstream down")
	}))
	defer server.Close()

	adapter := NewRegistryHTTPAdapter(server.URL, 5)
	_, err := adapter.Packument(context.Background(), "lodash")
	require.Error(t, err)
}

func TestPackumentEmptyName(t *testing.T) {
	adapter := NewRegistryHTTPAdapter("http://unused.invalid", 5)
	_, err := adapter.Packument(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestNewRegistryHTTPAdapterDefaults(t *testing.T) {
	adapter := NewRegistryHTTPAdapter("", 0)
	assert.Equal(t, shared.DefaultRegistryURL, adapter.Endpoint)
	assert.Equal(t, defaultRegistryTimeout, adapter.Timeout)
}
