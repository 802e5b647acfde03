package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"depsentry/internal/shared"
	"depsentry/internal/types"
)

// RegistryHTTPAdapter fetches packument documents from the package
// registry metadata endpoint.
type RegistryHTTPAdapter struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

const defaultRegistryTimeout = 30 * time.Second

func NewRegistryHTTPAdapter(endpoint string, timeoutSec int) RegistryHTTPAdapter {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = shared.DefaultRegistryURL
	}
	timeout := defaultRegistryTimeout
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}
	return RegistryHTTPAdapter{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Timeout:  timeout,
	}
}

type packumentJSON struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]versionManifest `json:"versions"`
}

type versionManifest struct {
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
	Deprecated   string            `json:"deprecated"`
	Dist         distJSON          `json:"dist"`
}

type distJSON struct {
	Tarball   string `json:"tarball"`
	Integrity string `json:"integrity"`
}

func (a RegistryHTTPAdapter) Packument(ctx context.Context, name string) (types.Packument, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return types.Packument{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package name is required")
	}

	requestCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	requestURL := fmt.Sprintf("%s/%s", a.Endpoint, url.PathEscape(trimmed))
	request, err := http.NewRequestWithContext(requestCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return types.Packument{}, err
	}
	request.Header.Set("Accept", "application/json")

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(request)
	if err != nil {
		return types.Packument{}, err
	}
	defer response.Body.Close()
	if response.StatusCode == http.StatusNotFound {
		return types.Packument{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("package %s not found in registry", trimmed))
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return types.Packument{}, shared.HTTPStatusErrorWithBody(response.StatusCode, requestURL, string(body))
	}

	var parsed packumentJSON
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return types.Packument{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode packument").
			WithCause(err)
	}

	packument := types.Packument{
		Name:     parsed.Name,
		DistTags: parsed.DistTags,
		Versions: make(map[string]types.VersionMetadata, len(parsed.Versions)),
	}
	for version, manifest := range parsed.Versions {
		packument.Versions[version] = types.VersionMetadata{
			Version:      version,
			Dependencies: manifest.Dependencies,
			Tarball:      manifest.Dist.Tarball,
			Integrity:    manifest.Dist.Integrity,
			Deprecated:   manifest.Deprecated,
		}
	}
	return packument, nil
}
