package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"depsentry/internal/types"
)

// ManifestFileAdapter reads a package manifest from disk. Dependency
// maps are decoded through the token stream so declaration order is
// preserved; encoding/json map decoding would lose it.
type ManifestFileAdapter struct{}

func NewManifestFileAdapter() ManifestFileAdapter {
	return ManifestFileAdapter{}
}

func (a ManifestFileAdapter) LoadManifest(path string) (types.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read manifest %s", path)).
			WithCause(err)
	}
	manifest, err := parseManifest(data)
	if err != nil {
		return types.Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse manifest %s", path)).
			WithCause(err)
	}
	return manifest, nil
}

func parseManifest(data []byte) (types.Manifest, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(decoder, '{'); err != nil {
		return types.Manifest{}, err
	}

	var manifest types.Manifest
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return types.Manifest{}, err
		}
		key, ok := token.(string)
		if !ok {
			return types.Manifest{}, fmt.Errorf("unexpected token %v in manifest object", token)
		}
		switch types.DependencyField(key) {
		case types.DependencyFieldProd:
			manifest.Dependencies, err = decodeOrderedDeps(decoder)
		case types.DependencyFieldDev:
			manifest.DevDependencies, err = decodeOrderedDeps(decoder)
		case types.DependencyFieldOptional:
			manifest.OptionalDependencies, err = decodeOrderedDeps(decoder)
		case types.DependencyFieldPeer:
			manifest.PeerDependencies, err = decodeOrderedDeps(decoder)
		default:
			switch key {
			case "name":
				err = decoder.Decode(&manifest.Name)
			case "version":
				err = decoder.Decode(&manifest.Version)
			case "overrides":
				err = decoder.Decode(&manifest.Overrides)
			default:
				var skipped json.RawMessage
				err = decoder.Decode(&skipped)
			}
		}
		if err != nil {
			return types.Manifest{}, err
		}
	}
	if err := expectDelim(decoder, '}'); err != nil {
		return types.Manifest{}, err
	}
	return manifest, nil
}

func decodeOrderedDeps(decoder *json.Decoder) ([]types.ManifestDependency, error) {
	if err := expectDelim(decoder, '{'); err != nil {
		return nil, err
	}
	var deps []types.ManifestDependency
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		name, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in dependency map", token)
		}
		var spec string
		if err := decoder.Decode(&spec); err != nil {
			return nil, err
		}
		deps = append(deps, types.ManifestDependency{Name: name, Range: spec})
	}
	if err := expectDelim(decoder, '}'); err != nil {
		return nil, err
	}
	return deps, nil
}

func expectDelim(decoder *json.Decoder, want json.Delim) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	delim, ok := token.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, token)
	}
	return nil
}
