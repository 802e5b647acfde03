package ports

import "depsentry/internal/types"

type ManifestPort interface {
	LoadManifest(path string) (types.Manifest, error)
}
