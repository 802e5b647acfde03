package types

// VersionMetadata is the published metadata for one version of a
// package, as returned by the registry metadata provider.
type VersionMetadata struct {
	Version      string
	Dependencies map[string]string
	Tarball      string
	Integrity    string
	Deprecated   string
}

// Packument is the registry metadata document for a package: its full
// published version list plus per-version manifests.
type Packument struct {
	Name     string
	DistTags map[string]string
	Versions map[string]VersionMetadata
	// PinnedMajor is set by the caller when authoritative manifest
	// metadata (the resolver's overrides map) pins this package to a
	// specific major line. Nil means no pin.
	PinnedMajor *uint64
}
