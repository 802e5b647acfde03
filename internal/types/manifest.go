package types

// ManifestDependency is one name/range pair from a manifest dependency
// map, in declaration order.
type ManifestDependency struct {
	Name  string
	Range string
}

// Manifest is the subset of a package manifest consumed by an
// install-mode scan. Dependency lists preserve declaration order so
// the change set is emitted deterministically; duplicates across lists
// are permitted and deduplicated downstream at the purl level.
type Manifest struct {
	Name                 string
	Version              string
	Dependencies         []ManifestDependency
	DevDependencies      []ManifestDependency
	OptionalDependencies []ManifestDependency
	PeerDependencies     []ManifestDependency
	Overrides            map[string]string
}

// Field returns the dependency list for the given manifest field.
func (m Manifest) Field(field DependencyField) []ManifestDependency {
	switch field {
	case DependencyFieldProd:
		return m.Dependencies
	case DependencyFieldDev:
		return m.DevDependencies
	case DependencyFieldOptional:
		return m.OptionalDependencies
	case DependencyFieldPeer:
		return m.PeerDependencies
	default:
		return nil
	}
}
