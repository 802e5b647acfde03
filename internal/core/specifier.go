package core

import (
	"strings"

	"github.com/package-url/packageurl-go"
)

// ParseSpecifier converts a raw package specifier token (name, name@range,
// or @scope/name@range) into a canonical package URL. The second return
// value is false for tokens that are not packages: empty strings and
// flag-like tokens with a leading dash. Malformed flag-like input never
// produces an error; it is silently skipped.
func ParseSpecifier(token string) (packageurl.PackageURL, bool) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" || strings.HasPrefix(trimmed, "-") {
		return packageurl.PackageURL{}, false
	}
	name, version := splitNameVersion(trimmed)
	if name == "" {
		return packageurl.PackageURL{}, false
	}
	namespace := ""
	if strings.HasPrefix(name, "@") {
		parts := strings.SplitN(name, "/", 2)
		if len(parts) != 2 || parts[1] == "" {
			return packageurl.PackageURL{}, false
		}
		namespace = parts[0]
		name = parts[1]
	}
	purl := packageurl.NewPackageURL(packageurl.TypeNPM, namespace, name, version, nil, "")
	return *purl, true
}

// PurlID returns the name@version identifier for a purl, including the
// scope when present. Purls without a version yield a bare name.
func PurlID(purl packageurl.PackageURL) string {
	name := purl.Name
	if purl.Namespace != "" {
		name = purl.Namespace + "/" + purl.Name
	}
	if purl.Version == "" {
		return name
	}
	return name + "@" + purl.Version
}

// splitNameVersion splits on the last "@" that is not the scope marker.
func splitNameVersion(token string) (string, string) {
	at := strings.LastIndex(token, "@")
	if at <= 0 {
		return token, ""
	}
	return token[:at], token[at+1:]
}
