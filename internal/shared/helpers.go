// Package shared provides common utility functions used across multiple
// packages in the depsentry codebase.
package shared

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultRegistryURL is the default package registry consulted for
// origin filtering and packument lookups.
const DefaultRegistryURL = "https://registry.npmjs.org"

// SameOrigin reports whether two URLs share scheme and host. Malformed
// or empty URLs never match.
func SameOrigin(a string, b string) bool {
	ua, err := url.Parse(strings.TrimSpace(a))
	if err != nil || ua.Scheme == "" || ua.Host == "" {
		return false
	}
	ub, err := url.Parse(strings.TrimSpace(b))
	if err != nil || ub.Scheme == "" || ub.Host == "" {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}

// PackageID formats the name@version identifier used for alert lookups
// and deduplication.
func PackageID(name string, version string) string {
	return fmt.Sprintf("%s@%s", name, version)
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}
