package subscription

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// ID returns a stable identifier for an endpoint/topic pair.
//
// The identifier is the 64-bit xxh3 hash of the normalized endpoint and topic in hex,
// so the same subscription always maps to the same ID across processes.
func ID(endpoint, topic string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(NormalizeEndpoint(endpoint)+"\x00"+topic))
}

// NormalizeEndpoint lowercases scheme and host and trims a trailing slash.
// Unparseable endpoints are returned with only the trailing slash trimmed.
func NormalizeEndpoint(endpoint string) string {
	u, err := ParseEndpoint(endpoint)
	if err != nil {
		return strings.TrimSuffix(endpoint, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	return u.String()
}
