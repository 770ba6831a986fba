package credentials

import (
	"github.com/arloliu/ntfysub/subscription"
	"github.com/arloliu/ntfysub/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// Static is an in-memory credential store safe for concurrent use.
type Static struct {
	entries *xsync.Map[string, types.Credentials]
}

var _ types.CredentialStore = (*Static)(nil)

// NewStatic creates a store seeded with entries keyed by endpoint.
func NewStatic(entries map[string]types.Credentials) *Static {
	s := &Static{entries: xsync.NewMap[string, types.Credentials]()}
	for endpoint, creds := range entries {
		s.Set(endpoint, creds)
	}

	return s
}

// Get implements types.CredentialStore.
func (s *Static) Get(endpoint string) (types.Credentials, bool) {
	return s.entries.Load(subscription.NormalizeEndpoint(endpoint))
}

// Set stores credentials for endpoint, replacing any previous value.
func (s *Static) Set(endpoint string, creds types.Credentials) {
	s.entries.Store(subscription.NormalizeEndpoint(endpoint), creds)
}

// Delete removes the credentials for endpoint.
func (s *Static) Delete(endpoint string) {
	s.entries.Delete(subscription.NormalizeEndpoint(endpoint))
}

// Len returns the number of stored endpoints.
func (s *Static) Len() int {
	return s.entries.Size()
}
