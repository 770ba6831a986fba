package credentials

import "github.com/arloliu/ntfysub/types"

// Chain consults stores in order and returns the first match.
//
// The daemon layers the NATS-backed store over the static entries from its
// configuration file so operators can override credentials at runtime.
type Chain []types.CredentialStore

var _ types.CredentialStore = Chain(nil)

// Get returns the credentials from the first store that has an entry for endpoint.
func (c Chain) Get(endpoint string) (types.Credentials, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if creds, ok := s.Get(endpoint); ok {
			return creds, true
		}
	}

	return types.Credentials{}, false
}
