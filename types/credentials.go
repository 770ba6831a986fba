package types

import "net/http"

// Credentials are HTTP Basic credentials for an ntfy server.
type Credentials struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// CredentialStore maps a server endpoint to optional credentials.
//
// Implementations must be safe for concurrent use; many listeners share one store.
type CredentialStore interface {
	// Get returns the credentials for endpoint, or false when the endpoint is unauthenticated.
	Get(endpoint string) (Credentials, bool)
}

// HTTPClient executes subscription requests.
//
// *http.Client satisfies this interface. Implementations must be safe for concurrent use
// and must not impose a total request timeout, since subscription responses stream forever.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
