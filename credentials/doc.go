// Package credentials provides types.CredentialStore implementations.
//
// Two stores are available:
//
//   - Static: An in-memory store populated from configuration or at runtime
//   - KV: A store backed by a NATS JetStream KeyValue bucket and kept current by a watcher
//
// Endpoints are normalized before lookup, so "https://NTFY.sh/" and "https://ntfy.sh"
// resolve to the same credentials.
//
// Example:
//
//	store := credentials.NewStatic(map[string]types.Credentials{
//	    "https://ntfy.example.com": {Username: "alice", Password: "secret"},
//	})
//	l, _ := ntfysub.NewListener(cfg, ntfysub.WithCredentials(store))
package credentials
