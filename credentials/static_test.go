package credentials

import (
	"testing"

	"github.com/arloliu/ntfysub/types"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	store := NewStatic(map[string]types.Credentials{
		"https://ntfy.example.com/": {Username: "alice", Password: "secret"},
	})
	require.Equal(t, 1, store.Len())

	creds, ok := store.Get("https://NTFY.example.com")
	require.True(t, ok)
	require.Equal(t, "alice", creds.Username)
	require.Equal(t, "secret", creds.Password)

	_, ok = store.Get("https://ntfy.sh")
	require.False(t, ok)

	store.Set("https://ntfy.sh", types.Credentials{Username: "bob"})
	creds, ok = store.Get("https://ntfy.sh/")
	require.True(t, ok)
	require.Equal(t, "bob", creds.Username)

	store.Delete("https://ntfy.example.com")
	_, ok = store.Get("https://ntfy.example.com")
	require.False(t, ok)
	require.Equal(t, 1, store.Len())
}

func TestStatic_NilEntries(t *testing.T) {
	store := NewStatic(nil)
	require.Zero(t, store.Len())

	_, ok := store.Get("http://localhost")
	require.False(t, ok)
}
