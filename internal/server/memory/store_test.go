package memory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "memories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndAll(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save("bought milk"))
	require.NoError(t, store.Save("met with Ada"))

	all, err := store.All()
	require.NoError(t, err)
	require.Equal(t, []string{"bought milk", "met with Ada"}, all)
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save("Attended the Go conference"))
	require.NoError(t, store.Save("bought milk"))
	require.NoError(t, store.Save("go for a run tomorrow"))

	matches, err := store.Search("GO")
	require.NoError(t, err)
	require.Equal(t, []string{"Attended the Go conference", "go for a run tomorrow"}, matches)

	matches, err = store.Search("nothing like this")
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestEmptyStore(t *testing.T) {
	store := openTestStore(t)

	all, err := store.All()
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestOpenStoreRequiresPath(t *testing.T) {
	_, err := OpenStore("  ")
	require.Error(t, err)
}
