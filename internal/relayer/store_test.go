package relayer_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep2p/go-eth-bridge/internal/relayer"
	"github.com/thep2p/go-eth-bridge/internal/unittest"
)

// TestStoreCursorPersists verifies that cursors survive closing and reopening the store.
func TestStoreCursorPersists(t *testing.T) {
	dir := unittest.NewTempDir(t)

	store, err := relayer.OpenStore(dir.Path())
	require.NoError(t, err)

	_, ok, err := store.Cursor("sepolia")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SetCursor("sepolia", 42))
	require.NoError(t, store.SetCursor("shibuya", 7))
	require.NoError(t, store.Close())

	store, err = relayer.OpenStore(dir.Path())
	require.NoError(t, err)
	defer store.Close()

	next, ok, err := store.Cursor("sepolia")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(42), next)

	next, ok, err = store.Cursor("shibuya")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), next)
}
