package unittest

import (
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// RandomAddress generates a random Ethereum address for testing.
//
// It is useful for creating test fixtures where the specific address value
// doesn't matter. The function will fail the test if random byte generation fails.
func RandomAddress(t *testing.T) common.Address {
	t.Helper()

	b := make([]byte, common.AddressLength)
	_, err := rand.Read(b)
	require.NoError(t, err, "failed to generate random bytes for address")

	return common.BytesToAddress(b)
}

// RandomHash generates a random 32-byte hash for testing.
func RandomHash(t *testing.T) common.Hash {
	t.Helper()

	b := make([]byte, common.HashLength)
	_, err := rand.Read(b)
	require.NoError(t, err, "failed to generate random bytes for hash")

	return common.BytesToHash(b)
}
