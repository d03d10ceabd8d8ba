package utils

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// LocalAddress returns a string representing the local address for a given port.
func LocalAddress(port int) string {
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

// ShortAddress abbreviates an address to its first and last four hex digits,
// e.g. 0x6f97…f8F7.
func ShortAddress(addr common.Address) string {
	s := addr.Hex()
	return s[:6] + "…" + s[len(s)-4:]
}

// Selector returns the hex-encoded 4-byte function selector of calldata, or
// the whole input when it is shorter than a selector.
func Selector(data []byte) string {
	if len(data) < 4 {
		return hexutil.Encode(data)
	}
	return hexutil.Encode(data[:4])
}
