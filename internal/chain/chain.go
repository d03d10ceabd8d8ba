// Package chain defines the networks the bridge spans.
package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// NativeCurrency describes the coin used to pay gas on a chain.
type NativeCurrency struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Chain identifies an EVM network and the endpoint used to reach it.
// Chain values are defined once and copied, never mutated.
type Chain struct {
	// ID is the EIP-155 chain id.
	ID uint64
	// Name is the human readable network name.
	Name string
	// Network is a short lowercase key, unique within a Registry.
	Network string
	// Currency is the native currency metadata.
	Currency NativeCurrency
	// RPCURL is the default JSON-RPC endpoint.
	RPCURL string
	// Testnet marks public test networks.
	Testnet bool
}

// Sepolia is the public Ethereum test network.
var Sepolia = Chain{
	ID:      params.SepoliaChainConfig.ChainID.Uint64(),
	Name:    "Sepolia",
	Network: "sepolia",
	Currency: NativeCurrency{
		Name:     "Sepolia Ether",
		Symbol:   "ETH",
		Decimals: 18,
	},
	RPCURL:  "https://rpc.sepolia.org",
	Testnet: true,
}

// Shibuya is the Astar test network. Wallet libraries do not ship a
// definition for it, so it is declared here.
var Shibuya = Chain{
	ID:      81,
	Name:    "AstarShibuya",
	Network: "astar-shibuya",
	Currency: NativeCurrency{
		Name:     "SBY",
		Symbol:   "SBY",
		Decimals: 18,
	},
	RPCURL:  "https://evm.shibuya.astar.network/",
	Testnet: true,
}

// ChainID returns the chain id as a big integer, as expected by transaction signers.
func (c Chain) ChainID() *big.Int {
	return new(big.Int).SetUint64(c.ID)
}

// WithRPC returns a copy of the chain that uses the given endpoint.
// An empty url keeps the current endpoint.
func (c Chain) WithRPC(url string) Chain {
	if url != "" {
		c.RPCURL = url
	}
	return c
}

// String returns the chain name.
func (c Chain) String() string {
	return c.Name
}
