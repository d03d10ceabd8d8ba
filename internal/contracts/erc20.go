package contracts

import "github.com/thep2p/go-eth-bridge/internal/model"

// ERC20Descriptor is the standard ERC-20 interface (EIP-20) extended with the
// owner-only mint function of the bridge test tokens.
//
// Function selectors:
//
//	balanceOf(address)       → 0x70a08231
//	allowance(a,a)           → 0xdd62ed3e
//	approve(a,u256)          → 0x095ea7b3
//	mint(a,u256)             → 0x40c10f19
var ERC20Descriptor = Descriptor{
	{Kind: KindFunction, Name: "name", Outputs: []Param{{Type: "string"}}, StateMutability: View},
	{Kind: KindFunction, Name: "symbol", Outputs: []Param{{Type: "string"}}, StateMutability: View},
	{Kind: KindFunction, Name: "decimals", Outputs: []Param{{Type: "uint8"}}, StateMutability: View},
	{Kind: KindFunction, Name: "totalSupply", Outputs: []Param{{Type: "uint256"}}, StateMutability: View},
	{
		Kind:            KindFunction,
		Name:            model.MethodBalanceOf,
		Inputs:          []Param{{Name: "account", Type: "address"}},
		Outputs:         []Param{{Type: "uint256"}},
		StateMutability: View,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodAllowance,
		Inputs:          []Param{{Name: "owner", Type: "address"}, {Name: "spender", Type: "address"}},
		Outputs:         []Param{{Type: "uint256"}},
		StateMutability: View,
	},
	{
		Kind:            KindFunction,
		Name:            "transfer",
		Inputs:          []Param{{Name: "to", Type: "address"}, {Name: "value", Type: "uint256"}},
		Outputs:         []Param{{Type: "bool"}},
		StateMutability: NonPayable,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodApprove,
		Inputs:          []Param{{Name: "spender", Type: "address"}, {Name: "value", Type: "uint256"}},
		Outputs:         []Param{{Type: "bool"}},
		StateMutability: NonPayable,
	},
	{
		Kind:            KindFunction,
		Name:            "transferFrom",
		Inputs:          []Param{{Name: "from", Type: "address"}, {Name: "to", Type: "address"}, {Name: "value", Type: "uint256"}},
		Outputs:         []Param{{Type: "bool"}},
		StateMutability: NonPayable,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodMint,
		Inputs:          []Param{{Name: "to", Type: "address"}, {Name: "amount", Type: "uint256"}},
		StateMutability: NonPayable,
	},
	{
		Kind: KindEvent,
		Name: "Transfer",
		Inputs: []Param{
			{Name: "from", Type: "address", Indexed: true},
			{Name: "to", Type: "address", Indexed: true},
			{Name: "value", Type: "uint256"},
		},
	},
	{
		Kind: KindEvent,
		Name: "Approval",
		Inputs: []Param{
			{Name: "owner", Type: "address", Indexed: true},
			{Name: "spender", Type: "address", Indexed: true},
			{Name: "value", Type: "uint256"},
		},
	},
}

// ERC20ABI is the parsed form of ERC20Descriptor.
var ERC20ABI = ERC20Descriptor.MustParse()
