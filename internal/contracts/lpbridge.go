package contracts

import "github.com/thep2p/go-eth-bridge/internal/model"

// LiquidityBridgeDescriptor describes the pool-based bridge deployed on the
// local development chains. Deposits are numbered by a nonce and paid out on
// the opposite chain by the relayer through release.
var LiquidityBridgeDescriptor = Descriptor{
	{
		Kind:            KindFunction,
		Name:            model.MethodToken,
		Outputs:         []Param{{Type: "address", InternalType: "contract IERC20"}},
		StateMutability: View,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodDepositNonce,
		Outputs:         []Param{{Type: "uint256"}},
		StateMutability: View,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodGetReserve,
		Outputs:         []Param{{Type: "uint256"}},
		StateMutability: View,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodGetDepositAmount,
		Inputs:          []Param{{Name: "nonce", Type: "uint256"}},
		Outputs:         []Param{{Type: "uint256"}},
		StateMutability: View,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodGetDepositor,
		Inputs:          []Param{{Name: "nonce", Type: "uint256"}},
		Outputs:         []Param{{Type: "address"}},
		StateMutability: View,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodDeposit,
		Inputs:          []Param{{Name: "amount", Type: "uint256"}},
		StateMutability: NonPayable,
	},
	{
		Kind:            KindFunction,
		Name:            model.MethodRelease,
		Inputs:          []Param{{Name: "to", Type: "address"}, {Name: "amount", Type: "uint256"}},
		StateMutability: NonPayable,
	},
}

// LiquidityBridgeABI is the parsed form of LiquidityBridgeDescriptor.
var LiquidityBridgeABI = LiquidityBridgeDescriptor.MustParse()
