package contracts

import "github.com/thep2p/go-eth-bridge/internal/model"

// BridgeDescriptor describes the GMP bridge contract. The parameter order and
// types must match the deployed contract exactly: a mismatch does not fail,
// it silently corrupts the argument layout of every encoded call.
var BridgeDescriptor = Descriptor{
	{
		Kind: KindFunction,
		Name: model.MethodDeposit,
		Inputs: []Param{
			{Name: "amount", Type: "uint256", InternalType: "uint256"},
		},
		Outputs: []Param{
			{Name: "messageID", Type: "bytes32", InternalType: "bytes32"},
		},
		StateMutability: NonPayable,
	},
	{
		Kind: KindConstructor,
		Inputs: []Param{
			{Name: "gatewayAddress", Type: "address", InternalType: "contract IGateway"},
			{Name: "_erc20Token", Type: "address", InternalType: "address"},
			{Name: "_analogLPBridge", Type: "address", InternalType: "contract AnalogLPBridge"},
			{Name: "recipientNetwork", Type: "uint16", InternalType: "uint16"},
			{Name: "name", Type: "string", InternalType: "string"},
		},
		StateMutability: NonPayable,
	},
	{
		Kind: KindEvent,
		Name: model.EventDepositBridge,
		Inputs: []Param{
			{Name: "id", Type: "bytes32", InternalType: "bytes32", Indexed: true},
			{Name: "from", Type: "address", InternalType: "address", Indexed: true},
			{Name: "amount", Type: "uint256", InternalType: "uint256"},
		},
	},
	{
		Kind: KindFunction,
		Name: model.MethodOnGmpReceived,
		Inputs: []Param{
			{Name: "id", Type: "bytes32", InternalType: "bytes32"},
			{Name: "network", Type: "uint128", InternalType: "uint128"},
			{Name: "sender", Type: "bytes32", InternalType: "bytes32"},
			{Name: "data", Type: "bytes", InternalType: "bytes"},
		},
		Outputs: []Param{
			{Name: "", Type: "bytes32", InternalType: "bytes32"},
		},
		StateMutability: Payable,
	},
}

// BridgeABI is the parsed form of BridgeDescriptor.
var BridgeABI = BridgeDescriptor.MustParse()
