package model

const (
	// MethodDeposit locks tokens in the bridge and emits a cross-chain message.
	MethodDeposit = "deposit"

	// MethodOnGmpReceived is the GMP callback invoked on the destination bridge.
	MethodOnGmpReceived = "onGmpReceived"

	// EventDepositBridge is emitted by the bridge for every accepted deposit.
	EventDepositBridge = "DepositBridge"

	// MethodBalanceOf returns the token balance of an account.
	MethodBalanceOf = "balanceOf"

	// MethodAllowance returns the amount a spender may still transfer on behalf of an owner.
	MethodAllowance = "allowance"

	// MethodApprove grants a spender an allowance.
	MethodApprove = "approve"

	// MethodMint creates new test tokens. Only the token owner may call it.
	MethodMint = "mint"

	// MethodToken returns the ERC-20 token held by a liquidity bridge.
	MethodToken = "token"

	// MethodDepositNonce returns the number of deposits a liquidity bridge has accepted.
	MethodDepositNonce = "depositNonce"

	// MethodGetReserve returns the token reserve held by a liquidity bridge.
	MethodGetReserve = "getReserve"

	// MethodGetDepositAmount returns the amount of the deposit with the given nonce.
	MethodGetDepositAmount = "getDepositAmount"

	// MethodGetDepositor returns the sender of the deposit with the given nonce.
	MethodGetDepositor = "getDepositor"

	// MethodRelease pays out tokens on the destination side of a liquidity bridge.
	MethodRelease = "release"
)
