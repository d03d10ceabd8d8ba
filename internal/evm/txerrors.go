package evm

import "strings"

// Transaction pool rejections as a go-ethereum node words them. JSON-RPC only
// carries the message, so errors are classified by text.
const (
	msgAlreadyKnown      = "already known"
	msgNonceTooLow       = "nonce too low"
	msgInsufficientFunds = "insufficient funds"
	msgIntrinsicGas      = "intrinsic gas too low"
	msgUnderpriced       = "transaction underpriced"
	msgGasLimit          = "exceeds block gas limit"
	msgOversizedData     = "oversized data"
)

func matches(err error, messages ...string) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	for _, m := range messages {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// AlreadyKnown reports whether the node rejected a transaction because the
// identical transaction is already in its pool.
func AlreadyKnown(err error) bool {
	return matches(err, msgAlreadyKnown)
}

// NonceUsed reports whether the transaction's nonce has already been consumed.
func NonceUsed(err error) bool {
	return matches(err, msgNonceTooLow)
}

// Rejected reports whether resending the same signed transaction cannot
// succeed, regardless of how often it is retried.
func Rejected(err error) bool {
	return matches(err,
		msgNonceTooLow,
		msgInsufficientFunds,
		msgIntrinsicGas,
		msgUnderpriced,
		msgGasLimit,
		msgOversizedData,
	)
}
