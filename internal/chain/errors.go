package chain

import "errors"

// Sentinel errors returned by block and transaction validation. Callers
// use errors.Is to classify a rejection without depending on its text.
var (
	ErrInvalidBlock       = errors.New("chain: invalid block")
	ErrInvalidMerkleRoot  = errors.New("chain: merkle root does not match transactions")
	ErrInvalidTransaction = errors.New("chain: invalid transaction")
	ErrInvalidSignature   = errors.New("chain: invalid signature")
)
