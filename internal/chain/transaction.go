package chain

import (
	"github.com/google/uuid"

	"github.com/dkwon/toychain/pkg/btckey"
	"github.com/dkwon/toychain/pkg/hash"
)

// TransactionOutput is a spendable value locked to a public key. UniqueID
// exists purely so two outputs with the same Value and PubKey still hash
// to different values. Without it a wallet that pays the same address
// the same amount twice would mint two UTXOs that collide under Hash.
type TransactionOutput struct {
	Value    uint64           `cbor:"1,keyasint"`
	UniqueID uuid.UUID        `cbor:"2,keyasint"`
	PubKey   btckey.PublicKey `cbor:"3,keyasint"`
}

// Hash returns the content hash of the output. It is not the output's
// UTXO key: the UTXO set is keyed by the hash of the containing
// transaction (see UTXOSet), neither by this per-output hash nor by
// (tx hash, output index).
func (o TransactionOutput) Hash() hash.Hash {
	return hash.MustOf(o)
}

// NewTransactionOutput builds an output paying value to pub, minting a
// fresh UniqueID so it never collides with another output of the same
// value and recipient.
func NewTransactionOutput(value uint64, pub btckey.PublicKey) TransactionOutput {
	return TransactionOutput{
		Value:    value,
		UniqueID: uuid.New(),
		PubKey:   pub,
	}
}

// TransactionInput spends a prior output by referencing its hash and
// authorizing the spend with a signature over that same hash.
type TransactionInput struct {
	PrevOutputHash hash.Hash        `cbor:"1,keyasint"`
	Signature      btckey.Signature `cbor:"2,keyasint"`
}

// Transaction moves value from referenced prior outputs to new ones. A
// coinbase transaction (the first transaction in a block) has no inputs.
type Transaction struct {
	Inputs  []TransactionInput  `cbor:"1,keyasint"`
	Outputs []TransactionOutput `cbor:"2,keyasint"`
}

// Hash returns the transaction's content hash.
func (tx Transaction) Hash() hash.Hash {
	return hash.MustOf(tx)
}

// IsCoinbase reports whether this is a reward/fee-collecting transaction
// with no inputs.
func (tx Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 0
}

// OutputTotal sums the value of every output.
func (tx Transaction) OutputTotal() uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Value
	}
	return total
}
