package chain

import (
	"github.com/dkwon/toychain/pkg/btckey"
	"github.com/dkwon/toychain/pkg/hash"
)

// Block pairs a proof-of-work header with the transactions it commits to
// via MerkleRoot.
type Block struct {
	Header       BlockHeader   `cbor:"1,keyasint"`
	Transactions []Transaction `cbor:"2,keyasint"`
}

// NewBlock constructs a block. Callers are expected to set Header's
// MerkleRoot to TransactionMerkleRoot(transactions) themselves.
func NewBlock(header BlockHeader, transactions []Transaction) Block {
	return Block{Header: header, Transactions: transactions}
}

// Hash returns the block's content hash: the header's hash, since the
// header already commits to the transactions via MerkleRoot.
func (b Block) Hash() hash.Hash {
	return b.Header.Hash()
}

// MinerFees computes the total fees available to the coinbase transaction:
// the sum of every non-coinbase input's referenced output value, minus the
// sum of every non-coinbase output value. utxos must contain
// an entry for every output referenced by an input in this block; a
// missing entry is reported as ErrInvalidTransaction.
func (b Block) MinerFees(utxos UTXOSet) (uint64, error) {
	inputs := make(map[hash.Hash]uint64)
	outputs := make(map[hash.Hash]uint64)

	for _, tx := range b.Transactions[1:] {
		for _, in := range tx.Inputs {
			entry, ok := utxos[in.PrevOutputHash]
			if !ok {
				return 0, ErrInvalidTransaction
			}
			if _, dup := inputs[in.PrevOutputHash]; dup {
				return 0, ErrInvalidTransaction
			}
			inputs[in.PrevOutputHash] = entry.Output.Value
		}
		for _, out := range tx.Outputs {
			h := out.Hash()
			if _, dup := outputs[h]; dup {
				return 0, ErrInvalidTransaction
			}
			outputs[h] = out.Value
		}
	}

	var inTotal, outTotal uint64
	for _, v := range inputs {
		inTotal += v
	}
	for _, v := range outputs {
		outTotal += v
	}
	if outTotal > inTotal {
		return 0, ErrInvalidTransaction
	}
	return inTotal - outTotal, nil
}

// VerifyCoinbaseTransaction checks that the block's first transaction has
// no inputs, at least one output, and pays out exactly the block reward
// for height plus the fees collected from the rest of the block.
func (b Block) VerifyCoinbaseTransaction(height uint64, utxos UTXOSet) error {
	if len(b.Transactions) == 0 {
		return ErrInvalidTransaction
	}
	coinbase := b.Transactions[0]
	if len(coinbase.Inputs) != 0 {
		return ErrInvalidTransaction
	}
	if len(coinbase.Outputs) == 0 {
		return ErrInvalidTransaction
	}

	fees, err := b.MinerFees(utxos)
	if err != nil {
		return err
	}

	reward := BlockReward(height)
	if coinbase.OutputTotal() != reward+fees {
		return ErrInvalidTransaction
	}
	return nil
}

// VerifyTransactions validates every transaction in the block: the
// coinbase via VerifyCoinbaseTransaction, and every other transaction by
// checking that each input references a UTXO, is signed by that UTXO's
// owner, is not double-spent within this block, and that the transaction
// does not create value out of thin air (mining reward is the
// only source of new value, so every non-coinbase transaction's outputs
// must not exceed its inputs).
func (b Block) VerifyTransactions(height uint64, utxos UTXOSet) error {
	if len(b.Transactions) == 0 {
		return ErrInvalidTransaction
	}
	if err := b.VerifyCoinbaseTransaction(height, utxos); err != nil {
		return err
	}

	spent := make(map[hash.Hash]struct{})
	for _, tx := range b.Transactions[1:] {
		var inputValue, outputValue uint64

		for _, in := range tx.Inputs {
			entry, ok := utxos[in.PrevOutputHash]
			if !ok {
				return ErrInvalidTransaction
			}
			if _, dup := spent[in.PrevOutputHash]; dup {
				return ErrInvalidTransaction
			}
			if !btckey.Verify(in.PrevOutputHash.Bytes(), in.Signature, entry.Output.PubKey) {
				return ErrInvalidSignature
			}
			inputValue += entry.Output.Value
			spent[in.PrevOutputHash] = struct{}{}
		}
		for _, out := range tx.Outputs {
			outputValue += out.Value
		}
		if inputValue < outputValue {
			return ErrInvalidTransaction
		}
	}
	return nil
}
