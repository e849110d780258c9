package chain

import (
	"time"

	"github.com/dkwon/toychain/pkg/btckey"
	"github.com/dkwon/toychain/pkg/hash"
)

// BuildTemplate assembles a candidate block paying pubkey, for a miner to
// work on. It selects up to BlockTransactionCap-1 mempool
// transactions in stored (fee-sorted) order, prepends a coinbase paying
// the block reward plus their combined fees, and sets the header's
// MerkleRoot over the final transaction sequence. PrevBlockHash is the
// current tip's hash, or the zero hash on an empty chain.
func (bc *Blockchain) BuildTemplate(pubkey btckey.PublicKey) Block {
	prevHash := hash.Zero
	if len(bc.Blocks) > 0 {
		prevHash = bc.Blocks[len(bc.Blocks)-1].Hash()
	}

	selected := bc.Mempool
	if max := BlockTransactionCap - 1; len(selected) > max {
		selected = selected[:max]
	}

	txs := make([]Transaction, 0, len(selected)+1)
	var fees uint64
	for _, entry := range selected {
		txs = append(txs, entry.Transaction)
		fees += bc.entryFee(entry)
	}

	coinbase := Transaction{
		Outputs: []TransactionOutput{NewTransactionOutput(bc.CalculateBlockReward()+fees, pubkey)},
	}
	txs = append([]Transaction{coinbase}, txs...)

	return Block{
		Header: BlockHeader{
			Timestamp:     time.Now().UTC(),
			PrevBlockHash: prevHash,
			MerkleRoot:    TransactionMerkleRoot(txs),
			Target:        bc.Target,
		},
		Transactions: txs,
	}
}

// ValidateTemplate reports whether a candidate template is still current
// its PrevBlockHash must match the current tip and its
// Target must match the chain's current target. A miner uses this to
// cheaply decide whether to keep mining a template or abandon it.
func (bc *Blockchain) ValidateTemplate(candidate Block) bool {
	prevHash := hash.Zero
	if len(bc.Blocks) > 0 {
		prevHash = bc.Blocks[len(bc.Blocks)-1].Hash()
	}
	return candidate.Header.PrevBlockHash.Equal(prevHash) && candidate.Header.Target.Cmp(bc.Target) == 0
}
