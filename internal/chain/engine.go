package chain

import (
	"sort"
	"time"

	"github.com/dkwon/toychain/pkg/hash"
	"github.com/dkwon/toychain/pkg/u256"
)

// Blockchain is the full validated chain state: the block list, the
// current proof-of-work target, the UTXO set derived from those blocks,
// and the pending mempool of unconfirmed transactions.
type Blockchain struct {
	Blocks  []Block
	Target  u256.U256
	UTXOs   UTXOSet
	Mempool []MempoolEntry
}

// New returns an empty chain at the easiest permitted difficulty.
func New() *Blockchain {
	return &Blockchain{
		Target: MinTarget,
		UTXOs:  make(UTXOSet),
	}
}

// BlockHeight returns the number of blocks committed to the chain.
func (bc *Blockchain) BlockHeight() uint64 {
	return uint64(len(bc.Blocks))
}

// CalculateBlockReward returns the coinbase reward due at the chain's
// current height.
func (bc *Blockchain) CalculateBlockReward() uint64 {
	return BlockReward(bc.BlockHeight())
}

// AddBlock validates and appends a block to the chain. The
// genesis block (the first block on an empty chain) only has its
// PrevBlockHash checked against the zero hash; everything else,
// including proof-of-work and transaction validity, is skipped, matching
// the reference implementation. Every later block must: chain from the
// current tip's hash, satisfy its own declared Target, commit to a
// MerkleRoot that matches its transactions, carry a timestamp strictly
// after the tip's, and pass VerifyTransactions. On success, any mempool
// transactions now included in the block are dropped from the mempool
// and TryAdjustTarget is run.
func (bc *Blockchain) AddBlock(block Block) error {
	if len(bc.Blocks) == 0 {
		if !block.Header.PrevBlockHash.IsZero() {
			return ErrInvalidBlock
		}
	} else {
		tip := bc.Blocks[len(bc.Blocks)-1]

		if !block.Header.PrevBlockHash.Equal(tip.Hash()) {
			return ErrInvalidBlock
		}
		if !block.Header.MeetsTarget() {
			return ErrInvalidBlock
		}
		if !TransactionMerkleRoot(block.Transactions).Equal(block.Header.MerkleRoot) {
			return ErrInvalidMerkleRoot
		}
		if !block.Header.Timestamp.After(tip.Header.Timestamp) {
			return ErrInvalidBlock
		}
		if err := block.VerifyTransactions(bc.BlockHeight(), bc.UTXOs); err != nil {
			return err
		}
	}

	included := make(map[hash.Hash]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		included[tx.Hash()] = struct{}{}
	}
	kept := bc.Mempool[:0]
	for _, entry := range bc.Mempool {
		if _, ok := included[entry.Transaction.Hash()]; !ok {
			kept = append(kept, entry)
		}
	}
	bc.Mempool = kept

	bc.Blocks = append(bc.Blocks, block)
	bc.applyBlockToUTXOs(block)
	bc.TryAdjustTarget()
	return nil
}

// applyBlockToUTXOs consumes a block's spent outputs and mints its new
// ones. Kept separate from RebuildUTXOs so AddBlock can update the set
// incrementally instead of replaying the whole chain on every block.
func (bc *Blockchain) applyBlockToUTXOs(block Block) {
	for _, tx := range block.Transactions {
		for _, in := range tx.Inputs {
			delete(bc.UTXOs, in.PrevOutputHash)
		}
		txHash := tx.Hash()
		for _, out := range tx.Outputs {
			bc.UTXOs[txHash] = UTXOEntry{Output: out}
		}
	}
}

// RebuildUTXOs recomputes the entire UTXO set from scratch by replaying
// every block in order, applying each transaction once; used after
// bootstrap downloads a chain from a peer rather than on every block.
func (bc *Blockchain) RebuildUTXOs() {
	bc.UTXOs = make(UTXOSet)
	for _, block := range bc.Blocks {
		bc.applyBlockToUTXOs(block)
	}
}

// MempoolEntry pairs a pending transaction with the time it was
// accepted, used by CleanupMempool to age it out.
type MempoolEntry struct {
	AddedAt     time.Time
	Transaction Transaction
}

// sortMempoolByFee orders the mempool descending by miner fee, so a
// template assembler can take transactions from the front of the slice
// to maximize fees collected.
func (bc *Blockchain) sortMempoolByFee() {
	sort.SliceStable(bc.Mempool, func(i, j int) bool {
		return bc.entryFee(bc.Mempool[i]) > bc.entryFee(bc.Mempool[j])
	})
}

func (bc *Blockchain) entryFee(entry MempoolEntry) uint64 {
	var in, out uint64
	for _, input := range entry.Transaction.Inputs {
		if e, ok := bc.UTXOs[input.PrevOutputHash]; ok {
			in += e.Output.Value
		}
	}
	out = entry.Transaction.OutputTotal()
	if out > in {
		return 0
	}
	return in - out
}
