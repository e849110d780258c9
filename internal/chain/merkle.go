package chain

import (
	"github.com/dkwon/toychain/pkg/hash"
)

// merkleLeaf is the hashed pair used at every level of the reduction.
// Declaring it as a named struct (rather than hashing a raw byte
// concatenation) keeps the tree hash inside the same canonical-encoding
// domain as every other content hash in the system.
type merkleLeaf struct {
	Left  hash.Hash `cbor:"1,keyasint"`
	Right hash.Hash `cbor:"2,keyasint"`
}

// MerkleRoot reduces a sequence of transaction hashes to a single root
// hash, pairwise, duplicating the last leaf at any level with an odd
// number of nodes. An empty sequence roots to the zero hash.
func MerkleRoot(txHashes []hash.Hash) hash.Hash {
	if len(txHashes) == 0 {
		return hash.Zero
	}

	level := make([]hash.Hash, len(txHashes))
	copy(level, txHashes)

	for {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]hash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hash.MustOf(merkleLeaf{Left: level[i], Right: level[i+1]}))
		}
		level = next
		if len(level) == 1 {
			return level[0]
		}
	}
}

// TransactionMerkleRoot is a convenience wrapper that hashes each
// transaction before reducing.
func TransactionMerkleRoot(txs []Transaction) hash.Hash {
	hashes := make([]hash.Hash, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.Hash()
	}
	return MerkleRoot(hashes)
}
