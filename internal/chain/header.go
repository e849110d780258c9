package chain

import (
	"time"

	"github.com/dkwon/toychain/pkg/hash"
	"github.com/dkwon/toychain/pkg/u256"
)

// BlockHeader is the proof-of-work unit: the part of a Block whose hash is
// compared against Target. It is not a fixed-width byte layout; it is
// hashed via the canonical encoding (pkg/encoding), so its wire shape and
// its hashed shape are the same bytes.
type BlockHeader struct {
	Timestamp     time.Time `cbor:"1,keyasint"`
	Nonce         uint64    `cbor:"2,keyasint"`
	PrevBlockHash hash.Hash `cbor:"3,keyasint"`
	MerkleRoot    hash.Hash `cbor:"4,keyasint"`
	Target        u256.U256 `cbor:"5,keyasint"`
}

// Hash computes the header's content hash, the proof-of-work output.
func (h *BlockHeader) Hash() hash.Hash {
	return hash.MustOf(h)
}

// MeetsTarget reports whether the header's hash satisfies its own target.
func (h *BlockHeader) MeetsTarget() bool {
	return h.Hash().LessOrEqual(h.Target)
}

// Mine attempts to find a nonce that satisfies Target, trying at most
// steps increments of Nonce (original_source block.rs
// BlockHeader::mine). If the header already meets its target, Mine
// returns true immediately without touching Nonce. Otherwise it
// increments Nonce once per attempt; if Nonce overflows uint64 it wraps
// to zero and Timestamp is bumped to the current time, so a miner that
// exhausts the nonce space keeps making forward progress instead of
// looping forever over the same header. Mine returns true the instant a
// matching hash is found, leaving Nonce/Timestamp at the winning values;
// it returns false after exhausting steps attempts, leaving the header
// at whatever Nonce/Timestamp it reached.
func (h *BlockHeader) Mine(steps int) bool {
	if h.MeetsTarget() {
		return true
	}
	for i := 0; i < steps; i++ {
		if h.Nonce == ^uint64(0) {
			h.Nonce = 0
			h.Timestamp = time.Now().UTC()
		} else {
			h.Nonce++
		}
		if h.MeetsTarget() {
			return true
		}
	}
	return false
}
