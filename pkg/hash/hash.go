// Package hash implements the content-addressing primitive:
// Hash is a 256-bit unsigned integer produced by SHA-256 over the
// canonical encoding of any entity, compared as a big integer for the
// proof-of-work test.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dkwon/toychain/pkg/encoding"
	"github.com/dkwon/toychain/pkg/u256"
)

// Hash is a content-addressed 256-bit digest.
type Hash struct {
	v u256.U256
}

// Zero is the all-zero hash, used as the genesis block's prev-hash.
var Zero = Hash{}

// Of computes SHA-256 over the canonical encoding of v. Note
// this is a single SHA-256, not Bitcoin's double-SHA256, confirmed by
// the original source's sha256.rs, which calls the `sha256` crate's
// `digest` function exactly once.
func Of(v interface{}) (Hash, error) {
	data, err := encoding.Marshal(v)
	if err != nil {
		return Hash{}, fmt.Errorf("hash: encode: %w", err)
	}
	sum := sha256.Sum256(data)
	return Hash{v: u256.FromLittleEndian(reverse(sum))}, nil
}

// MustOf is Of but panics on encode failure, safe to use for entities
// whose fields are all themselves canonically encodable (no interfaces,
// no cyclic pointers), which holds for every type in internal/chain.
func MustOf(v interface{}) Hash {
	h, err := Of(v)
	if err != nil {
		panic(err)
	}
	return h
}

// reverse flips a 32-byte digest so it can be interpreted as a
// little-endian U256 the way the rest of the 256-bit integer arithmetic
// expects: U256 is compared and stored little-endian at byte boundaries.
func reverse(b [32]byte) [32]byte {
	var out [32]byte
	for i := range b {
		out[31-i] = b[i]
	}
	return out
}

// LessOrEqual reports whether h <= target, the proof-of-work test.
func (h Hash) LessOrEqual(target u256.U256) bool {
	return h.v.LessOrEqual(target)
}

// IsZero reports whether this is the zero hash.
func (h Hash) IsZero() bool {
	return h.v.IsZero()
}

// Equal reports whether two hashes are the same value.
func (h Hash) Equal(other Hash) bool {
	return h.v.Cmp(other.v) == 0
}

// Bytes returns the 32-byte little-endian encoding.
func (h Hash) Bytes() [32]byte {
	return h.v.LittleEndian()
}

// FromBytes builds a Hash from a 32-byte little-endian buffer (used when
// decoding a UTXO key or wire field that is already a raw hash).
func FromBytes(b [32]byte) Hash {
	return Hash{v: u256.FromLittleEndian(b)}
}

// String renders the hash as big-endian hex, the conventional display
// order for block-explorer-style output.
func (h Hash) String() string {
	b := h.Bytes()
	be := make([]byte, 32)
	for i := range b {
		be[31-i] = b[i]
	}
	return hex.EncodeToString(be)
}

// MarshalCBOR implements cbor.Marshaler.
func (h Hash) MarshalCBOR() ([]byte, error) {
	return h.v.MarshalCBOR()
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (h *Hash) UnmarshalCBOR(data []byte) error {
	return h.v.UnmarshalCBOR(data)
}
