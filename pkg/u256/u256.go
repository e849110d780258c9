// Package u256 implements the 256-bit unsigned integer used for hashes and
// proof-of-work targets. Values are compared, added, multiplied, and
// divided as exact arbitrary-precision integers, never through a
// floating-point round-trip, which is required for the difficulty
// retarget computation to be reproducible across nodes.
package u256

import (
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// Size is the width of a U256 in bytes.
const Size = 32

// U256 is a 256-bit unsigned integer. The zero value is zero.
type U256 struct {
	v big.Int
}

// MaxBig is the largest value a U256 can hold (2^256 - 1).
var MaxBig = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// FromBig wraps a big.Int, truncating to 256 bits and clamping negative
// values to zero. The input is not mutated.
func FromBig(b *big.Int) U256 {
	var out U256
	if b == nil || b.Sign() <= 0 {
		return out
	}
	v := new(big.Int).Set(b)
	if v.Cmp(MaxBig) > 0 {
		v.And(v, MaxBig)
	}
	out.v = *v
	return out
}

// FromUint64 constructs a U256 from a uint64.
func FromUint64(n uint64) U256 {
	var out U256
	out.v.SetUint64(n)
	return out
}

// FromLittleEndian decodes a 32-byte little-endian buffer into a U256.
func FromLittleEndian(b [Size]byte) U256 {
	rev := make([]byte, Size)
	for i := 0; i < Size; i++ {
		rev[i] = b[Size-1-i]
	}
	var out U256
	out.v.SetBytes(rev)
	return out
}

// Bytes returns the value's big.Int for callers that need big.Int
// interop (e.g. comparing against another library's target).
func (u U256) Bytes() *big.Int {
	return new(big.Int).Set(&u.v)
}

// LittleEndian encodes the value as a 32-byte little-endian buffer.
func (u U256) LittleEndian() [Size]byte {
	var out [Size]byte
	be := u.v.Bytes()
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out
}

// Cmp compares u to other the way big.Int.Cmp does.
func (u U256) Cmp(other U256) int {
	return u.v.Cmp(&other.v)
}

// LessOrEqual reports whether u <= other, the proof-of-work test.
func (u U256) LessOrEqual(other U256) bool {
	return u.v.Cmp(&other.v) <= 0
}

// Add returns u + other.
func (u U256) Add(other U256) U256 {
	var out U256
	out.v.Add(&u.v, &other.v)
	return FromBig(&out.v)
}

// MulUint64 returns u * n.
func (u U256) MulUint64(n uint64) U256 {
	var out U256
	out.v.Mul(&u.v, new(big.Int).SetUint64(n))
	return FromBig(&out.v)
}

// DivUint64 returns floor(u / n). Panics on division by zero, matching
// big.Int's own behavior.
func (u U256) DivUint64(n uint64) U256 {
	var out U256
	out.v.Div(&u.v, new(big.Int).SetUint64(n))
	return FromBig(&out.v)
}

// MulDiv returns floor(u * num / den), computed with a single wide
// intermediate so it never overflows U256's own range mid-computation.
// This is the exact-arithmetic primitive the difficulty retarget
// §4.3) requires: `new_target = floor(target * actual / ideal)`.
func (u U256) MulDiv(num, den int64) U256 {
	n := new(big.Int).Mul(&u.v, big.NewInt(num))
	n.Div(n, big.NewInt(den))
	return FromBig(n)
}

// String renders the value in base 10.
func (u U256) String() string {
	return u.v.String()
}

// IsZero reports whether the value is zero.
func (u U256) IsZero() bool {
	return u.v.Sign() == 0
}

// Zero is the zero value, provided for readability at call sites.
var Zero = U256{}

// FromString parses a base-10 string into a U256.
func FromString(s string) (U256, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U256{}, false
	}
	return FromBig(v), true
}

// MarshalCBOR implements cbor.Marshaler by encoding the value as its
// 32-byte little-endian representation, so U256 round-trips identically
// through the canonical wire/hash encoding (pkg/encoding) regardless of
// which node produced it.
func (u U256) MarshalCBOR() ([]byte, error) {
	b := u.LittleEndian()
	return cbor.Marshal(b[:])
}

// UnmarshalCBOR implements cbor.Unmarshaler, the inverse of MarshalCBOR.
func (u *U256) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	var arr [Size]byte
	copy(arr[:], b)
	*u = FromLittleEndian(arr)
	return nil
}
