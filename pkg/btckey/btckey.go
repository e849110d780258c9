// Package btckey implements the secp256k1 ECDSA keys and signatures used
// to authorize spending a UTXO. A Signature is produced
// over exactly one message: the hash of the output being spent.
package btckey

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/fxamacker/cbor/v2"
)

// PrivateKey wraps a secp256k1 scalar.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 curve point.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// Signature wraps a secp256k1 ECDSA signature.
type Signature struct {
	sig *ecdsa.Signature
}

// NewPrivateKey generates a new random secp256k1 private key.
func NewPrivateKey() (PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return PrivateKey{}, fmt.Errorf("generate private key: %w", err)
	}
	return PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes decodes a 32-byte big-endian scalar.
func PrivateKeyFromBytes(b []byte) (PrivateKey, error) {
	if len(b) != 32 {
		return PrivateKey{}, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	return PrivateKey{key: secp256k1.PrivKeyFromBytes(b)}, nil
}

// Bytes returns the 32-byte big-endian scalar encoding.
func (k PrivateKey) Bytes() []byte {
	b := k.key.Serialize()
	out := make([]byte, 32)
	copy(out, b)
	return out
}

// PublicKey derives the corresponding public key.
func (k PrivateKey) PublicKey() PublicKey {
	return PublicKey{key: k.key.PubKey()}
}

// Sign signs the 32-byte message, the hash of the UTXO being spent.
func (k PrivateKey) Sign(message [32]byte) Signature {
	sig := ecdsa.Sign(k.key, message[:])
	return Signature{sig: sig}
}

// IsZero reports whether the key is unset.
func (k PrivateKey) IsZero() bool {
	return k.key == nil
}

// PublicKeyFromBytes decodes a SEC1-compressed public key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	key, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return PublicKey{}, fmt.Errorf("parse public key: %w", err)
	}
	return PublicKey{key: key}, nil
}

// Bytes returns the SEC1-compressed (33-byte) encoding.
func (k PublicKey) Bytes() []byte {
	if k.key == nil {
		return nil
	}
	return k.key.SerializeCompressed()
}

// IsZero reports whether the key is unset.
func (k PublicKey) IsZero() bool {
	return k.key == nil
}

// Equal reports whether two public keys are the same point.
func (k PublicKey) Equal(other PublicKey) bool {
	if k.key == nil || other.key == nil {
		return k.key == other.key
	}
	return k.key.IsEqual(other.key)
}

// Verify checks a signature over a 32-byte message under this public key.
func Verify(message [32]byte, sig Signature, pub PublicKey) bool {
	if sig.sig == nil || pub.key == nil {
		return false
	}
	return sig.sig.Verify(message[:], pub.key)
}

// SignatureFromBytes decodes a DER-encoded ECDSA signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	sig, err := ecdsa.ParseDERSignature(b)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature: %w", err)
	}
	return Signature{sig: sig}, nil
}

// Bytes returns the DER encoding of the signature.
func (s Signature) Bytes() []byte {
	if s.sig == nil {
		return nil
	}
	return s.sig.Serialize()
}

// IsZero reports whether the signature is unset.
func (s Signature) IsZero() bool {
	return s.sig == nil
}

// MarshalCBOR implements cbor.Marshaler so PublicKey round-trips through
// the canonical encoding (pkg/encoding) as its SEC1-compressed bytes.
func (k PublicKey) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(k.Bytes())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (k *PublicKey) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	if len(b) == 0 {
		*k = PublicKey{}
		return nil
	}
	pub, err := PublicKeyFromBytes(b)
	if err != nil {
		return err
	}
	*k = pub
	return nil
}

// MarshalCBOR implements cbor.Marshaler, encoding as DER bytes.
func (s Signature) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.Bytes())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (s *Signature) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	if len(b) == 0 {
		*s = Signature{}
		return nil
	}
	sig, err := SignatureFromBytes(b)
	if err != nil {
		return err
	}
	*s = sig
	return nil
}

// MarshalCBOR implements cbor.Marshaler, encoding as the 32-byte scalar.
func (k PrivateKey) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(k.Bytes())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (k *PrivateKey) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := cbor.Unmarshal(data, &b); err != nil {
		return err
	}
	if len(b) == 0 {
		*k = PrivateKey{}
		return nil
	}
	pk, err := PrivateKeyFromBytes(b)
	if err != nil {
		return err
	}
	*k = pk
	return nil
}
