// Package encoding implements the canonical self-describing binary
// encoding used both to hash entities and to frame them on the
// wire. Every implementation that agrees on this package's output bytes
// agrees bit-for-bit on every hash in the system.
package encoding

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	// CanonicalEncOptions fixes map key ordering and integer/float
	// preferred encodings so two implementations that serialize the same
	// value always produce the same bytes, required for Hash::hash and
	// for wire messages to be replayable across nodes.
	opts := cbor.CanonicalEncOptions()
	var err error
	encMode, err = opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("encoding: bad canonical encode options: %v", err))
	}

	decOpts := cbor.DecOptions{
		// Array and map sizes must be bounded so a malformed or hostile
		// peer message can't exhaust memory before its fields are even
		// inspected.
		MaxArrayElements: 1 << 20,
		MaxMapPairs:      1 << 20,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("encoding: bad canonical decode options: %v", err))
	}
}

// Marshal canonically encodes v.
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes canonically-encoded bytes into v.
func Unmarshal(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}

// Save writes the canonical encoding of v to w.
func Save(w io.Writer, v interface{}) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Load reads the canonical encoding of a value from r into v.
func Load(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if err := Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
