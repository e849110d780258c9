package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/dkwon/toychain/pkg/encoding"
)

const (
	// writeTimeout bounds how long a single frame write may take.
	writeTimeout = 10 * time.Second

	// maxFrameSize bounds a single incoming frame, preventing a peer from
	// claiming an enormous length prefix and exhausting memory before any
	// of the frame's contents have even been read.
	maxFrameSize = 16 * 1024 * 1024

	lengthPrefixSize = 8
)

// Codec reads and writes length-prefixed, canonically-encoded Messages
// over one connection. Generalized from the newline-delimited
// JSON-RPC codec pattern to `u64 length (little-endian) || canonical
// Message`, used identically for peer, miner, and wallet connections.
// writeMu serializes WriteMessage so a gossip fanout and a concurrent
// request/response on the same connection can never interleave a length
// prefix with another call's body. readMu likewise serializes
// ReadMessage so two readers can never split one frame between them.
type Codec struct {
	conn    net.Conn
	writeMu sync.Mutex
	readMu  sync.Mutex
}

// NewCodec wraps conn for framed Message exchange.
func NewCodec(conn net.Conn) *Codec {
	return &Codec{conn: conn}
}

// ReadMessage blocks until a full frame has arrived and decodes it.
func (c *Codec) ReadMessage() (Message, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	var lenBuf [lengthPrefixSize]byte
	if _, err := io.ReadFull(c.conn, lenBuf[:]); err != nil {
		return Message{}, fmt.Errorf("read length prefix: %w", err)
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	if n > maxFrameSize {
		return Message{}, fmt.Errorf("frame of %d bytes exceeds max %d", n, maxFrameSize)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return Message{}, fmt.Errorf("read frame body: %w", err)
	}

	var msg Message
	if err := encoding.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return msg, nil
}

// WriteMessage encodes and sends msg as a single frame. Safe to call
// concurrently: a write mutex keeps the length prefix and body of each
// call from interleaving with another's on the same connection.
func (c *Codec) WriteMessage(msg Message) error {
	body, err := encoding.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if len(body) > maxFrameSize {
		return fmt.Errorf("outgoing frame of %d bytes exceeds max %d", len(body), maxFrameSize)
	}

	var lenBuf [lengthPrefixSize]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(body)))

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.conn.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}
	if _, err := c.conn.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Codec) Close() error {
	return c.conn.Close()
}
