package miner

import (
	"net"
	"sync"

	"github.com/dkwon/toychain/internal/wire"
)

// CodecClient implements Client over one persistent connection. Requests
// and replies are strictly sequential and paired, so Send
// takes an internal lock for the full round trip rather than letting two
// goroutines interleave writes and reads on the same connection.
type CodecClient struct {
	mu    sync.Mutex
	codec *wire.Codec
}

// DialNode opens a connection to a node and wraps it for miner use.
func DialNode(addr string) (*CodecClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &CodecClient{codec: wire.NewCodec(conn)}, nil
}

// Send writes msg and blocks for exactly one reply.
func (c *CodecClient) Send(msg wire.Message) (wire.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.codec.WriteMessage(msg); err != nil {
		return wire.Message{}, err
	}
	return c.codec.ReadMessage()
}

// Close closes the underlying connection.
func (c *CodecClient) Close() error {
	return c.codec.Close()
}
