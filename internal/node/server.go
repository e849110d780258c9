// Package node implements the long-lived server that accepts peer and
// miner connections, dispatches framed requests against the shared chain
// engine, and gossips newly accepted blocks to known peers.
package node

import (
	"context"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/peerstore"
	"github.com/dkwon/toychain/internal/wire"
)

// inboundRateLimit bounds how many requests a single connection may
// issue per second before the server starts delaying it, cheap
// protection against a misbehaving peer or miner hammering the accept
// loop with malformed frames.
const inboundRateLimit = 50

// Server owns the chain engine and the set of known peer connections.
type Server struct {
	logger *zap.Logger

	mu    sync.RWMutex // guards chain; held for the full duration of each logical operation
	chain *chain.Blockchain

	peersMu sync.Mutex
	peers   map[string]*wire.Codec

	// knownPeers records every address that successfully connects, so the
	// node remembers peers across restarts. Nil in tests that have no use
	// for a persisted address book.
	knownPeers *peerstore.Store
}

// New constructs a Server around an existing chain engine (already
// bootstrapped or freshly created). knownPeers may be nil, in which case
// connecting peers are tracked in memory only for the life of the process.
func New(bc *chain.Blockchain, logger *zap.Logger, knownPeers *peerstore.Store) *Server {
	return &Server{
		logger:     logger,
		chain:      bc,
		peers:      make(map[string]*wire.Codec),
		knownPeers: knownPeers,
	}
}

// Serve accepts connections on ln until it returns an error (typically
// because ln was closed). Each connection is handled in its own
// goroutine as an independent request/response session.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	codec := wire.NewCodec(conn)
	limiter := rate.NewLimiter(rate.Limit(inboundRateLimit), inboundRateLimit)

	s.registerPeer(addr, codec)
	defer s.unregisterPeer(addr)
	defer codec.Close()

	for {
		if err := limiter.Wait(context.Background()); err != nil {
			s.logger.Warn("rate limiter wait failed", zap.String("peer", addr), zap.Error(err))
			return
		}

		msg, err := codec.ReadMessage()
		if err != nil {
			s.logger.Debug("connection closed", zap.String("peer", addr), zap.Error(err))
			return
		}

		resp, hasResp := s.dispatch(addr, msg)
		if !hasResp {
			continue
		}
		if err := codec.WriteMessage(resp); err != nil {
			s.logger.Warn("write response failed", zap.String("peer", addr), zap.Error(err))
			return
		}
	}
}

func (s *Server) registerPeer(addr string, codec *wire.Codec) {
	s.peersMu.Lock()
	s.peers[addr] = codec
	s.peersMu.Unlock()

	if s.knownPeers == nil {
		return
	}
	if err := s.knownPeers.Add(context.Background(), addr); err != nil {
		s.logger.Warn("failed to persist known peer", zap.String("peer", addr), zap.Error(err))
	}
}

func (s *Server) unregisterPeer(addr string) {
	s.peersMu.Lock()
	defer s.peersMu.Unlock()
	delete(s.peers, addr)
}

// gossipNewBlock sends a NewBlock message to every currently known peer
// except the one the block was just accepted from. Best-effort: a failed
// send just logs, since a peer that is gone will be pruned on its own
// connection's read failure.
func (s *Server) gossipNewBlock(b chain.Block, except string) {
	msg := wire.NewBlockMessage(b)

	s.peersMu.Lock()
	targets := make(map[string]*wire.Codec, len(s.peers))
	for addr, codec := range s.peers {
		if addr == except {
			continue
		}
		targets[addr] = codec
	}
	s.peersMu.Unlock()

	for addr, codec := range targets {
		if err := codec.WriteMessage(msg); err != nil {
			s.logger.Warn("gossip to peer failed", zap.String("peer", addr), zap.Error(err))
		}
	}
}
