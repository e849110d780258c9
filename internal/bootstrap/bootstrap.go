// Package bootstrap implements first-run chain acquisition: dial every
// configured peer, pick the one with the greatest height, and stream its
// blocks in to build a local chain from scratch.
package bootstrap

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/wire"
)

// candidate is a dialed peer and the height it reported.
type candidate struct {
	addr   string
	codec  *wire.Codec
	height uint64
}

// FromPeers dials every address in peers, asks each its height difference
// against a height-zero local chain, and downloads every block from the
// tallest one into bc. If peers is empty, bc is left as a fresh seed
// chain. RebuildUTXOs and TryAdjustTarget are run once after the
// download completes, matching the reference node's startup sequence.
func FromPeers(bc *chain.Blockchain, peers []string, logger *zap.Logger) error {
	if len(peers) == 0 {
		logger.Info("no peer addresses given, starting as a seed node")
		return nil
	}

	var best *candidate
	for _, addr := range peers {
		c, err := dial(addr)
		if err != nil {
			logger.Warn("failed to dial bootstrap peer", zap.String("peer", addr), zap.Error(err))
			continue
		}

		height, err := askHeight(c.codec)
		if err != nil {
			logger.Warn("failed to query bootstrap peer height", zap.String("peer", addr), zap.Error(err))
			c.codec.Close()
			continue
		}
		c.height = height

		if best == nil || c.height > best.height {
			if best != nil {
				best.codec.Close()
			}
			best = c
		} else {
			c.codec.Close()
		}
	}

	if best == nil {
		return fmt.Errorf("bootstrap: no reachable peer among %d configured", len(peers))
	}
	defer best.codec.Close()

	for h := uint64(0); h < best.height; h++ {
		resp, err := request(best.codec, wire.FetchBlock(h))
		if err != nil {
			return fmt.Errorf("fetch block %d from %s: %w", h, best.addr, err)
		}
		if resp.Block == nil {
			return fmt.Errorf("fetch block %d from %s: empty reply", h, best.addr)
		}
		if err := bc.AddBlock(*resp.Block); err != nil {
			return fmt.Errorf("apply block %d from %s: %w", h, best.addr, err)
		}
	}

	bc.RebuildUTXOs()
	bc.TryAdjustTarget()
	logger.Info("bootstrap complete", zap.String("peer", best.addr), zap.Uint64("height", best.height))
	return nil
}

func dial(addr string) (*candidate, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &candidate{addr: addr, codec: wire.NewCodec(conn)}, nil
}

func askHeight(codec *wire.Codec) (uint64, error) {
	resp, err := request(codec, wire.AskDifference(0))
	if err != nil {
		return 0, err
	}
	if resp.Difference < 0 {
		return 0, nil
	}
	return uint64(resp.Difference), nil
}

func request(codec *wire.Codec, msg wire.Message) (wire.Message, error) {
	if err := codec.WriteMessage(msg); err != nil {
		return wire.Message{}, err
	}
	return codec.ReadMessage()
}
