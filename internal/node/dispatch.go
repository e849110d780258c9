package node

import (
	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/wire"
	"github.com/dkwon/toychain/pkg/btckey"
)

// dispatch handles one request message and returns the response to send
// back, if any. The chain mutex is taken for exactly the duration of the
// logical operation the message implies, per the single reader/writer
// lock discipline.
func (s *Server) dispatch(from string, msg wire.Message) (wire.Message, bool) {
	switch msg.Type {
	case wire.TypeFetchBlock:
		return s.handleFetchBlock(msg.Height)

	case wire.TypeNewBlock:
		if msg.Block == nil {
			return wire.Message{}, false
		}
		s.handleNewBlock(*msg.Block, from)
		return wire.Message{}, false

	case wire.TypeNewTransaction:
		if msg.Transaction == nil {
			return wire.Message{}, false
		}
		s.handleNewTransaction(*msg.Transaction)
		return wire.Message{}, false

	case wire.TypeAskDifference:
		return s.handleAskDifference(msg.Height)

	case wire.TypeFetchTemplate:
		if msg.PublicKey == nil {
			return wire.Message{}, false
		}
		return s.handleFetchTemplate(*msg.PublicKey), true

	case wire.TypeValidateTemplate:
		if msg.Block == nil {
			return wire.Message{}, false
		}
		return s.handleValidateTemplate(*msg.Block)

	case wire.TypeSubmitTemplate:
		if msg.Block == nil {
			return wire.Message{}, false
		}
		s.handleSubmitTemplate(*msg.Block, from)
		return wire.Message{}, false

	default:
		s.logger.Warn("unrecognized message type", zap.Any("type", msg.Type), zap.String("peer", from))
		return wire.Message{}, false
	}
}

func (s *Server) handleFetchBlock(height uint64) (wire.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if height >= uint64(len(s.chain.Blocks)) {
		return wire.Message{}, false
	}
	return wire.NewBlockMessage(s.chain.Blocks[height]), true
}

func (s *Server) handleNewBlock(b chain.Block, from string) {
	s.mu.Lock()
	err := s.chain.AddBlock(b)
	s.mu.Unlock()
	if err != nil {
		s.logger.Debug("rejected gossiped block", zap.Error(err), zap.String("peer", from))
		return
	}
	s.gossipNewBlock(b, from)
}

func (s *Server) handleNewTransaction(tx chain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.chain.AddToMempool(tx); err != nil {
		s.logger.Debug("rejected submitted transaction", zap.Error(err))
	}
}

func (s *Server) handleAskDifference(localHeight uint64) (wire.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	delta := int64(s.chain.BlockHeight()) - int64(localHeight)
	return wire.DifferenceReply(delta), true
}

func (s *Server) handleFetchTemplate(pub btckey.PublicKey) wire.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return wire.TemplateMessage(s.chain.BuildTemplate(pub))
}

func (s *Server) handleValidateTemplate(candidate chain.Block) (wire.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return wire.TemplateValidityReply(s.chain.ValidateTemplate(candidate)), true
}

func (s *Server) handleSubmitTemplate(b chain.Block, from string) {
	s.handleNewBlock(b, from)
}
