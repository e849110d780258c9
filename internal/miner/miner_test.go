package miner

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/wire"
	"github.com/dkwon/toychain/pkg/btckey"
	"github.com/dkwon/toychain/pkg/u256"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// stubClient answers every FetchTemplate with an easy-target block and
// records the first SubmitTemplate it receives.
type stubClient struct {
	mu        sync.Mutex
	submitted chan chain.Block
}

func newStubClient() *stubClient {
	return &stubClient{submitted: make(chan chain.Block, 1)}
}

func (s *stubClient) Send(msg wire.Message) (wire.Message, error) {
	switch msg.Type {
	case wire.TypeFetchTemplate:
		block := chain.Block{
			Header: chain.BlockHeader{
				Timestamp: time.Now().UTC(),
				Target:    u256.FromBig(u256.MaxBig),
			},
		}
		return wire.TemplateMessage(block), nil
	case wire.TypeValidateTemplate:
		return wire.TemplateValidityReply(true), nil
	case wire.TypeSubmitTemplate:
		select {
		case s.submitted <- *msg.Block:
		default:
		}
		return wire.Message{}, nil
	default:
		return wire.Message{}, nil
	}
}

func TestMinerFetchesMinesAndSubmits(t *testing.T) {
	client := newStubClient()
	priv, _ := btckey.NewPrivateKey()
	m := New(client, priv.PublicKey(), testLogger())

	done := make(chan struct{})
	go func() {
		m.Run()
		close(done)
	}()

	// Drive the first tick manually instead of waiting out the real poll
	// interval, keeping the test fast.
	m.onTick()

	select {
	case block := <-client.submitted:
		if !block.Header.MeetsTarget() {
			t.Error("submitted block should meet its own target")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the miner to submit a mined block")
	}

	m.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Run to return after Stop")
	}
}
