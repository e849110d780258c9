package node

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/wire"
	"github.com/dkwon/toychain/pkg/btckey"
)

func startTestServer(t *testing.T) (*Server, net.Addr) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	srv := New(chain.New(), zap.NewNop(), nil)
	go srv.Serve(ln)
	return srv, ln.Addr()
}

func TestFetchTemplateReturnsCandidate(t *testing.T) {
	_, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	codec := wire.NewCodec(conn)

	priv, _ := btckey.NewPrivateKey()
	if err := codec.WriteMessage(wire.FetchTemplateMessage(priv.PublicKey())); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := codec.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if resp.Type != wire.TypeTemplate {
		t.Fatalf("response type = %v, want Template", resp.Type)
	}
	if resp.Block == nil || len(resp.Block.Transactions) != 1 {
		t.Error("expected a coinbase-only template on an empty chain")
	}
}

func TestAskDifferenceReportsHeightDelta(t *testing.T) {
	_, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	codec := wire.NewCodec(conn)

	if err := codec.WriteMessage(wire.AskDifference(0)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := codec.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if resp.Type != wire.TypeDifference {
		t.Fatalf("response type = %v, want Difference", resp.Type)
	}
	if resp.Difference != 0 {
		t.Errorf("Difference = %d, want 0 on a freshly created empty chain", resp.Difference)
	}
}
