package bootstrap

import (
	"net"
	"testing"

	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/internal/node"
	"github.com/dkwon/toychain/testutil"
)

func startTestNode(t *testing.T, bc *chain.Blockchain) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := node.New(bc, zap.NewNop(), nil)
	go srv.Serve(ln)
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func TestFromPeersDownloadsEntireChain(t *testing.T) {
	_, pub := testutil.NewKeyPair(t)
	seed, _ := testutil.NewChainWithGenesis(t, pub, chain.BlockReward(0))

	second := testutil.MineBlock(t, seed.Blocks[0].Hash(), seed.Target,
		[]chain.Transaction{testutil.CoinbaseTx(chain.BlockReward(1), pub)},
		seed.Blocks[0].Header.Timestamp, 1_000_000)
	if err := seed.AddBlock(second); err != nil {
		t.Fatalf("apply second block: %v", err)
	}

	addr := startTestNode(t, seed)

	local := chain.New()
	if err := FromPeers(local, []string{addr}, zap.NewNop()); err != nil {
		t.Fatalf("FromPeers: %v", err)
	}

	if local.BlockHeight() != seed.BlockHeight() {
		t.Fatalf("local height = %d, want %d", local.BlockHeight(), seed.BlockHeight())
	}
	if !local.Blocks[len(local.Blocks)-1].Hash().Equal(seed.Blocks[len(seed.Blocks)-1].Hash()) {
		t.Error("downloaded chain tip does not match seed chain tip")
	}
}

func TestFromPeersWithNoPeersLeavesChainEmpty(t *testing.T) {
	local := chain.New()
	if err := FromPeers(local, nil, zap.NewNop()); err != nil {
		t.Fatalf("FromPeers with no peers: %v", err)
	}
	if local.BlockHeight() != 0 {
		t.Errorf("expected empty chain, got height %d", local.BlockHeight())
	}
}
