// Package testutil provides fixture builders for test suites outside
// internal/chain; the bootstrap tests use them.
package testutil

import (
	"testing"
	"time"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/pkg/btckey"
	"github.com/dkwon/toychain/pkg/hash"
	"github.com/dkwon/toychain/pkg/u256"
)

// EasyTarget returns a target every hash satisfies, for tests that need
// to mine without burning a real proof-of-work search.
func EasyTarget() u256.U256 {
	return u256.FromBig(u256.MaxBig)
}

// NewKeyPair generates a fresh secp256k1 keypair or fails the test.
func NewKeyPair(t *testing.T) (btckey.PrivateKey, btckey.PublicKey) {
	t.Helper()
	priv, err := btckey.NewPrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return priv, priv.PublicKey()
}

// CoinbaseTx builds a single-output reward transaction paying pub.
func CoinbaseTx(reward uint64, pub btckey.PublicKey) chain.Transaction {
	return chain.Transaction{
		Outputs: []chain.TransactionOutput{chain.NewTransactionOutput(reward, pub)},
	}
}

// MineBlock assembles and mines a block extending prevHash at target,
// failing the test if no satisfying nonce is found within the given step
// budget.
func MineBlock(t *testing.T, prevHash hash.Hash, target u256.U256, txs []chain.Transaction, after time.Time, steps int) chain.Block {
	t.Helper()
	header := chain.BlockHeader{
		Timestamp:     after.Add(time.Second),
		PrevBlockHash: prevHash,
		MerkleRoot:    chain.TransactionMerkleRoot(txs),
		Target:        target,
	}
	if !header.Mine(steps) {
		t.Fatalf("failed to mine fixture block within %d steps", steps)
	}
	return chain.Block{Header: header, Transactions: txs}
}

// NewChainWithGenesis builds a fresh Blockchain at an easy target and
// applies a single genesis block paying reward to pub, returning the
// chain and the hash of the genesis coinbase transaction (the UTXO key
// a caller can immediately spend).
func NewChainWithGenesis(t *testing.T, pub btckey.PublicKey, reward uint64) (*chain.Blockchain, hash.Hash) {
	t.Helper()
	bc := chain.New()
	bc.Target = EasyTarget()

	tx := CoinbaseTx(reward, pub)
	genesis := MineBlock(t, hash.Zero, bc.Target, []chain.Transaction{tx}, time.Now().UTC(), 1_000_000)
	if err := bc.AddBlock(genesis); err != nil {
		t.Fatalf("apply genesis fixture: %v", err)
	}
	return bc, tx.Hash()
}
