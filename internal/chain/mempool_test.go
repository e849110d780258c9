package chain

import (
	"testing"
	"time"

	"github.com/dkwon/toychain/pkg/btckey"
	"github.com/dkwon/toychain/pkg/hash"
)

func chainWithOneSpendableUTXO(t *testing.T) (*Blockchain, btckey.PrivateKey, Transaction) {
	t.Helper()
	bc := New()
	bc.Target = easyTarget()
	priv, _ := btckey.NewPrivateKey()
	pub := priv.PublicKey()

	fundingTx := Transaction{Outputs: []TransactionOutput{NewTransactionOutput(1000, pub)}}
	genesis := mineBlock(t, hash.Zero, bc.Target, []Transaction{fundingTx}, time.Now().UTC())
	if err := bc.AddBlock(genesis); err != nil {
		t.Fatalf("AddBlock(genesis): %v", err)
	}
	return bc, priv, fundingTx
}

// spendTx spends funding's single output. The UTXO set is keyed by the
// containing transaction's hash, so that is the hash the input references.
func spendTx(t *testing.T, priv btckey.PrivateKey, funding Transaction, value uint64, to btckey.PublicKey) Transaction {
	t.Helper()
	prevHash := funding.Hash()
	sig := priv.Sign(prevHash.Bytes())
	return Transaction{
		Inputs:  []TransactionInput{{PrevOutputHash: prevHash, Signature: sig}},
		Outputs: []TransactionOutput{NewTransactionOutput(value, to)},
	}
}

func TestAddToMempoolRejectsUnknownUTXO(t *testing.T) {
	bc := New()
	priv, _ := btckey.NewPrivateKey()
	pub := priv.PublicKey()
	ghost, _ := hash.Of("never existed")

	tx := Transaction{
		Inputs:  []TransactionInput{{PrevOutputHash: ghost}},
		Outputs: []TransactionOutput{NewTransactionOutput(1, pub)},
	}
	if err := bc.AddToMempool(tx); err != ErrInvalidTransaction {
		t.Errorf("got %v, want ErrInvalidTransaction", err)
	}
}

func TestAddToMempoolAcceptsValidSpend(t *testing.T) {
	bc, priv, funding := chainWithOneSpendableUTXO(t)
	tx := spendTx(t, priv, funding, 500, priv.PublicKey())

	if err := bc.AddToMempool(tx); err != nil {
		t.Fatalf("AddToMempool: %v", err)
	}
	if len(bc.Mempool) != 1 {
		t.Fatalf("mempool size = %d, want 1", len(bc.Mempool))
	}
	entry := bc.UTXOs[funding.Hash()]
	if !entry.Marked {
		t.Error("the spent UTXO should be marked after entering the mempool")
	}
}

func TestAddToMempoolRejectsOutputsExceedingInputs(t *testing.T) {
	bc, priv, funding := chainWithOneSpendableUTXO(t)
	tx := spendTx(t, priv, funding, funding.OutputTotal()+1, priv.PublicKey())

	if err := bc.AddToMempool(tx); err != ErrInvalidTransaction {
		t.Errorf("got %v, want ErrInvalidTransaction", err)
	}
}

func TestAddToMempoolReplaceByFeeEvictsEarlierSpender(t *testing.T) {
	bc, priv, funding := chainWithOneSpendableUTXO(t)
	pub := priv.PublicKey()

	first := spendTx(t, priv, funding, 100, pub)
	if err := bc.AddToMempool(first); err != nil {
		t.Fatalf("AddToMempool(first): %v", err)
	}

	second := spendTx(t, priv, funding, 900, pub)
	if err := bc.AddToMempool(second); err != nil {
		t.Fatalf("AddToMempool(second): %v", err)
	}

	if len(bc.Mempool) != 1 {
		t.Fatalf("mempool size = %d, want 1 (earlier spender evicted)", len(bc.Mempool))
	}
	if !bc.Mempool[0].Transaction.Hash().Equal(second.Hash()) {
		t.Error("the later-arriving transaction should win, regardless of fee")
	}
}

func TestCleanupMempoolEvictsOldEntriesAndUnmarks(t *testing.T) {
	bc, priv, funding := chainWithOneSpendableUTXO(t)
	tx := spendTx(t, priv, funding, 100, priv.PublicKey())
	if err := bc.AddToMempool(tx); err != nil {
		t.Fatalf("AddToMempool: %v", err)
	}

	bc.Mempool[0].AddedAt = time.Now().Add(-time.Duration(MaxMempoolTransactionAgeSeconds+1) * time.Second)
	bc.CleanupMempool()

	if len(bc.Mempool) != 0 {
		t.Errorf("mempool size = %d, want 0 after cleanup", len(bc.Mempool))
	}
	if bc.UTXOs[funding.Hash()].Marked {
		t.Error("UTXO should be unmarked after its claiming transaction is cleaned up")
	}
}
