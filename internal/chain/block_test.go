package chain

import (
	"testing"

	"github.com/dkwon/toychain/pkg/btckey"
)

func TestVerifyCoinbaseTransactionRejectsWrongReward(t *testing.T) {
	priv, _ := btckey.NewPrivateKey()
	pub := priv.PublicKey()

	block := Block{Transactions: []Transaction{
		{Outputs: []TransactionOutput{NewTransactionOutput(1, pub)}},
	}}
	if err := block.VerifyCoinbaseTransaction(0, UTXOSet{}); err != ErrInvalidTransaction {
		t.Errorf("got %v, want ErrInvalidTransaction for an under/over-paying coinbase", err)
	}
}

func TestVerifyCoinbaseTransactionAcceptsExactReward(t *testing.T) {
	priv, _ := btckey.NewPrivateKey()
	pub := priv.PublicKey()

	block := Block{Transactions: []Transaction{
		{Outputs: []TransactionOutput{NewTransactionOutput(BlockReward(0), pub)}},
	}}
	if err := block.VerifyCoinbaseTransaction(0, UTXOSet{}); err != nil {
		t.Errorf("VerifyCoinbaseTransaction: %v", err)
	}
}

func TestVerifyCoinbaseTransactionRejectsInputs(t *testing.T) {
	priv, _ := btckey.NewPrivateKey()
	pub := priv.PublicKey()

	block := Block{Transactions: []Transaction{
		{
			Inputs:  []TransactionInput{{}},
			Outputs: []TransactionOutput{NewTransactionOutput(BlockReward(0), pub)},
		},
	}}
	if err := block.VerifyCoinbaseTransaction(0, UTXOSet{}); err != ErrInvalidTransaction {
		t.Errorf("got %v, want ErrInvalidTransaction when coinbase carries inputs", err)
	}
}

func TestVerifyTransactionsRejectsEmptyBlock(t *testing.T) {
	block := Block{}
	if err := block.VerifyTransactions(0, UTXOSet{}); err != ErrInvalidTransaction {
		t.Errorf("got %v, want ErrInvalidTransaction for an empty block", err)
	}
}

func TestVerifyTransactionsRejectsBadSignature(t *testing.T) {
	minerPriv, _ := btckey.NewPrivateKey()
	miner := minerPriv.PublicKey()
	ownerPriv, _ := btckey.NewPrivateKey()
	attackerPriv, _ := btckey.NewPrivateKey()

	funding := TransactionOutput{Value: 100, PubKey: ownerPriv.PublicKey()}
	utxos := UTXOSet{funding.Hash(): {Output: funding}}

	badSig := attackerPriv.Sign(funding.Hash().Bytes())
	spend := Transaction{
		Inputs:  []TransactionInput{{PrevOutputHash: funding.Hash(), Signature: badSig}},
		Outputs: []TransactionOutput{NewTransactionOutput(100, miner)},
	}
	coinbase := Transaction{Outputs: []TransactionOutput{NewTransactionOutput(BlockReward(0), miner)}}
	block := Block{Transactions: []Transaction{coinbase, spend}}

	if err := block.VerifyTransactions(0, utxos); err != ErrInvalidSignature {
		t.Errorf("got %v, want ErrInvalidSignature for a spend signed by the wrong key", err)
	}
}

func TestVerifyTransactionsAcceptsValidSpendAndFee(t *testing.T) {
	minerPriv, _ := btckey.NewPrivateKey()
	miner := minerPriv.PublicKey()
	ownerPriv, _ := btckey.NewPrivateKey()

	funding := TransactionOutput{Value: 100, PubKey: ownerPriv.PublicKey()}
	utxos := UTXOSet{funding.Hash(): {Output: funding}}

	sig := ownerPriv.Sign(funding.Hash().Bytes())
	spend := Transaction{
		Inputs:  []TransactionInput{{PrevOutputHash: funding.Hash(), Signature: sig}},
		Outputs: []TransactionOutput{NewTransactionOutput(90, miner)},
	}
	coinbase := Transaction{Outputs: []TransactionOutput{NewTransactionOutput(BlockReward(0)+10, miner)}}
	block := Block{Transactions: []Transaction{coinbase, spend}}

	if err := block.VerifyTransactions(0, utxos); err != nil {
		t.Errorf("VerifyTransactions: %v", err)
	}
}
