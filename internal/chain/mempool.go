package chain

import (
	"time"

	"github.com/dkwon/toychain/pkg/hash"
)

// AddToMempool validates and accepts an unconfirmed transaction. Every
// input must reference an existing UTXO, and a transaction
// may not spend the same UTXO twice against itself. The transaction is
// rejected if its outputs would exceed its inputs, checked up front
// against each UTXO's value (unaffected by Marked) so a failing
// transaction never evicts anything. Only once the fee check passes is
// replace-by-fee applied: if an input is already claimed (Marked) by
// another mempool transaction, that earlier transaction is evicted and
// its own inputs unmarked. There is no fee comparison: the later arrival
// always wins. The accepted transaction is then marked, appended, and
// the mempool re-sorted by fee.
func (bc *Blockchain) AddToMempool(tx Transaction) error {
	known := make(map[hash.Hash]struct{}, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if _, ok := bc.UTXOs[in.PrevOutputHash]; !ok {
			return ErrInvalidTransaction
		}
		if _, dup := known[in.PrevOutputHash]; dup {
			return ErrInvalidTransaction
		}
		known[in.PrevOutputHash] = struct{}{}
	}

	var inTotal uint64
	for _, in := range tx.Inputs {
		inTotal += bc.UTXOs[in.PrevOutputHash].Output.Value
	}
	if inTotal < tx.OutputTotal() {
		return ErrInvalidTransaction
	}

	for _, in := range tx.Inputs {
		entry, ok := bc.UTXOs[in.PrevOutputHash]
		if !ok || !entry.Marked {
			continue
		}

		idx := -1
		for i, m := range bc.Mempool {
			for _, claimed := range m.Transaction.Inputs {
				if claimed.PrevOutputHash.Equal(in.PrevOutputHash) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				break
			}
		}

		if idx >= 0 {
			evicted := bc.Mempool[idx]
			for _, evictedIn := range evicted.Transaction.Inputs {
				if e, ok := bc.UTXOs[evictedIn.PrevOutputHash]; ok {
					e.Marked = false
					bc.UTXOs[evictedIn.PrevOutputHash] = e
				}
			}
			bc.Mempool = append(bc.Mempool[:idx], bc.Mempool[idx+1:]...)
		} else {
			entry.Marked = false
			bc.UTXOs[in.PrevOutputHash] = entry
		}
	}

	for _, in := range tx.Inputs {
		entry := bc.UTXOs[in.PrevOutputHash]
		entry.Marked = true
		bc.UTXOs[in.PrevOutputHash] = entry
	}

	bc.Mempool = append(bc.Mempool, MempoolEntry{AddedAt: time.Now(), Transaction: tx})
	bc.sortMempoolByFee()
	return nil
}

// CleanupMempool evicts every mempool transaction older than
// MaxMempoolTransactionAgeSeconds, unmarking the UTXOs it had claimed so
// they become spendable again.
func (bc *Blockchain) CleanupMempool() {
	now := time.Now()
	kept := bc.Mempool[:0]
	var toUnmark []hash.Hash

	for _, entry := range bc.Mempool {
		if now.Sub(entry.AddedAt).Seconds() > float64(MaxMempoolTransactionAgeSeconds) {
			for _, in := range entry.Transaction.Inputs {
				toUnmark = append(toUnmark, in.PrevOutputHash)
			}
			continue
		}
		kept = append(kept, entry)
	}
	bc.Mempool = kept

	for _, h := range toUnmark {
		if entry, ok := bc.UTXOs[h]; ok {
			entry.Marked = false
			bc.UTXOs[h] = entry
		}
	}
}
