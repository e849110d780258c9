package chain

import "github.com/dkwon/toychain/pkg/hash"

// UTXOEntry is a single unspent output together with whether it is
// currently claimed by a pending mempool transaction. A marked output
// still exists in the set; a new mempool transaction that spends it
// replaces the transaction that marked it. See internal/chain/mempool.go
// for the replace-by-fee logic that unmarks outputs on eviction.
type UTXOEntry struct {
	Marked bool
	Output TransactionOutput
}

// UTXOSet maps the hash of a transaction to the unspent output it
// produced. As in the reference implementation this is keyed by the
// containing transaction's hash alone, not by (tx hash, output index);
// a preserved quirk: a transaction with more than one output only ever
// keeps its last output reachable, since later inserts for the same
// transaction hash overwrite earlier ones in RebuildUTXOs. Callers that
// need a transaction to fund more than one later spend must split value
// across multiple single-output transactions.
type UTXOSet map[hash.Hash]UTXOEntry
