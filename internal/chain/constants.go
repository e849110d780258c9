package chain

import (
	"math/big"

	"github.com/dkwon/toychain/pkg/u256"
)

// Protocol constants, mirrored from original_source/lib/src/lib.rs.
const (
	// InitialReward is the coinbase reward paid at height 0, denominated
	// in whole coins before the satoshi conversion in BlockReward.
	InitialReward uint64 = 50

	// SatoshisPerCoin converts whole-coin amounts into the indivisible
	// unit that TransactionOutput.Value is denominated in.
	SatoshisPerCoin uint64 = 100_000_000

	// HalvingInterval is the number of blocks between reward halvings.
	HalvingInterval uint64 = 210

	// IdealBlockTimeSeconds is the target spacing between blocks that the
	// difficulty retarget tries to maintain.
	IdealBlockTimeSeconds int64 = 10

	// DifficultyUpdateInterval is the number of blocks between target
	// recalculations.
	DifficultyUpdateInterval uint64 = 50

	// MaxMempoolTransactionAgeSeconds is how long an unconfirmed
	// transaction may sit in the mempool before CleanupMempool evicts it.
	MaxMempoolTransactionAgeSeconds int64 = 600

	// BlockTransactionCap bounds how many transactions (including the
	// coinbase) a mined template may include.
	BlockTransactionCap int = 20
)

// MinTarget is the easiest allowed proof-of-work target: the value with
// its low 208 bits set and its high 48 bits clear (original_source's
// MIN_TARGET = 2^208 - 1, i.e. 0x000000000000FFFF...FFFF with twelve
// leading zero hex digits). No retarget may ever produce a
// target easier than this.
var MinTarget = u256.FromBig(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 208), big.NewInt(1)))

// BlockReward computes the coinbase reward due at the given block height:
// InitialReward coins, converted to satoshis, halved every
// HalvingInterval blocks.
func BlockReward(height uint64) uint64 {
	halvings := height / HalvingInterval
	reward := InitialReward * SatoshisPerCoin
	if halvings >= 64 {
		return 0
	}
	return reward >> halvings
}
