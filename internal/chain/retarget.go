package chain

// TryAdjustTarget recomputes bc.Target every DifficultyUpdateInterval
// blocks, based on how long that window of blocks actually took to mine
// versus IdealBlockTimeSeconds * DifficultyUpdateInterval. The
// new target is computed as target * actualSeconds / idealSeconds using
// exact integer arithmetic (pkg/u256.MulDiv) rather than a float
// round-trip, since a float computation could disagree by an ULP between
// two otherwise-identical node implementations and fork the chain on a
// value every node must agree on bit-for-bit. The result is clamped to
// within [target/4, target*4] to bound how fast difficulty can swing, and
// is never allowed to exceed MinTarget (the easiest permitted target). A
// no-op outside every Nth block or before any blocks exist.
func (bc *Blockchain) TryAdjustTarget() {
	if len(bc.Blocks) == 0 {
		return
	}
	if uint64(len(bc.Blocks))%DifficultyUpdateInterval != 0 {
		return
	}

	start := bc.Blocks[uint64(len(bc.Blocks))-DifficultyUpdateInterval].Header.Timestamp
	end := bc.Blocks[len(bc.Blocks)-1].Header.Timestamp
	actualSeconds := int64(end.Sub(start).Seconds())
	idealSeconds := IdealBlockTimeSeconds * int64(DifficultyUpdateInterval)

	newTarget := bc.Target.MulDiv(actualSeconds, idealSeconds)

	quarter := bc.Target.DivUint64(4)
	quadruple := bc.Target.MulUint64(4)
	switch {
	case newTarget.Cmp(quarter) < 0:
		newTarget = quarter
	case newTarget.Cmp(quadruple) > 0:
		newTarget = quadruple
	}

	if newTarget.Cmp(MinTarget) > 0 {
		newTarget = MinTarget
	}
	bc.Target = newTarget
}
