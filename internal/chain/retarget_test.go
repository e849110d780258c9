package chain

import (
	"testing"
	"time"

	"github.com/dkwon/toychain/pkg/u256"
)

func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func TestTryAdjustTargetNoOpBelowInterval(t *testing.T) {
	bc := New()
	bc.Target = u256.FromUint64(1000)
	for i := uint64(0); i < DifficultyUpdateInterval-1; i++ {
		bc.Blocks = append(bc.Blocks, Block{})
	}
	before := bc.Target
	bc.TryAdjustTarget()
	if bc.Target.Cmp(before) != 0 {
		t.Error("target should not change before the update interval is reached")
	}
}

func TestTryAdjustTargetClampsToQuadruple(t *testing.T) {
	bc := New()
	bc.Target = u256.FromUint64(1000)

	start := int64(0)
	idealWindow := IdealBlockTimeSeconds * int64(DifficultyUpdateInterval)
	// Make the window take vastly longer than ideal so the easing hits the
	// 4x clamp rather than the raw ratio.
	end := start + idealWindow*1000

	for i := uint64(0); i < DifficultyUpdateInterval; i++ {
		ts := start
		if i == DifficultyUpdateInterval-1 {
			ts = end
		}
		bc.Blocks = append(bc.Blocks, Block{Header: BlockHeader{Timestamp: unixUTC(ts)}})
	}

	bc.TryAdjustTarget()
	want := u256.FromUint64(4000)
	if bc.Target.Cmp(want) != 0 {
		t.Errorf("target = %s, want %s (clamped to 4x)", bc.Target, want)
	}
}

func TestTryAdjustTargetNeverExceedsMinTarget(t *testing.T) {
	bc := New()
	bc.Target = MinTarget.DivUint64(2)

	start := int64(0)
	idealWindow := IdealBlockTimeSeconds * int64(DifficultyUpdateInterval)
	end := start + idealWindow*1000

	for i := uint64(0); i < DifficultyUpdateInterval; i++ {
		ts := start
		if i == DifficultyUpdateInterval-1 {
			ts = end
		}
		bc.Blocks = append(bc.Blocks, Block{Header: BlockHeader{Timestamp: unixUTC(ts)}})
	}

	bc.TryAdjustTarget()
	if bc.Target.Cmp(MinTarget) > 0 {
		t.Error("target should never be eased beyond MinTarget")
	}
}
