package chain

import (
	"testing"

	"github.com/dkwon/toychain/pkg/hash"
)

func TestMerkleRootEmptyIsZero(t *testing.T) {
	if !MerkleRoot(nil).IsZero() {
		t.Error("merkle root of no leaves should be the zero hash")
	}
}

func TestMerkleRootSingleLeafIsNotItself(t *testing.T) {
	leaf, _ := hash.Of("only leaf")
	root := MerkleRoot([]hash.Hash{leaf})
	if root.Equal(leaf) {
		t.Error("a single leaf should still be hashed into a root, not returned verbatim")
	}
}

func TestMerkleRootDuplicatesOddLastLeaf(t *testing.T) {
	a, _ := hash.Of("a")
	b, _ := hash.Of("b")
	c, _ := hash.Of("c")

	threeLeaves := MerkleRoot([]hash.Hash{a, b, c})
	fourLeavesDuplicated := MerkleRoot([]hash.Hash{a, b, c, c})
	if !threeLeaves.Equal(fourLeavesDuplicated) {
		t.Error("an odd-length level should duplicate its last leaf, matching an explicit duplicate")
	}
}

func TestMerkleRootOrderSensitive(t *testing.T) {
	a, _ := hash.Of("a")
	b, _ := hash.Of("b")

	ab := MerkleRoot([]hash.Hash{a, b})
	ba := MerkleRoot([]hash.Hash{b, a})
	if ab.Equal(ba) {
		t.Error("swapping leaf order should change the root")
	}
}

func TestMerkleRootDeterministic(t *testing.T) {
	a, _ := hash.Of("a")
	b, _ := hash.Of("b")
	c, _ := hash.Of("c")

	r1 := MerkleRoot([]hash.Hash{a, b, c})
	r2 := MerkleRoot([]hash.Hash{a, b, c})
	if !r1.Equal(r2) {
		t.Error("hashing the same leaves twice should produce the same root")
	}
}
