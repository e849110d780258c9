package u256

import "testing"

func TestFromUint64RoundTrip(t *testing.T) {
	u := FromUint64(12345)
	if u.String() != "12345" {
		t.Errorf("String() = %s, want 12345", u.String())
	}
}

func TestLittleEndianRoundTrip(t *testing.T) {
	u := FromUint64(0x0102030405060708)
	le := u.LittleEndian()
	back := FromLittleEndian(le)
	if back.Cmp(u) != 0 {
		t.Errorf("round-trip mismatch: %s != %s", back, u)
	}
	// low byte of the value should land at index 0 in little-endian form
	if le[0] != 0x08 {
		t.Errorf("le[0] = %#x, want 0x08", le[0])
	}
}

func TestLessOrEqual(t *testing.T) {
	small := FromUint64(5)
	big := FromUint64(10)
	if !small.LessOrEqual(big) {
		t.Error("5 <= 10 should hold")
	}
	if big.LessOrEqual(small) {
		t.Error("10 <= 5 should not hold")
	}
	if !small.LessOrEqual(small) {
		t.Error("5 <= 5 should hold")
	}
}

func TestMulDivExact(t *testing.T) {
	// 100 * 3 / 10 = 30, exact integer division, no float round-trip
	target := FromUint64(100)
	got := target.MulDiv(3, 10)
	if got.String() != "30" {
		t.Errorf("MulDiv(100, 3, 10) = %s, want 30", got.String())
	}
}

func TestMulDivTruncatesTowardZero(t *testing.T) {
	target := FromUint64(10)
	// 10 * 7 / 3 = 23.33 -> truncated to 23
	got := target.MulDiv(7, 3)
	if got.String() != "23" {
		t.Errorf("MulDiv(10, 7, 3) = %s, want 23", got.String())
	}
}

func TestFromBigClampsNegative(t *testing.T) {
	neg, ok := FromString("-5")
	_ = ok
	if !neg.IsZero() {
		t.Error("negative values should clamp to zero")
	}
}

func TestMaxBigIsAllOnes(t *testing.T) {
	if MaxBig.BitLen() != 256 {
		t.Errorf("MaxBig.BitLen() = %d, want 256", MaxBig.BitLen())
	}
}
