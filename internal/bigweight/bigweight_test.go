package bigweight

import "testing"

func TestOrLowAndCompare(t *testing.T) {
	a := New(8)
	a.OrLow(5)
	b := New(8)
	b.OrLow(9)

	if Compare(a, b) >= 0 {
		t.Fatalf("expected a < b, got compare=%d", Compare(a, b))
	}
	if Compare(a, a) != 0 {
		t.Fatalf("expected a == a")
	}
}

func TestShiftLeftGrowThenRightRoundTrips(t *testing.T) {
	w := New(4)
	w.OrLow(0b1011)

	orig := w.Clone()
	w.ShiftLeftGrow(70) // cross a limb boundary
	w.ShiftRight(70)

	if Compare(w, orig) != 0 {
		t.Fatalf("round trip failed: got bits=%v want bits=%v", w.limbs, orig.limbs)
	}
}

func TestShiftLeftGrowDiscardsNothing(t *testing.T) {
	w := FromUint64(10, 0x3FF) // all 10 bits set
	w.ShiftLeftGrow(3)
	if w.Bits() != 13 {
		t.Fatalf("expected declared width 13, got %d", w.Bits())
	}
	// value should now be 0x3FF << 3
	want := New(13)
	want.OrLow(0x3FF << 3)
	if Compare(w, want) != 0 {
		t.Fatalf("shift produced wrong value")
	}
}

func TestAddCommutative(t *testing.T) {
	a := FromUint64(16, 100)
	b := FromUint64(16, 250)

	ab := a.Clone()
	ab.Add(b)
	ba := b.Clone()
	ba.Add(a)

	if Compare(ab, ba) != 0 {
		t.Fatalf("addition not commutative")
	}

	want := FromUint64(16, 350)
	if Compare(ab, want) != 0 {
		t.Fatalf("got %v want %v", ab.limbs, want.limbs)
	}
}

func TestAddCarriesAcrossLimbBoundary(t *testing.T) {
	a := FromUint64(65, 1<<63)
	b := FromUint64(65, 1<<63)
	a.Add(b)

	want := New(65)
	want.ShiftLeftGrow(0)
	want.limbs[1] = 1 // 2^64 as a two-limb value
	if Compare(a, want) != 0 {
		t.Fatalf("carry across limb boundary failed: got %v", a.limbs)
	}
}

func TestSubInverseOfAdd(t *testing.T) {
	a := FromUint64(32, 1000)
	b := FromUint64(32, 437)

	sum := a.Clone()
	sum.Add(b)
	sum.Sub(b)

	if Compare(sum, a) != 0 {
		t.Fatalf("sub did not invert add: got %v want %v", sum.limbs, a.limbs)
	}
}

func TestSubUnderflowPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on underflow")
		}
	}()
	a := FromUint64(8, 1)
	b := FromUint64(8, 2)
	a.Sub(b)
}

func TestAddSignedNegative(t *testing.T) {
	w := FromUint64(16, 50)
	w.AddSigned(-10)
	want := FromUint64(16, 40)
	if Compare(w, want) != 0 {
		t.Fatalf("got %v want %v", w.limbs, want.limbs)
	}
}

func TestResetPreservesWidth(t *testing.T) {
	w := FromUint64(20, 999)
	w.Reset()
	if !w.IsZero() {
		t.Fatalf("expected zero after reset")
	}
	if w.Bits() != 20 {
		t.Fatalf("reset changed declared width")
	}
}

func TestZeroLikeIsZeroSameWidth(t *testing.T) {
	w := FromUint64(40, 12345)
	z := ZeroLike(w)
	if !z.IsZero() {
		t.Fatalf("expected zero")
	}
	if z.Bits() != w.Bits() {
		t.Fatalf("zero_like width mismatch")
	}
}

func TestOrderingTotalAcrossManyValues(t *testing.T) {
	values := []uint64{0, 1, 2, 63, 64, 65, 1000, 1 << 20}
	for i := range values {
		for j := range values {
			a := FromUint64(64, values[i])
			b := FromUint64(64, values[j])
			got := Compare(a, b)
			want := 0
			if values[i] < values[j] {
				want = -1
			} else if values[i] > values[j] {
				want = 1
			}
			if got != want {
				t.Fatalf("compare(%d,%d)=%d want %d", values[i], values[j], got, want)
			}
		}
	}
}
