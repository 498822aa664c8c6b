package word

import "testing"

// S1 scenario: R0 = 0x7FFFFFFF, ADDL2 #1, R0 -> 0x80000000, V=1, C=0.
func TestAddW32Overflow(t *testing.T) {
	sum, cout, vout := AddW32(0x7fffffff, 1, false)
	if sum != 0x80000000 {
		t.Errorf("sum got %#x want %#x", sum, 0x80000000)
	}
	if cout {
		t.Errorf("carry out got true want false")
	}
	if !vout {
		t.Errorf("overflow out got false want true")
	}
}

func TestAddW32Carry(t *testing.T) {
	sum, cout, vout := AddW32(0xffffffff, 1, false)
	if sum != 0 {
		t.Errorf("sum got %#x want 0", sum)
	}
	if !cout {
		t.Errorf("carry out got false want true")
	}
	if vout {
		t.Errorf("overflow out got true want false")
	}
}

func TestSubW32Borrow(t *testing.T) {
	diff, bout, _ := SubW32(0, 1, false)
	if diff != 0xffffffff {
		t.Errorf("diff got %#x want %#x", diff, 0xffffffff)
	}
	if !bout {
		t.Errorf("borrow out got false want true")
	}
}

func TestNegW32(t *testing.T) {
	n, v := NegW32(1)
	if n != 0xffffffff || v {
		t.Errorf("neg(1) got %#x,%v want %#x,false", n, v, 0xffffffff)
	}
	n, v = NegW32(0x80000000)
	if n != 0x80000000 || !v {
		t.Errorf("neg(MinInt32) got %#x,%v want %#x,true", n, v, 0x80000000)
	}
}

func TestMulDivW32(t *testing.T) {
	hi, lo := MulW32(0x10000, 0x10000)
	q, r, overflow := DivW32(hi, lo, 0x10000)
	if overflow {
		t.Fatalf("unexpected overflow")
	}
	if q != 0x10000 || r != 0 {
		t.Errorf("divide got q=%#x r=%#x want q=%#x r=0", q, r, 0x10000)
	}
}

func TestDivByZero(t *testing.T) {
	_, _, overflow := DivW32(0, 100, 0)
	if !overflow {
		t.Errorf("divide by zero should report overflow")
	}
}

func TestShiftArithRightSignExtend(t *testing.T) {
	result, _ := Shift(ShiftArithRight, 0x80000000, 4, 32)
	if result != 0xf8000000 {
		t.Errorf("arith right shift got %#x want %#x", result, 0xf8000000)
	}
}

func TestShiftLogicalLeftTruncates(t *testing.T) {
	result, _ := Shift(ShiftLogicalLeft, 0xf0000000, 4, 32)
	if result != 0 {
		t.Errorf("logical left shift got %#x want 0", result)
	}
}

func TestDepositExtractRoundTrip(t *testing.T) {
	v := Deposit(0, 4, 8, 0xab)
	if Extract(v, 4, 8) != 0xab {
		t.Errorf("extract got %#x want %#x", Extract(v, 4, 8), 0xab)
	}
}

func TestSignExtend(t *testing.T) {
	if got := SignExtend(0xff, 8); got != -1 {
		t.Errorf("sign extend 0xff/8 got %d want -1", got)
	}
	if got := SignExtend(0x7f, 8); got != 127 {
		t.Errorf("sign extend 0x7f/8 got %d want 127", got)
	}
}

func TestPowersOfTen(t *testing.T) {
	if PowersOfTen[0] != 1 {
		t.Errorf("10^0 got %d want 1", PowersOfTen[0])
	}
	if PowersOfTen[1] != 10 {
		t.Errorf("10^1 got %d want 10", PowersOfTen[1])
	}
	if len(PowersOfTen) != 23 {
		t.Errorf("table length got %d want 23", len(PowersOfTen))
	}
}

// §8 Testable property 7: byte-pointer round trip selects consecutive
// S-bit fields independent of starting position modulo S.
func TestBytePointerRoundTrip(t *testing.T) {
	for _, start := range []uint8{0, 3, 6, 33} {
		bp := BytePointer{Size: 9, Position: start, Address: 0x1000}
		seen := map[uint32]map[uint8]bool{}
		for range 10 {
			if seen[bp.Address] == nil {
				seen[bp.Address] = map[uint8]bool{}
			}
			if seen[bp.Address][bp.Position] {
				t.Fatalf("byte pointer revisited (addr=%o pos=%d) before consuming the word", bp.Address, bp.Position)
			}
			seen[bp.Address][bp.Position] = true
			bp.Increment()
		}
	}
}

func TestBytePointerIncrementDecrementInverse(t *testing.T) {
	bp := BytePointer{Size: 9, Position: 27, Address: 0x2000}
	orig := bp
	bp.Increment()
	bp.Decrement()
	if bp != orig {
		t.Errorf("increment/decrement not inverse: got %+v want %+v", bp, orig)
	}
}
