/*
 * TS10 - Word and arithmetic primitives.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package word implements the 32-bit (VAX) and 36-bit (PDP-10) arithmetic
// primitives shared by both instruction interpreters: add/sub/neg/shift with
// explicit carry and overflow reporting, field deposit/extract, and the
// PDP-10 byte-pointer format. Every operation is total: callers inspect the
// returned flags instead of relying on panics or silent wraparound.
package word

// Mask36 keeps a value within the 36-bit PDP-10 word.
const Mask36 = uint64(1)<<36 - 1

// SignBit36 is the sign bit of a 36-bit word.
const SignBit36 = uint64(1) << 35

// AddW32 adds two 32-bit values with an input carry and reports the output
// carry (unsigned overflow) and two's-complement overflow.
func AddW32(a, b uint32, cin bool) (sum uint32, cout, vout bool) {
	wide := uint64(a) + uint64(b)
	if cin {
		wide++
	}
	sum = uint32(wide)
	cout = wide > 0xffffffff
	// Signed overflow: operands share a sign and the result's sign differs.
	vout = ((a ^ sum) & (b ^ sum) & 0x80000000) != 0
	return sum, cout, vout
}

// SubW32 computes a-b-bin (VAX SBWC borrow-in convention) reporting the
// output borrow and two's-complement overflow.
func SubW32(a, b uint32, bin bool) (diff uint32, bout, vout bool) {
	nb := ^b
	cin := !bin
	diff, cout, _ := AddW32(a, nb, cin)
	bout = !cout
	vout = ((a ^ b) & (a ^ diff) & 0x80000000) != 0
	return diff, bout, vout
}

// NegW32 negates a 32-bit value, reporting overflow (only true for
// MinInt32, which has no positive two's-complement counterpart).
func NegW32(a uint32) (neg uint32, vout bool) {
	neg = ^a + 1
	vout = a == 0x80000000
	return neg, vout
}

// MulW32 performs an unsigned single-to-double-precision multiply.
func MulW32(a, b uint32) (hi, lo uint32) {
	wide := uint64(a) * uint64(b)
	return uint32(wide >> 32), uint32(wide)
}

// MulS32 performs a signed single-to-double-precision multiply.
func MulS32(a, b int32) (hi, lo uint32) {
	wide := int64(a) * int64(b)
	return uint32(uint64(wide) >> 32), uint32(uint64(wide))
}

// DivW32 divides a double-precision (hi:lo) dividend by a single-precision
// divisor, reporting divide overflow instead of panicking on overflow/zero.
func DivW32(hi, lo, divisor uint32) (quotient, remainder uint32, overflow bool) {
	if divisor == 0 {
		return 0, 0, true
	}
	dividend := (uint64(hi) << 32) | uint64(lo)
	q := dividend / uint64(divisor)
	if q > 0xffffffff {
		return 0, 0, true
	}
	return uint32(q), uint32(dividend % uint64(divisor)), false
}

// DivS32 is the signed double-to-single divide used by VAX EDIV.
func DivS32(hi, lo int32, divisor int32) (quotient, remainder int32, overflow bool) {
	if divisor == 0 {
		return 0, 0, true
	}
	dividend := (int64(hi) << 32) | int64(uint32(lo))
	q := dividend / int64(divisor)
	if q > 0x7fffffff || q < -0x80000000 {
		return 0, 0, true
	}
	return int32(q), int32(dividend % int64(divisor)), false
}

// ShiftKind selects the semantics of Shift.
type ShiftKind int

const (
	ShiftLogicalLeft ShiftKind = iota
	ShiftLogicalRight
	ShiftArithLeft
	ShiftArithRight
	ShiftRotateLeft
	ShiftRotateRight
)

// Shift performs a single or double precision (up to 72 bits for PDP-10
// double-word shifts) shift/rotate, returning the result and whether any
// bit shifted out of the MSB of an arithmetic left shift disagreed with the
// sign (VAX ASHL/ASHQ overflow).
func Shift(kind ShiftKind, value uint64, bits int, width int) (result uint64, overflow bool) {
	if width <= 0 || width > 64 {
		width = 64
	}
	mask := uint64(1)<<width - 1
	value &= mask
	if bits == 0 {
		return value, false
	}
	neg := bits < 0
	n := bits
	if neg {
		n = -n
	}
	if n >= width {
		n = width
	}
	switch kind {
	case ShiftLogicalLeft:
		if neg {
			return (value >> n) & mask, false
		}
		result = (value << n) & mask
		return result, false
	case ShiftLogicalRight:
		if neg {
			result = (value << n) & mask
			return result, false
		}
		return (value >> n) & mask, false
	case ShiftArithLeft:
		signMask := uint64(1) << (width - 1)
		sign := value & signMask
		result = value
		for range make([]struct{}, n) {
			next := (result << 1) & mask
			if (result & signMask) != (sign) {
				overflow = true
			}
			result = next
			if sign != 0 {
				result |= signMask
			}
		}
		if sign != 0 {
			result |= signMask
		}
		return result, overflow
	case ShiftArithRight:
		signMask := uint64(1) << (width - 1)
		sign := value & signMask
		result = value >> n
		if sign != 0 {
			fill := mask &^ (mask >> n)
			result |= fill
		}
		return result, false
	case ShiftRotateLeft:
		n %= width
		return ((value << n) | (value >> (width - n))) & mask, false
	case ShiftRotateRight:
		n %= width
		return ((value >> n) | (value << (width - n))) & mask, false
	}
	return value, false
}

// Extract pulls a field of size bits starting at bit position pos (0 =
// least significant bit) out of value.
func Extract(value uint64, pos, size int) uint64 {
	if size <= 0 {
		return 0
	}
	mask := uint64(1)<<size - 1
	return (value >> pos) & mask
}

// Deposit writes field (size bits wide) into value at bit position pos,
// returning the updated value.
func Deposit(value uint64, pos, size int, field uint64) uint64 {
	if size <= 0 {
		return value
	}
	mask := uint64(1)<<size - 1
	value &^= mask << pos
	value |= (field & mask) << pos
	return value
}

// SignExtend sign-extends the low `bits`-wide field of value to 64 bits.
func SignExtend(value uint64, bits int) int64 {
	if bits <= 0 || bits >= 64 {
		return int64(value)
	}
	shift := 64 - bits
	return int64(value<<shift) >> shift
}

// ZeroExtend masks value to its low `bits`-wide field.
func ZeroExtend(value uint64, bits int) uint64 {
	if bits <= 0 || bits >= 64 {
		return value
	}
	return value & (uint64(1)<<bits - 1)
}

// PowersOfTen is the 23-entry power-of-ten ladder (10^0 .. 10^22), held as
// single 36-bit words: each entry is the power computed in uint64 and
// masked to 36 bits, so entries from 10^11 upward keep only their low 36
// bits (and from 10^20 upward the uint64 product has already wrapped).
// No double-precision high word is kept.
var PowersOfTen = computePowersOfTen()

func computePowersOfTen() [23]uint64 {
	var table [23]uint64
	v := uint64(1)
	for i := range table {
		table[i] = v & Mask36
		v *= 10
	}
	return table
}

// BytePointer is the PDP-10 byte-pointer format: a 6-bit size (S), 6-bit
// position (P), and an 18-bit (or global 30-bit in the KS10 extended
// addressing case) word address.
type BytePointer struct {
	Size     uint8  // Field width in bits (1-36).
	Position uint8  // Bit position of the field's low-order bit within the word.
	Address  uint32 // Word address the pointer currently references.
}

// Increment advances the byte pointer to the next consecutive field,
// wrapping the bit position within the word and advancing the word address
// on underflow, following the PDP-10 byte-pointer format exactly: position
// decreases towards zero as successive bytes are consumed left-to-right.
func (bp *BytePointer) Increment() {
	if int(bp.Position)-int(bp.Size) < 0 {
		bp.Position = 36 - bp.Size
		bp.Address++
	} else {
		bp.Position -= bp.Size
	}
}

// Decrement adds Size back to the position, used by byte-pointer backup on
// instruction restart. It reverses an Increment that stayed within one
// word; after an Increment that moved to the next word it leaves the
// address as is and only raises the position. It steps back to position 0
// of the previous word only when adding Size would pass bit 36.
func (bp *BytePointer) Decrement() {
	if bp.Position+bp.Size > 36 {
		bp.Position = 0
		bp.Address--
	} else {
		bp.Position += bp.Size
	}
}
