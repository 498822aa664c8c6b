package vax

import (
	"github.com/rcornwell/ts10/irq"
	"github.com/rcornwell/ts10/mmu"
)

// operandKind distinguishes how readOperand/writeOperand resolve a
// decoded specifier.
type operandKind int

const (
	kindLiteral operandKind = iota
	kindRegister
	kindMemory
)

// operand is the resolved form of one VAX operand specifier (§4.5):
// rollback, when set, undoes the register side effect the specifier's
// addressing mode committed (autoincrement/autodecrement) if the
// operand's actual memory access subsequently faults, matching §8
// invariant 2's restart contract.
type operand struct {
	kind     operandKind
	lit      uint32
	reg      int
	ea       uint32
	size     int
	rollback func()
}

// sizeMask returns the bitmask for a 1, 2, or 4-byte operand.
func sizeMask(size int) uint32 {
	switch size {
	case 1:
		return 0xff
	case 2:
		return 0xffff
	default:
		return 0xffffffff
	}
}

// decodeOperand fetches one operand specifier byte and resolves its
// addressing mode (§4.5's subset: short literal, register, register
// deferred, autodecrement, autoincrement/immediate, autoincrement
// deferred/absolute, and byte/word/long displacement, PC-relative when
// the base register is PC). Modes outside this subset (indexed, mode 4)
// raise a reserved-addressing-mode exception rather than being silently
// misdecoded. ok is false whenever a fault or exception has already been
// delivered internally; the caller (an opcode handler) must return nil
// immediately in that case.
func (c *CPU) decodeOperand(size int) (op operand, ok bool) {
	spec, fault := c.fetchByte()
	if fault.IsFault() {
		c.deliverFault(fault)
		return operand{}, false
	}
	mode := spec >> 4
	reg := int(spec & 0xf)

	switch {
	case mode <= 3:
		return operand{kind: kindLiteral, lit: uint32(spec&0x3f) & sizeMask(size)}, true

	case mode == 5:
		return operand{kind: kindRegister, reg: reg, size: size}, true

	case mode == 6:
		return operand{kind: kindMemory, ea: c.R[reg], size: size}, true

	case mode == 7:
		saved := c.R[reg]
		c.R[reg] -= uint32(size)
		ea := c.R[reg]
		return operand{kind: kindMemory, ea: ea, size: size, rollback: func() { c.R[reg] = saved }}, true

	case mode == 8:
		if reg == regPC {
			return c.decodeImmediate(size)
		}
		saved := c.R[reg]
		ea := c.R[reg]
		c.R[reg] += uint32(size)
		return operand{kind: kindMemory, ea: ea, size: size, rollback: func() { c.R[reg] = saved }}, true

	case mode == 9:
		if reg == regPC {
			return c.decodeAbsolute(size)
		}
		saved := c.R[reg]
		ptr := c.R[reg]
		c.R[reg] += 4
		rollback := func() { c.R[reg] = saved }
		target, fault := c.Mem.ReadVirtual(ptr, c.mode(false, false))
		if fault.IsFault() {
			rollback()
			c.deliverFault(fault)
			return operand{}, false
		}
		return operand{kind: kindMemory, ea: target, size: size, rollback: rollback}, true

	case mode == 0xa:
		disp, fault := c.fetchByte()
		if fault.IsFault() {
			c.deliverFault(fault)
			return operand{}, false
		}
		base := c.R[reg]
		return operand{kind: kindMemory, ea: base + uint32(int32(int8(disp))), size: size}, true

	case mode == 0xc:
		disp, fault := c.fetchWord()
		if fault.IsFault() {
			c.deliverFault(fault)
			return operand{}, false
		}
		base := c.R[reg]
		return operand{kind: kindMemory, ea: base + uint32(int32(int16(disp))), size: size}, true

	case mode == 0xe:
		disp, fault := c.fetchLong()
		if fault.IsFault() {
			c.deliverFault(fault)
			return operand{}, false
		}
		base := c.R[reg]
		return operand{kind: kindMemory, ea: base + disp, size: size}, true
	}

	c.deliver(Exception{Vector: irq.VecReservedAddr})
	return operand{}, false
}

// decodeImmediate reads a literal of `size` bytes directly from the
// instruction stream (mode 8, register 15: autoincrement on PC).
func (c *CPU) decodeImmediate(size int) (operand, bool) {
	var v uint32
	var fault mmu.Fault
	switch size {
	case 1:
		var b byte
		b, fault = c.fetchByte()
		v = uint32(b)
	case 2:
		var w uint16
		w, fault = c.fetchWord()
		v = uint32(w)
	default:
		v, fault = c.fetchLong()
	}
	if fault.IsFault() {
		c.deliverFault(fault)
		return operand{}, false
	}
	return operand{kind: kindLiteral, lit: v}, true
}

// decodeAbsolute reads a 4-byte address directly from the instruction
// stream (mode 9, register 15: autoincrement-deferred on PC).
func (c *CPU) decodeAbsolute(size int) (operand, bool) {
	addr, fault := c.fetchLong()
	if fault.IsFault() {
		c.deliverFault(fault)
		return operand{}, false
	}
	return operand{kind: kindMemory, ea: addr, size: size}, true
}

// readOperand loads an operand's value, rolling back any committed
// register side effect if the underlying access faults (§8 invariant 2).
// ok follows the same already-delivered convention as decodeOperand.
func (c *CPU) readOperand(op operand, write bool) (value uint32, ok bool) {
	switch op.kind {
	case kindLiteral:
		return op.lit, true
	case kindRegister:
		return c.R[op.reg] & sizeMask(op.size), true
	default:
		var v uint32
		var fault mmu.Fault
		switch op.size {
		case 1:
			var b byte
			b, fault = c.Mem.ReadByte(op.ea, c.mode(write, false))
			v = uint32(b)
		case 2:
			var w uint16
			w, fault = c.Mem.ReadWord(op.ea, c.mode(write, false))
			v = uint32(w)
		default:
			v, fault = c.Mem.ReadVirtual(op.ea, c.mode(write, false))
		}
		if fault.IsFault() {
			if op.rollback != nil {
				op.rollback()
			}
			c.deliverFault(fault)
			return 0, false
		}
		return v, true
	}
}

// writeOperand stores a value into a register or memory operand,
// rolling back the specifier's register side effect on a fault so the
// whole instruction can be re-executed from scratch after the OS
// resolves the fault (§8 invariant 2, scenario S2).
func (c *CPU) writeOperand(op operand, value uint32) bool {
	value &= sizeMask(op.size)
	switch op.kind {
	case kindRegister:
		c.R[op.reg] = value
		return true
	case kindMemory:
		var fault mmu.Fault
		switch op.size {
		case 1:
			fault = c.Mem.WriteByte(op.ea, byte(value), c.mode(true, false))
		case 2:
			fault = c.Mem.WriteWord(op.ea, uint16(value), c.mode(true, false))
		default:
			fault = c.Mem.WriteVirtual(op.ea, value, c.mode(true, false))
		}
		if fault.IsFault() {
			if op.rollback != nil {
				op.rollback()
			}
			c.deliverFault(fault)
			return false
		}
		return true
	default:
		return true
	}
}
