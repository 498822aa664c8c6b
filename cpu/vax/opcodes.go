package vax

import (
	"github.com/rcornwell/ts10/irq"
	"github.com/rcornwell/ts10/word"
)

// opcode assigns the representative subset of the VAX instruction set
// this interpreter implements (§4.5), using the architecture's real
// byte encodings so a disassembly reads the way a MicroVAX programmer
// would expect: longword arithmetic/logical/move/compare/IPR classes at
// 0xC0-0xDD, the byte and word moves at 0x90/0xB0, branches and jumps at
// 0x10-0x17/0x31, and HALT/NOP/REI at 0x00-0x02.
const (
	opHALT  = 0x00
	opNOP   = 0x01
	opREI   = 0x02
	opBSBB  = 0x10
	opBRB   = 0x11
	opBNEQ  = 0x12
	opBEQL  = 0x13
	opJMP   = 0x17
	opBRW   = 0x31
	opMOVB  = 0x90
	opMOVW  = 0xb0
	opADDL2 = 0xc0
	opADDL3 = 0xc1
	opSUBL2 = 0xc2
	opBISL2 = 0xc8
	opBICL2 = 0xca
	opXORL2 = 0xcc
	opMOVL  = 0xd0
	opCMPL  = 0xd1
	opCLRL  = 0xd4
	opTSTL  = 0xd5
	opINCL  = 0xd6
	opDECL  = 0xd7
	opMTPR  = 0xda
	opMFPR  = 0xdb
	opPUSHL = 0xdd
)

// procSISR is the internal processor register number for the Software
// Interrupt Summary Register, the only IPR this subset's MTPR/MFPR
// implement (§8 S4).
const procSISR = 0x14

// handler runs one decoded opcode's operands and effect, returning a
// non-nil Exception only when the instruction itself raises one
// immediately (privileged-instruction, reserved-addressing); a deferred
// arithmetic trap is instead queued on c.IRQ and drains at the next
// instruction boundary (§4.4), matching how every other interrupt
// source is evaluated.
type handler func(c *CPU) *Exception

var opcodeTable = map[byte]handler{
	opHALT:  execHALT,
	opNOP:   execNOP,
	opREI:   execREI,
	opBRB:   execBRB,
	opBRW:   execBRW,
	opBNEQ:  execBNEQ,
	opBEQL:  execBEQL,
	opJMP:   execJMP,
	opMOVB:  execMOVsize(1),
	opMOVW:  execMOVsize(2),
	opADDL2: execADDL2,
	opADDL3: execADDL3,
	opSUBL2: execSUBL2,
	opBISL2: execBISL2,
	opBICL2: execBICL2,
	opXORL2: execXORL2,
	opMOVL:  execMOVsize(4),
	opCMPL:  execCMPL,
	opCLRL:  execCLRL,
	opTSTL:  execTSTL,
	opINCL:  execINCL,
	opDECL:  execDECL,
	opMTPR:  execMTPR,
	opMFPR:  execMFPR,
	opPUSHL: execPUSHL,
}

func execHALT(c *CPU) *Exception {
	if c.PSL.CurMode != 0 {
		return &Exception{Vector: irq.VecPrivInst}
	}
	c.Halted = true
	return nil
}

func execNOP(c *CPU) *Exception { return nil }

func execREI(c *CPU) *Exception {
	c.REI()
	return nil
}

// branchDisplacement reads a signed byte or word displacement following
// the opcode and returns the target PC, computed from the PC value
// after the displacement itself has been fetched (§4.5 PC-relative). ok
// is false when the fetch itself faulted; the fault has already been
// delivered and the caller must not touch PC again.
func (c *CPU) branchDisplacement8() (target uint32, ok bool) {
	d, fault := c.fetchByte()
	if fault.IsFault() {
		c.deliverFault(fault)
		return 0, false
	}
	return c.R[regPC] + uint32(int32(int8(d))), true
}

func (c *CPU) branchDisplacement16() (target uint32, ok bool) {
	d, fault := c.fetchWord()
	if fault.IsFault() {
		c.deliverFault(fault)
		return 0, false
	}
	return c.R[regPC] + uint32(int32(int16(d))), true
}

func execBRB(c *CPU) *Exception {
	if target, ok := c.branchDisplacement8(); ok {
		c.R[regPC] = target
	}
	return nil
}

func execBRW(c *CPU) *Exception {
	if target, ok := c.branchDisplacement16(); ok {
		c.R[regPC] = target
	}
	return nil
}

func execBNEQ(c *CPU) *Exception {
	target, ok := c.branchDisplacement8()
	if ok && !c.PSL.Z {
		c.R[regPC] = target
	}
	return nil
}

func execBEQL(c *CPU) *Exception {
	target, ok := c.branchDisplacement8()
	if ok && c.PSL.Z {
		c.R[regPC] = target
	}
	return nil
}

func execJMP(c *CPU) *Exception {
	op, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	if op.kind != kindMemory {
		return &Exception{Vector: irq.VecReservedAddr}
	}
	c.R[regPC] = op.ea
	return nil
}

// execMOVsize returns the handler for MOVB/MOVW/MOVL: copy src to dst,
// setting N/Z from the moved value and clearing V (C unaffected), the
// standard VAX move condition-code contract.
func execMOVsize(size int) handler {
	return func(c *CPU) *Exception {
		src, ok := c.decodeOperand(size)
		if !ok {
			return nil
		}
		v, ok := c.readOperand(src, false)
		if !ok {
			return nil
		}
		dst, ok := c.decodeOperand(size)
		if !ok {
			return nil
		}
		if !c.writeOperand(dst, v) {
			return nil
		}
		c.setNZ(v, size)
		c.PSL.V = false
		return nil
	}
}

func execADDL2(c *CPU) *Exception {
	src, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	a, ok := c.readOperand(src, false)
	if !ok {
		return nil
	}
	dst, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	b, ok := c.readOperand(dst, true)
	if !ok {
		return nil
	}
	sum, carry, overflow := word.AddW32(a, b, false)
	if !c.writeOperand(dst, sum) {
		return nil
	}
	c.setNZVC(sum, 4, overflow, carry)
	c.maybeTrapOverflow(overflow)
	return nil
}

func execADDL3(c *CPU) *Exception {
	src1, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	a, ok := c.readOperand(src1, false)
	if !ok {
		return nil
	}
	src2, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	b, ok := c.readOperand(src2, false)
	if !ok {
		return nil
	}
	dst, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	sum, carry, overflow := word.AddW32(a, b, false)
	if !c.writeOperand(dst, sum) {
		return nil
	}
	c.setNZVC(sum, 4, overflow, carry)
	c.maybeTrapOverflow(overflow)
	return nil
}

func execSUBL2(c *CPU) *Exception {
	src, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	b, ok := c.readOperand(src, false)
	if !ok {
		return nil
	}
	dst, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	a, ok := c.readOperand(dst, true)
	if !ok {
		return nil
	}
	diff, borrow, overflow := word.SubW32(a, b, false)
	if !c.writeOperand(dst, diff) {
		return nil
	}
	c.setNZVC(diff, 4, overflow, borrow)
	c.maybeTrapOverflow(overflow)
	return nil
}

// logicalOp implements the shared BISL2/BICL2/XORL2 shape: read both
// operands, combine, write back to the destination, set N/Z, clear V,
// leave C unaffected.
func logicalOp(combine func(a, b uint32) uint32) handler {
	return func(c *CPU) *Exception {
		src, ok := c.decodeOperand(4)
		if !ok {
			return nil
		}
		a, ok := c.readOperand(src, false)
		if !ok {
			return nil
		}
		dst, ok := c.decodeOperand(4)
		if !ok {
			return nil
		}
		b, ok := c.readOperand(dst, true)
		if !ok {
			return nil
		}
		v := combine(a, b)
		if !c.writeOperand(dst, v) {
			return nil
		}
		c.setNZ(v, 4)
		c.PSL.V = false
		return nil
	}
}

var execBISL2 = logicalOp(func(a, b uint32) uint32 { return a | b })
var execBICL2 = logicalOp(func(a, b uint32) uint32 { return ^a & b })
var execXORL2 = logicalOp(func(a, b uint32) uint32 { return a ^ b })

func execCMPL(c *CPU) *Exception {
	op1, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	a, ok := c.readOperand(op1, false)
	if !ok {
		return nil
	}
	op2, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	b, ok := c.readOperand(op2, false)
	if !ok {
		return nil
	}
	diff, borrow, overflow := word.SubW32(a, b, false)
	c.setNZVC(diff, 4, overflow, borrow)
	return nil
}

func execCLRL(c *CPU) *Exception {
	dst, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	if !c.writeOperand(dst, 0) {
		return nil
	}
	c.PSL.N, c.PSL.Z, c.PSL.V = false, true, false
	return nil
}

func execTSTL(c *CPU) *Exception {
	op, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	v, ok := c.readOperand(op, false)
	if !ok {
		return nil
	}
	c.setNZ(v, 4)
	c.PSL.V, c.PSL.C = false, false
	return nil
}

func execINCL(c *CPU) *Exception {
	op, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	a, ok := c.readOperand(op, true)
	if !ok {
		return nil
	}
	sum, _, overflow := word.AddW32(a, 1, false)
	if !c.writeOperand(op, sum) {
		return nil
	}
	c.setNZ(sum, 4)
	c.PSL.V = overflow
	c.maybeTrapOverflow(overflow)
	return nil
}

func execDECL(c *CPU) *Exception {
	op, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	a, ok := c.readOperand(op, true)
	if !ok {
		return nil
	}
	diff, _, overflow := word.SubW32(a, 1, false)
	if !c.writeOperand(op, diff) {
		return nil
	}
	c.setNZ(diff, 4)
	c.PSL.V = overflow
	c.maybeTrapOverflow(overflow)
	return nil
}

func execMTPR(c *CPU) *Exception {
	if c.PSL.CurMode != 0 {
		return &Exception{Vector: irq.VecPrivInst}
	}
	src, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	v, ok := c.readOperand(src, false)
	if !ok {
		return nil
	}
	reg, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	pr, ok := c.readOperand(reg, false)
	if !ok {
		return nil
	}
	if pr == procSISR {
		c.IRQ.SISR = 0
		for level := 1; level <= 15; level++ {
			if v == uint32(level) {
				c.IRQ.RaiseSoftware(level)
			}
		}
	}
	return nil
}

func execMFPR(c *CPU) *Exception {
	if c.PSL.CurMode != 0 {
		return &Exception{Vector: irq.VecPrivInst}
	}
	reg, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	pr, ok := c.readOperand(reg, false)
	if !ok {
		return nil
	}
	dst, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	var v uint32
	if pr == procSISR {
		v = c.IRQ.SISR
	}
	c.writeOperand(dst, v)
	return nil
}

func execPUSHL(c *CPU) *Exception {
	src, ok := c.decodeOperand(4)
	if !ok {
		return nil
	}
	v, ok := c.readOperand(src, false)
	if !ok {
		return nil
	}
	if fault := c.push(v); fault.IsFault() {
		c.deliverFault(fault)
	}
	return nil
}

// setNZ sets the N and Z condition codes from a result of the given
// operand width, the common tail of every VAX move/logical instruction.
func (c *CPU) setNZ(v uint32, size int) {
	v &= sizeMask(size)
	signBit := uint32(1) << (size*8 - 1)
	c.PSL.Z = v == 0
	c.PSL.N = v&signBit != 0
}

func (c *CPU) setNZVC(v uint32, size int, overflow, carry bool) {
	c.setNZ(v, size)
	c.PSL.V = overflow
	c.PSL.C = carry
}

// maybeTrapOverflow queues the deferred integer-overflow trap (§8 S1)
// when PSL.IV is enabled; delivery happens at the next instruction
// boundary through the normal irq.Controller.Evaluate path, exactly
// like every hardware and software interrupt source.
func (c *CPU) maybeTrapOverflow(overflow bool) {
	if overflow && c.PSL.IV {
		c.IRQ.Trap = irq.TrapIntegerOverflow
		c.IRQ.TrapArg = uint32(irq.TrapIntegerOverflow)
	}
}
