/*
 * TS10 - VAX instruction interpreter.
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

// Package vax implements the MicroVAX/KA630 instruction interpreter
// (§4.5 VAX): a representative subset of the instruction set covering
// the arithmetic, logical, move, compare, branch, stack and privileged
// classes, wide enough to exercise every named end-to-end scenario in
// §8. Fetch/decode/execute is a single three-phase Step, generalized
// from the teacher's emu/cpu/cpu.go CycleCPU (check-pending-event, then
// fetch, then execute) onto VAX's byte-stream instruction format instead
// of S/370's fixed two/four/six-byte formats.
package vax

import (
	"github.com/rcornwell/ts10/irq"
	"github.com/rcornwell/ts10/mmu"
)

// PSL is the subset of the VAX Processor Status Longword this
// interpreter tracks: the four condition codes, current IPL, current
// and previous access mode, and the two trap-enable bits named in §8's
// scenarios.
type PSL struct {
	N, Z, V, C bool
	IPL        int
	CurMode    int // 0=kernel .. 3=user; only kernel/user are exercised.
	PrevMode   int
	IV         bool // Integer overflow trap enable.
	FU         bool // Floating underflow trap enable (decoded, never raised by this subset).
	TP         bool // Trace pending.
}

// Pack renders PSL into the longword layout REI expects to pop and the
// exception frame expects to push (§4.4).
func (p PSL) Pack() uint32 {
	var v uint32
	if p.N {
		v |= 1 << 3
	}
	if p.Z {
		v |= 1 << 2
	}
	if p.V {
		v |= 1 << 1
	}
	if p.C {
		v |= 1
	}
	v |= uint32(p.IPL) << 16
	v |= uint32(p.CurMode) << 24
	v |= uint32(p.PrevMode) << 22
	if p.IV {
		v |= 1 << 5
	}
	if p.FU {
		v |= 1 << 6
	}
	if p.TP {
		v |= 1 << 30
	}
	return v
}

// Unpack restores a PSL from a popped longword (REI, §4.5).
func Unpack(v uint32) PSL {
	return PSL{
		N:        v&(1<<3) != 0,
		Z:        v&(1<<2) != 0,
		V:        v&(1<<1) != 0,
		C:        v&1 != 0,
		IPL:      int((v >> 16) & 0x1f),
		CurMode:  int((v >> 24) & 0x3),
		PrevMode: int((v >> 22) & 0x3),
		IV:       v&(1<<5) != 0,
		FU:       v&(1<<6) != 0,
		TP:       v&(1<<30) != 0,
	}
}

// CPU holds the general registers, PSL, and the two subsystems every
// instruction touches: the pager for every operand reference and the
// interrupt controller consulted at each instruction boundary.
type CPU struct {
	R       [16]uint32 // R14 = SP, R15 = PC by convention; no separate name needed.
	PSL     PSL
	Mem     *mmu.VAXPager
	IRQ     *irq.Controller
	Halted  bool
	instrPC uint32    // PC at the start of the instruction currently executing (§8 invariant 2 restart point).
	lastExc Exception // Most recent delivered exception, kept for tests/diagnostics.
}

const (
	regSP = 14
	regPC = 15
)

func NewCPU(mem *mmu.VAXPager, ctl *irq.Controller) *CPU {
	return &CPU{Mem: mem, IRQ: ctl}
}

// mode builds the mmu.Mode for an access of the given kind at the CPU's
// current privilege (§4.3): kernel mode bypasses the user/supervisor
// write-protection checks a walk would otherwise apply.
func (c *CPU) mode(write, instruction bool) mmu.Mode {
	return mmu.Mode{Kernel: c.PSL.CurMode == 0, Write: write, Instruction: instruction}
}

// fetchByte reads one instruction-stream byte at PC and advances PC,
// returning any fault as-is: an instruction-fetch fault never needs a
// register rollback since nothing has yet been committed for this
// instruction.
func (c *CPU) fetchByte() (byte, mmu.Fault) {
	b, fault := c.Mem.ReadByte(c.R[regPC], c.mode(false, true))
	if fault.IsFault() {
		return 0, fault
	}
	c.R[regPC]++
	return b, mmu.Fault{}
}

func (c *CPU) fetchWord() (uint16, mmu.Fault) {
	lo, fault := c.fetchByte()
	if fault.IsFault() {
		return 0, fault
	}
	hi, fault := c.fetchByte()
	if fault.IsFault() {
		return 0, fault
	}
	return uint16(lo) | uint16(hi)<<8, mmu.Fault{}
}

func (c *CPU) fetchLong() (uint32, mmu.Fault) {
	lo, fault := c.fetchWord()
	if fault.IsFault() {
		return 0, fault
	}
	hi, fault := c.fetchWord()
	if fault.IsFault() {
		return 0, fault
	}
	return uint32(lo) | uint32(hi)<<16, mmu.Fault{}
}

// Step runs one instruction boundary (§4.5 Phase 1-3): pending traps and
// interrupts drain before any opcode is fetched, matching the teacher's
// CycleCPU ordering of "check for work, then fetch".
func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if tir := c.IRQ.Evaluate(c.PSL.IPL); tir.Pending() {
		c.deliverInterrupt(tir)
		return
	}
	c.execOne()
}

// deliverInterrupt pushes the exception frame for a pending trap or
// interrupt and transfers control to its vector (§4.4 do_intexc).
func (c *CPU) deliverInterrupt(tir irq.TIR) {
	if tir.Kind == irq.KindInterrupt && tir.Level >= 1 && tir.Level <= 15 {
		c.IRQ.AckSoftware(tir.Level)
	}
	exc := Exception{Vector: tir.Vector}
	if tir.Kind == irq.KindTrap {
		exc.HasParam = true
		exc.Param = tir.TrapArg
		c.IRQ.Trap = irq.TrapNone
	}
	if tir.Kind == irq.KindInterrupt {
		c.PSL.IPL = tir.Level
	}
	// An interrupt/trap is only ever evaluated at an instruction
	// boundary, so the current PC is already the correct restart point.
	c.deliverAt(exc, c.R[regPC])
}

func (c *CPU) execOne() {
	c.instrPC = c.R[regPC]
	op, fault := c.fetchByte()
	if fault.IsFault() {
		c.deliverFault(fault)
		return
	}
	handler, ok := opcodeTable[op]
	if !ok {
		c.deliver(Exception{Vector: irq.VecReservedInst})
		return
	}
	if exc := handler(c); exc != nil {
		c.deliver(*exc)
	}
}

// IsHalted reports whether the CPU has executed a HALT and stopped
// fetching instructions, so a host loop driving either architecture
// through a common interface can tell when to stop calling Step.
func (c *CPU) IsHalted() bool { return c.Halted }

// SetPC transfers control to entry and clears Halted, used by the boot
// loader to start execution at a boot block's entry point (§6).
func (c *CPU) SetPC(entry uint32) {
	c.R[regPC] = entry
	c.Halted = false
}
