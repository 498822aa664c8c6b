/*
 * TS10 - PDP-10 (KS10) instruction interpreter.
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

// Package pdp10 implements the KS10 instruction interpreter (§4.5
// PDP-10): 36-bit accumulators, the opcode/AC/indirect/index/address
// instruction word, indirect-chained and indexed effective-address
// computation, and the handful of opcodes needed to exercise §8 S3 and
// the PI fabric. Fetch/decode/execute mirrors cpu/vax's Step shape,
// itself generalized from the teacher's emu/cpu/cpu.go CycleCPU.
package pdp10

import (
	"github.com/rcornwell/ts10/irq"
	"github.com/rcornwell/ts10/mmu"
)

// CPU holds the sixteen accumulators, program counter, processor
// flags, and the two subsystems every instruction touches: the pager
// for every memory reference and the seven-level PI controller
// consulted at each instruction boundary.
type CPU struct {
	AC     [16]uint64 // 36-bit accumulators, low bits significant.
	PC     uint32     // 23-bit virtual instruction address.
	Flags  Flags
	Mem    *mmu.PDP10Pager
	IRQ    *irq.PDP10Controller
	Halted bool

	// Serial is the processor serial number APRID reports (§8 S3);
	// the KS10 default is 4096.
	Serial uint32

	// NoMemoryLevel is the PI level a non-existent-memory reference
	// posts its APR request to (WRAPR sets this via apr_Level in the
	// original); defaults to 1 if never configured.
	NoMemoryLevel int
}

// Flags is the subset of the PDP-10 processor flags word this
// interpreter tracks (§4.5): the four arithmetic condition bits, the
// user/public mode bits, the previous-context bit and a trap-pending bit.
type Flags struct {
	Overflow    bool
	Carry0      bool
	Carry1      bool
	FloatOver   bool
	UserMode    bool
	PublicMode  bool
	PrevContext bool
	TrapPending bool
}

func NewCPU(mem *mmu.PDP10Pager, ctl *irq.PDP10Controller) *CPU {
	return &CPU{Mem: mem, IRQ: ctl, Serial: KS10SerialNumber, NoMemoryLevel: 1}
}

func (c *CPU) mode(write, instruction bool) mmu.Mode {
	return mmu.Mode{Kernel: !c.Flags.UserMode, Write: write, Instruction: instruction}
}

// NotifyFault satisfies iobus.FaultSink: a Unibus adapter's DMA or CSR
// timeout posts the same non-existent-memory APR request a memory
// reference's own mmu.Fault would (§8 S5: "the CPU receives an
// IO-space page-fail-trap with PFW carrying the IO bit").
func (c *CPU) NotifyFault(fault mmu.Fault) {
	c.IRQ.APRRequest[c.NoMemoryLevel] = true
}

// fetchWord reads one 36-bit instruction word at PC and advances PC.
func (c *CPU) fetchWord() (uint64, mmu.Fault) {
	w, fault := c.Mem.ReadWord36(c.PC, c.mode(false, true))
	if fault.IsFault() {
		return 0, fault
	}
	c.PC++
	return w, mmu.Fault{}
}

// instrWord is a decoded PDP-10 instruction word: opcode (9 bits),
// accumulator (4 bits), indirect bit, index register (4 bits), and an
// 18-bit address field (§4.5, the teacher's original_source defs.h
// layout).
type instrWord struct {
	Opcode   uint32
	AC       uint32
	Indirect bool
	Index    uint32
	Address  uint32
}

func decodeWord(w uint64) instrWord {
	return instrWord{
		Opcode:   uint32(w>>27) & 0777,
		AC:       uint32(w>>23) & 017,
		Indirect: w&(1<<22) != 0,
		Index:    uint32(w>>18) & 017,
		Address:  uint32(w) & 0777777,
	}
}

// effectiveAddress resolves an instruction word's address field through
// indexing (added from AC[Index], if nonzero) and then, if the
// indirect bit is set, through one or more indirect words fetched from
// memory, each of which is itself indexed/indirect (§4.5, the same
// chained-indirection rule as the teacher's DAT-adjacent addressing,
// generalized from a flat offset to PDP-10's chain).
func (c *CPU) effectiveAddress(w instrWord) (uint32, mmu.Fault) {
	addr := w.Address
	index := w.Index
	indirect := w.Indirect
	for {
		if index != 0 {
			addr = (addr + uint32(c.AC[index])) & 0777777
		}
		if !indirect {
			return addr, mmu.Fault{}
		}
		word, fault := c.Mem.ReadWord36(addr, c.mode(false, false))
		if fault.IsFault() {
			return 0, fault
		}
		next := decodeWord(word)
		addr = next.Address
		index = next.Index
		indirect = next.Indirect
	}
}

// Step runs one instruction boundary: a pending, enabled PI request
// drains before any opcode is fetched, matching cpu/vax.Step's ordering
// (itself grounded on the teacher's CycleCPU "check pending, then
// fetch" shape).
func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if level, pending := c.IRQ.Evaluate(); pending {
		c.deliverInterrupt(level)
		return
	}
	c.execOne()
}

// deliverInterrupt vectors through the EPT's per-level instruction
// pair (§6 EPTPIBase): the first word there is executed in place of a
// normal fetch, typically a JSR into the handler, with the level
// marked in-progress until the handler dismisses it.
func (c *CPU) deliverInterrupt(level int) {
	c.IRQ.Enter(level)
	vectorAddr := irq.EPTPIBase + uint32(level-1)*2
	w, fault := c.Mem.ReadWord36(vectorAddr, mmu.Mode{Kernel: true, Instruction: true})
	if fault.IsFault() {
		c.Halted = true
		return
	}
	instr := decodeWord(w)
	c.execInstruction(instr)
}

func (c *CPU) execOne() {
	w, fault := c.fetchWord()
	if fault.IsFault() {
		// A non-existent memory reference raises an APR request
		// rather than faulting the running program directly,
		// matching the original's KS10_Trap_NoMemory.
		c.IRQ.APRRequest[c.NoMemoryLevel] = true
		return
	}
	c.execInstruction(decodeWord(w))
}

func (c *CPU) execInstruction(w instrWord) {
	handler, ok := opcodeTable[w.Opcode]
	if !ok {
		c.Halted = true
		return
	}
	handler(c, w)
}

// IsHalted reports whether the CPU has executed a JRST halt and stopped
// fetching instructions, so a host loop driving either architecture
// through a common interface can tell when to stop calling Step.
func (c *CPU) IsHalted() bool { return c.Halted }

// SetPC transfers control to entry and clears Halted, used by the boot
// loader to start execution at a boot block's entry point (§6).
func (c *CPU) SetPC(entry uint32) {
	c.PC = entry
	c.Halted = false
}
