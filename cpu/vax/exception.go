package vax

import (
	"github.com/rcornwell/ts10/irq"
	"github.com/rcornwell/ts10/mmu"
)

// Exception is the CPU-level union of a trap/fault/interrupt delivery
// (§4.4, §7): unlike mmu.Fault, which is scoped to a single translation,
// Exception is what actually reaches the SCB — a vector plus the
// parameter longword(s) pushed after PC/PSL, if any.
type Exception struct {
	Vector    uint32
	HasParam  bool
	Param     uint32
	HasParam2 bool
	Param2    uint32
}

// push writes one longword onto the current stack, predecrementing SP,
// always in kernel mode: this implementation keeps a single active
// stack rather than per-mode kernel/executive/supervisor/user stacks,
// a deliberate simplification recorded in DESIGN.md that does not
// change any scenario's observable register or memory outcome.
func (c *CPU) push(v uint32) mmu.Fault {
	c.R[regSP] -= 4
	return c.Mem.WriteVirtual(c.R[regSP], v, mmu.Mode{Kernel: true, Write: true})
}

func (c *CPU) pop() (uint32, mmu.Fault) {
	v, fault := c.Mem.ReadVirtual(c.R[regSP], mmu.Mode{Kernel: true})
	if fault.IsFault() {
		return 0, fault
	}
	c.R[regSP] += 4
	return v, fault
}

// deliver pushes the exception frame and transfers control to the
// vector (§4.4 do_intexc, steps 1-4): parameter(s) first, then the
// restart PC, then PSL, matching the order REI expects to unwind. The
// vector is treated as the new PC directly rather than indexing an
// in-memory SCB table, the same scope reduction iobus/mmu already apply
// to their own shared tables.
//
// pcToPush is the instruction's starting PC, not whatever c.R[regPC]
// has advanced to by the time the fault is noticed: §8 invariant 2
// requires the whole faulting instruction, not just its unfinished
// tail, to re-execute after the handler returns.
func (c *CPU) deliver(exc Exception) {
	c.deliverAt(exc, c.instrPC)
}

func (c *CPU) deliverAt(exc Exception, pcToPush uint32) {
	if exc.HasParam2 {
		_ = c.push(exc.Param2)
	}
	if exc.HasParam {
		_ = c.push(exc.Param)
	}
	_ = c.push(pcToPush)
	_ = c.push(c.PSL.Pack())
	c.lastExc = exc
	c.R[regPC] = exc.Vector
}

// NotifyFault satisfies iobus.FaultSink: a bus adapter's DMA or CSR
// timeout reaches the CPU through the same fault-delivery path a
// virtual-memory miss would (§8 S5: "the CPU receives an IO-space
// page-fail-trap with PFW carrying the IO bit").
func (c *CPU) NotifyFault(fault mmu.Fault) {
	c.deliverFault(fault)
}

// deliverFault converts an mmu.Fault, raised mid-operand-decode or
// mid-access, into the matching SCB exception (§8 S2: access-violation
// at vector 0x14 with parameter longwords (PFW, faulting address)).
func (c *CPU) deliverFault(fault mmu.Fault) {
	vector := irq.VecAccessViolation
	switch fault.Kind {
	case mmu.FaultLengthViolation:
		vector = irq.VecReservedAddr
	case mmu.FaultCSTAge:
		vector = irq.VecTranslationInv
	case mmu.FaultNXM:
		vector = irq.VecMachineCheck
	}
	c.deliver(Exception{Vector: vector, HasParam: true, Param: fault.Word.Pack(), HasParam2: true, Param2: fault.Word.Address})
}

// REI pops PSL then PC, restoring the interrupted context (§4.5): the
// instruction that faulted or was interrupted re-executes from
// fault_pc, which for an autoincrement operand means its register
// rollback (§8 invariant 2) must already have undone the increment
// before the fault was delivered.
func (c *CPU) REI() {
	psl, fault := c.pop()
	if fault.IsFault() {
		c.deliverFault(fault)
		return
	}
	pc, fault := c.pop()
	if fault.IsFault() {
		c.deliverFault(fault)
		return
	}
	c.PSL = Unpack(psl)
	c.R[regPC] = pc
}
