package vax

import (
	"encoding/binary"
	"testing"

	"github.com/rcornwell/ts10/irq"
	"github.com/rcornwell/ts10/memory"
	"github.com/rcornwell/ts10/mmu"
)

// identityMapP0 gives VA 0..pages*512-1 a direct page-for-page mapping
// onto the same physical range, so tests can address memory without
// separately reasoning about a distinct physical layout unless the
// scenario specifically needs one (S2 below does).
func identityMapP0(t *testing.T, mem memory.Store, p *mmu.VAXPager, pages int) {
	t.Helper()
	p.P0BR, p.P0LR = 0x4000, uint32(pages)
	for i := 0; i < pages; i++ {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, 0x80000000|uint32(i))
		if err := mem.WriteBlock(p.P0BR+uint32(i*4), buf); err != nil {
			t.Fatalf("WriteBlock: %v", err)
		}
	}
}

func setLong(t *testing.T, mem memory.Store, addr uint32, v uint32) {
	t.Helper()
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	if err := mem.WriteBlock(addr, buf); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
}

func newTestCPU(t *testing.T, pages int) (*CPU, memory.Store, *mmu.VAXPager) {
	t.Helper()
	mem := memory.NewLinearStore(1<<20, 512)
	pager := mmu.NewVAXPager(mem)
	identityMapP0(t, mem, pager, pages)
	ctl := &irq.Controller{}
	return NewCPU(pager, ctl), mem, pager
}

// §8 S1: R0=0x7FFFFFFF, ADDL2 #1, R0 -> R0=0x80000000, N=1, Z=0, V=1, C=0.
func TestADDL2IntegerOverflow(t *testing.T) {
	cpu, mem, _ := newTestCPU(t, 4)
	cpu.R[0] = 0x7fffffff
	mem.WriteBlock(0, []byte{opADDL2, 0x01, 0x50}) // #1, R0

	cpu.Step()

	if cpu.R[0] != 0x80000000 {
		t.Errorf("R0 = %#x, want 0x80000000", cpu.R[0])
	}
	if !cpu.PSL.V || !cpu.PSL.N || cpu.PSL.Z || cpu.PSL.C {
		t.Errorf("PSL = %+v, want N=1 Z=0 V=1 C=0", cpu.PSL)
	}
}

// §8 S1 continuation: with PSL.IV enabled, the overflow queues an
// arithmetic trap that drains at the next instruction boundary, pushing
// trap code 1 (TrapIntegerOverflow).
func TestADDL2OverflowTrapsWhenIVEnabled(t *testing.T) {
	cpu, mem, _ := newTestCPU(t, 4)
	cpu.PSL.IV = true
	cpu.R[0] = 0x7fffffff
	cpu.R[regSP] = 0x800
	mem.WriteBlock(0, []byte{opADDL2, 0x01, 0x50, opNOP})

	cpu.Step() // ADDL2: completes, queues the trap
	if cpu.R[regPC] != 3 {
		t.Fatalf("PC after ADDL2 = %#x, want 3", cpu.R[regPC])
	}
	cpu.Step() // boundary: trap drains before NOP fetches

	if cpu.R[regPC] != irq.VecArith {
		t.Errorf("PC = %#x, want vector %#x", cpu.R[regPC], irq.VecArith)
	}
	param, fault := cpu.Mem.ReadVirtual(cpu.R[regSP]+8, mmu.Mode{Kernel: true})
	if fault.IsFault() || param != uint32(irq.TrapIntegerOverflow) {
		t.Errorf("trap param = %#x fault=%+v, want %d", param, fault, irq.TrapIntegerOverflow)
	}
}

// §8 S2: an invalid PTE at VA 0x1000 makes MOVL (R1)+, R2 fault with
// access-violation parameters (0x04, 0x1000); R1 and R2 stay untouched
// (autoincrement rolled back); after the OS validates the PTE and the
// handler REIs, the instruction restarts and completes.
func TestMOVLPageFaultRestart(t *testing.T) {
	cpu, mem, pager := newTestCPU(t, 16)
	cpu.R[1] = 0x1000
	cpu.R[2] = 0xaaaaaaaa
	cpu.R[regSP] = 0x800
	mem.WriteBlock(0, []byte{opMOVL, 0x81, 0x52}) // (R1)+, R2

	pteIdx := uint32(0x1000) >> 9
	setLong(t, mem, pager.P0BR+pteIdx*4, 0) // VA 0x1000: invalid

	cpu.Step()

	if cpu.R[regPC] != irq.VecAccessViolation {
		t.Fatalf("PC = %#x, want vector %#x", cpu.R[regPC], irq.VecAccessViolation)
	}
	if cpu.R[1] != 0x1000 {
		t.Errorf("R1 = %#x, want 0x1000 (autoincrement rolled back)", cpu.R[1])
	}
	if cpu.R[2] != 0xaaaaaaaa {
		t.Errorf("R2 = %#x, want unchanged", cpu.R[2])
	}
	param1, _ := cpu.Mem.ReadVirtual(cpu.R[regSP]+8, mmu.Mode{Kernel: true})
	param2, _ := cpu.Mem.ReadVirtual(cpu.R[regSP]+12, mmu.Mode{Kernel: true})
	if param1 != 0x04 {
		t.Errorf("param1 = %#x, want 0x04", param1)
	}
	if param2 != 0x1000 {
		t.Errorf("param2 = %#x, want 0x1000", param2)
	}

	// Validate the PTE: VA 0x1000 now maps to physical frame 0x100
	// (physical byte address 0x20000).
	setLong(t, mem, pager.P0BR+pteIdx*4, 0x80000000|0x100)
	setLong(t, mem, 0x20000, 0x12345678)

	cpu.REI()
	if cpu.R[regPC] != 0 {
		t.Fatalf("PC after REI = %#x, want 0 (restart the faulting instruction)", cpu.R[regPC])
	}

	cpu.Step()
	if cpu.R[1] != 0x1004 {
		t.Errorf("R1 = %#x, want 0x1004 after a completed autoincrement", cpu.R[1])
	}
	if cpu.R[2] != 0x12345678 {
		t.Errorf("R2 = %#x, want 0x12345678", cpu.R[2])
	}
}

// §8 S4: MTPR #4, #SISR sets SISR bit 4; at the next boundary the
// pending software interrupt traps through vector 0x90 (level 4), and
// SISR bit 4 clears.
func TestMTPRSoftwareInterrupt(t *testing.T) {
	cpu, mem, _ := newTestCPU(t, 4)
	cpu.R[regSP] = 0x800
	// MTPR #4, #SISR ; NOP
	mem.WriteBlock(0, []byte{opMTPR, 0x04, byte(procSISR), opNOP})

	cpu.Step() // MTPR
	if cpu.IRQ.SISR&(1<<4) == 0 {
		t.Fatalf("SISR = %#x, want bit 4 set", cpu.IRQ.SISR)
	}

	cpu.Step() // boundary: software interrupt at level 4 preempts the NOP
	want := irq.SoftwareVector(4)
	if want != 0x90 {
		t.Fatalf("test setup: SoftwareVector(4) = %#x, want 0x90", want)
	}
	if cpu.R[regPC] != want {
		t.Errorf("PC = %#x, want %#x", cpu.R[regPC], want)
	}
	if cpu.PSL.IPL != 4 {
		t.Errorf("PSL.IPL = %d, want 4", cpu.PSL.IPL)
	}
	if cpu.IRQ.SISR&(1<<4) != 0 {
		t.Errorf("SISR bit 4 still set after delivery")
	}
}

// §8 invariant 5: every arithmetic/logical/compare instruction leaves
// N/Z/V/C consistent with the actual result, independent of instruction
// class.
func TestConditionCodesSUBL2AndCMPL(t *testing.T) {
	cpu, mem, _ := newTestCPU(t, 4)
	cpu.R[0] = 5
	cpu.R[1] = 5
	mem.WriteBlock(0, []byte{opSUBL2, 0x51, 0x50}) // SUBL2 R1, R0 -> R0 = R0-R1 = 0

	cpu.Step()
	if cpu.R[0] != 0 || !cpu.PSL.Z || cpu.PSL.N || cpu.PSL.V {
		t.Errorf("after SUBL2: R0=%#x PSL=%+v, want 0/Z", cpu.R[0], cpu.PSL)
	}

	cpu.R[regPC] = 0
	cpu.R[0], cpu.R[1] = 3, 7
	mem.WriteBlock(0, []byte{opCMPL, 0x50, 0x51}) // CMPL R0, R1 -> 3-7 is negative

	cpu.Step()
	if !cpu.PSL.N || cpu.PSL.Z {
		t.Errorf("after CMPL: PSL=%+v, want N=1 Z=0", cpu.PSL)
	}
	if cpu.R[0] != 3 {
		t.Errorf("CMPL must not modify its operands: R0=%#x", cpu.R[0])
	}
}

func TestCLRLAndINCL(t *testing.T) {
	cpu, mem, _ := newTestCPU(t, 4)
	cpu.R[0] = 0xdeadbeef
	mem.WriteBlock(0, []byte{opCLRL, 0x50, opINCL, 0x50})

	cpu.Step()
	if cpu.R[0] != 0 || !cpu.PSL.Z {
		t.Errorf("after CLRL: R0=%#x Z=%v, want 0/true", cpu.R[0], cpu.PSL.Z)
	}
	cpu.Step()
	if cpu.R[0] != 1 || cpu.PSL.Z {
		t.Errorf("after INCL: R0=%#x Z=%v, want 1/false", cpu.R[0], cpu.PSL.Z)
	}
}

func TestHALTPrivilegedInUserMode(t *testing.T) {
	cpu, mem, _ := newTestCPU(t, 4)
	cpu.R[regSP] = 0x800
	cpu.PSL.CurMode = 3 // user access mode
	mem.WriteBlock(0, []byte{opHALT})

	cpu.Step()
	if cpu.Halted {
		t.Errorf("HALT must fault, not execute, outside kernel mode")
	}
	if cpu.R[regPC] != irq.VecPrivInst {
		t.Errorf("PC = %#x, want privileged-instruction vector %#x", cpu.R[regPC], irq.VecPrivInst)
	}
}
