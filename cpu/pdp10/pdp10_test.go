package pdp10

import (
	"testing"

	"github.com/rcornwell/ts10/irq"
	"github.com/rcornwell/ts10/memory"
	"github.com/rcornwell/ts10/mmu"
)

func newTestCPU(t *testing.T) (*CPU, memory.Store) {
	t.Helper()
	mem := memory.NewLinearStore(1<<16, 512)
	pager := mmu.NewPDP10Pager(mem)
	ctl := &irq.PDP10Controller{}
	return NewCPU(pager, ctl), mem
}

func setWord(t *testing.T, mem memory.Store, addr uint32, op instrWord) {
	t.Helper()
	w := uint64(op.Opcode&0777)<<27 | uint64(op.AC&017)<<23 | uint64(op.Index&017)<<18 | uint64(op.Address&0777777)
	if op.Indirect {
		w |= 1 << 22
	}
	if err := mem.Write(addr, w); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

// §8 S3: APRID at effective address 100 stores
// (MC_OPTS<<27)|(MC_VER<<18)|(HW_OPTS<<15)|SERIAL at physical word 100.
func TestAPRIDStoresIdentificationWord(t *testing.T) {
	cpu, mem := newTestCPU(t)
	setWord(t, mem, 0, instrWord{Opcode: opAPRID, Address: 0100})

	cpu.Step()

	got, err := mem.Read(0100)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := uint64(0x600)<<27 | uint64(0x130)<<18 | uint64(0)<<15 | uint64(4096)
	if got != want {
		t.Errorf("word at 100 = %#o, want %#o", got, want)
	}
}

func TestMOVEAndMOVEM(t *testing.T) {
	cpu, mem := newTestCPU(t)
	setWord(t, mem, 0, instrWord{Opcode: opMOVEI, AC: 1, Address: 0100})
	setWord(t, mem, 1, instrWord{Opcode: opMOVEM, AC: 1, Address: 050})
	setWord(t, mem, 2, instrWord{Opcode: opMOVE, AC: 2, Address: 050})

	cpu.Step() // MOVEI AC1, 100
	if cpu.AC[1] != 0100 {
		t.Fatalf("AC1 = %#o, want 100", cpu.AC[1])
	}

	cpu.Step() // MOVEM AC1, 50
	v, err := mem.Read(050)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 0100 {
		t.Errorf("C(50) = %#o, want 100", v)
	}

	cpu.Step() // MOVE AC2, 50
	if cpu.AC[2] != 0100 {
		t.Errorf("AC2 = %#o, want 100", cpu.AC[2])
	}
}

func TestJRSTHalt(t *testing.T) {
	cpu, mem := newTestCPU(t)
	setWord(t, mem, 0, instrWord{Opcode: opJRST, AC: jrstHalt, Address: 0})

	cpu.Step()

	if !cpu.Halted {
		t.Errorf("JRST 4, addr must halt the processor")
	}
}

func TestWRAPRSetsLevelAndRequest(t *testing.T) {
	cpu, mem := newTestCPU(t)
	// WRAPR with ea = level 3, SET bit, flag bits nonzero.
	setWord(t, mem, 0, instrWord{Opcode: opWRAPR, Address: uint32(3 | aprSet | 1)})

	cpu.Step()

	if cpu.NoMemoryLevel != 3 {
		t.Errorf("NoMemoryLevel = %d, want 3", cpu.NoMemoryLevel)
	}
	if !cpu.IRQ.APRRequest[3] {
		t.Errorf("APRRequest[3] not set after WRAPR SET")
	}
}
