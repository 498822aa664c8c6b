package iobus

import (
	"testing"

	"github.com/rcornwell/ts10/mmu"
)

type faultSinkStub struct {
	faults []mmu.Fault
}

func (f *faultSinkStub) NotifyFault(fault mmu.Fault) {
	f.faults = append(f.faults, fault)
}

type fakeDevice struct {
	name string
	reg  [8]uint16
}

func (f *fakeDevice) Name() string { return f.name }

func (f *fakeDevice) ReadRegister(off uint32) uint16 { return f.reg[off/2] }

func (f *fakeDevice) WriteRegister(off uint32, v uint16) { f.reg[off/2] = v }

func TestMMIODispatch(t *testing.T) {
	var b Bus
	d := &fakeDevice{name: "dl11"}
	b.SetMap(d, 0o17777560, 8, 0o300, 4)

	if err := b.Write(0o17777560, 0x41); err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err := b.Read(0o17777560)
	if err != nil || v != 0x41 {
		t.Errorf("got %#x err=%v want 0x41 nil", v, err)
	}
}

func TestMMIOBusTimeout(t *testing.T) {
	var b Bus
	if _, err := b.Read(0o17777560); err == nil {
		t.Errorf("expected bus timeout for unmapped address")
	}
}

func TestGetVectorHighestFirstThenPassiveRelease(t *testing.T) {
	var b Bus
	d1 := &fakeDevice{name: "dz11"}
	d2 := &fakeDevice{name: "dl11"}
	b.SetMap(d1, 0o17760100, 8, 0o340, 5)
	b.SetMap(d2, 0o17777560, 8, 0o300, 5)

	b.SendInterrupt(d2)
	b.SendInterrupt(d1)

	if v := b.GetVector(5); v != 0o340 {
		t.Errorf("got %#o want highest vector 0o340", v)
	}
	if v := b.GetVector(5); v != 0o300 {
		t.Errorf("got %#o want remaining vector 0o300", v)
	}
	if v := b.GetVector(5); v != PassiveRelease {
		t.Errorf("got %#o want PassiveRelease after queue drains", v)
	}
}

// §8 S5: a device DMA-writes through the adapter, the CPU reads the
// same physical location back directly.
func TestUnibusDMAThroughPageMap(t *testing.T) {
	mem := newTestStore(1 << 16)
	u := NewUnibusAdapter(mem)
	u.SetPage(0, 10, false) // slot 0 covers UBA 0-511 -> physical frame 10

	if err := u.DMAWrite(4, 0xdeadbeef); err != nil {
		t.Fatalf("DMAWrite: %v", err)
	}
	phys := uint32(10)*unibusPageSize + 4
	v, err := mem.Read(phys)
	if err != nil || v != 0xdeadbeef {
		t.Errorf("got %#x err=%v want 0xdeadbeef nil at phys %#x", v, err, phys)
	}
}

func TestUnibusDMAWriteDeniedReadOnlyPage(t *testing.T) {
	mem := newTestStore(1 << 16)
	u := NewUnibusAdapter(mem)
	u.SetPage(0, 10, true)
	if err := u.DMAWrite(0, 1); err == nil {
		t.Errorf("expected bus error writing through a read-only UBA page")
	}
}

func TestUnibusDMAUnmappedSlot(t *testing.T) {
	mem := newTestStore(1 << 16)
	u := NewUnibusAdapter(mem)
	if _, err := u.DMARead(0); err == nil {
		t.Errorf("expected bus error reading through an unmapped UBA slot")
	}
}

// §8 S5, second half: invalidating map slot 0 and repeating write_block
// sets the adapter's NXM-error bit and delivers an IO-space page-fail
// fault carrying the IO bit to the registered fault sink.
func TestUnibusDMAUnmappedSlotRaisesIOFault(t *testing.T) {
	mem := newTestStore(1 << 16)
	u := NewUnibusAdapter(mem)
	u.SetPage(0, 10, false)

	if err := u.DMAWrite(4, 0x11); err != nil {
		t.Fatalf("DMAWrite through valid page: %v", err)
	}
	if u.Status.NXMError {
		t.Fatalf("NXMError set after a successful transfer")
	}

	sink := &faultSinkStub{}
	u.SetFaultSink(sink)
	u.PageMap[0] = unibusPage{} // invalidate slot 0

	if err := u.DMAWrite(4, 0x11); err == nil {
		t.Fatalf("expected bus error writing through an invalidated UBA slot")
	}

	if !u.Status.NXMError {
		t.Errorf("Status.NXMError not set after a failed DMA transfer")
	}
	if len(sink.faults) != 1 {
		t.Fatalf("got %d faults, want 1", len(sink.faults))
	}
	f := sink.faults[0]
	if f.Kind != mmu.FaultNXM {
		t.Errorf("fault kind = %v, want FaultNXM", f.Kind)
	}
	if !f.Word.IO {
		t.Errorf("PFW.IO not set on an IO-space fault")
	}
	if !f.Word.Write {
		t.Errorf("PFW.Write not set on a failed write")
	}
	if f.Word.Address != 4 {
		t.Errorf("PFW.Address = %#o, want 4", f.Word.Address)
	}
}

func TestQbusDMADirectAddress(t *testing.T) {
	mem := newTestStore(1 << 16)
	q := NewQbusAdapter(mem)
	if err := q.DMAWrite(0x100, 0x1234); err != nil {
		t.Fatalf("DMAWrite: %v", err)
	}
	v, err := q.DMARead(0x100)
	if err != nil || v != 0x1234 {
		t.Errorf("got %#x err=%v want 0x1234 nil", v, err)
	}
}
