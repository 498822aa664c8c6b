package mmu

import "github.com/rcornwell/ts10/memory"

// PDP-10 pages are 512 36-bit words (9-bit offset), matching the KS10's
// paging unit; the 23-bit virtual address splits into a 14-bit page
// number and the 9-bit offset.
const (
	pdp10PageShift = 9
	pdp10PageMask  = (1 << pdp10PageShift) - 1
)

// pdp10PTE is a one-word (36-bit, stored in the low 32 bits) page table
// entry: bit 31 valid, bit 30 writable, bit 29 cached (software CST-age
// bit), bits 20-0 page frame number. Two-level walks store one of these
// per leaf page; section pointers use the same shape with bit 28 marking
// an indirect (shared) pointer to another process's page table instead
// of a direct frame.
type pdp10PTE uint32

func (p pdp10PTE) valid() bool    { return p&(1<<31) != 0 }
func (p pdp10PTE) writable() bool { return p&(1<<30) != 0 }
func (p pdp10PTE) cached() bool   { return p&(1<<29) != 0 }
func (p pdp10PTE) indirect() bool { return p&(1<<28) != 0 }
func (p pdp10PTE) frame() uint32  { return uint32(p) & 0x1fffff }

// PDP10Pager implements Pager for the two-level TOPS-10/TOPS-20 section
// and page table walk (§4.3 PDP-10), grounded on the same DAT-walk shape
// as mmu/vax.go (segment table -> page table -> frame), generalized to
// the PDP-10's indirect/shared pointer kinds instead of the 370's flat
// two-level scheme.
type PDP10Pager struct {
	Mem         memory.Store
	TLB         *TLB
	SectionBase uint32 // Physical word address of this process's section pointer table.
	PagingOn    bool
}

func NewPDP10Pager(mem memory.Store) *PDP10Pager {
	return &PDP10Pager{Mem: mem, TLB: NewTLB()}
}

// walk resolves a 23-bit virtual address through the table at
// SectionBase (indexed by virtual page number) and, for an indirect
// entry, through the table at that entry's frame field (again indexed
// by page number), returning the leaf PTE and the
// physical word address it lives at (so the caller can stamp the CST-age
// / written bit).
func (p *PDP10Pager) walk(va uint32, mode Mode) (pte pdp10PTE, pteAddr uint32, fault Fault) {
	page := va >> pdp10PageShift
	sectionAddr := p.SectionBase + page
	raw, err := p.Mem.Read(sectionAddr)
	if err != nil {
		return 0, sectionAddr, Fault{Kind: FaultNXM, Word: PFW{Address: va}}
	}
	pte = pdp10PTE(raw)
	if pte.indirect() {
		leafAddr := pte.frame() + page
		raw, err = p.Mem.Read(leafAddr)
		if err != nil {
			return 0, leafAddr, Fault{Kind: FaultNXM, Word: PFW{Address: va}}
		}
		pte = pdp10PTE(raw)
		pteAddr = leafAddr
	} else {
		pteAddr = sectionAddr
	}

	if !pte.valid() {
		return pte, pteAddr, Fault{Kind: FaultNotInMemory, Word: PFW{Instruction: mode.Instruction, Address: va, Paged: true}}
	}
	if !pte.cached() {
		return pte, pteAddr, Fault{Kind: FaultCSTAge, Word: PFW{Instruction: mode.Instruction, Address: va, Paged: true}}
	}
	if mode.Write && !pte.writable() {
		return pte, pteAddr, Fault{Kind: FaultWriteDenied, Word: PFW{Write: true, Instruction: mode.Instruction, Address: va, Paged: true}}
	}
	return pte, pteAddr, Fault{}
}

func (p *PDP10Pager) AccessCheck(va uint32, mode Mode) (uint32, Fault) {
	if !p.PagingOn {
		return va, Fault{}
	}
	space := uint8(0)
	if mode.Previous {
		space = 1
	}
	page := va >> pdp10PageShift
	if e, ok := p.TLB.Lookup(space, page); ok {
		return e.frame<<pdp10PageShift | (va & pdp10PageMask), Fault{}
	}

	pte, _, fault := p.walk(va, mode)
	if fault.IsFault() {
		return 0, fault
	}
	p.TLB.Insert(space, page, pte.frame(), pte.writable(), false)
	return pte.frame()<<pdp10PageShift | (va & pdp10PageMask), Fault{}
}

func (p *PDP10Pager) ReadVirtual(va uint32, mode Mode) (uint32, Fault) {
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return 0, fault
	}
	v, err := p.Mem.Read(phys)
	if err != nil {
		return 0, Fault{Kind: FaultNXM, Word: PFW{Address: va}}
	}
	return uint32(v), Fault{}
}

func (p *PDP10Pager) WriteVirtual(va uint32, value uint32, mode Mode) Fault {
	mode.Write = true
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return fault
	}
	if err := p.Mem.Write(phys, uint64(value)); err != nil {
		return Fault{Kind: FaultNXM, Word: PFW{Write: true, Address: va}}
	}
	return Fault{}
}

// ReadWord36/WriteWord36 give the instruction interpreter the full
// 36-bit word the Pager interface's uint32 value can't carry (ReadVirtual/
// WriteVirtual exist only to satisfy the shared Pager contract both ISAs
// implement); every PDP-10 instruction fetch and operand reference goes
// through these instead.
func (p *PDP10Pager) ReadWord36(va uint32, mode Mode) (uint64, Fault) {
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return 0, fault
	}
	v, err := p.Mem.Read(phys)
	if err != nil {
		return 0, Fault{Kind: FaultNXM, Word: PFW{Address: va}}
	}
	return v & (1<<36 - 1), Fault{}
}

func (p *PDP10Pager) WriteWord36(va uint32, value uint64, mode Mode) Fault {
	mode.Write = true
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return fault
	}
	if err := p.Mem.Write(phys, value&(1<<36-1)); err != nil {
		return Fault{Kind: FaultNXM, Word: PFW{Write: true, Address: va}}
	}
	return Fault{}
}

func (p *PDP10Pager) Invalidate(va uint32) {
	page := va >> pdp10PageShift
	p.TLB.Invalidate(0, page)
	p.TLB.Invalidate(1, page)
}

func (p *PDP10Pager) InvalidateAll() {
	p.TLB.InvalidateAll()
}
