package mmu

import (
	"encoding/binary"

	"github.com/rcornwell/ts10/memory"
)

// VAX page size is fixed at 512 bytes (9-bit byte offset), the same
// granularity the teacher's memory overlay bitmap uses for its storage
// keys, just narrower.
const (
	vaxPageShift = 9
	vaxPageSize  = 1 << vaxPageShift
	vaxPageMask  = vaxPageSize - 1
)

// region decodes the top two bits of a VAX virtual address (§4.3): P0
// grows up from 0, P1 grows down to the top of process space, S0 is
// system space and requires kernel access.
type region int

const (
	regionP0 region = iota
	regionP1
	regionS0
	regionReserved
)

func decodeRegion(va uint32) region {
	return region(va >> 30)
}

// vaxPTE is the in-memory page table entry format: bit 31 valid, bit 30
// modified, bits 29-27 protection code, bits 20-0 page frame number.
type vaxPTE uint32

func (p vaxPTE) valid() bool    { return p&(1<<31) != 0 }
func (p vaxPTE) modified() bool { return p&(1<<30) != 0 }
func (p vaxPTE) prot() uint32   { return (uint32(p) >> 27) & 0x7 }
func (p vaxPTE) pfn() uint32    { return uint32(p) & 0x1fffff }

// protKernelOnly, protKernelRead and protUserReadAll mirror the VAX protection-code table
// (§4.3): only the codes this implementation's callers actually produce
// are named.
const (
	protKernelOnly  = 1 // KW: kernel read/write, no other access.
	protKernelRead  = 2 // KR: kernel read-only.
	protUserReadAll = 4 // UW: user and kernel read/write.
)

// VAXPager implements Pager for the MicroVAX/KA630 three-region model
// (§4.3 VAX), generalized from the teacher's single segment/page-table
// DAT walk (emu/cpu/cpu_system.go opLRA) into three independently based
// and lengthed regions plus a write-through TLB.
type VAXPager struct {
	Mem  memory.Store
	TLB  *TLB
	P0BR uint32 // Physical byte address of the P0 page table.
	P0LR uint32 // Length, in page table entries, of the P0 region.
	P1BR uint32
	P1LR uint32
	SBR  uint32
	SLR  uint32
}

func NewVAXPager(mem memory.Store) *VAXPager {
	return &VAXPager{Mem: mem, TLB: NewTLB()}
}

// regionIndex returns the page table entry index within the region's
// table for a region-relative virtual page number, and whether it lies
// within the region's configured length. P1 and S0 index from the top of
// their 21-bit region per the real hardware's reverse mapping; P0 indexes
// from the bottom.
func regionIndex(r region, vpnInRegion, length uint32) (uint32, bool) {
	switch r {
	case regionP0:
		return vpnInRegion, vpnInRegion < length
	case regionP1, regionS0:
		top := uint32(0x1fffff)
		idx := length - (top - vpnInRegion) - 1
		if top-vpnInRegion >= length {
			return 0, false
		}
		return idx, true
	default:
		return 0, false
	}
}

// walk performs the page-table lookup for va, returning the decoded PTE
// and its physical memory address (needed to stamp the modify bit), or a
// fault if the region length is exceeded or the PTE is not resident.
func (p *VAXPager) walk(va uint32, mode Mode) (pte vaxPTE, pteAddr uint32, fault Fault) {
	r := decodeRegion(va)
	vpnInRegion := (va >> vaxPageShift) & 0x1fffff

	var base, length uint32
	switch r {
	case regionP0:
		base, length = p.P0BR, p.P0LR
	case regionP1:
		base, length = p.P1BR, p.P1LR
	case regionS0:
		if !mode.Kernel && mode.Write {
			return 0, 0, Fault{Kind: FaultWriteDenied, Word: PFW{Write: true, Instruction: mode.Instruction, Address: va}}
		}
		base, length = p.SBR, p.SLR
	default:
		return 0, 0, Fault{Kind: FaultLengthViolation, Word: PFW{Length: true, Instruction: mode.Instruction, Address: va}}
	}

	idx, ok := regionIndex(r, vpnInRegion, length)
	if !ok {
		return 0, 0, Fault{Kind: FaultLengthViolation, Word: PFW{Length: true, Instruction: mode.Instruction, Address: va}}
	}

	pteAddr = base + idx*4
	raw, err := p.Mem.ReadBlock(pteAddr, 4)
	if err != nil {
		return 0, pteAddr, Fault{Kind: FaultNXM, Word: PFW{Address: va}}
	}
	pte = vaxPTE(binary.LittleEndian.Uint32(raw))
	if !pte.valid() {
		// §8 S2: the PFW's bit 2 marks "access violation" for any
		// not-present reference, read or write alike, not just a write.
		return pte, pteAddr, Fault{Kind: FaultNotInMemory, Word: PFW{Write: true, Instruction: mode.Instruction, Address: va}}
	}
	if mode.Write && pte.prot() == protKernelRead {
		return pte, pteAddr, Fault{Kind: FaultWriteDenied, Word: PFW{Write: true, Instruction: mode.Instruction, Address: va}}
	}
	if mode.Write && pte.prot() == protKernelOnly && !mode.Kernel {
		return pte, pteAddr, Fault{Kind: FaultWriteDenied, Word: PFW{Write: true, Instruction: mode.Instruction, Address: va}}
	}
	return pte, pteAddr, Fault{}
}

// AccessCheck resolves va to a physical byte address without performing
// the access, consulting the TLB first and falling back to walk on a
// miss (§8 invariant 1: repeated reads between invalidations are stable).
func (p *VAXPager) AccessCheck(va uint32, mode Mode) (uint32, Fault) {
	space := uint8(0)
	if mode.Previous {
		space = 1
	}
	page := va >> vaxPageShift
	// A cached entry serves the access directly unless this is the first
	// write to a clean page: that one case must still reach walk so the
	// PTE's modify bit gets stamped before the entry is marked writable.
	if e, ok := p.TLB.Lookup(space, page); ok && (!mode.Write || e.writable) {
		return e.frame<<vaxPageShift | (va & vaxPageMask), Fault{}
	}

	pte, pteAddr, fault := p.walk(va, mode)
	if fault.IsFault() {
		return 0, fault
	}
	if mode.Write && !pte.modified() {
		newPTE := pte | (1 << 30)
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(newPTE))
		_ = p.Mem.WriteBlock(pteAddr, buf)
	}
	p.TLB.Insert(space, page, pte.pfn(), mode.Write, !mode.Kernel)
	return pte.pfn()<<vaxPageShift | (va & vaxPageMask), Fault{}
}

func (p *VAXPager) ReadVirtual(va uint32, mode Mode) (uint32, Fault) {
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return 0, fault
	}
	raw, err := p.Mem.ReadBlock(phys, 4)
	if err != nil {
		return 0, Fault{Kind: FaultNXM, Word: PFW{Address: va}}
	}
	return binary.LittleEndian.Uint32(raw), Fault{}
}

func (p *VAXPager) WriteVirtual(va uint32, value uint32, mode Mode) Fault {
	mode.Write = true
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return fault
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, value)
	if err := p.Mem.WriteBlock(phys, buf); err != nil {
		return Fault{Kind: FaultNXM, Word: PFW{Write: true, Address: va}}
	}
	return Fault{}
}

func (p *VAXPager) Invalidate(va uint32) {
	space := uint8(0)
	p.TLB.Invalidate(space, va>>vaxPageShift)
	p.TLB.Invalidate(1, va>>vaxPageShift)
}

func (p *VAXPager) InvalidateAll() {
	p.TLB.InvalidateAll()
}

// ReadByte/ReadWord/WriteByte/WriteWord give the instruction interpreter
// the sub-longword access VAX's byte-addressed operand specifiers need;
// they are not part of the Pager interface (which speaks in longwords)
// since only cpu/vax, not the MMU's own invariants, cares about
// granularity narrower than a word.
func (p *VAXPager) ReadByte(va uint32, mode Mode) (byte, Fault) {
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return 0, fault
	}
	raw, err := p.Mem.ReadBlock(phys, 1)
	if err != nil {
		return 0, Fault{Kind: FaultNXM, Word: PFW{Address: va}}
	}
	return raw[0], Fault{}
}

func (p *VAXPager) WriteByte(va uint32, v byte, mode Mode) Fault {
	mode.Write = true
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return fault
	}
	if err := p.Mem.WriteBlock(phys, []byte{v}); err != nil {
		return Fault{Kind: FaultNXM, Word: PFW{Write: true, Address: va}}
	}
	return Fault{}
}

func (p *VAXPager) ReadWord(va uint32, mode Mode) (uint16, Fault) {
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return 0, fault
	}
	raw, err := p.Mem.ReadBlock(phys, 2)
	if err != nil {
		return 0, Fault{Kind: FaultNXM, Word: PFW{Address: va}}
	}
	return binary.LittleEndian.Uint16(raw), Fault{}
}

func (p *VAXPager) WriteWord(va uint32, v uint16, mode Mode) Fault {
	mode.Write = true
	phys, fault := p.AccessCheck(va, mode)
	if fault.IsFault() {
		return fault
	}
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	if err := p.Mem.WriteBlock(phys, buf); err != nil {
		return Fault{Kind: FaultNXM, Word: PFW{Write: true, Address: va}}
	}
	return Fault{}
}
