/*
 * TS10 - MMU / pager shared types.
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

// Package mmu implements the virtual-to-physical translation engine
// (§4.3): a shared translation-cache design in tlb.go, specialized by
// vax.go (VAX P0/P1/S0 region paging) and pdp10.go (TOPS-10/TOPS-20
// section+page-table walk). Grounded on the teacher's DAT walk in
// emu/cpu/cpu_system.go (segment table -> page table, access-bit
// intersection, TLB array), generalized from the 370's single-level
// segment/page scheme to VAX's three base/length register pairs and the
// PDP-10's two-level indirect/shared/immediate pointer walk.
package mmu

// Mode is the access-mode flag set consulted on every translation (§4.3):
// current/previous context, user/executive, read/write,
// instruction/data, IO-word/IO-byte, suppress-fault.
type Mode struct {
	Previous     bool // Use the previous, not current, address space/AC block.
	Kernel       bool // Privileged access check.
	Write        bool // Write access requested (vs. read).
	Instruction  bool // Instruction fetch (vs. data reference).
	IO           bool // IO-space reference; PFW carries the IO bit.
	SuppressFail bool // Probe-only: do not deliver a fault, just report failure.
}

// FaultKind enumerates the reasons a translation can fail (§4.3 step
// numbers noted for traceability).
type FaultKind int

const (
	FaultNone FaultKind = iota
	FaultNotInMemory     // §4.3 step 3: storage-medium field non-zero.
	FaultCSTAge          // §4.3 step 4: CST entry age zero.
	FaultWriteDenied     // §4.3 step 5: write requested, walked entry denies it.
	FaultLengthViolation // Virtual address beyond the mapped region/segment length.
	FaultNXM             // Underlying physical store reported out-of-range.
)

// PFW is the Page Fail Word (§3, §6): a bit-packed diagnostic built at
// fault time. The bit layout is a contract with the guest OS and must not
// drift; field accessors here are deliberately explicit rather than a
// packed struct so each bit's provenance is visible at the call site.
type PFW struct {
	Kernel      bool
	Length      bool // Length-violation fault (vs. true page-not-present).
	Write       bool
	Instruction bool
	Paged       bool
	IO          bool
	Address     uint32 // Faulting virtual address or, for PTE faults, the PTE's address.
}

// Pack renders the PFW into the VAX-format longword delivered to the
// exception handler's parameter slot (§8 S2: parameter longwords
// (0x04, 0x1000) for a write access-violation at VA 0x1000).
func (p PFW) Pack() uint32 {
	var v uint32
	if p.Write {
		v |= 0x04
	}
	if p.Instruction {
		v |= 0x02
	}
	if p.Length {
		v |= 0x01
	}
	if p.IO {
		v |= 0x08
	}
	return v
}

// Fault is returned by Pager methods instead of a Go error: the MMU never
// signals via language error-propagation paths (§7); it is a plain
// return value the CPU interpreter inspects and converts into a
// fault/exception delivery.
type Fault struct {
	Kind    FaultKind
	Word    PFW
	KStack  bool // True if the fault occurred referencing the kernel stack itself (§4.3: escalate to kernel-stack-not-valid).
}

func (f Fault) IsFault() bool { return f.Kind != FaultNone }

// Pager is the common contract both ISA-specific implementations satisfy.
type Pager interface {
	ReadVirtual(va uint32, mode Mode) (value uint32, fault Fault)
	WriteVirtual(va uint32, value uint32, mode Mode) (fault Fault)
	AccessCheck(va uint32, mode Mode) (phys uint32, fault Fault)
	Invalidate(va uint32)
	InvalidateAll()
}
