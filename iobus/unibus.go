package iobus

import "github.com/rcornwell/ts10/memory"

// unibusPageSize is the Unibus DMA page-map granule: 512 words, matching
// the KS10's UBA page-map entry coverage.
const unibusPageSize = 512

// UnibusAdapter is the PDP-10 KS10 Unibus adapter (§4.6): an embedded
// Bus for MMIO dispatch and vectoring, plus a 64-entry DMA page map that
// translates an 18-bit Unibus address into a physical page frame before
// any device's DMA touches main memory.
type UnibusAdapter struct {
	Bus
	Mem     memory.Store
	PageMap [64]unibusPage
}

// unibusPage is one UBA page-map register: a physical frame number, a
// valid bit, and a direction restriction (some controllers' page-map
// entries are read-only from the device's perspective).
type unibusPage struct {
	Valid    bool
	Frame    uint32
	ReadOnly bool
	Bypass18 bool // 18-bit bypass mode: map is ignored, address passes through directly.
}

func NewUnibusAdapter(mem memory.Store) *UnibusAdapter {
	return &UnibusAdapter{Mem: mem}
}

// SetPage loads UBA page-map register `slot` (0-63), matching the
// console/config-time setup of a controller's DMA window.
func (u *UnibusAdapter) SetPage(slot int, frame uint32, readOnly bool) {
	u.PageMap[slot] = unibusPage{Valid: true, Frame: frame, ReadOnly: readOnly}
}

// Translate converts a Unibus DMA address into a physical word address
// via the page map, reporting a BusError if the covering slot has no
// valid mapping (the real UBA raises a non-existent-memory interrupt).
func (u *UnibusAdapter) Translate(uba uint32, write bool) (uint32, error) {
	slot := int(uba / unibusPageSize)
	if slot >= len(u.PageMap) {
		return 0, &BusError{Addr: uba}
	}
	p := u.PageMap[slot]
	if !p.Valid {
		return 0, &BusError{Addr: uba}
	}
	if write && p.ReadOnly {
		return 0, &BusError{Addr: uba}
	}
	offset := uba % unibusPageSize
	return p.Frame*unibusPageSize + offset, nil
}

// DMARead performs a device-initiated DMA read through the page map,
// raising the adapter's NXM-error bit and an IO-space fault (§8 S5) if
// the covering page-map slot has no valid mapping.
func (u *UnibusAdapter) DMARead(uba uint32) (uint64, error) {
	phys, err := u.Translate(uba, false)
	if err != nil {
		u.raiseNXM(uba, false)
		return 0, err
	}
	return u.Mem.Read(phys)
}

// DMAWrite performs a device-initiated DMA write through the page map,
// raising the adapter's NXM-error bit and an IO-space fault (§8 S5) if
// the covering page-map slot has no valid mapping.
func (u *UnibusAdapter) DMAWrite(uba uint32, value uint64) error {
	phys, err := u.Translate(uba, true)
	if err != nil {
		u.raiseNXM(uba, true)
		return err
	}
	return u.Mem.Write(phys, value)
}
