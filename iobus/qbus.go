package iobus

import "github.com/rcornwell/ts10/memory"

// QbusAdapter is the VAX KA630 Qbus adapter (§4.6): the same embedded
// Bus for MMIO dispatch and vectoring as UnibusAdapter, but DMA
// addresses are 22-bit physical byte addresses with no page-map
// indirection (the Qbus, unlike the Unibus, maps its 22-bit address
// space directly onto the low 4MB of physical memory).
type QbusAdapter struct {
	Bus
	Mem memory.Store
}

func NewQbusAdapter(mem memory.Store) *QbusAdapter {
	return &QbusAdapter{Mem: mem}
}

// DMARead performs a device-initiated DMA read at a direct physical byte
// address, raising the adapter's NXM-error bit and an IO-space fault
// (§8 S5) if it lies beyond configured memory.
func (q *QbusAdapter) DMARead(addr uint32) (uint64, error) {
	v, err := q.Mem.Read(addr)
	if err != nil {
		q.raiseNXM(addr, false)
		return 0, &BusError{Addr: addr}
	}
	return v, nil
}

func (q *QbusAdapter) DMAWrite(addr uint32, value uint64) error {
	if err := q.Mem.Write(addr, value); err != nil {
		q.raiseNXM(addr, true)
		return &BusError{Addr: addr}
	}
	return nil
}
