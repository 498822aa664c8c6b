/*
 * TS10 - IO bridge adapter shared types.
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

// Package iobus implements the IO bridge adapter (§4.6): an MMIO dispatch
// table keyed by address range plus a BR4-BR7 vectored-interrupt
// aggregator, specialized by unibus.go (PDP-10 Unibus, with a 64-slot DMA
// page map) and qbus.go (VAX Qbus, direct physical DMA). Grounded on the
// teacher's channel/subchannel dispatch in emu/sys_channel/channel.go —
// same shape (a device table, a pending-status/IRQ bitmap, an
// acknowledge-and-clear protocol) generalized from 370 channel-command
// words to PDP-11-style register-window MMIO and vectored BR interrupts.
package iobus

import (
	"fmt"

	"github.com/rcornwell/ts10/mmu"
)

// MMIODevice is the contract every device shim in the device/ package
// satisfies (§4.6: "abstract MMIO region with read/write/interrupt").
type MMIODevice interface {
	Name() string
	ReadRegister(offset uint32) uint16
	WriteRegister(offset uint32, value uint16)
}

// region is one device's registered CSR window.
type region struct {
	base   uint32
	count  uint32
	dev    MMIODevice
	vector uint32
	br     int
}

// PassiveRelease is returned by GetVector when a BR level has no pending
// IRQ at acknowledge time (§4.6: "spurious", CPU treats as no-op/resume).
const PassiveRelease uint32 = 0

// StatusRegister is the adapter's status register (§4.6): pending-
// interrupt-high/low summary bits and the PI/IPL level each was posted
// at, an init-strobe latch, and the NXM-error bit a failed DMA transfer
// or unanswered CSR reference sets.
type StatusRegister struct {
	PendingHigh bool
	PendingLow  bool
	LevelHigh   int
	LevelLow    int
	InitStrobe  bool
	NXMError    bool
}

// FaultSink receives the MMU fault a failed IO-space reference
// synthesizes (§4.6: "the adapter sets its NXM-error bit and posts a
// page-fail-trap to the CPU with a PFW that carries the IO flag and the
// faulting address"). The CPU registers itself via SetFaultSink so a
// bus timeout reaches the same fault path a virtual-memory miss would.
type FaultSink interface {
	NotifyFault(fault mmu.Fault)
}

// Bus is the shared MMIO-dispatch-plus-vectored-interrupt machinery both
// UnibusAdapter and QbusAdapter embed; the DMA page-translation step is
// the only part that differs between the two and lives in their own
// files.
type Bus struct {
	regions []region
	irq     [8][]uint32 // Pending vectors per BR level 4-7 (indices 0-3 unused for symmetry with BR numbering).

	Status      StatusRegister
	Maintenance uint16
	faultSink   FaultSink
}

// SetFaultSink registers the CPU (or a stand-in) to receive NXM faults
// raised by a failed DMA or CSR reference.
func (b *Bus) SetFaultSink(sink FaultSink) {
	b.faultSink = sink
}

// raiseNXM sets the status register's NXM-error bit and, if a fault sink
// is registered, delivers an IO-space page-fail-trap carrying the
// faulting address (§8 S5).
func (b *Bus) raiseNXM(addr uint32, write bool) {
	b.Status.NXMError = true
	if b.faultSink == nil {
		return
	}
	b.faultSink.NotifyFault(mmu.Fault{
		Kind: mmu.FaultNXM,
		Word: mmu.PFW{IO: true, Write: write, Address: addr},
	})
}

// SetMap registers a device's CSR window and its interrupt vector/BR
// level, matching the teacher's per-device set_map call (§4.6).
func (b *Bus) SetMap(dev MMIODevice, base, count, vector uint32, br int) {
	b.regions = append(b.regions, region{base: base, count: count, dev: dev, vector: vector, br: br})
}

func (b *Bus) find(addr uint32) (region, bool) {
	for _, r := range b.regions {
		if addr >= r.base && addr < r.base+r.count {
			return r, true
		}
	}
	return region{}, false
}

// BusError reports a reference to an address with no registered device,
// synthesizing the bus-timeout behavior real PDP-11/VAX peripherals see
// on an unanswered UBA/Qbus cycle.
type BusError struct {
	Addr uint32
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bus timeout at %#o", e.Addr)
}

// Read dispatches an MMIO register read, offset from the matching
// device's base.
func (b *Bus) Read(addr uint32) (uint16, error) {
	r, ok := b.find(addr)
	if !ok {
		b.raiseNXM(addr, false)
		return 0, &BusError{Addr: addr}
	}
	return r.dev.ReadRegister(addr - r.base), nil
}

// Write dispatches an MMIO register write.
func (b *Bus) Write(addr uint32, value uint16) error {
	r, ok := b.find(addr)
	if !ok {
		b.raiseNXM(addr, true)
		return &BusError{Addr: addr}
	}
	r.dev.WriteRegister(addr-r.base, value)
	return nil
}

// SendInterrupt posts dev's registered vector on its BR level, matching
// a device calling send_interrupt(vec_index) (§4.6).
func (b *Bus) SendInterrupt(dev MMIODevice) {
	for _, r := range b.regions {
		if r.dev == dev {
			b.irq[r.br] = append(b.irq[r.br], r.vector)
			return
		}
	}
}

// Pending reports whether any vector is queued at br.
func (b *Bus) Pending(br int) bool {
	return len(b.irq[br]) > 0
}

// GetVector returns and clears the highest-numbered pending vector at br
// (§4.6: "the adapter returns the highest-numbered pending vector at
// that level and clears its IRQ bit"), or PassiveRelease if none.
func (b *Bus) GetVector(br int) uint32 {
	q := b.irq[br]
	if len(q) == 0 {
		return PassiveRelease
	}
	best := 0
	for i, v := range q {
		if v > q[best] {
			best = i
		}
	}
	vec := q[best]
	b.irq[br] = append(q[:best], q[best+1:]...)
	return vec
}
