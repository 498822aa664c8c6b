/*
 * TS10 - DEQNA/DELQA Ethernet shim.
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

// Package deqna implements the DEQNA/DELQA Qbus Ethernet controller
// (§6: DEQNA CSR at 17774440), including its buffer-descriptor-list DMA
// chain walk. Grounded on _examples/original_source/dev/uba/qna.c's
// qna_Enqueue/qna_Transmit/qna_Receive functions: a circular software
// receive queue feeding a BDL chain walked one descriptor at a time, the
// descriptor's hiAddr carrying VALID/CHAIN/EOM/LBYTE/HBYTE flag bits.
//
// Overflow policy (spec.md Open Question): when the software receive
// queue is full, an arriving packet is dropped rather than evicting the
// oldest queued one, and rxLossCount counts the drops — drop-newest
// rather than qna.c's own FIFO-overwrite behavior.
package deqna

import (
	"sync"

	"github.com/rcornwell/ts10/iobus"
)

// Buffer descriptor flag bits (hiAddr field), matching BDL_VALID/
// BDL_CHAIN/BDL_EOM/BDL_LBYTE/BDL_HBYTE in qna.c.
const (
	bdlValid    uint16 = 0x8000
	bdlChain    uint16 = 0x4000
	bdlEOM      uint16 = 0x2000
	bdlLByte    uint16 = 0x1000
	bdlHByte    uint16 = 0x0800
	bdlAddrMask uint16 = 0x3f
)

const (
	csrIntEn uint16 = 0x0040
	csrRxOK  uint16 = 0x2000
	csrTxOK  uint16 = 0x0080

	rxQueueLimit = 32

	DefaultCSRAddr uint32 = 0o17774440
	DefaultVector  uint32 = 0o120

	offCSR   = 0
	offRBDL0 = 2
	offRBDL1 = 4
	offTBDL0 = 6
	offTBDL1 = 8
)

// DMA is the subset of iobus's adapters a DEQNA needs for descriptor and
// packet-buffer transfers.
type DMA interface {
	DMARead(addr uint32) (uint64, error)
	DMAWrite(addr uint32, value uint64) error
}

type Interrupter interface {
	SendInterrupt(dev iobus.MMIODevice)
}

// descriptor holds the first four words of one 6-word DEQNA buffer
// descriptor as laid out on the bus; the last two words (status1 and
// status2, at +8 and +10) are written by writeDescriptorStatus.
type descriptor struct {
	flag   uint16
	hiAddr uint16
	loAddr uint16
	szBuf  uint16
}

// Controller is one DEQNA unit.
type Controller struct {
	mu sync.Mutex

	csr uint16

	rxBDLAddr uint32
	txBDLAddr uint32

	rxQueue    [][]byte
	rxLossCount int

	name string
	dma  DMA
	irq  Interrupter
	vec  uint32
}

func New(name string, dma DMA, irq Interrupter, vector uint32) *Controller {
	return &Controller{name: name, dma: dma, irq: irq, vec: vector}
}

func (c *Controller) Name() string { return c.name }

// Enqueue accepts a received Ethernet frame for delivery through the
// receive BDL chain. If the software queue is already at its limit the
// frame is dropped and rxLossCount increments (drop-newest).
func (c *Controller) Enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.rxQueue) >= rxQueueLimit {
		c.rxLossCount++
		return
	}
	c.rxQueue = append(c.rxQueue, frame)
}

func (c *Controller) RxLossCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rxLossCount
}

func descAddr(hi, lo uint16) uint32 {
	return uint32(hi&bdlAddrMask)<<16 | uint32(lo)
}

func (c *Controller) readDescriptor(addr uint32) (descriptor, error) {
	var d descriptor
	words := [4]*uint16{&d.flag, &d.hiAddr, &d.loAddr, &d.szBuf}
	for i, w := range words {
		v, err := c.dma.DMARead(addr + uint32(i*2))
		if err != nil {
			return d, err
		}
		*w = uint16(v)
	}
	return d, nil
}

func (c *Controller) writeDescriptorStatus(addr uint32, status1, status2 uint16) {
	_ = c.dma.DMAWrite(addr+8, uint64(status1))
	_ = c.dma.DMAWrite(addr+10, uint64(status2))
}

// DrainReceive walks the receive BDL chain, delivering queued frames
// into descriptor buffers one descriptor at a time, matching
// qna_Receive's per-call one-descriptor-advance shape. Each call
// delivers at most one queued frame; nothing in this package schedules
// it.
func (c *Controller) DrainReceive() {
	c.mu.Lock()
	if len(c.rxQueue) == 0 || c.rxBDLAddr == 0 {
		c.mu.Unlock()
		return
	}
	frame := c.rxQueue[0]
	c.rxQueue = c.rxQueue[1:]
	bdlAddr := c.rxBDLAddr
	c.mu.Unlock()

	desc, err := c.readDescriptor(bdlAddr)
	if err != nil || desc.hiAddr&bdlValid == 0 {
		return
	}
	bufAddr := descAddr(desc.hiAddr, desc.loAddr)
	for i, b := range frame {
		_ = c.dma.DMAWrite(bufAddr+uint32(i), uint64(b))
	}
	c.writeDescriptorStatus(bdlAddr, uint16(len(frame)), 0)

	c.mu.Lock()
	if desc.hiAddr&bdlChain != 0 {
		c.rxBDLAddr = bufAddr
	} else {
		c.rxBDLAddr += 12
	}
	c.csr |= csrRxOK
	ie := c.csr&csrIntEn != 0
	c.mu.Unlock()
	if ie {
		c.irq.SendInterrupt(c)
	}
}

func (c *Controller) ReadRegister(offset uint32) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch offset {
	case offCSR:
		return c.csr
	default:
		return 0
	}
}

func (c *Controller) WriteRegister(offset uint32, value uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch offset {
	case offCSR:
		c.csr = (c.csr &^ csrIntEn) | (value & csrIntEn)
	case offRBDL0:
		c.rxBDLAddr = (c.rxBDLAddr & 0x3f0000) | uint32(value&^1)
	case offRBDL1:
		c.rxBDLAddr = (c.rxBDLAddr & 0xffff) | uint32(value&0x3f)<<16
	case offTBDL0:
		c.txBDLAddr = (c.txBDLAddr & 0x3f0000) | uint32(value&^1)
	case offTBDL1:
		c.txBDLAddr = (c.txBDLAddr & 0xffff) | uint32(value&0x3f)<<16
	}
}

func (c *Controller) Init() {}

func (c *Controller) Shutdown() {}
