/*
 * TS10 - operator console front-end.
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

// Package console implements the front-end operator console (§4.6/§6):
// an RXCS/RXDB/TXCS/TXDB register pair backed by a TCP connection, with
// a telnet IAC filter ahead of the input queue. Grounded on the
// teacher's emu/model1052 telnet-backed terminal device (queue, debug
// flags, connected/not-connected handling), generalized from its BCD/
// channel-command protocol to a plain byte-stream register interface.
package console

import (
	"log/slog"
	"net"
	"sync"

	"github.com/rcornwell/ts10/iobus"
)

// Register bit layout, matching the documented DEC CTY register format
// cross-checked against _examples/original_source/src/vax/dev_cty.c.
const (
	csrReady       uint16 = 0x0080
	csrInterruptEn uint16 = 0x0040
	rxdbOverrun    uint16 = 0x8000

	rxQueueLimit = 64
)

// Console is the MMIO shim for one console line; it satisfies
// iobus.MMIODevice and device.Device.
type Console struct {
	mu sync.Mutex

	rxcs, rxdb uint16
	txcs, txdb uint16

	inQueue []byte
	filter  iacFilter

	conn net.Conn

	bus      iobus.MMIODevice // self, for SendInterrupt identity
	irq      Interrupter
	rxVector uint32
	txVector uint32
}

// Interrupter is the subset of iobus.Bus a console needs to post its two
// interrupt vectors.
type Interrupter interface {
	SendInterrupt(dev iobus.MMIODevice)
}

func New(irq Interrupter, rxVector, txVector uint32) *Console {
	c := &Console{irq: irq, rxVector: rxVector, txVector: txVector}
	c.bus = c
	return c
}

func (c *Console) Name() string { return "cty" }

// Attach wires an accepted TCP connection as this console's line,
// matching model1052's "connect" transition from not-connected to
// connected.
func (c *Console) Attach(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	c.filter = iacFilter{}
}

// Deliver feeds one raw byte received from the TCP connection into the
// console's input path, run through the IAC filter and queued for the
// next Tick. Overrun (queue already full when a filtered data byte
// arrives) is reported, not silently dropped, matching §4.6's
// "overrun sets RXDB.OVR".
func (c *Console) Deliver(raw byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.filter.Filter(raw)
	if !ok {
		return
	}
	if len(c.inQueue) >= rxQueueLimit {
		c.rxdb |= rxdbOverrun
		return
	}
	c.inQueue = append(c.inQueue, b)
}

// Tick drains one queued byte per call into RXDB, matching §4.6's
// "interval-tick drains one byte per tick" contract: the host timer
// (system/core) calls this once per scheduled interval.
func (c *Console) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inQueue) == 0 {
		return
	}
	if c.rxcs&csrReady != 0 {
		c.rxdb |= rxdbOverrun
		return
	}
	c.rxdb = (c.rxdb &^ 0xff) | uint16(c.inQueue[0])
	c.inQueue = c.inQueue[1:]
	c.rxcs |= csrReady
	if c.rxcs&csrInterruptEn != 0 {
		c.irq.SendInterrupt(c.bus)
	}
}

// Register offsets, two bytes apart per the documented CSR layout.
const (
	offRXCS = 0
	offRXDB = 2
	offTXCS = 4
	offTXDB = 6
)

func (c *Console) ReadRegister(offset uint32) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch offset {
	case offRXCS:
		return c.rxcs
	case offRXDB:
		v := c.rxdb
		c.rxcs &^= csrReady
		c.rxdb &^= rxdbOverrun
		return v
	case offTXCS:
		return c.txcs
	case offTXDB:
		return c.txdb
	default:
		return 0
	}
}

func (c *Console) WriteRegister(offset uint32, value uint16) {
	c.mu.Lock()
	switch offset {
	case offRXCS:
		c.rxcs = (c.rxcs &^ csrInterruptEn) | (value & csrInterruptEn)
	case offTXCS:
		c.txcs = (c.txcs &^ csrInterruptEn) | (value & csrInterruptEn)
	case offTXDB:
		c.txdb = value
		conn := c.conn
		txIE := c.txcs&csrInterruptEn != 0
		c.txcs |= csrReady
		c.mu.Unlock()
		if conn != nil {
			if _, err := conn.Write([]byte{byte(value)}); err != nil {
				slog.Warn("console write failed", "error", err)
			}
		}
		if txIE {
			c.irq.SendInterrupt(c.bus)
		}
		return
	}
	c.mu.Unlock()
}

func (c *Console) Init()     {}
func (c *Console) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
