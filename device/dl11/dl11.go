/*
 * TS10 - DL11 async serial line shim.
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

// Package dl11 implements the DL11 single-line async serial controller
// (§6 MMIO address windows: DL11 CSR at 17777560), a general-purpose
// "stuff port=NNNN" serial line distinct from the built-in operator
// console in package console. Grounded on
// _examples/original_source/dev/uba/dec/dl.h's register layout (RCSR/
// RBUF/XCSR/XBUF, BR4 vectors 060/064) and on the teacher's
// emu/model1052 telnet-queue pattern for the TCP backing.
package dl11

import (
	"log/slog"
	"net"
	"sync"

	"github.com/rcornwell/ts10/iobus"
)

const (
	csrReady       uint16 = 0x0080
	csrInterruptEn uint16 = 0x0040
	rbufError      uint16 = 0x8000

	// Default CSR address and vectors, matching DL_CSRADR/DL_RXVEC/DL_TXVEC.
	DefaultCSRAddr uint32 = 0o17777560
	DefaultRXVec   uint32 = 0o060
	DefaultTXVec   uint32 = 0o064

	offRCSR = 0
	offRBUF = 2
	offXCSR = 4
	offXBUF = 6
)

// Interrupter is the subset of iobus.Bus a line needs to post its two
// vectors.
type Interrupter interface {
	SendInterrupt(dev iobus.MMIODevice)
}

// Line is one DL11 unit: a CSR/buffer register pair plus a TCP line,
// with no telnet option filtering (it speaks raw bytes, matching the
// original emulator's plain-socket DL11 model rather than the console's
// negotiated terminal).
type Line struct {
	mu sync.Mutex

	rcsr, rbuf uint16
	xcsr, xbuf uint16

	inQueue []byte

	name string
	conn net.Conn
	irq  Interrupter
	rxV  uint32
	txV  uint32
}

func New(name string, irq Interrupter, rxVector, txVector uint32) *Line {
	return &Line{name: name, irq: irq, rxV: rxVector, txV: txVector}
}

func (l *Line) Name() string { return l.name }

// Attach accepts a connection for this line (one at a time, matching
// the single-line DL11 hardware).
func (l *Line) Attach(conn net.Conn) {
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
	go l.readLoop(conn)
}

func (l *Line) readLoop(conn net.Conn) {
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		l.mu.Lock()
		for i := 0; i < n; i++ {
			l.inQueue = append(l.inQueue, buf[i])
		}
		l.mu.Unlock()
		if err != nil {
			return
		}
	}
}

// Tick drains one queued byte per call into RBUF, the same per-interval
// cadence the console's Tick uses.
func (l *Line) Tick() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.inQueue) == 0 {
		return
	}
	if l.rcsr&csrReady != 0 {
		l.rbuf |= rbufError
		return
	}
	l.rbuf = uint16(l.inQueue[0])
	l.inQueue = l.inQueue[1:]
	l.rcsr |= csrReady
	if l.rcsr&csrInterruptEn != 0 {
		l.irq.SendInterrupt(l)
	}
}

func (l *Line) ReadRegister(offset uint32) uint16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch offset {
	case offRCSR:
		return l.rcsr
	case offRBUF:
		v := l.rbuf
		l.rcsr &^= csrReady
		l.rbuf &^= rbufError
		return v
	case offXCSR:
		return l.xcsr
	case offXBUF:
		return l.xbuf
	default:
		return 0
	}
}

func (l *Line) WriteRegister(offset uint32, value uint16) {
	switch offset {
	case offRCSR:
		l.mu.Lock()
		l.rcsr = (l.rcsr &^ csrInterruptEn) | (value & csrInterruptEn)
		l.mu.Unlock()
	case offXCSR:
		l.mu.Lock()
		l.xcsr = (l.xcsr &^ csrInterruptEn) | (value & csrInterruptEn)
		l.mu.Unlock()
	case offXBUF:
		l.mu.Lock()
		l.xbuf = value
		conn := l.conn
		txIE := l.xcsr&csrInterruptEn != 0
		l.xcsr |= csrReady
		l.mu.Unlock()
		if conn != nil {
			if _, err := conn.Write([]byte{byte(value)}); err != nil {
				slog.Warn("dl11 write failed", "line", l.name, "error", err)
			}
		}
		if txIE {
			l.irq.SendInterrupt(l)
		}
	}
}

func (l *Line) Init() {}

func (l *Line) Shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
}
