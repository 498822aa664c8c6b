/*
 * TS10 - Master control channel.
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

// Package system wires a configured CPU, its memory/MMU/interrupt
// fabric, and its attached device shims into a runnable host loop
// (§4.9/C9), along with the operator's command channel into that loop.
//
// The teacher's own master-channel type (emu/master.Packet) isn't part
// of this exercise's reference pack, so Packet below is an independent
// design rather than an adaptation: it keeps the teacher's core.go shape
// of "one struct, a Msg discriminator, and whatever payload that Msg
// needs" but drops the msg kinds that existed only for S/370's
// multi-line telnet multiplexer (TelConnect/TelDisconnect/TelReceive),
// since package console owns its TCP connection directly and never
// round-trips bytes through the master channel.
package system

// Msg discriminates the kind of request carried by a Packet.
type Msg int

const (
	// Start resumes instruction execution from the current PC.
	Start Msg = iota
	// Stop halts instruction execution without resetting anything.
	Stop
	// Boot loads the configured boot device's boot block and starts
	// execution at its entry point (§6 SUPPLEMENTED FEATURES).
	Boot
	// TimeClock makes the Core service each of its Tickers once, apart
	// from the Core's own instruction-count tick timer (the operator
	// console's byte-drain interval, per §4.6).
	TimeClock
)

// Packet is one request posted to a Core's command channel, from either
// the operator console REPL or the host signal-handling loop in
// cmd/ts10.
type Packet struct {
	Msg  Msg
	Unit uint32 // boot unit number, meaningful only when Msg == Boot
}
