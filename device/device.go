/*
 * TS10 - Device shim shared contract.
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

// Package device holds the shared device shim contract (§4.6's "abstract
// MMIO region with read/write/interrupt") and the concrete DL11, DZ11,
// DEQNA and RH11 shims in their own subpackages. Generalized from the
// teacher's emu/device.Device interface: that interface is shaped around
// 370 channel commands (StartIO/StartCmd/HaltIO); this one is shaped
// around register-window MMIO plus a scheduled-event callback, matching
// how DL11/DZ11/DEQNA/RH11 actually present themselves on a Unibus/Qbus.
package device

import "github.com/rcornwell/ts10/iobus"

// Device is the lifecycle contract every shim implements, alongside
// iobus.MMIODevice for register access.
type Device interface {
	iobus.MMIODevice
	Init()
	Shutdown()
}

// Interrupter is satisfied by the bus adapter a device is attached to,
// letting a device post its own interrupt without importing the whole
// adapter type (VAX's QbusAdapter and the PDP-10's UnibusAdapter both
// satisfy it through their embedded iobus.Bus).
type Interrupter interface {
	SendInterrupt(dev iobus.MMIODevice)
}
