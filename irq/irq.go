/*
 * TS10 - Interrupt and exception fabric.
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

// Package irq implements the exception/interrupt dispatch fabric (§4.4):
// VAX's IPL-ordered SISR + SCB vectoring in vax.go, and the PDP-10's
// seven-level priority-interrupt system in pdp10.go. Both generalize the
// teacher's external/timer/program-check interrupt bookkeeping in
// emu/cpu/cpu.go and cpu_system.go (a single sysMask plus a handful of
// pending-irq booleans) into a priority-encoded ladder with a single
// "what is pending" summary word (TIR, §3).
package irq

// Kind distinguishes a trap (drains first, cannot be masked by IPL) from
// an interrupt (ordered by IPL) per §4.4's ordering rule.
type Kind int

const (
	KindNone Kind = iota
	KindTrap
	KindInterrupt
)

// TIR is the compact Trap/Interrupt Request summary word (§3) that the
// VAX Controller.Evaluate computes on demand for the CPU at an
// instruction boundary (§4.5 Phase 1); PDP10Controller.Evaluate reports
// its pending level directly instead of a TIR.
type TIR struct {
	Kind    Kind
	Level   int // IPL (VAX) or PI level (PDP-10) of the pending event.
	Vector  uint32
	TrapArg uint32 // Parameter pushed after PSL for a trap (§4.4).
}

// Pending reports whether any event is ready for delivery.
func (t TIR) Pending() bool { return t.Kind != KindNone }
