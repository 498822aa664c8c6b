/*
 * TS10 - Host main loop.
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

// Package core runs the host main loop (§4.9/C9): step the CPU one
// instruction at a time, advance the scheduled-event queue in step with
// it, and service the operator's command channel between instructions.
// Adapted from the teacher's emu/core.core: same running-flag/done-
// channel/master-channel shape, generalized from a single hardcoded
// S/370 cpu package to any Processor (cpu/vax or cpu/pdp10 both satisfy
// it), and from the teacher's package-level event.Advance/event.AnyEvent
// free functions to this workspace's instance-based event.Queue.
package core

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rcornwell/ts10/event"
	"github.com/rcornwell/ts10/system"
)

// Processor is the subset of cpu/vax.CPU and cpu/pdp10.CPU the host
// loop needs: advance one instruction boundary, and report whether a
// HALT has stopped it.
type Processor interface {
	Step()
	IsHalted() bool
}

// Ticker is serviced once per tickInterval instructions of simulated
// execution, driving devices with their own interval-tick contract
// (the operator console's byte-drain, per console.Console.Tick's doc
// comment).
type Ticker interface {
	Tick()
}

// BootFunc loads a boot device's boot block into memory and returns the
// CPU's entry PC, per §6's boot contract.
type BootFunc func(unit uint32) (entry uint32, err error)

const defaultTickInterval = 10000

// Core owns one CPU's run loop: the goroutine started by Start reads
// from Master until told to stop, stepping the CPU whenever it isn't
// halted and draining the scheduled-event queue in lockstep.
type Core struct {
	wg     sync.WaitGroup
	done   chan struct{}
	Master chan system.Packet

	cpu     Processor
	events  *event.Queue
	tickers []Ticker
	boot    BootFunc

	tickInterval int
	running      bool
}

// New builds a Core around cpu, ready to drive events and tickers once
// Start is called. tickInterval instructions elapse between Ticker
// service calls; 0 selects defaultTickInterval.
func New(cpu Processor, events *event.Queue, tickers []Ticker, boot BootFunc, tickInterval int) *Core {
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}
	return &Core{
		cpu:          cpu,
		events:       events,
		tickers:      tickers,
		boot:         boot,
		tickInterval: tickInterval,
		done:         make(chan struct{}),
		Master:       make(chan system.Packet),
	}
}

// Start runs the loop until Stop is called, matching the teacher's
// core.Start: not running until a Boot or Start packet arrives, then
// one instruction per iteration with the event queue advanced in step,
// falling back to advancing the queue alone (so timer-driven devices
// still fire) when the CPU is halted but work remains pending.
func (c *Core) Start() {
	c.wg.Add(1)
	defer c.wg.Done()

	c.scheduleTick()

	for {
		switch {
		case c.running && !c.cpu.IsHalted():
			c.cpu.Step()
			c.events.Advance(1)
		case c.events.Any():
			c.events.Advance(1)
		}

		select {
		case <-c.done:
			slog.Info("core: shutting down")
			return
		case packet := <-c.Master:
			c.processPacket(packet)
		default:
		}
	}
}

// Stop signals Start's loop to exit and waits for it to do so, with a
// timeout fallback matching the teacher's 1-second grace period.
func (c *Core) Stop() {
	close(c.done)
	waited := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		slog.Warn("core: Stop timed out waiting for run loop to exit")
	}
}

func (c *Core) processPacket(packet system.Packet) {
	switch packet.Msg {
	case system.Start:
		c.running = true
	case system.Stop:
		c.running = false
	case system.Boot:
		entry, err := c.boot(packet.Unit)
		if err != nil {
			slog.Error("core: boot failed", "unit", packet.Unit, "error", err)
			return
		}
		c.setPC(entry)
		c.running = true
	case system.TimeClock:
		for _, t := range c.tickers {
			t.Tick()
		}
	}
}

// setPC is satisfied by both cpu/vax.CPU and cpu/pdp10.CPU through a
// narrow interface check, avoiding a hard dependency on either concrete
// package from core.
func (c *Core) setPC(entry uint32) {
	if p, ok := c.cpu.(interface{ SetPC(uint32) }); ok {
		p.SetPC(entry)
	}
}

// scheduleTick arms the self-repeating instruction-count timer that
// services tickers every tickInterval instructions, recurring for the
// life of the simulation the way a real interval timer would.
func (c *Core) scheduleTick() {
	var fire event.Callback
	fire = func(int) {
		for _, t := range c.tickers {
			t.Tick()
		}
		c.events.Schedule(c, fire, c.tickInterval, 0)
	}
	c.events.Schedule(c, fire, c.tickInterval, 0)
}
