/*
 * TS10 - Event scheduler.
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

// Package event implements the scheduled-event (simulation timer) queue
// (§4.7): a delta list of countdowns-in-instructions, adapted near
// verbatim from the teacher's emu/event package. Ownership is
// generalized from the 370's device.Device interface to an opaque owner
// key so any CPU, bus, or device-shim component can register timers.
package event

// Callback runs when a timer's countdown reaches zero. iarg is the
// integer argument the timer was scheduled with.
type Callback func(iarg int)

// Owner identifies the registrant of a timer for CancelEvent lookups. Any
// comparable value works; devices typically pass themselves.
type Owner any

type timer struct {
	time  int // Countdown, relative to the previous entry, in instructions.
	owner Owner
	cb    Callback
	iarg  int
	prev  *timer
	next  *timer
}

// Queue is a delta-list scheduled-event queue. The zero value is ready
// to use.
type Queue struct {
	head *timer
	tail *timer
}

// Schedule arms a timer that fires after `delay` instructions (0 fires
// immediately, synchronously, before Schedule returns). Per §4.7 and
// §5, ordering between two timers due on the same Advance call is
// unspecified; callbacks that must not observe each other arm at
// distinct future ticks.
func (q *Queue) Schedule(owner Owner, cb Callback, delay int, iarg int) {
	if delay <= 0 {
		cb(iarg)
		return
	}

	ev := &timer{owner: owner, cb: cb, time: delay, iarg: iarg}

	cur := q.head
	if cur == nil {
		q.head = ev
		q.tail = ev
		return
	}

	for cur != nil {
		if ev.time <= cur.time {
			cur.time -= ev.time
			ev.prev = cur.prev
			ev.next = cur
			cur.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				q.head = ev
			}
			return
		}
		ev.time -= cur.time
		cur = cur.next
	}

	ev.prev = q.tail
	q.tail.next = ev
	q.tail = ev
}

// Cancel removes a pending timer idempotently (§5): if no matching timer
// is queued, Cancel is a no-op, and a timer that already fired this tick
// cannot be cancelled retroactively.
func (q *Queue) Cancel(owner Owner, iarg int) {
	cur := q.head
	for cur != nil {
		if cur.owner == owner && cur.iarg == iarg {
			if cur.next != nil {
				cur.next.time += cur.time
				cur.next.prev = cur.prev
			} else {
				q.tail = cur.prev
			}
			if cur.prev != nil {
				cur.prev.next = cur.next
			} else {
				q.head = cur.next
			}
			return
		}
		cur = cur.next
	}
}

// Advance subtracts t from the next-due timer's countdown; when that
// reaches zero or below it fires, followed by any timers queued behind
// it with a zero delta. Any excess of t is not carried over to later
// timers. A callback may re-Schedule itself (auto-repeat) or remain
// dormant (one-shot).
func (q *Queue) Advance(t int) {
	cur := q.head
	if cur == nil {
		return
	}
	cur.time -= t
	for cur != nil && cur.time <= 0 {
		cb := cur.cb
		iarg := cur.iarg
		q.head = cur.next
		if q.head != nil {
			q.head.prev = nil
		} else {
			q.tail = nil
		}
		cb(iarg)
		cur = q.head
	}
}

// Any reports whether any timer is pending, used by the main loop to
// decide whether idle ticks still need to advance the clock (§4.9/C9).
func (q *Queue) Any() bool {
	return q.head != nil
}
