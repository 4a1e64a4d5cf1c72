/*
 * KS10 - Event scheduler
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

package event

// Callback is called when an event expires with the argument it was posted with.
type Callback = func(iarg int)

type Event struct {
	time  int      // Number of cycles to event, relative to previous event
	owner any      // Device event is registered to
	cb    Callback // Function to callback
	iarg  int      // Integer argument
	prev  *Event
	next  *Event
}

// Queue is a delta list of pending events. Each machine owns one.
type Queue struct {
	head *Event
	tail *Event
}

// Create an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Add an event to fire after time cycles.
func (el *Queue) AddEvent(owner any, cb Callback, time int, iarg int) {
	// If time is 0 process event immediately
	if time <= 0 {
		cb(iarg)
		return
	}

	ev := &Event{owner: owner, cb: cb, time: time, iarg: iarg}

	evptr := el.head
	// If empty put on head
	if evptr == nil {
		el.head = ev
		el.tail = ev
		return
	}

	// Scan for place to install it
	for evptr != nil {
		if ev.time < evptr.time {
			// Remove current time from next time
			evptr.time -= ev.time
			ev.prev = evptr.prev
			ev.next = evptr
			evptr.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				el.head = ev
			}
			return
		}
		// Make new event relative to this one
		ev.time -= evptr.time
		evptr = evptr.next
	}

	// Get here, put it on tail of list
	ev.prev = el.tail
	el.tail.next = ev
	el.tail = ev
}

// Remove first event matching owner and argument.
func (el *Queue) CancelEvent(owner any, iarg int) {
	for evptr := el.head; evptr != nil; evptr = evptr.next {
		if evptr.owner != owner || evptr.iarg != iarg {
			continue
		}
		nxt := evptr.next
		if nxt != nil {
			// Give time to next event
			nxt.time += evptr.time
			nxt.prev = evptr.prev
		} else {
			el.tail = evptr.prev
		}

		if evptr.prev != nil {
			evptr.prev.next = nxt
		} else {
			el.head = nxt
		}
		return
	}
}

// Return true if any event is waiting.
func (el *Queue) AnyEvent() bool {
	return el.head != nil
}

// Return number of cycles until next event, -1 if none.
func (el *Queue) NextTime() int {
	if el.head == nil {
		return -1
	}
	return el.head.time
}

// Advance time by t cycles, firing any events that expire.
func (el *Queue) Advance(t int) {
	evptr := el.head
	if evptr == nil {
		return
	}
	evptr.time -= t
	for evptr != nil && evptr.time <= 0 {
		// Unlink before callback so the callback may post new events.
		el.head = evptr.next
		if el.head != nil {
			el.head.prev = nil
			el.head.time += evptr.time
		} else {
			el.tail = nil
		}
		evptr.cb(evptr.iarg)
		evptr = el.head
	}
}

// Drop all pending events.
func (el *Queue) Clear() {
	el.head = nil
	el.tail = nil
}
