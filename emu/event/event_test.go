/*
 * KS10 - Event scheduler tests
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

import (
	"testing"
)

type device struct {
	name  string
	iarg  int
	time  int
	queue *Queue
	clock *int
	chain int // Post a follow up event when fired.
}

// Callback, save step count in time and set argument to iarg.
func (d *device) callback(iarg int) {
	d.iarg = iarg
	d.time = *d.clock
	if d.chain != 0 {
		d.queue.AddEvent(d, d.callback, d.chain, iarg+100)
		d.chain = 0
	}
}

type fixture struct {
	queue *Queue
	clock int
	devs  map[string]*device
}

func newFixture() *fixture {
	f := &fixture{queue: NewQueue(), devs: map[string]*device{}}
	for _, n := range []string{"A", "B", "C", "D"} {
		f.devs[n] = &device{name: n, queue: f.queue, clock: &f.clock}
	}
	return f
}

func (f *fixture) run(steps int, each func()) {
	for range steps {
		f.clock++
		f.queue.Advance(1)
		if each != nil {
			each()
		}
	}
}

func (f *fixture) check(t *testing.T, name string, time, iarg int) {
	t.Helper()
	d := f.devs[name]
	if d.time != time {
		t.Errorf("Event %s did not fire at correct time got: %d expected: %d", name, d.time, time)
	}
	if d.iarg != iarg {
		t.Errorf("Event %s did not set data correct got: %d expected: %d", name, d.iarg, iarg)
	}
}

func (f *fixture) add(name string, time, iarg int) {
	d := f.devs[name]
	f.queue.AddEvent(d, d.callback, time, iarg)
}

func TestAddEvent1(t *testing.T) {
	f := newFixture()
	f.add("A", 10, 1)
	f.run(20, nil)
	f.check(t, "A", 10, 1)
	if f.queue.AnyEvent() {
		t.Errorf("Queue not empty after events fired")
	}
}

// Add two events, second one first.
func TestAddEvent2(t *testing.T) {
	f := newFixture()
	f.add("A", 10, 1)
	f.add("B", 5, 2)
	if f.queue.NextTime() != 5 {
		t.Errorf("NextTime not correct got: %d expected: %d", f.queue.NextTime(), 5)
	}
	f.run(20, nil)
	f.check(t, "A", 10, 1)
	f.check(t, "B", 5, 2)
}

// Add events with same time.
func TestAddEvent3(t *testing.T) {
	f := newFixture()
	f.add("A", 10, 1)
	f.add("B", 10, 2)
	f.run(20, nil)
	f.check(t, "A", 10, 1)
	f.check(t, "B", 10, 2)
}

// Add event during event.
func TestAddEvent4(t *testing.T) {
	f := newFixture()
	f.devs["C"].chain = 7
	f.add("A", 20, 5)
	f.add("C", 10, 2)
	f.run(30, nil)
	f.check(t, "A", 20, 5)
	f.check(t, "C", 17, 102)
}

// Schedule 3 events, last one between.
func TestAddEvent5(t *testing.T) {
	f := newFixture()
	f.add("A", 20, 1)
	f.add("B", 20, 2)
	f.add("D", 25, 3)
	f.run(30, nil)
	f.check(t, "A", 20, 1)
	f.check(t, "B", 20, 2)
	f.check(t, "D", 25, 3)
}

// Cancel events while events in queue.
func TestCancelEvent(t *testing.T) {
	f := newFixture()
	f.add("A", 10, 5)
	f.add("B", 40, 2)
	f.add("D", 30, 3)
	f.add("D", 50, 4)
	f.run(60, func() {
		if f.devs["A"].iarg == 5 {
			f.queue.CancelEvent(f.devs["B"], 2)
			f.queue.CancelEvent(f.devs["D"], 4)
		}
	})
	f.check(t, "A", 10, 5)
	f.check(t, "B", 0, 0)
	f.check(t, "D", 30, 3)
}

// Advancing by more than one cycle fires everything due.
func TestAdvanceMany(t *testing.T) {
	f := newFixture()
	f.add("A", 3, 1)
	f.add("B", 5, 2)
	f.add("C", 9, 3)
	f.clock = 6
	f.queue.Advance(6)
	f.check(t, "A", 6, 1)
	f.check(t, "B", 6, 2)
	f.check(t, "C", 0, 0)
	if f.queue.NextTime() != 3 {
		t.Errorf("NextTime not correct got: %d expected: %d", f.queue.NextTime(), 3)
	}
}

// Test event at zero units.
func TestAddEventZero(t *testing.T) {
	f := newFixture()
	f.add("A", 0, 5)
	f.check(t, "A", 0, 5)
	if f.queue.AnyEvent() {
		t.Errorf("Zero time event was queued")
	}
}
