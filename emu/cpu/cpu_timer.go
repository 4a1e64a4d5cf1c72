/*
 * KS10 - CPU time base and interval timer
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

package cpu

import (
	"github.com/rcornwell/KS10/emu/apr"
)

// Clock rates.
const (
	clockRate  = 4100000                            // Time base counts per second
	clockTicks = 60                                 // Clock ticks per second
	tickCycles = 1000000 / clockTicks               // Instructions between ticks
	tickCount  = uint64(clockRate/clockTicks) << 12 // Time base increment per tick
)

// Advance clock one tick. Called from the event queue.
func (c *CPU) ClockTick() {
	c.timebase += tickCount
	if c.interval == 0 {
		return
	}
	if c.intCount > tickCount {
		c.intCount -= tickCount
		return
	}
	c.intCount = c.interval
	c.apr.SetFlag(apr.Interval)
}

// Clock event, reschedules itself.
func (c *CPU) clockEvent(int) {
	c.ClockTick()
	c.events.AddEvent(c, c.clockEvent, tickCycles, 0)
}

// Select where clock ticks come from. When ext is set the owner must
// call ClockTick at the clock rate, otherwise ticks are generated
// every tickCycles instructions.
func (c *CPU) SetExternalClock(ext bool) {
	c.extClock = ext
	c.events.CancelEvent(c, 0)
	if !ext {
		c.events.AddEvent(c, c.clockEvent, tickCycles, 0)
	}
}
