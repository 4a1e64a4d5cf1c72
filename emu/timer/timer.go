/*
 * KS10 - Wall clock timer
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

package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rcornwell/KS10/emu/master"
)

// Interval between clock ticks, 60 per second.
const tickInterval = time.Second / 60

type Timer struct {
	wg      sync.WaitGroup
	running bool // Send ticks when set.
	master  chan master.Packet
	enable  chan bool     // Enable or disable timer.
	done    chan struct{} // Stop timer task.
	ticker  *time.Ticker
}

// Create clock timer, ticks are not sent until Start is called.
func NewTimer(masterChannel chan master.Packet) *Timer {
	timer := &Timer{
		master: masterChannel,
		enable: make(chan bool, 1),
		done:   make(chan struct{}),
	}
	timer.wg.Add(1)
	go timer.run()
	return timer
}

// Start sending clock ticks.
func (timer *Timer) Start() {
	timer.enable <- true
}

// Stop sending clock ticks.
func (timer *Timer) Stop() {
	timer.enable <- false
}

// Shutdown timer task.
func (timer *Timer) Shutdown() {
	close(timer.done)
	done := make(chan struct{})
	go func() {
		timer.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for timer to finish.")
	}
}

func (timer *Timer) run() {
	defer timer.wg.Done()
	timer.ticker = time.NewTicker(tickInterval)
	defer timer.ticker.Stop()

	for {
		select {
		case <-timer.ticker.C:
			if !timer.running {
				continue
			}
			// Wait for the core to take the tick unless shutting down.
			select {
			case timer.master <- master.Packet{Msg: master.TimeClock}:
			case <-timer.done:
				return
			}
		case timer.running = <-timer.enable:
			if timer.running {
				timer.ticker.Reset(tickInterval)
			}
		case <-timer.done:
			return
		}
	}
}
