/*
 * KS10 - Console terminal
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

/*
   The KS10 console terminal is run by the 8080 front end. The front end
   and the processor talk through two words of low memory. When the CPU
   wants to type a character it stores it with the valid bit set in the
   output word and interrupts the front end. The front end types the
   character, clears the word and posts a console interrupt. Input works
   the other way through the input word.

   The front end polls these words, here from the event queue.
*/

package cty

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/rcornwell/KS10/command/command"
	"github.com/rcornwell/KS10/emu/apr"
	ev "github.com/rcornwell/KS10/emu/event"
	"github.com/rcornwell/KS10/emu/memory"
	"github.com/rcornwell/KS10/telnet"
	"github.com/rcornwell/KS10/util/debug"
)

// Communication words in low memory.
const (
	InWord  uint32 = 0o32 // Character to CPU
	OutWord uint32 = 0o33 // Character from CPU

	Valid    uint64 = 0o400 // Word holds a character
	charMask uint64 = 0o377
)

// Cycles between polls of the communication words.
const pollTime = 500

const (
	// Debug options.
	debugChar = 1 << iota // Log each character.
	debugLine             // Log output by lines.
	debugConn             // Log connects.
)

var debugOption = map[string]int{
	"CHAR": debugChar,
	"LINE": debugLine,
	"CONN": debugConn,
}

// Debug option mask.
var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("CTY debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Cty is the console terminal.
type Cty struct {
	mem     *memory.Memory
	apr     *apr.APR
	events  *ev.Queue
	port    string    // Port terminal is listening on
	inBuff  [256]byte // Typed ahead input
	inHead  int       // Next character to deliver
	inTail  int       // Next free slot
	cr      bool      // Last input was carriage return
	outLine string    // Line being output for debug purposes
	telctx  *ctyTel
}

type ctyTel struct {
	ctx       *Cty
	connected bool
	conn      net.Conn
}

// Create console and start polling.
func New(mem *memory.Memory, a *apr.APR, events *ev.Queue) *Cty {
	device := &Cty{mem: mem, apr: a, events: events}
	device.telctx = &ctyTel{ctx: device}
	device.events.AddEvent(device, device.callback, pollTime, 0)
	return device
}

// Reset clears pending input and restarts polling.
func (device *Cty) Reset() {
	device.inHead = 0
	device.inTail = 0
	device.outLine = ""
	device.events.CancelEvent(device, 0)
	device.events.AddEvent(device, device.callback, pollTime, 0)
}

// Record port number, used by show.
func (device *Cty) SetPort(port string) {
	device.port = port
}

// Terminal side of console.
func (device *Cty) Terminal() telnet.Telnet {
	return device.telctx
}

// Return number of characters waiting for the CPU.
func (device *Cty) Pending() int {
	return (device.inTail - device.inHead + len(device.inBuff)) % len(device.inBuff)
}

// Service the communication words.
func (device *Cty) callback(int) {
	device.Poll()
	device.events.AddEvent(device, device.callback, pollTime, 0)
}

// Poll moves one character each way if possible.
func (device *Cty) Poll() {
	post := false
	out := device.mem.GetMemory(OutWord)
	if out&Valid != 0 {
		device.mem.SetMemory(OutWord, 0)
		device.output(byte(out & charMask))
		post = true
	}

	if device.inHead != device.inTail && device.mem.GetMemory(InWord)&Valid == 0 {
		by := device.inBuff[device.inHead]
		device.inHead = (device.inHead + 1) % len(device.inBuff)
		debug.Debugf("CTY", debugMsk, debugChar, "Input %03o", by)
		device.mem.SetMemory(InWord, Valid|uint64(by))
		post = true
	}

	if post {
		device.apr.ClearFlag(apr.IntCon)
		device.apr.SetFlag(apr.ConInt)
	}
}

// Send a character to the terminal.
func (device *Cty) output(by byte) {
	by &= 0o177
	debug.Debugf("CTY", debugMsk, debugChar, "Output %03o", by)
	switch by {
	case '\n':
		debug.Debugf("CTY", debugMsk, debugLine, "Output: %s", device.outLine)
		device.outLine = ""
	case '\r', 0:
	default:
		if by >= ' ' && by < 0o177 {
			device.outLine += string(by)
		}
	}

	tel := device.telctx
	if !tel.connected {
		return
	}
	if _, err := tel.conn.Write([]byte{by}); err != nil {
		slog.Warn("CTY write failed", "error", err.Error())
	}
}

// Queue a character for the CPU.
func (device *Cty) input(by byte) {
	next := (device.inTail + 1) % len(device.inBuff)
	if next == device.inHead {
		// Type ahead full, ring bell.
		if device.telctx.connected {
			_, _ = device.telctx.conn.Write([]byte{0o007})
		}
		return
	}
	device.inBuff[device.inTail] = by
	device.inTail = next
}

// Options for set and show.
func (device *Cty) Options(_ string) []command.Options {
	return []command.Options{
		{Name: "port", OptionType: command.OptionName, OptionValid: command.ValidShow},
		{Name: "flush", OptionType: command.OptionSwitch, OptionValid: command.ValidSet},
	}
}

// Set command, FLUSH drops typed ahead input.
func (device *Cty) Set(_ bool, options []*command.CmdOption) error {
	for _, opt := range options {
		if strings.ToLower(opt.Name) != "flush" {
			return errors.New("CTY set option invalid: " + opt.Name)
		}
		device.inHead = 0
		device.inTail = 0
	}
	return nil
}

// Show command.
func (device *Cty) Show(_ []*command.CmdOption) (string, error) {
	str := fmt.Sprintf("CTY: port=%s", device.port)
	if device.telctx.connected {
		str += " connected"
	}
	if n := device.Pending(); n != 0 {
		str += fmt.Sprintf(" input=%d", n)
	}
	return str, nil
}

// Connect to new terminal.
func (telConn *ctyTel) Connect(conn net.Conn) {
	debug.Debugf("CTY", debugMsk, debugConn, "Connect %s", conn.RemoteAddr())
	telConn.connected = true
	telConn.conn = conn
}

// Disconnect from connection.
func (telConn *ctyTel) Disconnect() {
	debug.Debugf("CTY", debugMsk, debugConn, "Disconnect")
	telConn.connected = false
	telConn.conn = nil
}

// Input sent from telnet process.
func (telConn *ctyTel) ReceiveChar(data []byte) {
	device := telConn.ctx
	for _, by := range data {
		switch by {
		case 0:
			// Telnet sends CR NUL for return.
			continue
		case '\n':
			// Drop LF of CR LF.
			if device.cr {
				device.cr = false
				continue
			}
		}
		device.cr = by == '\r'
		device.input(by)
	}
}
