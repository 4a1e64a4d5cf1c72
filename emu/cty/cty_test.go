/*
 * KS10 - Console terminal tests
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

package cty

import (
	"net"
	"testing"

	"github.com/matryer/is"
	"github.com/rcornwell/KS10/command/command"
	"github.com/rcornwell/KS10/emu/apr"
	ev "github.com/rcornwell/KS10/emu/event"
	"github.com/rcornwell/KS10/emu/memory"
	"github.com/rcornwell/KS10/emu/pi"
)

// Connection that records what is written to it.
type testConn struct {
	net.Conn
	out []byte
}

func (c *testConn) Write(b []byte) (int, error) {
	c.out = append(c.out, b...)
	return len(b), nil
}

func (c *testConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2020}
}

func setup() (*Cty, *memory.Memory, *apr.APR, *ev.Queue, *testConn) {
	mem := memory.New(32)
	a := apr.New(pi.New())
	events := ev.NewQueue()
	device := New(mem, a, events)
	conn := &testConn{}
	device.Terminal().Connect(conn)
	return device, mem, a, events, conn
}

// Character stored by CPU is typed and acknowledged.
func TestOutput(t *testing.T) {
	is := is.New(t)
	_, mem, a, events, conn := setup()

	a.SetFlag(apr.IntCon)
	mem.SetMemory(OutWord, Valid|'A')
	events.Advance(pollTime - 1)
	is.Equal(len(conn.out), 0) // not polled yet
	events.Advance(1)
	is.Equal(string(conn.out), "A")
	is.Equal(mem.GetMemory(OutWord), uint64(0))
	is.True(a.Flag(apr.ConInt))
	is.True(!a.Flag(apr.IntCon))
}

// Nothing happens without a valid character.
func TestOutputIdle(t *testing.T) {
	is := is.New(t)
	_, mem, a, events, conn := setup()

	mem.SetMemory(OutWord, 'A')
	events.Advance(pollTime)
	is.Equal(len(conn.out), 0)
	is.Equal(mem.GetMemory(OutWord), uint64('A'))
	is.True(!a.Flag(apr.ConInt))
}

// Input is delivered one character per poll once the CPU takes it.
func TestInput(t *testing.T) {
	is := is.New(t)
	device, mem, a, events, _ := setup()

	device.Terminal().ReceiveChar([]byte("ok"))
	is.Equal(device.Pending(), 2)
	events.Advance(pollTime)
	is.Equal(mem.GetMemory(InWord), Valid|'o')
	is.True(a.Flag(apr.ConInt))

	// CPU has not taken first character.
	a.ClearFlag(apr.ConInt)
	events.Advance(pollTime)
	is.Equal(mem.GetMemory(InWord), Valid|'o')
	is.True(!a.Flag(apr.ConInt))

	mem.SetMemory(InWord, 0)
	events.Advance(pollTime)
	is.Equal(mem.GetMemory(InWord), Valid|'k')
	is.Equal(device.Pending(), 0)
}

// Telnet line ends reduce to a single return.
func TestInputLineEnd(t *testing.T) {
	device, _, _, _, _ := setup()

	device.Terminal().ReceiveChar([]byte{'a', '\r', 0, 'b', '\r', '\n', 'c', '\n'})
	want := []byte{'a', '\r', 'b', '\r', 'c', '\n'}
	if device.Pending() != len(want) {
		t.Fatalf("Pending got: %d expected: %d", device.Pending(), len(want))
	}
	for i, by := range want {
		got := device.inBuff[(device.inHead+i)%len(device.inBuff)]
		if got != by {
			t.Errorf("Input %d got: %03o expected: %03o", i, got, by)
		}
	}
}

// Output while disconnected is dropped.
func TestDisconnected(t *testing.T) {
	is := is.New(t)
	device, mem, a, events, conn := setup()

	device.Terminal().Disconnect()
	mem.SetMemory(OutWord, Valid|'X')
	events.Advance(pollTime)
	is.Equal(len(conn.out), 0)
	is.Equal(mem.GetMemory(OutWord), uint64(0))
	is.True(a.Flag(apr.ConInt))
}

// Show and set.
func TestShowSet(t *testing.T) {
	is := is.New(t)
	device, _, _, _, _ := setup()

	device.SetPort("2020")
	device.Terminal().ReceiveChar([]byte("abc"))
	str, err := device.Show(nil)
	is.NoErr(err)
	is.Equal(str, "CTY: port=2020 connected input=3")

	err = device.Set(false, []*command.CmdOption{{Name: "flush"}})
	is.NoErr(err)
	is.Equal(device.Pending(), 0)

	err = device.Set(false, []*command.CmdOption{{Name: "speed"}})
	is.True(err != nil)
}
