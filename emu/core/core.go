/*
 * KS10 - Core emulator loop
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

package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rcornwell/KS10/command/command"
	"github.com/rcornwell/KS10/emu/cpu"
	"github.com/rcornwell/KS10/emu/cty"
	"github.com/rcornwell/KS10/emu/event"
	"github.com/rcornwell/KS10/emu/master"
	"github.com/rcornwell/KS10/emu/memory"
	"github.com/rcornwell/KS10/telnet"
)

// Instructions run between checks of the master channel.
const batchSize = 1000

type Core struct {
	wg       sync.WaitGroup
	done     chan struct{} // Signal to shutdown simulator.
	running  atomic.Bool   // Indicate when simulator should run or not.
	Master   chan master.Packet
	mu       sync.Mutex // Guards processor and devices.
	cpu      *cpu.CPU
	mem      *memory.Memory
	events   *event.Queue
	cty      *cty.Cty
	lastStop error // Reason for last stop.
}

// Create processor, memory and console.
func NewCPU(masterChannel chan master.Packet, cfg cpu.Config) (*Core, error) {
	if cfg.MemSize <= 0 || cfg.MemSize > memory.MaxSize {
		return nil, fmt.Errorf("memory size %dK not supported", cfg.MemSize)
	}
	core := &Core{
		Master: masterChannel,
		done:   make(chan struct{}),
		mem:    memory.New(cfg.MemSize),
		events: event.NewQueue(),
	}
	core.cpu = cpu.New(cfg, core.mem, core.events)
	core.cty = cty.New(core.mem, core.cpu.APR(), core.events)

	port, err := telnet.RegisterTerminal(core.cty.Terminal(), "CTY", "")
	if err != nil {
		slog.Warn("Console not attached to telnet", "error", err.Error())
	}
	core.cty.SetPort(port)
	command.Register("CPU", core)
	command.Register("CTY", core.cty)
	return core, nil
}

// Start CPU running, returns on shutdown.
func (core *Core) Start() {
	core.wg.Add(1)
	defer core.wg.Done()
	for {
		if core.running.Load() {
			core.runBatch()
			select {
			case <-core.done:
				return
			case packet := <-core.Master:
				if !core.processPacket(packet) {
					return
				}
			default:
			}
			continue
		}
		// Idle until told to do something.
		select {
		case <-core.done:
			return
		case packet := <-core.Master:
			if !core.processPacket(packet) {
				return
			}
		}
	}
}

// Stop a running server.
func (core *Core) Stop() {
	slog.Info("Shutting down CPU")
	select {
	case <-core.done:
	default:
		close(core.done)
	}
	done := make(chan struct{})
	go func() {
		core.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("Timed out waiting for CPU to finish.")
	}
}

// Run a batch of instructions.
func (core *Core) runBatch() {
	core.mu.Lock()
	defer core.mu.Unlock()
	for range batchSize {
		if err := core.cpu.Step(); err != nil {
			core.stopped(err)
			return
		}
	}
}

// Record why the processor stopped.
func (core *Core) stopped(err error) {
	core.running.Store(false)
	core.lastStop = err
	var stop *cpu.StopError
	if errors.As(err, &stop) {
		slog.Info("CPU stopped", "reason", stop.Code.String(), "pc", fmt.Sprintf("%06o", stop.PC))
		return
	}
	slog.Error("CPU stopped", "error", err.Error())
}

// Execute count instructions on a stopped CPU.
func (core *Core) Step(count int) error {
	if core.running.Load() {
		return errors.New("CPU is running")
	}
	core.mu.Lock()
	defer core.mu.Unlock()
	return core.step(count)
}

// Single step, a count under one runs one instruction.
func (core *Core) step(count int) error {
	core.cpu.Continue()
	for range max(count, 1) {
		if err := core.cpu.Step(); err != nil {
			core.stopped(err)
			return err
		}
	}
	return nil
}

// Use wall clock ticks from the master channel for the time base.
func (core *Core) ExternalClock(ext bool) {
	core.mu.Lock()
	defer core.mu.Unlock()
	core.cpu.SetExternalClock(ext)
}

// Return true if CPU is running.
func (core *Core) IsRunning() bool {
	return core.running.Load()
}

// Return reason for last stop, nil if none.
func (core *Core) LastStop() error {
	core.mu.Lock()
	defer core.mu.Unlock()
	return core.lastStop
}

// Call fn with the processor locked.
func (core *Core) Access(fn func(*cpu.CPU) error) error {
	core.mu.Lock()
	defer core.mu.Unlock()
	return fn(core.cpu)
}

// Start CPU at addr, zero continues from current PC.
func (core *Core) SendStart(addr uint32) {
	core.Master <- master.Packet{Msg: master.Start, Addr: addr}
}

// Stop CPU.
func (core *Core) SendStop() {
	core.Master <- master.Packet{Msg: master.Stop}
}

// Execute count instructions.
func (core *Core) SendStep(count int) {
	core.Master <- master.Packet{Msg: master.Step, Count: count}
}

// Reset processor and console.
func (core *Core) SendReset() {
	core.Master <- master.Packet{Msg: master.Reset}
}

// Process a packet sent to system simulation, false on shutdown.
func (core *Core) processPacket(packet master.Packet) bool {
	core.mu.Lock()
	defer core.mu.Unlock()
	switch packet.Msg {
	case master.TelConnect:
		if term := telnet.GetTerminal(packet.Name); term != nil {
			term.Connect(packet.Conn)
		}
	case master.TelDisconnect:
		if term := telnet.GetTerminal(packet.Name); term != nil {
			term.Disconnect()
		}
	case master.TelReceive:
		if term := telnet.GetTerminal(packet.Name); term != nil {
			term.ReceiveChar(packet.Data)
		}
	case master.TimeClock:
		if core.running.Load() {
			core.cpu.ClockTick()
		}
	case master.Start:
		if packet.Addr != 0 {
			core.cpu.PC = packet.Addr & cpu.AMASK
		}
		core.cpu.Continue()
		core.lastStop = nil
		core.running.Store(true)
	case master.Stop:
		core.running.Store(false)
	case master.Step:
		core.running.Store(false)
		if err := core.step(packet.Count); err != nil {
			slog.Warn("Step ended early", "count", packet.Count)
		}
	case master.Reset:
		core.running.Store(false)
		core.cpu.Reset()
		core.cty.Reset()
		core.lastStop = nil
	case master.Shutdown:
		core.running.Store(false)
		return false
	}
	return true
}
