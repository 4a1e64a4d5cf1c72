/*
 * KS10 - CPU
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
	"github.com/rcornwell/KS10/emu/device"
	"github.com/rcornwell/KS10/emu/event"
	"github.com/rcornwell/KS10/emu/memory"
	op "github.com/rcornwell/KS10/emu/opcodemap"
	"github.com/rcornwell/KS10/emu/pager"
	"github.com/rcornwell/KS10/emu/pi"
	"github.com/rcornwell/KS10/util/debug"
)

/*
 *   The KS10 is a microcoded implementation of the PDP-10. All words are
 *   36 bits and are held in the low bits of a uint64.
 *
 *   Instruction format:
 *
 *   0        8 9  12 13 14  17 18                      35
 *   +---------+-----+--+-----+--------------------------+
 *   | opcode  | AC  |I |  X  |            Y             |
 *   +---------+-----+--+-----+--------------------------+
 *
 *   The effective address is Y plus the right half of accumulator X
 *   if X is non zero. If I is set the word at that address is fetched
 *   and the calculation repeats using its I, X and Y fields.
 *
 *   The PC word saved by JSR, JSP, PUSHJ and traps holds the flags in
 *   bits 0 to 12 and the PC in bits 18 to 35.
 *
 *   Each step services the event queue, then takes an interrupt if one
 *   is pending, then executes a trap instruction if trap flags are set,
 *   otherwise it fetches the next instruction.
 *
 *   Faults anywhere inside an instruction panic with an abort value which
 *   Step recovers. A page fail leaves the PC pointing at the failing
 *   instruction so it is restarted once the monitor fixes the page.
 */

// New creates a processor on top of memory and an event queue.
func New(cfg Config, mem *memory.Memory, events *event.Queue) *CPU {
	p := pi.New()
	c := &CPU{
		mem:    mem,
		pi:     p,
		apr:    apr.New(p),
		pager:  pager.New(mem),
		bus:    device.NewBus(p),
		events: events,
		cfg:    cfg,
		breaks: make(map[uint32]bool),
	}
	c.pager.SetITS(cfg.ITS)
	c.pager.IndLimit = cfg.IndLimit
	c.pager.EventCheck = c.eventPending
	if cfg.History > 0 {
		c.history = NewHistory(cfg.History)
	}
	c.createTable()
	c.Reset()
	return c
}

// Reset processor to power on state, memory is not changed.
func (c *CPU) Reset() {
	c.flags = 0
	c.cur = 0
	c.prev = 0
	c.onePArm = false
	c.onePShadow = false
	c.inIntr = false
	c.forced = false
	c.hsb = eptHalt
	c.timebase = 0
	c.interval = 0
	c.intCount = 0
	c.pager.Reset()
	c.pi.Reset()
	c.apr.Reset()
	c.bus.Reset()
	c.SetExternalClock(c.extClock)
}

// Access to subsystems.
func (c *CPU) Bus() *device.Bus       { return c.bus }
func (c *CPU) PI() *pi.PI             { return c.pi }
func (c *CPU) APR() *apr.APR          { return c.apr }
func (c *CPU) Pager() *pager.Pager    { return c.pager }
func (c *CPU) Memory() *memory.Memory { return c.mem }
func (c *CPU) Events() *event.Queue   { return c.events }

// Return current flags.
func (c *CPU) Flags() uint32 {
	return c.flags
}

// Set flags directly, used by console.
func (c *CPU) SetFlags(flags uint32) {
	c.flags = flags & 0o17777
}

// Return number of instructions executed.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Execute one instruction, interrupt or trap.
func (c *CPU) Step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}
			err = c.handleAbort(a)
		}
	}()
	c.step()
	return nil
}

// Run up to count instructions, stopping on the first error.
func (c *CPU) Run(count int) error {
	for range count {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Continue after a stop, a breakpoint at the current PC is skipped.
func (c *CPU) Continue() {
	c.skipBreak = true
}

// Translate abort into action.
func (c *CPU) handleAbort(a abort) error {
	switch {
	case a == abortInterrupt:
		// Instruction will be restarted after the interrupt.
		if c.onePArm {
			c.onePShadow = true
			c.onePArm = false
		}
		return nil
	case a < 0:
		if c.inIntr {
			c.inIntr = false
			return &StopError{Code: StopPageInt, PC: c.PC}
		}
		debug.Debugf("CPU", debugMsk, debugTrap, "Page fail %012o PC %06o", c.pager.Fault, c.PC)
		c.pageFailTrap()
		return nil
	default:
		c.inIntr = false
		return &StopError{Code: StopCode(a), PC: c.PC}
	}
}

// Advance time one cycle, return true if interrupt pending.
func (c *CPU) eventPending() bool {
	c.events.Advance(1)
	return c.pi.Evaluate() != 0
}

// Abort current instruction if an interrupt is pending.
func (c *CPU) checkInterrupt() {
	if c.eventPending() {
		panic(abortInterrupt)
	}
}

// Main step of CPU.
func (c *CPU) step() {
	c.cycles++
	c.events.Advance(1)

	if lvl := c.pi.Evaluate(); lvl != 0 {
		c.interrupt(lvl)
		return
	}

	if c.forced {
		c.forced = false
		c.inIntr = true
		c.intrInstr(c.readPhys(c.forcedAddr), 0)
		c.inIntr = false
		return
	}

	s := stepInfo{pc: c.PC}
	if c.flags&(TRP1|TRP2) != 0 && c.pager.Enabled() {
		n := (c.flags >> 2) & 3
		c.flags &^= TRP1 | TRP2
		s.trap = true
		s.nextPC = c.PC
		s.inst = c.ReadP(c.pager.UPT() + uptTrap + n)
	} else {
		if c.breaks[c.PC] && !c.skipBreak {
			panic(abort(StopBreak))
		}
		c.skipBreak = false
		c.onePArm = c.onePShadow
		c.onePShadow = false
		s.inst = c.Read(c.PC, false)
		s.nextPC = (c.PC + 1) & AMASK
	}

	c.execute(&s)
	c.PC = s.nextPC

	if c.onePArm {
		c.onePArm = false
		c.oneProceed()
	}
}

// Decode and execute instruction, XCT and local UUO loop back here.
func (c *CPU) execute(s *stepInfo) {
	for {
		s.opcode = int(s.inst>>27) & 0o777
		s.ac = int(s.inst>>23) & 0o17
		if c.ioAddress(s.opcode) {
			s.ea = c.calcIOEA(s)
		} else {
			s.ea = c.calcEA(s, s.inst, s.prev(pxEA))
		}
		if c.history != nil {
			c.history.add(s.pc, s.ea, s.inst, c.acs[c.cur][s.ac], c.flags)
		}
		if debugMsk&debugInst != 0 {
			debug.Debugf("CPU", debugMsk, debugInst, "PC %06o %012o EA %06o", s.pc, s.inst, s.ea)
		}
		s.again = false
		c.table[s.opcode](s)
		if !s.again {
			return
		}
	}
}

// Return true if reference class is in previous context.
func (s *stepInfo) prev(bit int) bool {
	return s.xct&bit != 0
}

// Compute effective address, following index and indirect chain.
func (c *CPU) calcEA(s *stepInfo, inst uint64, prev bool) uint32 {
	for deref := 0; ; deref++ {
		ea := uint32(inst & RMASK)
		word := inst
		if x := int((inst >> 18) & 0o17); x != 0 {
			word = c.acs[c.block(prev)][x]
			ea = (ea + uint32(word&RMASK)) & AMASK
		}
		if inst&INDBIT == 0 {
			s.eaWord = word
			return ea
		}
		if deref > 0 {
			c.checkInterrupt()
		}
		if c.cfg.IndLimit != 0 && deref >= c.cfg.IndLimit {
			panic(abort(StopIndirect))
		}
		inst = c.Read(ea, prev)
	}
}

// Compute 22 bit I/O address, one level of indirect.
func (c *CPU) calcIOEA(s *stepInfo) uint32 {
	ea := uint32(s.inst & RMASK)
	if x := int((s.inst >> 18) & 0o17); x != 0 {
		ea = (ea + uint32(c.acs[c.cur][x])) & IOMASK
	}
	if s.inst&INDBIT != 0 {
		ea = uint32(c.Read(ea&AMASK, false)) & IOMASK
	}
	return ea
}

// Take interrupt on level.
func (c *CPU) interrupt(lvl int) {
	c.inIntr = true
	ept := c.pager.EPT()
	var inst uint64
	if ctl, vec, ok := c.bus.Vector(lvl); ok {
		tbl := c.readPhys(ept + eptVector + uint32(ctl))
		if tbl&RMASK == 0 {
			panic(abort(StopZeroVec))
		}
		inst = c.readPhys(uint32(tbl&RMASK) + vec>>2)
	} else {
		inst = c.readPhys(ept + eptIntr + uint32(2*lvl))
	}
	debug.Debugf("CPU", debugMsk, debugIRQ, "Interrupt level %d PC %06o inst %012o", lvl, c.PC, inst)
	c.intrInstr(inst, lvl)
	c.inIntr = false
}

// Execute interrupt instruction. Only JSR and XPCW are allowed and
// the effective address is taken directly from the instruction.
func (c *CPU) intrInstr(inst uint64, lvl int) {
	opc := int(inst>>27) & 0o777
	ac := int(inst>>23) & 0o17
	ea := uint32(inst & RMASK)
	if opc != op.OpJSR && (opc != op.OpJRST || ac != 7) {
		panic(abort(StopIllInt))
	}
	saved := c.saveFlags()
	c.setNewFlags(0, false)
	if opc == op.OpJSR {
		c.WriteE(ea, uint64(saved)<<23|uint64(c.PC))
		c.PC = (ea + 1) & AMASK
	} else {
		c.WriteE(ea, uint64(saved)<<23)
		c.WriteE(ea+1, uint64(c.PC))
		nf := c.ReadE(ea + 2)
		np := c.ReadE(ea + 3)
		c.setNewFlags(nf, false)
		if saved&USER != 0 {
			c.flags |= PCU
		}
		c.PC = uint32(np & RMASK)
	}
	if lvl != 0 {
		c.pi.Activate(lvl)
	}
}

// Request the console instruction at addr be executed like an interrupt.
func (c *CPU) ForceExecute(addr uint32) {
	c.forced = true
	c.forcedAddr = addr
}

// Set breakpoint at address.
func (c *CPU) SetBreak(addr uint32) {
	c.breaks[addr&AMASK] = true
}

// Clear breakpoint at address.
func (c *CPU) ClearBreak(addr uint32) {
	delete(c.breaks, addr&AMASK)
}

// Return list of breakpoints.
func (c *CPU) Breaks() []uint32 {
	list := make([]uint32, 0, len(c.breaks))
	for a := range c.breaks {
		list = append(list, a)
	}
	return list
}

// Return instruction history, nil if not enabled.
func (c *CPU) History() *History {
	return c.history
}
