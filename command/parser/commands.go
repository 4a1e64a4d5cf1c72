/*
 * KS10 - Console commands
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/rcornwell/KS10/command/command"
	"github.com/rcornwell/KS10/emu/core"
	"github.com/rcornwell/KS10/emu/cpu"
	"github.com/rcornwell/KS10/emu/disassemble"
	"github.com/rcornwell/KS10/emu/pager"
	"github.com/rcornwell/KS10/util/octal"
)

var cmdList = []cmd{
	{Name: "set", Min: 3, Process: set, Complete: setComplete},
	{Name: "unset", Min: 3, Process: unset, Complete: setComplete},
	{Name: "show", Min: 2, Process: show, Complete: showComplete},
	{Name: "quit", Min: 4, Process: quit},
	{Name: "stop", Min: 3, Process: stop},
	{Name: "continue", Min: 1, Process: cont},
	{Name: "start", Min: 3, Process: start},
	{Name: "step", Min: 3, Process: step},
	{Name: "reset", Min: 5, Process: reset},
	{Name: "examine", Min: 1, Process: examine},
	{Name: "deposit", Min: 1, Process: deposit},
	{Name: "break", Min: 1, Process: setBreak},
	{Name: "nobreak", Min: 3, Process: noBreak},
}

// Handle set commands.
func set(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Set")
	return false, setDevice(line, core, false)
}

// Handle unset commands.
func unset(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Unset")
	return false, setDevice(line, core, true)
}

func setDevice(line *cmdLine, core *core.Core, unset bool) error {
	device, _, err := line.getDevice()
	if err != nil {
		return err
	}

	optlist, err := line.getOptions(device, command.ValidSet)
	if err != nil {
		return err
	}
	if len(optlist) == 0 {
		return errors.New("no options given to set command")
	}
	return core.Access(func(*cpu.CPU) error {
		return device.Set(unset, optlist)
	})
}

// Set/Unset command completion.
func setComplete(line *cmdLine) []string {
	return line.completeDevice(command.ValidSet)
}

// Handle commands that quit simulation.
func quit(_ *cmdLine, _ *core.Core) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}

// Stop the CPU.
func stop(_ *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Stop")
	core.SendStop()
	return false, nil
}

// Continue CPU from where it left off.
func cont(_ *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Continue")
	if core.IsRunning() {
		return false, errors.New("CPU is running")
	}
	core.SendStart(0)
	return false, nil
}

// Start the CPU, at address if given.
func start(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Start")
	if core.IsRunning() {
		return false, errors.New("CPU is running")
	}
	addr := uint64(0)
	if !line.isEOL() {
		var err error
		addr, err = line.getOctal()
		if err != nil {
			return false, err
		}
		if addr == 0 || addr > uint64(cpu.AMASK) {
			return false, fmt.Errorf("start address out of range: %o", addr)
		}
	}
	core.SendStart(uint32(addr))
	return false, nil
}

// Execute instructions and show next instruction.
func step(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Step")
	count := uint64(1)
	line.skipSpace()
	if !line.isEOL() {
		var err error
		count, err = line.getNumber()
		if err != nil {
			return false, err
		}
	}
	err := core.Step(int(count))
	var stopErr *cpu.StopError
	if err != nil && !errors.As(err, &stopErr) {
		return false, err
	}
	if stopErr != nil {
		fmt.Fprintln(out, stopErr.Error())
	}
	return false, core.Access(func(c *cpu.CPU) error {
		inst, err := c.Examine(c.PC, true)
		if err != nil {
			fmt.Fprintf(out, "%06o: %s\n", c.PC, err.Error())
			return nil
		}
		its := c.Pager().Discipline() == pager.ITS
		fmt.Fprintf(out, "%06o: %s %s\n", c.PC, octal.Word(inst), disassemble.Disassemble(inst, its))
		return nil
	})
}

// Reset processor and console.
func reset(_ *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Reset")
	core.SendReset()
	return false, nil
}

// Set breakpoints, with no address list them.
func setBreak(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Break")
	if line.isEOL() {
		return false, core.Access(func(c *cpu.CPU) error {
			list := c.Breaks()
			slices.Sort(list)
			for _, addr := range list {
				fmt.Fprintf(out, "%06o\n", addr)
			}
			return nil
		})
	}
	addrs, err := line.getAddrList()
	if err != nil {
		return false, err
	}
	return false, core.Access(func(c *cpu.CPU) error {
		for _, addr := range addrs {
			c.SetBreak(addr)
		}
		return nil
	})
}

// Remove breakpoints, ALL removes every one.
func noBreak(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Nobreak")
	save := line.pos
	if line.getWord(false) == "all" {
		return false, core.Access(func(c *cpu.CPU) error {
			for _, addr := range c.Breaks() {
				c.ClearBreak(addr)
			}
			return nil
		})
	}
	line.pos = save
	addrs, err := line.getAddrList()
	if err != nil {
		return false, err
	}
	return false, core.Access(func(c *cpu.CPU) error {
		for _, addr := range addrs {
			c.ClearBreak(addr)
		}
		return nil
	})
}

// Collect list of octal addresses.
func (line *cmdLine) getAddrList() ([]uint32, error) {
	var addrs []uint32
	for {
		line.skipSpace()
		if line.isEOL() {
			break
		}
		addr, err := line.getOctal()
		if err != nil {
			return nil, err
		}
		if addr > uint64(cpu.AMASK) {
			return nil, fmt.Errorf("address out of range: %o", addr)
		}
		addrs = append(addrs, uint32(addr))
	}
	if len(addrs) == 0 {
		return nil, errors.New("address required")
	}
	return addrs, nil
}

// Process the show command, with no device show all of them.
func show(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Show")
	if line.isEOL() {
		return false, core.Access(func(*cpu.CPU) error {
			for _, name := range command.Names() {
				device, err := command.Lookup(name)
				if err != nil {
					continue
				}
				str, err := device.Show(nil)
				if err != nil {
					continue
				}
				fmt.Fprintln(out, strings.TrimRight(str, "\n"))
			}
			return nil
		})
	}

	device, _, err := line.getDevice()
	if err != nil {
		return false, err
	}

	optlist, err := line.getOptions(device, command.ValidShow)
	if err != nil {
		return false, err
	}

	return false, core.Access(func(*cpu.CPU) error {
		str, err := device.Show(optlist)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.TrimRight(str, "\n"))
		return nil
	})
}

// Show command completion.
func showComplete(line *cmdLine) []string {
	return line.completeDevice(command.ValidShow)
}
