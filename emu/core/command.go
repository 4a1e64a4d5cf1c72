/*
 * KS10 - CPU set and show commands
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
	"slices"
	"strings"

	"github.com/rcornwell/KS10/command/command"
	"github.com/rcornwell/KS10/emu/disassemble"
	"github.com/rcornwell/KS10/emu/pager"
	"github.com/rcornwell/KS10/util/octal"
)

// Set and Show are called with the core locked.

// Options for set and show.
func (core *Core) Options(_ string) []command.Options {
	return []command.Options{
		{Name: "break", OptionType: command.OptionOctal, OptionValid: command.ValidSet},
		{Name: "history", OptionType: command.OptionSwitch, OptionValid: command.ValidSet | command.ValidShow},
		{Name: "pi", OptionType: command.OptionSwitch, OptionValid: command.ValidShow},
		{Name: "apr", OptionType: command.OptionSwitch, OptionValid: command.ValidShow},
		{Name: "pager", OptionType: command.OptionSwitch, OptionValid: command.ValidShow},
		{Name: "breaks", OptionType: command.OptionSwitch, OptionValid: command.ValidShow},
	}
}

// Set BREAK=addr adds a breakpoint, unset removes it. Unset HISTORY clears history.
func (core *Core) Set(unset bool, options []*command.CmdOption) error {
	for _, opt := range options {
		switch strings.ToLower(opt.Name) {
		case "break":
			addr := uint32(opt.Value)
			if unset {
				core.cpu.ClearBreak(addr)
			} else {
				core.cpu.SetBreak(addr)
			}
		case "history":
			hist := core.cpu.History()
			if hist == nil {
				return errors.New("history not enabled")
			}
			if !unset {
				return errors.New("history size set in configuration")
			}
			hist.Clear()
		default:
			return errors.New("CPU set option invalid: " + opt.Name)
		}
	}
	return nil
}

// Show processor state, with no options a summary is given.
func (core *Core) Show(options []*command.CmdOption) (string, error) {
	if len(options) == 0 {
		return core.showSummary(), nil
	}
	var b strings.Builder
	for _, opt := range options {
		switch strings.ToLower(opt.Name) {
		case "pi":
			p := core.cpu.PI()
			en, act, req := p.Masks()
			fmt.Fprintf(&b, "PI: on=%t enabled=%03o active=%03o request=%03o\n", p.On(), en, act, req)
		case "apr":
			a := core.cpu.APR()
			fmt.Fprintf(&b, "APR: %s level=%d\n", octal.Halves(a.Read()), a.Level())
		case "pager":
			b.WriteString(core.showPager())
		case "breaks":
			list := core.cpu.Breaks()
			slices.Sort(list)
			b.WriteString("Breakpoints:")
			for _, addr := range list {
				fmt.Fprintf(&b, " %06o", addr)
			}
			b.WriteString("\n")
		case "history":
			str, err := core.showHistory()
			if err != nil {
				return "", err
			}
			b.WriteString(str)
		default:
			return "", errors.New("CPU show option invalid: " + opt.Name)
		}
	}
	return b.String(), nil
}

func (core *Core) showSummary() string {
	state := "stopped"
	if core.running.Load() {
		state = "running"
	}
	return fmt.Sprintf("CPU: %s PC=%06o flags=%06o memory=%dK cycles=%d\n",
		state, core.cpu.PC, core.cpu.Flags(), core.mem.GetSize()/1024, core.cpu.Cycles())
}

var disciplineName = map[pager.Discipline]string{
	pager.TOPS10: "TOPS10",
	pager.TOPS20: "TOPS20",
	pager.ITS:    "ITS",
}

func (core *Core) showPager() string {
	p := core.cpu.Pager()
	return fmt.Sprintf("PAGER: %s enabled=%t EBR=%06o UBR=%06o EPT=%06o UPT=%06o\n",
		disciplineName[p.Discipline()], p.Enabled(), p.EBR(), p.UBR(), p.EPT(), p.UPT())
}

func (core *Core) showHistory() (string, error) {
	hist := core.cpu.History()
	if hist == nil {
		return "", errors.New("history not enabled")
	}
	its := core.cpu.Pager().Discipline() == pager.ITS
	var b strings.Builder
	b.WriteString("PC     EA     AC           FLAGS  INSTRUCTION\n")
	for _, ent := range hist.Entries() {
		fmt.Fprintf(&b, "%06o %06o %s %06o %s\n", ent.PC, ent.EA, octal.Word(ent.AC),
			ent.Flags, disassemble.Disassemble(ent.Inst, its))
	}
	return b.String(), nil
}
