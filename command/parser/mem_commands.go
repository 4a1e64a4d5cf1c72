/*
 * KS10 - Examine and deposit commands
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
	"strconv"
	"strings"

	"github.com/rcornwell/KS10/emu/assemble"
	"github.com/rcornwell/KS10/emu/core"
	"github.com/rcornwell/KS10/emu/cpu"
	"github.com/rcornwell/KS10/emu/disassemble"
	"github.com/rcornwell/KS10/emu/pager"
	"github.com/rcornwell/KS10/util/octal"
)

// Switches for memory commands.
type memoryOpts struct {
	virtual  bool // Address through pager.
	symbolic bool // Instructions.
	ascii    bool // Five 7 bit characters.
	sixbit   bool // Six 6 bit characters.
	halves   bool // Left,,right.
}

// Kind of location.
const (
	locMemory = iota
	locAC
	locPC
	locFlags
)

// Range of locations to reference.
type location struct {
	kind int
	low  uint32
	high uint32
}

// Parse leading -x switches.
func (line *cmdLine) parseSwitches() (memoryOpts, error) {
	var opts memoryOpts
	for {
		line.skipSpace()
		if line.peek() != '-' {
			return opts, nil
		}
		line.pos++
	switches:
		for {
			by := line.getCurrent()
			switch by {
			case 'v', 'V':
				opts.virtual = true
			case 's', 'S':
				opts.symbolic = true
			case 'a', 'A':
				opts.ascii = true
			case '6':
				opts.sixbit = true
			case 'h', 'H':
				opts.halves = true
			case 0, ' ', '\t':
				break switches
			default:
				return opts, fmt.Errorf("unknown switch: %c", by)
			}
		}
	}
}

// Parse location: PC, FLAGS, ACn[-m] or addr[-addr].
func (line *cmdLine) parseLocation() (location, error) {
	tok := strings.ToLower(line.getToken())
	if tok == "" {
		return location{}, errors.New("location required")
	}
	switch tok {
	case "pc":
		return location{kind: locPC}, nil
	case "flags":
		return location{kind: locFlags}, nil
	}

	loc := location{kind: locMemory}
	limit := uint64(cpu.IOMASK)
	if strings.HasPrefix(tok, "ac") {
		loc.kind = locAC
		tok = tok[2:]
		limit = 0o17
	}
	lowStr, highStr, isRange := strings.Cut(tok, "-")
	low, err := strconv.ParseUint(lowStr, 8, 22)
	if err != nil || low > limit {
		return location{}, errors.New("invalid location: " + tok)
	}
	high := low
	if isRange {
		highStr = strings.TrimPrefix(highStr, "ac")
		high, err = strconv.ParseUint(highStr, 8, 22)
		if err != nil || high > limit || high < low {
			return location{}, errors.New("invalid range: " + tok)
		}
	}
	loc.low = uint32(low)
	loc.high = uint32(high)
	return loc, nil
}

// Format word as asked by switches.
func formatWord(w uint64, opts memoryOpts, its bool) string {
	var str string
	if opts.halves {
		str = octal.Halves(w)
	} else {
		str = octal.Word(w)
	}
	if opts.symbolic {
		str += " " + disassemble.Disassemble(w, its)
	}
	if opts.ascii {
		str += " " + strconv.Quote(octal.ASCII(w))
	}
	if opts.sixbit {
		str += " " + strconv.Quote(octal.SIXBIT(w))
	}
	return str
}

// Display contents of locations.
func examine(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Examine")
	opts, err := line.parseSwitches()
	if err != nil {
		return false, err
	}
	loc, err := line.parseLocation()
	if err != nil {
		return false, err
	}
	if !line.isEOL() {
		return false, errors.New("extra text after location: " + line.rest())
	}

	return false, core.Access(func(c *cpu.CPU) error {
		its := c.Pager().Discipline() == pager.ITS
		switch loc.kind {
		case locPC:
			fmt.Fprintf(out, "PC: %06o\n", c.PC)
		case locFlags:
			fmt.Fprintf(out, "FLAGS: %06o\n", c.Flags())
		case locAC:
			cur, _ := c.Blocks()
			for n := loc.low; n <= loc.high; n++ {
				fmt.Fprintf(out, "AC%o: %s\n", n, formatWord(c.GetAC(cur, int(n)), opts, its))
			}
		default:
			for addr := loc.low; addr <= loc.high; addr++ {
				w, err := c.Examine(addr, opts.virtual)
				if err != nil {
					return fmt.Errorf("%06o: %w", addr, err)
				}
				fmt.Fprintf(out, "%06o: %s\n", addr, formatWord(w, opts, its))
			}
		}
		return nil
	})
}

// Parse value for deposit.
func (line *cmdLine) parseValue(opts memoryOpts, its bool) (uint64, error) {
	text := line.rest()
	if text == "" {
		return 0, errors.New("value required")
	}
	switch {
	case opts.symbolic:
		return assemble.Assemble(text, its)
	case opts.ascii:
		return octal.PackASCII(strings.Trim(text, "\""))
	default:
		return octal.Parse(text)
	}
}

// Store value into locations.
func deposit(line *cmdLine, core *core.Core) (bool, error) {
	slog.Debug("Command Deposit")
	opts, err := line.parseSwitches()
	if err != nil {
		return false, err
	}
	loc, err := line.parseLocation()
	if err != nil {
		return false, err
	}

	return false, core.Access(func(c *cpu.CPU) error {
		its := c.Pager().Discipline() == pager.ITS
		value, err := line.parseValue(opts, its)
		if err != nil {
			return err
		}
		switch loc.kind {
		case locPC:
			if value > uint64(cpu.AMASK) {
				return fmt.Errorf("PC out of range: %o", value)
			}
			c.PC = uint32(value)
		case locFlags:
			c.SetFlags(uint32(value))
		case locAC:
			cur, _ := c.Blocks()
			for n := loc.low; n <= loc.high; n++ {
				c.SetAC(cur, int(n), value)
			}
		default:
			for addr := loc.low; addr <= loc.high; addr++ {
				if err := c.Deposit(addr, value, opts.virtual); err != nil {
					return fmt.Errorf("%06o: %w", addr, err)
				}
			}
		}
		return nil
	})
}
