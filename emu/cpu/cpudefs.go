/*
 * KS10 - CPU definitions
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
	"errors"
	"fmt"

	"github.com/rcornwell/KS10/emu/apr"
	"github.com/rcornwell/KS10/emu/device"
	"github.com/rcornwell/KS10/emu/event"
	"github.com/rcornwell/KS10/emu/memory"
	"github.com/rcornwell/KS10/emu/pager"
	"github.com/rcornwell/KS10/emu/pi"
)

const (
	// Debug options.
	debugInst = 1 << iota
	debugTrap
	debugIRQ
	debugIO
)

var debugOption = map[string]int{
	"INST": debugInst,
	"TRAP": debugTrap,
	"IRQ":  debugIRQ,
	"IO":   debugIO,
}

// Debug option mask, set from configuration before the CPU is created.
var debugMsk int

// Enable debug options.
func Debug(opt string) error {
	flag, ok := debugOption[opt]
	if !ok {
		return errors.New("CPU debug option invalid: " + opt)
	}
	debugMsk |= flag
	return nil
}

// Information about current step.
type stepInfo struct {
	inst   uint64 // Current instruction
	opcode int    // Opcode
	ac     int    // Accumulator field
	ea     uint32 // Effective address
	eaWord uint64 // Last word used to compute effective address
	pc     uint32 // Address of instruction
	nextPC uint32 // Address of next instruction
	xct    int    // Previous context bits from PXCT
	trap   bool   // Executing trap instruction
	again  bool   // Execute new instruction in inst
	depth  int    // XCT nesting depth
}

// Machine configuration.
type Config struct {
	MemSize     int  // Memory size in K words
	ITS         bool // ITS microcode
	IndLimit    int  // Nested indirect limit, 0 for none
	XCTLimit    int  // Nested XCT limit, 0 for none
	History     int  // Number of history entries, 0 disabled
	Serial      int  // Processor serial number
	StopIllegal bool // Stop on opcode zero
}

// CPU holds the complete machine state.
type CPU struct {
	mem    *memory.Memory
	pager  *pager.Pager
	pi     *pi.PI
	apr    *apr.APR
	bus    *device.Bus
	events *event.Queue
	cfg    Config

	acs  [8][16]uint64 // Accumulator blocks
	cur  int           // Current AC block
	prev int           // Previous AC block

	PC    uint32 // Program counter
	flags uint32 // Processor flags

	onePArm    bool // ITS 1-proceed trap armed for this instruction
	onePShadow bool // ITS 1-proceed requested by last flag load
	inIntr     bool // Running interrupt sequence

	forced     bool   // Console forced execute pending
	forcedAddr uint32 // Address of forced instruction

	hsb       uint32 // Halt status block address
	timebase  uint64 // Time base, low 12 bits are sub-tick
	interval  uint64 // Interval timer period
	intCount  uint64 // Time left in interval
	cycles    uint64 // Instructions executed
	extClock  bool   // Clock ticks come from ClockTick callers
	breaks    map[uint32]bool
	skipBreak bool // Ignore breakpoint on next fetch
	history   *History

	table [512]func(*stepInfo)
	io700 [16]func(*stepInfo) // APR and PI functions
	io701 [16]func(*stepInfo) // Pager functions
	io702 [16]func(*stepInfo) // Process register functions
}

// Reason the CPU stopped.
type StopCode int

const (
	StopNone StopCode = iota
	StopHalt
	StopBreak
	StopIllegal
	StopIndirect
	StopXCT
	StopIllInt
	StopZeroVec
	StopPageInt
	StopIOError
)

var stopNames = map[StopCode]string{
	StopNone:     "Running",
	StopHalt:     "HALT instruction",
	StopBreak:    "Breakpoint",
	StopIllegal:  "Illegal instruction",
	StopIndirect: "Nested indirect limit",
	StopXCT:      "Nested XCT limit",
	StopIllInt:   "Invalid interrupt instruction",
	StopZeroVec:  "Zero vector table",
	StopPageInt:  "Page fail in interrupt",
	StopIOError:  "I/O error",
}

func (s StopCode) String() string {
	if n, ok := stopNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Stop %d", int(s))
}

// StopError is returned when the CPU stops.
type StopError struct {
	Code StopCode
	PC   uint32
}

func (e *StopError) Error() string {
	return fmt.Sprintf("%s, PC: %06o", e.Code, e.PC)
}

// Abort value carried by panic from deep inside an instruction.
// Positive values are stop codes, negative a page fail and zero
// a pending interrupt.
type abort int

const (
	abortInterrupt abort = 0
	abortPageFail  abort = -1
)

const (
	FMASK  uint64 = 0o777777777777  // Full word
	RMASK  uint64 = 0o000000777777  // Right half
	LMASK  uint64 = 0o777777000000  // Left half
	SMASK  uint64 = 0o400000000000  // Sign bit
	CMASK  uint64 = 0o377777777777  // Magnitude
	C1     uint64 = 0o1000000000000 // Carry out of word
	RSIGN  uint64 = 0o000000400000  // Sign of right half
	BIT1   uint64 = 0o200000000000  // Bit 1
	AMASK  uint32 = 0o777777        // Address mask
	INDBIT uint64 = 0o20000000      // Indirect bit
	IDXMSK uint64 = 0o17000000      // Index register field
	IOMASK uint32 = 0o17777777      // 22 bit I/O address

	// Flags, stored in the left half of PC word shifted by 23.
	OVR    uint32 = 0o10000 // Arithmetic overflow
	CRY0   uint32 = 0o04000 // Carry out of bit 0
	CRY1   uint32 = 0o02000 // Carry out of bit 1
	FOV    uint32 = 0o01000 // Floating overflow
	FPD    uint32 = 0o00400 // First part done
	USER   uint32 = 0o00200 // User mode
	USERIO uint32 = 0o00100 // User I/O, previous context user in exec
	PUBLIC uint32 = 0o00040 // Public mode
	ONEP   uint32 = 0o00020 // ITS 1-proceed
	AFI    uint32 = 0o00020 // Address failure inhibit
	TRP2   uint32 = 0o00010 // Trap 2, stack overflow
	TRP1   uint32 = 0o00004 // Trap 1, arithmetic overflow
	FXU    uint32 = 0o00002 // Floating exponent underflow
	NODIV  uint32 = 0o00001 // No divide
	PCU    uint32 = USERIO  // Previous context user

	// PXCT context bits.
	pxEA    = 0o10 // Effective address calculation
	pxData  = 0o04 // Data fetch and store
	pxBPtr  = 0o02 // Byte pointer calculation
	pxBData = 0o01 // Byte data, stack and BLT destination

	// Process table offsets.
	uptTrap    uint32 = 0o420 // Trap instructions, 421 to 423
	uptMUUO    uint32 = 0o424 // MUUO save area
	uptMUUOPC  uint32 = 0o430 // MUUO new PC words
	uptOneP    uint32 = 0o432 // ITS 1-proceed save area
	uptPF      uint32 = 0o500 // Page fail save area
	uptITSPF   uint32 = 0o440 // ITS page fail save area
	eptIntr    uint32 = 0o040 // Interrupt instructions
	eptVector  uint32 = 0o100 // Unibus vector tables
	eptHalt    uint32 = 0o000 // Halt status block default
	cellLUUO   uint32 = 0o040 // Local UUO save word
	cellLUUOXC uint32 = 0o041 // Local UUO instruction

	// UBR select bits.
	ubrSelAC  uint64 = 0o400000000000 // Load AC blocks
	ubrSelPG  uint64 = 0o100000000000 // Load user base page
	ubrCurSh         = 27             // Current block position
	ubrPrevSh        = 24             // Previous block position

	microVersion = 0o130 // Microcode version reported by APRID
	itsVersion   = 0o262 // ITS microcode version
)
