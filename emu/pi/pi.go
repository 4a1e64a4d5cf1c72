/*
 * KS10 - Priority interrupt system
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

package pi

// WRPI function bits.
const (
	DropReq  uint32 = 0o20000 // Drop program requests on selected levels
	Clear    uint32 = 0o10000 // Clear PI system
	ReqSet   uint32 = 0o04000 // Initiate program requests on selected levels
	LevelOn  uint32 = 0o02000 // Turn on selected levels
	LevelOff uint32 = 0o01000 // Turn off selected levels
	SysOff   uint32 = 0o00400 // Turn PI system off
	SysOn    uint32 = 0o00200 // Turn PI system on
	Levels   uint32 = 0o00177 // Level select mask
)

// Priority table, maps a request mask to highest priority level.
var m2lvl = func() [128]int {
	var tbl [128]int
	for mask := 1; mask < 128; mask++ {
		for lvl := 1; lvl <= 7; lvl++ {
			if mask&int(LevelBit(lvl)) != 0 {
				tbl[mask] = lvl
				break
			}
		}
	}
	return tbl
}()

// PI holds the state of the priority interrupt system.
type PI struct {
	on      bool  // PI system is on
	enabled uint8 // Levels turned on
	active  uint8 // Levels in progress
	progReq uint8 // Program requests
	aprReq  uint8 // Requests from APR flags
	ioReq   uint8 // Requests from I/O devices
	pending int   // Level to interrupt on, 0 none
}

// Return mask bit for level 1 to 7.
func LevelBit(lvl int) uint8 {
	if lvl < 1 || lvl > 7 {
		return 0
	}
	return uint8(0o200 >> lvl)
}

// Return highest priority level set in mask.
func HighLevel(mask uint8) int {
	return m2lvl[mask&0o177]
}

// Create a new PI system.
func New() *PI {
	return &PI{}
}

// Reset PI system to power on state.
func (p *PI) Reset() {
	*p = PI{}
}

// Evaluate which level, if any, should interrupt now.
// Program requests are masked by the enable mask the same as devices.
func (p *PI) Evaluate() int {
	p.pending = 0
	if !p.on {
		return 0
	}
	req := HighLevel((p.aprReq | p.ioReq | p.progReq) & p.enabled)
	if req == 0 {
		return 0
	}
	act := HighLevel(p.active)
	if act != 0 && act <= req {
		return 0
	}
	p.pending = req
	return req
}

// Return level that should be interrupted, 0 if none.
func (p *PI) Pending() int {
	return p.pending
}

// Mark level as in progress, called when interrupt is taken.
func (p *PI) Activate(lvl int) {
	p.active |= LevelBit(lvl)
	p.Evaluate()
}

// Dismiss highest priority active level.
func (p *PI) Dismiss() {
	lvl := HighLevel(p.active)
	p.active &^= LevelBit(lvl)
	p.Evaluate()
}

// Process WRPI.
func (p *PI) Write(data uint32) {
	lvl := uint8(data & Levels)
	if data&Clear != 0 {
		p.on = false
		p.enabled = 0
		p.active = 0
		p.progReq = 0
	}
	if data&DropReq != 0 {
		p.progReq &^= lvl
	}
	if data&ReqSet != 0 {
		p.progReq |= lvl
	}
	if data&LevelOn != 0 {
		p.enabled |= lvl
	}
	if data&LevelOff != 0 {
		p.enabled &^= lvl
	}
	if data&SysOff != 0 {
		p.on = false
	}
	if data&SysOn != 0 {
		p.on = true
	}
	p.Evaluate()
}

// Process RDPI.
func (p *PI) Read() uint64 {
	val := uint64(p.progReq)<<18 | uint64(p.active)<<8 | uint64(p.enabled)
	if p.on {
		val |= uint64(SysOn)
	}
	return val
}

// Set requests coming from APR flags.
func (p *PI) SetAPR(mask uint8) {
	p.aprReq = mask & 0o177
	p.Evaluate()
}

// Set requests coming from I/O devices.
func (p *PI) SetIO(mask uint8) {
	p.ioReq = mask & 0o177
	p.Evaluate()
}

// Return true if PI system is on.
func (p *PI) On() bool {
	return p.on
}

// Return enabled, active and program request masks.
func (p *PI) Masks() (enabled, active, progReq uint8) {
	return p.enabled, p.active, p.progReq
}
