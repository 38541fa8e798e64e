// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jhd1313m1test emulates a JHD1313M1 RGB LCD for tests and for
// running display code without the hardware.
//
// An Emulator is a common.Bus. It decodes the HD44780 instruction set sent
// to 0x3E and the PCA9633 register writes sent to 0x62 into display state
// that can be inspected, printed to a terminal or drawn as an image.
package jhd1313m1test

import (
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/GermanBionicSystems/grovelcd/common"
)

const (
	// LCDAddr and RGBAddr are the addresses the emulator answers to.
	LCDAddr uint16 = 0x3e
	RGBAddr uint16 = 0x62

	// LineLen is the number of DDRAM cells per line in two line mode.
	LineLen = 40
	// Lines is the number of display lines.
	Lines = 2
	// Glyphs is the number of CGRAM glyph slots.
	Glyphs = 8
)

// PCA9633 registers holding the color channels.
const (
	regBlue  = 0x02
	regGreen = 0x03
	regRed   = 0x04
	numRegs  = 9
)

// Write is one bus transfer received by the emulator.
type Write struct {
	Addr uint16
	W    []byte
}

// Emulator is an in-memory JHD1313M1. It is safe for concurrent use.
type Emulator struct {
	mu sync.Mutex

	ddram [Lines][LineLen]byte
	cgram [Glyphs * 8]byte

	// Address counter. cgMode selects CGRAM (cgAddr) over DDRAM (line, col).
	cgMode bool
	cgAddr int
	line   int
	col    int
	// shift is how many cells the content is shifted right.
	shift int

	increment   bool
	entryShift  bool
	displayOn   bool
	cursorOn    bool
	blinkOn     bool
	twoLines    bool
	functionSet int

	regs [numRegs]byte

	writes    []Write
	failAfter int
	failErr   error
}

// New returns an emulator in the power-on reset state: display off, cursor
// moving right, DDRAM blank.
func New() *Emulator {
	e := &Emulator{}
	e.clear()
	return e
}

// FailAfter makes every write after the first n fail with err. A nil err
// disables failures.
func (e *Emulator) FailAfter(n int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failAfter = n
	e.failErr = err
}

// Write implements common.Bus.
func (e *Emulator) Write(ctx context.Context, addr uint16, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failErr != nil && len(e.writes) >= e.failAfter {
		return e.failErr
	}
	var err error
	switch addr {
	case LCDAddr:
		err = e.lcd(p)
	case RGBAddr:
		err = e.rgb(p)
	default:
		err = fmt.Errorf("jhd1313m1test: no device at 0x%02x", addr)
	}
	if err == nil {
		e.writes = append(e.writes, Write{Addr: addr, W: append([]byte(nil), p...)})
	}
	return err
}

// lcd decodes control byte framing: bit 7 (Co) set means one byte follows
// before the next control byte, bit 6 (RS) selects data over instruction.
func (e *Emulator) lcd(p []byte) error {
	for i := 0; i < len(p); {
		ctl := p[i]
		i++
		if i == len(p) {
			return fmt.Errorf("jhd1313m1test: control byte 0x%02x without payload", ctl)
		}
		rs := ctl&0x40 != 0
		last := len(p)
		if ctl&0x80 != 0 {
			last = i + 1
		}
		for ; i < last; i++ {
			if rs {
				e.data(p[i])
			} else {
				e.instruction(p[i])
			}
		}
	}
	return nil
}

func (e *Emulator) instruction(cmd byte) {
	switch {
	case cmd&0x80 != 0:
		addr := int(cmd & 0x7f)
		e.cgMode = false
		e.line = (addr >> 6) & 1
		e.col = (addr & 0x3f) % LineLen
	case cmd&0x40 != 0:
		e.cgMode = true
		e.cgAddr = int(cmd & 0x3f)
	case cmd&0x20 != 0:
		e.twoLines = cmd&0x08 != 0
		e.functionSet++
	case cmd&0x10 != 0:
		right := cmd&0x04 != 0
		if cmd&0x08 != 0 {
			e.shiftDisplay(right)
		} else {
			e.moveCursor(right)
		}
	case cmd&0x08 != 0:
		e.displayOn = cmd&0x04 != 0
		e.cursorOn = cmd&0x02 != 0
		e.blinkOn = cmd&0x01 != 0
	case cmd&0x04 != 0:
		e.increment = cmd&0x02 != 0
		e.entryShift = cmd&0x01 != 0
	case cmd&0x02 != 0:
		e.cgMode = false
		e.line, e.col, e.shift = 0, 0, 0
	case cmd&0x01 != 0:
		e.clear()
	}
}

func (e *Emulator) data(b byte) {
	if e.cgMode {
		e.cgram[e.cgAddr] = b
		if e.increment {
			e.cgAddr = (e.cgAddr + 1) % len(e.cgram)
		} else {
			e.cgAddr = (e.cgAddr + len(e.cgram) - 1) % len(e.cgram)
		}
		return
	}
	e.ddram[e.line][e.col] = b
	e.moveCursor(e.increment)
	if e.entryShift {
		e.shiftDisplay(!e.increment)
	}
}

// moveCursor steps the DDRAM address, wrapping from the end of one line to
// the start of the other.
func (e *Emulator) moveCursor(right bool) {
	if right {
		e.col++
		if e.col == LineLen {
			e.col = 0
			e.line = (e.line + 1) % Lines
		}
		return
	}
	e.col--
	if e.col < 0 {
		e.col = LineLen - 1
		e.line = (e.line + Lines - 1) % Lines
	}
}

func (e *Emulator) shiftDisplay(right bool) {
	if right {
		e.shift = (e.shift + 1) % LineLen
	} else {
		e.shift = (e.shift + LineLen - 1) % LineLen
	}
}

func (e *Emulator) clear() {
	for l := range e.ddram {
		for c := range e.ddram[l] {
			e.ddram[l][c] = ' '
		}
	}
	e.cgMode = false
	e.line, e.col, e.shift = 0, 0, 0
	e.increment = true
}

// rgb stores PCA9633 register writes. Bit 7 of the register byte enables
// auto increment for the following bytes.
func (e *Emulator) rgb(p []byte) error {
	if len(p) < 2 {
		return fmt.Errorf("jhd1313m1test: short backlight write % x", p)
	}
	if len(p) > 2 && p[0]&0x80 == 0 {
		return fmt.Errorf("jhd1313m1test: multi byte backlight write without auto increment")
	}
	reg := int(p[0] & 0x1f)
	for _, v := range p[1:] {
		if reg >= numRegs {
			return fmt.Errorf("jhd1313m1test: backlight register 0x%02x", reg)
		}
		e.regs[reg] = v
		reg++
	}
	return nil
}

// Writes returns every successful transfer received so far.
func (e *Emulator) Writes() []Write {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Write, len(e.writes))
	copy(out, e.writes)
	return out
}

// Line returns the 40 DDRAM cells of line 0 or 1.
func (e *Emulator) Line(row int) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return string(e.ddram[row][:])
}

// Visible returns the cells shown on a display cols wide, taking the display
// shift into account. It does not depend on the display being on.
func (e *Emulator) Visible(cols int) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible(cols)
}

func (e *Emulator) visible(cols int) []string {
	out := make([]string, Lines)
	for l := range e.ddram {
		row := make([]byte, cols)
		for c := range row {
			row[c] = e.ddram[l][((c-e.shift)%LineLen+LineLen)%LineLen]
		}
		out[l] = string(row)
	}
	return out
}

// Cursor returns the DDRAM line and column of the address counter.
func (e *Emulator) Cursor() (line, col int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.line, e.col
}

// Shift returns the display shift, in cells to the right, 0..39.
func (e *Emulator) Shift() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shift
}

// Control returns the display control flags last set.
func (e *Emulator) Control() (displayOn, cursorOn, blinkOn bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.displayOn, e.cursorOn, e.blinkOn
}

// EntryMode returns the entry mode flags last set.
func (e *Emulator) EntryMode() (increment, shift bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.increment, e.entryShift
}

// FunctionSets returns how many function set instructions were received and
// whether the last one selected two lines.
func (e *Emulator) FunctionSets() (n int, twoLines bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.functionSet, e.twoLines
}

// Glyph returns the pattern stored in CGRAM slot 0..7.
func (e *Emulator) Glyph(slot int) [8]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	var g [8]byte
	copy(g[:], e.cgram[slot*8:])
	return g
}

// Register returns a backlight controller register.
func (e *Emulator) Register(reg int) byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.regs[reg]
}

// Color returns the backlight PWM values as a color.
func (e *Emulator) Color() color.NRGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.color()
}

func (e *Emulator) color() color.NRGBA {
	return color.NRGBA{R: e.regs[regRed], G: e.regs[regGreen], B: e.regs[regBlue], A: 0xff}
}

var _ common.Bus = &Emulator{}
