// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jhd1313m1 drives the JHD1313M1 RGB character LCD, sold as the
// Grove LCD RGB Backlight.
//
// The module carries two I²C devices: an HD44780 compatible text controller
// at 0x3E and a PCA9633 backlight controller at 0x62. Every operation is a
// short sequence of two byte writes:
//
//	[0x80, cmd]  instruction to 0x3E
//	[0x40, data] character or glyph data to 0x3E
//	[reg, value] backlight register to 0x62
//
// A Dev must be initialized with Init after power up. It is not safe for
// concurrent use; callers sharing one must serialize access.
//
// # Datasheets
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
//
// https://www.nxp.com/docs/en/data-sheet/PCA9633.pdf
package jhd1313m1

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"

	"github.com/GermanBionicSystems/grovelcd/common"
	"github.com/GermanBionicSystems/grovelcd/pca9633"
)

const (
	// LCDAddr is the address of the text controller.
	LCDAddr uint16 = 0x3e
	// RGBAddr is the address of the backlight controller.
	RGBAddr uint16 = 0x62

	packageName = "jhd1313m1"
)

// Control bytes prefixed to every write to LCDAddr.
const (
	ctlCommand byte = 0x80
	ctlData    byte = 0x40
)

// Instructions.
const (
	cmdClear         byte = 0x01
	cmdHome          byte = 0x02
	cmdEntryMode     byte = 0x04
	cmdEntryDefault  byte = 0x06
	cmdDisplayOff    byte = 0x08
	cmdDisplayOn     byte = 0x0c
	cmdCursorLeft    byte = 0x10
	cmdCursorRight   byte = 0x14
	cmdScrollLeft    byte = 0x18
	cmdScrollRight   byte = 0x1e
	cmdFunctionSet   byte = 0x38
	cmdSetCGRAMAddr  byte = 0x40
	cmdSetDDRAMAddr  byte = 0x80
	ddramRowStride   byte = 0x40
	cgramGlyphStride byte = 8
)

// Bits of the display control and entry mode state.
const (
	ctlBlink   byte = 0x01
	ctlCursor  byte = 0x02
	ctlDisplay byte = 0x04

	entryAutoscroll  byte = 0x01
	entryLeftToRight byte = 0x02
)

// Datasheet hold-off times.
const (
	powerOnDelay  = 50 * time.Millisecond
	functionDelay = 5 * time.Millisecond
	settleDelay   = time.Millisecond
	clearDelay    = 2 * time.Millisecond
)

// State is the mode state the driver last sent to the display.
type State struct {
	// DisplayControl: bit 0 cursor blink, bit 1 cursor visible.
	DisplayControl byte
	// EntryMode: bit 0 autoscroll, bit 1 left to right.
	EntryMode byte
}

// Dev is a JHD1313M1 display.
type Dev struct {
	tx    txBus
	clock common.Sleeper
	log   logrus.FieldLogger
	rgb   *pca9633.Dev

	displayControl byte
	entryMode      byte
}

// New returns a display writing to bus. No I/O is performed; call Init
// before anything else.
//
// Use default options if nil is used.
func New(bus common.Bus, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{clock: opts.Clock, log: opts.Logger}
	if d.clock == nil {
		d.clock = common.DefaultClock()
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	d.log = d.log.WithField("dev", packageName)
	d.tx = txBus{bus: bus, log: d.log}
	d.rgb = pca9633.New(&d.tx, RGBAddr)
	d.log.Info("creating display")
	return d
}

// NewI2C returns a display on a periph.io I²C bus.
func NewI2C(b i2c.Bus, opts *Opts) *Dev {
	return New(common.NewI2C(b), opts)
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{lcd:0x%02x rgb:0x%02x}", packageName, LCDAddr, RGBAddr)
}

// State returns the display control and entry mode bits last sent.
func (d *Dev) State() State {
	return State{DisplayControl: d.displayControl, EntryMode: d.entryMode}
}

// Init runs the power-on sequence: function set three times with the
// datasheet delays, then display on, clear and the default entry mode.
//
// It must be called once after power up. Calling it again is harmless.
func (d *Dev) Init(ctx context.Context) error {
	d.log.Info("init display")
	d.tx.begin("Init")
	d.clock.Sleep(powerOnDelay)
	if err := d.command(ctx, cmdFunctionSet); err != nil {
		return err
	}
	d.clock.Sleep(functionDelay)
	if err := d.command(ctx, cmdFunctionSet); err != nil {
		return err
	}
	d.clock.Sleep(settleDelay)
	for _, cmd := range []byte{cmdFunctionSet, cmdDisplayOn, cmdClear, cmdEntryDefault} {
		if err := d.command(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}

// Clear blanks the display and returns the cursor to the first cell.
func (d *Dev) Clear(ctx context.Context) error {
	d.tx.begin("Clear")
	if err := d.command(ctx, cmdClear); err != nil {
		return err
	}
	d.clock.Sleep(clearDelay)
	return nil
}

// Home returns the cursor to the first cell and undoes display shifts.
func (d *Dev) Home(ctx context.Context) error {
	d.tx.begin("Home")
	if err := d.command(ctx, cmdHome); err != nil {
		return err
	}
	d.clock.Sleep(clearDelay)
	return nil
}

// SetCursor moves the cursor to the zero-based row and col.
//
// The DDRAM address 0x80 + 0x40*row + col is computed modulo 256 and sent
// as is. Positions outside the display are not rejected; the controller
// decides where they land.
func (d *Dev) SetCursor(ctx context.Context, row, col byte) error {
	d.tx.begin("SetCursor")
	return d.command(ctx, cmdSetDDRAMAddr+ddramRowStride*row+col)
}

// WriteString sends every byte of text as character data. Multi-byte UTF-8
// sequences are sent byte by byte. No wrapping is done.
func (d *Dev) WriteString(ctx context.Context, text string) (int, error) {
	return d.WriteBytes(ctx, []byte(text))
}

// WriteBytes sends p as character data, one write per byte. It returns the
// number of bytes that reached the display.
func (d *Dev) WriteBytes(ctx context.Context, p []byte) (int, error) {
	d.tx.begin("Write")
	for i, b := range p {
		if err := d.data(ctx, b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// Write implements io.Writer.
func (d *Dev) Write(p []byte) (int, error) {
	return d.WriteBytes(context.Background(), p)
}

// WriteChar sends a single character code, e.g. a custom glyph 0..7.
func (d *Dev) WriteChar(ctx context.Context, c byte) error {
	d.tx.begin("WriteChar")
	return d.data(ctx, c)
}

// CreateChar stores the 5x8 glyph pattern in CGRAM slot 0..7. Print it by
// writing the slot number as a character.
//
// slot is not range checked; larger values alias per the controller.
func (d *Dev) CreateChar(ctx context.Context, slot byte, pattern [8]byte) error {
	d.tx.begin("CreateChar")
	if err := d.command(ctx, cmdSetCGRAMAddr+slot*cgramGlyphStride); err != nil {
		return err
	}
	for _, row := range pattern {
		if err := d.data(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// CursorOn shows or hides the underline cursor.
func (d *Dev) CursorOn(ctx context.Context, on bool) error {
	return d.setDisplayControl(ctx, "CursorOn", setBits(d.displayControl, ctlCursor, on))
}

// CursorBlinkOn enables or disables the blinking block cursor.
func (d *Dev) CursorBlinkOn(ctx context.Context, on bool) error {
	return d.setDisplayControl(ctx, "CursorBlinkOn", setBits(d.displayControl, ctlBlink, on))
}

// EntryLeftToRight selects whether the cursor moves right (true) or left
// after each character.
func (d *Dev) EntryLeftToRight(ctx context.Context, on bool) error {
	return d.setEntryMode(ctx, "EntryLeftToRight", setBits(d.entryMode, entryLeftToRight, on))
}

// AutoscrollOn shifts the whole display on each character instead of moving
// the cursor.
func (d *Dev) AutoscrollOn(ctx context.Context, on bool) error {
	return d.setEntryMode(ctx, "AutoscrollOn", setBits(d.entryMode, entryAutoscroll, on))
}

// ScrollDisplayLeft shifts the visible window one cell.
func (d *Dev) ScrollDisplayLeft(ctx context.Context) error {
	d.tx.begin("ScrollDisplayLeft")
	return d.command(ctx, cmdScrollLeft)
}

// ScrollDisplayRight shifts the visible window one cell.
func (d *Dev) ScrollDisplayRight(ctx context.Context) error {
	d.tx.begin("ScrollDisplayRight")
	return d.command(ctx, cmdScrollRight)
}

// PowerOn turns the display on with cursor and blink off.
//
// The cursor bits kept by CursorOn and CursorBlinkOn are neither sent nor
// cleared, so the next cursor call brings them back.
func (d *Dev) PowerOn(ctx context.Context) error {
	d.tx.begin("PowerOn")
	return d.command(ctx, cmdDisplayOn)
}

// PowerOff blanks the display. DDRAM content is kept.
func (d *Dev) PowerOff(ctx context.Context) error {
	d.tx.begin("PowerOff")
	return d.command(ctx, cmdDisplayOff)
}

// Halt clears the display, turns it off and turns the backlight off. Every
// step is attempted; the first error is returned.
//
// Implements conn.Resource.
func (d *Dev) Halt() error {
	ctx := context.Background()
	err := d.Clear(ctx)
	if e := d.PowerOff(ctx); err == nil {
		err = e
	}
	if e := d.BacklightOn(ctx, false); err == nil {
		err = e
	}
	return err
}

func (d *Dev) setDisplayControl(ctx context.Context, op string, ctl byte) error {
	d.tx.begin(op)
	d.displayControl = ctl
	return d.command(ctx, cmdDisplayOff|d.displayControl)
}

func (d *Dev) setEntryMode(ctx context.Context, op string, mode byte) error {
	d.tx.begin(op)
	d.entryMode = mode
	return d.command(ctx, cmdEntryMode|d.entryMode)
}

func (d *Dev) command(ctx context.Context, cmd byte) error {
	d.log.WithField("cmd", fmt.Sprintf("0x%02x", cmd)).Debug("sending command")
	return d.tx.Write(ctx, LCDAddr, []byte{ctlCommand, cmd})
}

func (d *Dev) data(ctx context.Context, b byte) error {
	d.log.WithField("data", fmt.Sprintf("0x%02x", b)).Debug("writing data")
	return d.tx.Write(ctx, LCDAddr, []byte{ctlData, b})
}

func setBits(v, mask byte, on bool) byte {
	if on {
		return v | mask
	}
	return v &^ mask
}

// txBus is the Bus every write of a Dev goes through, including the
// backlight controller's. It numbers the writes of the running operation
// and turns failures into *TxError.
type txBus struct {
	bus  common.Bus
	log  logrus.FieldLogger
	op   string
	step int
}

func (t *txBus) begin(op string) {
	t.op = op
	t.step = 0
}

func (t *txBus) Write(ctx context.Context, addr uint16, p []byte) error {
	if err := t.bus.Write(ctx, addr, p); err != nil {
		e := &TxError{Op: t.op, Addr: addr, Step: t.step, Err: err}
		copy(e.Frame[:], p)
		t.log.WithFields(logrus.Fields{
			"op":   e.Op,
			"step": e.Step,
			"addr": fmt.Sprintf("0x%02x", addr),
		}).WithError(err).Warn("write failed")
		return e
	}
	t.step++
	return nil
}

var _ conn.Resource = &Dev{}
var _ common.Bus = &txBus{}
