// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jhd1313m1

import (
	"context"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// ErrNotImplemented is returned for cursor moves the controller cannot do.
var ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)

// TextDisplay exposes a Dev through the periph.io display interfaces. Rows
// and columns are 1-based and range checked, as periph text displays do.
//
// The periph interfaces carry no context; every call uses
// context.Background().
//
// Implements periph.io/x/conn/display/TextDisplay
type TextDisplay struct {
	dev  *Dev
	rows int
	cols int
	off  bool
}

// NewTextDisplay wraps an initialized dev with the given geometry, usually
// 2 rows of 16 columns.
//
// Unlike Dev.CursorOn and Dev.PowerOn, the cursor and display methods of a
// TextDisplay always send the display on bit together with the cursor bits,
// so changing one does not undo the other.
func NewTextDisplay(dev *Dev, rows, cols int) *TextDisplay {
	return &TextDisplay{dev: dev, rows: rows, cols: cols}
}

// Enable/Disable auto scroll
func (td *TextDisplay) AutoScroll(enabled bool) error {
	return td.dev.AutoscrollOn(context.Background(), enabled)
}

// Return the number of columns the display supports
func (td *TextDisplay) Cols() int {
	return td.cols
}

// Clear the display and move the cursor home.
func (td *TextDisplay) Clear() error {
	return td.dev.Clear(context.Background())
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (td *TextDisplay) Cursor(modes ...display.CursorMode) error {
	ctl := td.dev.displayControl
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			ctl &^= ctlCursor | ctlBlink
		case display.CursorUnderline:
			ctl |= ctlCursor
		case display.CursorBlink, display.CursorBlock:
			ctl |= ctlBlink
		default:
			return fmt.Errorf("%s: unexpected cursor: %d", packageName, mode)
		}
	}
	td.dev.displayControl = ctl
	return td.sendControl("Cursor")
}

// Turn the display on / off
func (td *TextDisplay) Display(on bool) error {
	td.off = !on
	return td.sendControl("Display")
}

func (td *TextDisplay) sendControl(op string) error {
	cmd := cmdDisplayOff | td.dev.displayControl
	if !td.off {
		cmd |= ctlDisplay
	}
	td.dev.tx.begin(op)
	return td.dev.command(context.Background(), cmd)
}

// Halt clears the display, turns the backlight off, and turns the display off.
func (td *TextDisplay) Halt() error {
	return td.dev.Halt()
}

// Move the cursor home (MinRow(),MinCol())
func (td *TextDisplay) Home() error {
	return td.dev.Home(context.Background())
}

// Return the min column position.
func (td *TextDisplay) MinCol() int {
	return 1
}

// Return the min row position.
func (td *TextDisplay) MinRow() int {
	return 1
}

// Move the cursor forward or backward.
func (td *TextDisplay) Move(dir display.CursorDirection) error {
	var cmd byte
	switch dir {
	case display.Backward:
		cmd = cmdCursorLeft
	case display.Forward:
		cmd = cmdCursorRight
	default:
		return ErrNotImplemented
	}
	td.dev.tx.begin("Move")
	return td.dev.command(context.Background(), cmd)
}

// Move the cursor to arbitrary position.
func (td *TextDisplay) MoveTo(row, col int) error {
	if row < td.MinRow() || row > td.rows || col < td.MinCol() || col > td.cols {
		return fmt.Errorf("%s.MoveTo(%d,%d) value out of range", packageName, row, col)
	}
	return td.dev.SetCursor(context.Background(), byte(row-1), byte(col-1))
}

// Return the number of rows the display supports.
func (td *TextDisplay) Rows() int {
	return td.rows
}

func (td *TextDisplay) String() string {
	return fmt.Sprintf("%s Rows: %d Cols: %d", packageName, td.rows, td.cols)
}

// Write a set of bytes to the display.
func (td *TextDisplay) Write(p []byte) (int, error) {
	return td.dev.Write(p)
}

// Write a string output to the display.
func (td *TextDisplay) WriteString(text string) (int, error) {
	return td.dev.WriteString(context.Background(), text)
}

// Set the backlight intensity as a shade of white.
func (td *TextDisplay) Backlight(intensity display.Intensity) error {
	v := clampIntensity(intensity)
	return td.dev.SetColor(context.Background(), v, v, v)
}

// Set the backlight color. The range of the values is 0-255.
func (td *TextDisplay) RGBBacklight(red, green, blue display.Intensity) error {
	return td.dev.SetColor(context.Background(),
		clampIntensity(red), clampIntensity(green), clampIntensity(blue))
}

func clampIntensity(i display.Intensity) byte {
	v := int(i)
	if v < 0 {
		return 0
	}
	if v > 0xff {
		return 0xff
	}
	return byte(v)
}

var _ conn.Resource = &TextDisplay{}
var _ display.TextDisplay = &TextDisplay{}
var _ display.DisplayBacklight = &TextDisplay{}
var _ display.DisplayRGBBacklight = &TextDisplay{}
