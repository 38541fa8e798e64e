// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jhd1313m1test

import (
	"bytes"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Terminal prints an emulated display using ANSI color codes. The bezel takes
// the backlight color.
//
// Useful while you are waiting for your display to come by mail.
type Terminal struct {
	w       io.Writer
	cols    int
	palette ansi256.Palette

	buf bytes.Buffer
}

// NewTerminal returns a Terminal printing cols columns to stdout.
func NewTerminal(cols int) *Terminal {
	return NewTerminalWriter(colorable.NewColorableStdout(), cols, nil)
}

// NewTerminalWriter returns a Terminal printing to w. A nil palette selects
// ansi256.Default.
func NewTerminalWriter(w io.Writer, cols int, p *ansi256.Palette) *Terminal {
	if p == nil {
		p = ansi256.Default
	}
	return &Terminal{w: w, cols: cols, palette: *p}
}

func (t *Terminal) String() string {
	return "jhd1313m1test.Terminal"
}

// Render draws the visible part of the display. Characters outside printable
// ASCII, including custom glyphs, are shown as '?'. A display that is off
// shows blank lines.
func (t *Terminal) Render(e *Emulator) error {
	e.mu.Lock()
	rows := e.visible(t.cols)
	on := e.displayOn
	bg := e.color()
	e.mu.Unlock()

	// This code is designed to minimize the amount of memory allocated per call.
	t.buf.Reset()
	bezel := t.palette.Block(bg)
	for _, row := range rows {
		_, _ = t.buf.WriteString("\033[0m")
		_, _ = t.buf.WriteString(bezel)
		_, _ = t.buf.WriteString("\033[0m")
		for i := 0; i < len(row); i++ {
			_ = t.buf.WriteByte(printable(row[i], on))
		}
		_, _ = t.buf.WriteString(bezel)
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	_, err := t.buf.WriteTo(t.w)
	return err
}

// Halt resets the terminal colors.
func (t *Terminal) Halt() error {
	_, err := t.w.Write([]byte("\033[0m"))
	return err
}

func printable(c byte, on bool) byte {
	switch {
	case !on:
		return ' '
	case c >= 0x20 && c < 0x7f:
		return c
	default:
		return '?'
	}
}
