// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jhd1313m1_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/GermanBionicSystems/grovelcd/jhd1313m1"
	"github.com/GermanBionicSystems/grovelcd/jhd1313m1/jhd1313m1test"
)

var liveDevice bool

func getDev(t *testing.T) (*jhd1313m1.TextDisplay, *jhd1313m1test.Emulator) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	emu := jhd1313m1test.New()
	dev := jhd1313m1.New(emu, &jhd1313m1.Opts{Clock: noSleep{}, Logger: logger})
	if err := dev.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	return jhd1313m1.NewTextDisplay(dev, 2, 16), emu
}

type noSleep struct{}

func (noSleep) Sleep(time.Duration) {}

func TestBasic(t *testing.T) {
	td, emu := getDev(t)
	s := td.String()
	if len(s) == 0 {
		t.Error("error on String()")
	}
	t.Log(s)

	if err := td.Clear(); err != nil {
		t.Error(err)
	}
	if err := td.Backlight(0xff); err != nil {
		t.Error(err)
	}
	n, err := td.WriteString("jhd1313m1")
	if err != nil {
		t.Error(err)
	}
	if n != 9 {
		t.Error("expected 9 bytes written")
	}
	if err := td.MoveTo(2, 3); err != nil {
		t.Error(err)
	}
	if _, err := td.Write([]byte("row 2")); err != nil {
		t.Error(err)
	}
	rows := emu.Visible(td.Cols())
	want := []string{"jhd1313m1", "  row 2"}
	for i := range rows {
		rows[i] = strings.TrimRight(rows[i], " ")
	}
	if diff := cmp.Diff(rows, want); diff != "" {
		t.Errorf("display (-got +want):\n%s", diff)
	}
	if td.Rows() != 2 || td.Cols() != 16 || td.MinRow() != 1 || td.MinCol() != 1 {
		t.Errorf("geometry %d x %d from %d,%d", td.Rows(), td.Cols(), td.MinRow(), td.MinCol())
	}
}

func TestMoveToRange(t *testing.T) {
	td, _ := getDev(t)
	for _, pos := range [][2]int{{0, 1}, {3, 1}, {1, 0}, {1, 17}} {
		if err := td.MoveTo(pos[0], pos[1]); err == nil {
			t.Errorf("MoveTo(%d, %d) accepted", pos[0], pos[1])
		}
	}
}

func TestCursorKeepsDisplayOn(t *testing.T) {
	td, emu := getDev(t)
	if err := td.Cursor(display.CursorUnderline, display.CursorBlink); err != nil {
		t.Fatal(err)
	}
	if on, cursor, blink := emu.Control(); !on || !cursor || !blink {
		t.Errorf("Control() = %v, %v, %v", on, cursor, blink)
	}
	if err := td.Display(false); err != nil {
		t.Fatal(err)
	}
	if err := td.Display(true); err != nil {
		t.Fatal(err)
	}
	if on, cursor, blink := emu.Control(); !on || !cursor || !blink {
		t.Errorf("Control() after Display(true) = %v, %v, %v", on, cursor, blink)
	}
	if err := td.Cursor(display.CursorOff); err != nil {
		t.Fatal(err)
	}
	if on, cursor, blink := emu.Control(); !on || cursor || blink {
		t.Errorf("Control() after CursorOff = %v, %v, %v", on, cursor, blink)
	}
	if err := td.Cursor(display.CursorMode(99)); err == nil {
		t.Error("unknown cursor mode accepted")
	}
}

func TestMove(t *testing.T) {
	td, emu := getDev(t)
	if err := td.Move(display.Forward); err != nil {
		t.Fatal(err)
	}
	if err := td.Move(display.Forward); err != nil {
		t.Fatal(err)
	}
	if err := td.Move(display.Backward); err != nil {
		t.Fatal(err)
	}
	if _, col := emu.Cursor(); col != 1 {
		t.Errorf("cursor column = %d", col)
	}
	if err := td.Move(display.Up); !errors.Is(err, display.ErrNotImplemented) || !errors.Is(err, jhd1313m1.ErrNotImplemented) {
		t.Errorf("Move(Up) = %v", err)
	}
}

func TestBacklights(t *testing.T) {
	td, emu := getDev(t)
	for ix := range 3 {
		leds := make([]display.Intensity, 3)
		leds[ix] = 0xff
		if err := td.RGBBacklight(leds[0], leds[1], leds[2]); err != nil {
			t.Error(err)
		}
		c := emu.Color()
		if got := []byte{c.R, c.G, c.B}; got[ix] != 0xff || got[(ix+1)%3] != 0 {
			t.Errorf("Color() = %v", c)
		}
	}
	if err := td.Backlight(0x40); err != nil {
		t.Error(err)
	}
	if c := emu.Color(); c.R != 0x40 || c.G != 0x40 || c.B != 0x40 {
		t.Errorf("Color() = %v", c)
	}
}

func TestComplete(t *testing.T) {
	td, _ := getDev(t)
	t.Cleanup(func() {
		_ = td.Halt()
	})
	testErrs := displaytest.TestTextDisplay(td, liveDevice)
	for _, err := range testErrs {
		if !errors.Is(err, display.ErrNotImplemented) {
			t.Error(err)
		}
	}
}

// The periph.io adapter sends the same frames as any other bus.
func TestPeriphBus(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x3e, W: []byte{0x80, 0x01}},
			{Addr: 0x3e, W: []byte{0x40, 'A'}},
			{Addr: 0x62, W: []byte{0x04, 0x01}},
			{Addr: 0x62, W: []byte{0x03, 0x02}},
			{Addr: 0x62, W: []byte{0x02, 0x03}},
		},
	}
	logger, _ := test.NewNullLogger()
	dev := jhd1313m1.NewI2C(bus, &jhd1313m1.Opts{Clock: noSleep{}, Logger: logger})
	ctx := context.Background()
	if err := dev.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteChar(ctx, 'A'); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetColor(ctx, 1, 2, 3); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}
