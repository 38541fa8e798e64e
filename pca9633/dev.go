// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The PCA9633 is a four-channel LED PWM controller. Additionally, it provides
// features for dimming and blink. The JHD1313M1 RGB LCD uses one at address
// 0x62 for its backlight, with blue, green and red on channels 0, 1 and 2.
//
// # Datasheet
//
// https://www.nxp.com/docs/en/data-sheet/PCA9633.pdf
package pca9633

import (
	"context"
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/grovelcd/common"
)

type LEDMode byte

const (
	ModeFullOff LEDMode = iota
	ModeFullOn
	// The brightness of the LED is controlled by the PWM setting.
	ModePWM
	// The brightness of the LED is controlled by the PWM setting AND the group
	// PWM/blinking options.
	ModePWMPlusGroup
)

// Register offsets from the datasheet.
const (
	RegMode1 byte = iota
	RegMode2
	RegPWM0
	RegPWM1
	RegPWM2
	RegPWM3
	RegGroupPWM
	RegGroupFreq
	RegLEDOut
)

// Bits of the MODE2 register.
const (
	Mode2Blink  byte = 0x20
	Mode2Invert byte = 0x10
	Mode2Totem  byte = 0x08
)

// Channels is the number of LED outputs.
const Channels = 4

// BlinkStep is the resolution of the group blink period.
const BlinkStep = time.Second / 24

var ErrChannel = errors.New("pca9633: channel out of range")

// Dev represents a PCA9633 LED PWM Controller.
type Dev struct {
	bus  common.Bus
	addr uint16

	modes [Channels]LEDMode
	// modesKnown is false until LEDOUT was written once; the power-on value
	// is not trusted.
	modesKnown bool
	// bit settings for device mode register 2
	mode2 byte
}

// New returns a PCA9633 at addr. No I/O is performed; call Init to take the
// chip out of sleep.
func New(bus common.Bus, addr uint16) *Dev {
	return &Dev{bus: bus, addr: addr}
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("pca9633: %w", err)
}

func (dev *Dev) write(ctx context.Context, reg, val byte) error {
	return wrap(dev.bus.Write(ctx, dev.addr, []byte{reg, val}))
}

// Init turns on the PWM oscillator, writes mode2 to MODE2 and puts every
// channel under individual PWM control.
func (dev *Dev) Init(ctx context.Context, mode2 byte) error {
	// Bit 4 of MODE1 cleared is normal mode; the oscillator needs 500µs
	// which the next bus transfers cover.
	if err := dev.write(ctx, RegMode1, 0x00); err != nil {
		return err
	}
	if err := dev.write(ctx, RegMode2, mode2); err != nil {
		return err
	}
	dev.mode2 = mode2
	dev.modesKnown = false
	return dev.SetModes(ctx, ModePWM, ModePWM, ModePWM, ModePWM)
}

// Halt stops all LED display by setting them all to ModeFullOff. Implements
// conn.Resource.
func (dev *Dev) Halt() error {
	return dev.SetModes(context.Background(), ModeFullOff, ModeFullOff, ModeFullOff, ModeFullOff)
}

// SetPWM sets the duty cycle of one channel.
func (dev *Dev) SetPWM(ctx context.Context, channel int, value byte) error {
	if channel < 0 || channel >= Channels {
		return fmt.Errorf("%w: %d", ErrChannel, channel)
	}
	return dev.write(ctx, RegPWM0+byte(channel), value)
}

// Out sets the intensity of the LEDs, starting at channel 0. An intensity of
// 0 turns the LED full off; 255 or more turns an LED that was off full on.
// Anything else is PWMd and puts the channel under PWM control if needed.
//
// Unlike SetPWM, Out may also write LEDOUT.
func (dev *Dev) Out(ctx context.Context, intensities ...display.Intensity) error {
	if len(intensities) > Channels {
		return fmt.Errorf("%w: %d intensities", ErrChannel, len(intensities))
	}
	newModes := dev.modes
	for ix, v := range intensities {
		switch {
		case v <= 0:
			newModes[ix] = ModeFullOff
		case v >= 0xff && dev.modes[ix] == ModeFullOff:
			newModes[ix] = ModeFullOn
		default:
			if dev.modes[ix] != ModePWM && dev.modes[ix] != ModePWMPlusGroup {
				newModes[ix] = ModePWM
			}
			if v > 0xff {
				v = 0xff
			}
			if err := dev.write(ctx, RegPWM0+byte(ix), byte(v)); err != nil {
				return err
			}
		}
	}
	return dev.SetModes(ctx, newModes[:]...)
}

// SetGroupPWM sets the group duty cycle. While blinking it is the on ratio of
// the blink period.
func (dev *Dev) SetGroupPWM(ctx context.Context, value byte) error {
	return dev.write(ctx, RegGroupPWM, value)
}

// SetGroupBlink enables group blinking with the given period and duty cycle.
// The period ranges from 41.6ms to 10.67s in steps of BlinkStep. A period
// shorter than one step disables blinking and sets the group duty to duty.
//
// Blinking only affects channels in ModePWMPlusGroup.
func (dev *Dev) SetGroupBlink(ctx context.Context, period time.Duration, duty byte) error {
	newMode2 := dev.mode2
	if period >= BlinkStep {
		steps := int(period/BlinkStep) - 1
		if steps > 0xff {
			steps = 0xff
		}
		if err := dev.write(ctx, RegGroupFreq, byte(steps)); err != nil {
			return err
		}
		newMode2 |= Mode2Blink
	} else {
		newMode2 &^= Mode2Blink
	}
	if newMode2 != dev.mode2 {
		if err := dev.write(ctx, RegMode2, newMode2); err != nil {
			return err
		}
		dev.mode2 = newMode2
	}
	return dev.SetGroupPWM(ctx, duty)
}

// SetInvert allows you to easily invert the meaning of the PWM values. This
// is useful if you're driving LEDs with a transistor or other device that
// inverts the output.
func (dev *Dev) SetInvert(ctx context.Context, invert bool) error {
	newMode2 := dev.mode2
	if invert {
		newMode2 |= Mode2Invert
	} else {
		newMode2 &^= Mode2Invert
	}
	if err := dev.write(ctx, RegMode2, newMode2); err != nil {
		return err
	}
	dev.mode2 = newMode2
	return nil
}

// SetModes sets the output mode of LEDs, starting at channel 0. LEDOUT is
// only written when a mode changes.
func (dev *Dev) SetModes(ctx context.Context, modes ...LEDMode) error {
	if len(modes) > Channels {
		return fmt.Errorf("%w: %d modes", ErrChannel, len(modes))
	}
	newModes := dev.modes
	copy(newModes[:], modes)
	if dev.modesKnown && newModes == dev.modes {
		return nil
	}
	var out byte
	for i, m := range newModes {
		out |= byte(m&0x03) << (i * 2)
	}
	if err := dev.write(ctx, RegLEDOut, out); err != nil {
		return err
	}
	dev.modes = newModes
	dev.modesKnown = true
	return nil
}

// Modes returns the last LED modes written.
func (dev *Dev) Modes() [Channels]LEDMode {
	return dev.modes
}

func (dev *Dev) String() string {
	return fmt.Sprintf("pca9633{addr:0x%02x}", dev.addr)
}
