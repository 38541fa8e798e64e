// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jhd1313m1

import (
	"context"
	"errors"
	"time"

	"github.com/GermanBionicSystems/grovelcd/pca9633"
)

// PCA9633 channels of the backlight LEDs.
const (
	chBlue  = 0
	chGreen = 1
	chRed   = 2
)

// blinkDuty is the group duty cycle while blinking: on for half the period.
const blinkDuty byte = 0x7f

// SetColor sets the backlight color. Red, green and blue are written in that
// order, one register each; a failure leaves the channels before it updated.
func (d *Dev) SetColor(ctx context.Context, r, g, b byte) error {
	d.tx.begin("SetColor")
	for _, c := range [...]struct {
		ch int
		v  byte
	}{{chRed, r}, {chGreen, g}, {chBlue, b}} {
		if err := d.rgb.SetPWM(ctx, c.ch, c.v); err != nil {
			return unwrapTx(err)
		}
	}
	return nil
}

// BacklightOn sets the backlight to white or black. The color set by
// SetColor is not remembered: turning it back on always gives white.
func (d *Dev) BacklightOn(ctx context.Context, on bool) error {
	if on {
		return d.SetColor(ctx, 0xff, 0xff, 0xff)
	}
	return d.SetColor(ctx, 0, 0, 0)
}

// InitBacklight takes the backlight controller out of sleep and puts the
// three LEDs under PWM control. Modules that were not initialized by a
// previous program stay dark until this is called.
func (d *Dev) InitBacklight(ctx context.Context) error {
	d.tx.begin("InitBacklight")
	return unwrapTx(d.rgb.Init(ctx, pca9633.Mode2Blink))
}

// BlinkBacklight blinks the backlight with the given period, on half of the
// time. The period is rounded down to 1/24s steps, up to 10.6s. A period of
// zero stops blinking. InitBacklight must have been called.
func (d *Dev) BlinkBacklight(ctx context.Context, period time.Duration) error {
	d.tx.begin("BlinkBacklight")
	mode := pca9633.ModePWM
	duty := byte(0xff)
	if period >= pca9633.BlinkStep {
		mode = pca9633.ModePWMPlusGroup
		duty = blinkDuty
	}
	if err := d.rgb.SetGroupBlink(ctx, period, duty); err != nil {
		return unwrapTx(err)
	}
	return unwrapTx(d.rgb.SetModes(ctx, mode, mode, mode, mode))
}

// unwrapTx strips the pca9633 prefix off bus failures so callers see the
// *TxError directly.
func unwrapTx(err error) error {
	var te *TxError
	if errors.As(err, &te) {
		return te
	}
	return err
}
