// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains the bus and timing plumbing shared by the chip
// drivers in this module.
//
// Drivers never open a bus themselves. They receive a Bus, which is a
// write-only, addressed byte transfer, and a Sleeper for the hold-off delays
// the datasheets require.
package common

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"periph.io/x/conn/v3/i2c"
)

// Bus writes a buffer to the device at the 7-bit address addr.
//
// Implementations must not return before the transfer completed or failed.
type Bus interface {
	Write(ctx context.Context, addr uint16, p []byte) error
}

// Sleeper pauses the calling goroutine. clock.Clock satisfies it.
type Sleeper interface {
	Sleep(d time.Duration)
}

// DefaultClock returns the wall clock used when no Sleeper is provided.
func DefaultClock() Sleeper {
	return clock.New()
}

// I2C adapts a periph.io i2c.Bus to Bus.
type I2C struct {
	bus i2c.Bus
}

// NewI2C returns a Bus writing to the periph.io bus b.
func NewI2C(b i2c.Bus) *I2C {
	return &I2C{bus: b}
}

// Write implements Bus. The context is checked before the transfer starts;
// periph.io transfers cannot be interrupted once issued.
func (b *I2C) Write(ctx context.Context, addr uint16, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.bus.Tx(addr, p, nil)
}

func (b *I2C) String() string {
	return fmt.Sprintf("common.I2C{%s}", b.bus)
}

var _ Bus = &I2C{}
