// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jhd1313m1_test

import (
	"context"
	"log"
	"time"

	"periph.io/x/conn/v3/display/displaytest"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/grovelcd/jhd1313m1"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Open default I²C bus.
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	ctx := context.Background()
	dev := jhd1313m1.NewI2C(bus, nil)
	if err := dev.Init(ctx); err != nil {
		log.Fatal(err)
	}
	if err := dev.InitBacklight(ctx); err != nil {
		log.Fatal(err)
	}
	_ = dev.SetColor(ctx, 0x00, 0x80, 0xff)
	_, _ = dev.WriteString(ctx, "Hello")
	_ = dev.SetCursor(ctx, 1, 2)
	_, _ = dev.WriteString(ctx, "world")
	time.Sleep(5 * time.Second)

	_ = dev.BlinkBacklight(ctx, time.Second)
	time.Sleep(5 * time.Second)
	_ = dev.BlinkBacklight(ctx, 0)
	_ = dev.Halt()
}

func ExampleTextDisplay() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	dev := jhd1313m1.NewI2C(bus, nil)
	if err := dev.Init(context.Background()); err != nil {
		log.Fatal(err)
	}
	td := jhd1313m1.NewTextDisplay(dev, 2, 16)
	for _, err := range displaytest.TestTextDisplay(td, true) {
		log.Println(err)
	}
	_ = td.Halt()
}
