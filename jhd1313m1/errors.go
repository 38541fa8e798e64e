// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jhd1313m1

import "fmt"

// TxError is returned when a bus write fails. The operation that issued it
// stopped there: writes after Step were not attempted, writes before it
// reached the device.
type TxError struct {
	// Op is the driver method that was running, e.g. "CreateChar".
	Op string
	// Addr is the I²C address written to.
	Addr uint16
	// Frame is the two byte buffer that failed.
	Frame [2]byte
	// Step is the zero-based index of the failed write within Op.
	Step int
	Err  error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s: %s: write %d [0x%02x 0x%02x] to 0x%02x: %v",
		packageName, e.Op, e.Step, e.Frame[0], e.Frame[1], e.Addr, e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}
