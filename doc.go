// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package grovelcd is a container for the Grove LCD RGB Backlight drivers.
//
// The display itself is in package jhd1313m1. Package pca9633 drives the
// backlight controller and can be used on its own. Package
// jhd1313m1/jhd1313m1test emulates the module for tests and renders it to a
// terminal or a PNG.
package grovelcd
