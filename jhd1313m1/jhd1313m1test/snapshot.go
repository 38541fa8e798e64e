// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jhd1313m1test

import (
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// Glyph cell geometry in LCD pixels, including the gap to the next cell.
const (
	glyphW = 5
	glyphH = 8
	cellW  = glyphW + 1
	cellH  = glyphH + 1
)

var (
	ink = color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}

	fontOnce sync.Once
	fontErr  error
	goFont   *truetype.Font
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		goFont, fontErr = truetype.Parse(goregular.TTF)
	})
	return goFont, fontErr
}

// Snapshot draws the visible part of the display, cols cells wide, with each
// LCD pixel scale image pixels wide. The background is the backlight color.
// Custom glyphs (codes 0..15) are drawn from CGRAM, printable ASCII with the
// Go Regular font; anything else is left blank.
func (e *Emulator) Snapshot(cols, scale int) (image.Image, error) {
	dc, err := e.draw(cols, scale)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG encodes Snapshot(cols, scale) as PNG to w.
func (e *Emulator) WritePNG(w io.Writer, cols, scale int) error {
	dc, err := e.draw(cols, scale)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func (e *Emulator) draw(cols, scale int) (*gg.Context, error) {
	f, err := loadFont()
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	rows := e.visible(cols)
	on := e.displayOn
	bg := e.color()
	cgram := e.cgram
	e.mu.Unlock()

	s := float64(scale)
	margin := 2 * s
	dc := gg.NewContext(int(2*margin)+cols*cellW*scale, int(2*margin)+Lines*cellH*scale)
	dc.SetColor(bg)
	dc.Clear()
	if !on {
		return dc, nil
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: glyphH * s}))
	dc.SetColor(ink)
	for l, row := range rows {
		y := margin + float64(l*cellH)*s
		for c := 0; c < len(row); c++ {
			x := margin + float64(c*cellW)*s
			ch := row[c]
			switch {
			case ch < 0x10:
				slot := int(ch & 0x07)
				for py, bits := range cgram[slot*8 : slot*8+8] {
					for px := 0; px < glyphW; px++ {
						if bits&(0x10>>px) != 0 {
							dc.DrawRectangle(x+float64(px)*s, y+float64(py)*s, s, s)
						}
					}
				}
				dc.Fill()
			case ch >= 0x20 && ch < 0x7f:
				dc.DrawStringAnchored(string(rune(ch)), x+glyphW*s/2, y+glyphH*s/2, 0.5, 0.5)
			}
		}
	}
	return dc, nil
}
