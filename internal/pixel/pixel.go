// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package pixel converts the packed and palette pixel encodings of ALIG
// images into 8-bit RGBA.
package pixel

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/elliotnunn/alfuel/internal/cursor"
)

var ErrUnknownFormat = errors.New("unknown pixel format")

// Packed 16-bit formats are a mixed-radix number: each channel is the
// remainder by its modulus, taken from the low end in the listed order.
type packed struct {
	order   [4]int // output channel, low end first
	modulus [4]uint32
}

const (
	red = iota
	green
	blue
	alpha
)

var packedFormats = map[string]packed{
	"ABG5": {[4]int{alpha, blue, green, red}, [4]uint32{2, 32, 32, 32}},
	"BGR5": {[4]int{blue, green, red, alpha}, [4]uint32{32, 32, 32, 2}},
	"ABG4": {[4]int{alpha, blue, green, red}, [4]uint32{16, 16, 16, 16}},
	"BGR4": {[4]int{blue, green, red, alpha}, [4]uint32{16, 16, 16, 16}},
}

func Formats() []string {
	return []string{"PAL1", "PAL4", "PAL6", "PAL8", "ABG5", "BGR5", "ABG4", "BGR4", "RGBA", "BGRA"}
}

// IsPalette reports whether the format indexes a palette that precedes the pixels.
func IsPalette(format string) bool {
	return len(format) == 4 && format[:3] == "PAL"
}

// Decode reads n pixels of the given format and returns 4n bytes of RGBA.
// An unknown format still returns a zeroed image, alongside ErrUnknownFormat.
// Read failures are left in the cursor for the caller to check.
func Decode(c *cursor.Cursor, format string, palette [][4]byte, n int) ([]byte, error) {
	img := make([]byte, 4*n)

	badIndex := 0
	put := func(i int, idx int) {
		if idx < len(palette) {
			copy(img[4*i:], palette[idx][:])
		} else {
			badIndex++
		}
	}

	switch format {
	case "PAL8":
		for i := range n {
			put(i, int(c.U8()))
		}
	case "PAL6":
		for i := range n {
			put(i, int(c.U16()))
		}
	case "PAL4":
		// an odd last pixel has no byte of its own and stays zero
		for i := 0; i+1 < n; i += 2 {
			x := c.U8()
			put(i, int(x>>4))
			put(i+1, int(x&0xf))
		}
	case "PAL1":
		for i := range n {
			put(i, int(c.Bit()))
		}
	case "ABG5", "BGR5", "ABG4", "BGR4":
		p := packedFormats[format]
		for i := range n {
			copy(img[4*i:], p.unpack(c.U16()))
		}
	case "RGBA":
		c.CopyTo(img, 0, 4*n)
	case "BGRA":
		c.CopyTo(img, 0, 4*n)
		for i := 0; i < len(img); i += 4 {
			img[i], img[i+2] = img[i+2], img[i]
		}
	default:
		return img, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if badIndex > 0 {
		slog.Warn("pixelPaletteIndexOutOfRange", "format", format, "palette", len(palette), "pixels", badIndex)
	}
	return img, nil
}

func (p packed) unpack(pix uint16) []byte {
	var rgba [4]byte
	v := uint32(pix)
	for i, ch := range p.order {
		m := p.modulus[i]
		rgba[ch] = scale(v%m, m)
		v /= m
	}
	return rgba[:]
}

// scale maps 0..m-1 onto 0..255, rounding to nearest.
func scale(v, m uint32) byte {
	return byte(float64(v)*255/float64(m-1) + 0.5)
}
