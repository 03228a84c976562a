// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/elliotnunn/alfuel/internal/cursor"
	"github.com/elliotnunn/alfuel/internal/pixel"
)

// Image is an ALIG chunk, decoded to 8-bit RGBA.
type Image struct {
	Header
	Version       uint8
	Format        string
	PaletteFormat string
	Width, Height int
	Palette       [][4]byte
	Pix           []byte `json:"-"` // 4 bytes per pixel, rows top to bottom
}

func decodeImage(buf []byte) (*Image, error) {
	c := cursor.New(buf)
	c.Seek(4, io.SeekStart)

	im := &Image{Header: newHeader(buf)}
	im.Version = c.U8()
	c.U8()
	nPalette := int(c.U16())
	im.Format = c.String(4)
	im.PaletteFormat = c.String(4)
	w, h := c.U32(), c.U32()
	c.Seek(8, io.SeekCurrent)
	if c.Err() != nil {
		return nil, c.Err()
	}

	// no format packs more than 8 pixels into a byte
	if n := uint64(w) * uint64(h); n > 8*uint64(len(buf)) {
		return nil, fmt.Errorf("%w: %dx%d image in %d bytes", ErrFormat, w, h, len(buf))
	}
	im.Width, im.Height = int(w), int(h)

	if pixel.IsPalette(im.Format) {
		im.Palette = make([][4]byte, nPalette)
		for i := range im.Palette {
			c.CopyTo(im.Palette[i][:], 0, 4)
		}
	}

	pix, err := pixel.Decode(c, im.Format, im.Palette, im.Width*im.Height)
	if errors.Is(err, pixel.ErrUnknownFormat) {
		slog.Warn("alImageFormatUnknown", "format", im.Format, "palette", im.PaletteFormat)
	} else if err != nil {
		return nil, err
	}
	if c.Err() != nil {
		return nil, c.Err()
	}
	im.Pix = pix
	return im, nil
}

// NRGBA returns a view of the pixels, sharing memory with the Image.
func (im *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    im.Pix,
		Stride: 4 * im.Width,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
}
