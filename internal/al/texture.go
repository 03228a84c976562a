// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/elliotnunn/alfuel/internal/cursor"
)

const (
	textureFormSprites     = 0x00
	textureFormPlaceholder = 0x0e

	spriteNameSize  = 0x20
	placeholderSize = 0x100
)

// A Frame is one cell of a sprite animation within the atlas.
type Frame struct {
	X, Y, Width, Height int16
	OriginX, OriginY    int16
}

type Sprite struct {
	Index      uint16
	Name       string // often empty
	Aux1, Aux2 uint16
	Frames     []Frame
}

// Texture is an ALTX chunk: a sprite atlas with its image.
type Texture struct {
	Header
	Version uint8
	Form    uint8
	Sprites []Sprite // in file order

	// Ambiguous lists sprites whose name was found only by comparing the
	// position against the first block start plus their own,
	// a match that can be coincidental.
	Ambiguous []uint16

	Width, Height int
	Image         *Image // form 0
	Placeholder   string // form 0x0E: file name standing in for the pixels
}

func decodeTexture(buf []byte) (*Texture, error) {
	c := cursor.New(buf)
	c.Seek(4, io.SeekStart)

	t := &Texture{Header: newHeader(buf)}
	t.Version = c.U8()
	t.Form = c.U8()
	count := int(c.U16())
	imageAt := int(c.U32())

	if t.Form == textureFormSprites {
		starts := make([]int, 0, count)
		for range count {
			starts = append(starts, int(c.U16()))
		}
		c.Align(4)
		if c.Err() != nil {
			return nil, c.Err()
		}

		for i := range count {
			// No flag says whether a block has a name, so guess from where it starts
			direct := c.Pos() == starts[i]-spriteNameSize
			relative := i > 0 && c.Pos() == starts[0]-spriteNameSize+starts[i]
			var s Sprite
			if direct || relative {
				s.Name = c.String(spriteNameSize)
			}
			s.Index = c.U16()
			s.Aux1 = c.U16()
			nFrames := int(c.U16())
			s.Aux2 = c.U16()
			if c.Err() != nil {
				return nil, fmt.Errorf("sprite %d: %w", i, c.Err())
			}
			if relative && !direct {
				slog.Warn("alTextureAmbiguousSpriteName", "sprite", s.Index, "name", s.Name)
				t.Ambiguous = append(t.Ambiguous, s.Index)
			}

			s.Frames = make([]Frame, 0, min(nFrames, c.Len()/8))
			for range nFrames {
				s.Frames = append(s.Frames, Frame{X: c.I16(), Y: c.I16(), Width: c.I16(), Height: c.I16()})
			}
			for j := range s.Frames {
				s.Frames[j].OriginX = c.I16()
				s.Frames[j].OriginY = c.I16()
			}
			if c.Err() != nil {
				return nil, fmt.Errorf("sprite %d: %w", s.Index, c.Err())
			}
			t.Sprites = append(t.Sprites, s)
		}
	}

	c.Seek(imageAt, io.SeekStart)
	switch t.Form {
	case textureFormSprites:
		if imageAt < 0 || imageAt > len(buf) {
			return nil, fmt.Errorf("%w: image at %#x", ErrFormat, imageAt)
		}
		im, err := decodeImage(buf[imageAt:])
		if err != nil {
			return nil, fmt.Errorf("image: %w", err)
		}
		t.Image, t.Width, t.Height = im, im.Width, im.Height
	case textureFormPlaceholder:
		t.Width = int(c.U16())
		t.Height = int(c.U16())
		t.Placeholder = c.String(placeholderSize)
	}
	if c.Err() != nil {
		return nil, c.Err()
	}
	return t, nil
}

// Sprite returns the sprite with the given index.
func (t *Texture) Sprite(index uint16) (Sprite, bool) {
	for _, s := range t.Sprites {
		if s.Index == index {
			return s, true
		}
	}
	return Sprite{}, false
}
