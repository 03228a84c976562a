// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

func imageChunk(format string, w, h uint32, palette [][4]byte, pix []byte) []byte {
	b := new(builder).raw("ALIG").u8(1, 0).u16(uint16(len(palette))).raw(format).raw("RGBA").u32(w, h).pad(8)
	for _, p := range palette {
		b.raw(string(p[:]))
	}
	b.raw(string(pix))
	return b.b
}

func TestImagePalette(t *testing.T) {
	pal := [][4]byte{{255, 0, 0, 255}, {0, 0, 255, 128}}
	ch, err := Parse(imageChunk("PAL4", 3, 1, pal, []byte{0x01, 0x10}))
	if err != nil {
		t.Fatal(err)
	}
	im, ok := ch.(*Image)
	if !ok {
		t.Fatalf("got %T", ch)
	}
	if im.Width != 3 || im.Height != 1 || len(im.Palette) != 2 {
		t.Fatalf("%dx%d with %d colours", im.Width, im.Height, len(im.Palette))
	}
	want := []byte{255, 0, 0, 255, 0, 0, 255, 128, 0, 0, 255, 128}
	if !bytes.Equal(im.Pix, want) {
		t.Errorf("pixels %v", im.Pix)
	}
	if c := im.NRGBA().At(1, 0); c != (color.NRGBA{0, 0, 255, 128}) {
		t.Errorf("At(1, 0) = %v", c)
	}
}

func TestImageDirect(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	ch, err := Parse(imageChunk("BGRA", 1, 2, nil, pix))
	if err != nil {
		t.Fatal(err)
	}
	if got := ch.(*Image).Pix; !bytes.Equal(got, []byte{3, 2, 1, 4, 7, 6, 5, 8}) {
		t.Errorf("pixels %v", got)
	}
}

func TestImageUnknownFormat(t *testing.T) {
	ch, err := Parse(imageChunk("DXT1", 2, 2, nil, make([]byte, 8)))
	if err != nil {
		t.Fatal(err)
	}
	im := ch.(*Image)
	if !bytes.Equal(im.Pix, make([]byte, 16)) {
		t.Errorf("expected a blank image, got %v", im.Pix)
	}
}

func TestImageErrors(t *testing.T) {
	_, err := Parse(imageChunk("RGBA", 1<<16, 1<<16, nil, nil))
	if !errors.Is(err, ErrFormat) {
		t.Errorf("huge dimensions: %v", err)
	}
	_, err = Parse(imageChunk("RGBA", 2, 2, nil, make([]byte, 15)))
	if err == nil {
		t.Error("short pixel data: no error")
	}
}

type testSprite struct {
	name   string
	start  uint16 // 0 picks a start that names the block only if it has a name
	index  uint16
	frames []Frame
}

func textureChunk(sprites []testSprite, img []byte) []byte {
	w := new(builder).raw("ALTX").u8(1, 0).u16(uint16(len(sprites)))
	imageAt := w.pos()
	w.u32(0)
	startAt := w.pos()
	for _, s := range sprites {
		w.u16(s.start)
	}
	w.align(4)
	for i, s := range sprites {
		if s.start == 0 && s.name != "" {
			w.put16(startAt+2*i, uint16(w.pos()+0x20))
		} else if s.start == 0 {
			w.put16(startAt+2*i, uint16(w.pos()))
		}
		if s.name != "" {
			w.fixed(s.name, 0x20)
		}
		w.u16(s.index, 0, uint16(len(s.frames)), 0)
		for _, f := range s.frames {
			w.u16(uint16(f.X), uint16(f.Y), uint16(f.Width), uint16(f.Height))
		}
		for _, f := range s.frames {
			w.u16(uint16(f.OriginX), uint16(f.OriginY))
		}
	}
	w.align(4)
	w.put32(imageAt, uint32(w.pos()))
	w.raw(string(img))
	return w.b
}

func TestTexture(t *testing.T) {
	walk := []Frame{{X: 0, Y: 0, Width: 16, Height: 24, OriginX: -8, OriginY: 24}}
	idle := []Frame{
		{X: 16, Y: 0, Width: 16, Height: 24, OriginX: 8, OriginY: 12},
		{X: 32, Y: 0, Width: 16, Height: 24, OriginX: 8, OriginY: 12},
	}
	buf := textureChunk([]testSprite{
		{name: "walk", index: 7, frames: walk},
		{index: 3, frames: idle},
	}, imageChunk("RGBA", 1, 1, nil, []byte{9, 9, 9, 9}))

	ch, err := Parse(buf)
	if err != nil {
		t.Fatal(err)
	}
	tx, ok := ch.(*Texture)
	if !ok {
		t.Fatalf("got %T", ch)
	}
	if len(tx.Sprites) != 2 || len(tx.Ambiguous) != 0 {
		t.Fatalf("%d sprites, ambiguous %v", len(tx.Sprites), tx.Ambiguous)
	}
	if s := tx.Sprites[0]; s.Name != "walk" || s.Index != 7 || len(s.Frames) != 1 || s.Frames[0] != walk[0] {
		t.Errorf("first sprite %+v", s)
	}
	s, ok := tx.Sprite(3)
	if !ok || s.Name != "" || len(s.Frames) != 2 || s.Frames[1] != idle[1] {
		t.Errorf("sprite 3: %+v", s)
	}
	if tx.Image == nil || tx.Width != 1 || tx.Height != 1 || !bytes.Equal(tx.Image.Pix, []byte{9, 9, 9, 9}) {
		t.Errorf("image %dx%d %+v", tx.Width, tx.Height, tx.Image)
	}
}

func TestTextureAmbiguousName(t *testing.T) {
	one := []Frame{{Width: 1, Height: 1}}
	// block 0: name at 16, data at 48, 20 bytes long; block 1 at 68.
	// A start of 52 for block 1 matches 48 - 0x20 + 52 = 68.
	buf := textureChunk([]testSprite{
		{name: "first", start: 48, index: 0, frames: one},
		{name: "second", start: 52, index: 1, frames: one},
	}, imageChunk("RGBA", 0, 0, nil, nil))

	tx, err := decodeTexture(buf)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Sprites[1].Name != "second" {
		t.Errorf("second sprite %+v", tx.Sprites[1])
	}
	if len(tx.Ambiguous) != 1 || tx.Ambiguous[0] != 1 {
		t.Errorf("ambiguous %v", tx.Ambiguous)
	}
}

func TestTexturePlaceholder(t *testing.T) {
	w := new(builder).raw("ALTX").u8(1, 0x0e).u16(0).u32(12)
	w.u16(256, 128).fixed("chara_01.png", 0x100)
	ch, err := Parse(w.b)
	if err != nil {
		t.Fatal(err)
	}
	tx := ch.(*Texture)
	if tx.Width != 256 || tx.Height != 128 || tx.Placeholder != "chara_01.png" || tx.Image != nil {
		t.Errorf("got %+v", tx)
	}
}
