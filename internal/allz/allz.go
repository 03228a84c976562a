// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package allz decompresses ALLZ blocks, an LZ77 variant whose lengths,
// distances and literal runs are all coded as a unary tier selector followed
// by a tier-dependent number of raw bits.
package allz

import (
	"errors"
	"fmt"

	"github.com/elliotnunn/alfuel/internal/cursor"
)

var (
	ErrFormat   = errors.New("not an ALLZ block")
	ErrOverflow = errors.New("ALLZ stream ended before the output was complete")
	ErrCorrupt  = errors.New("corrupt ALLZ stream")
)

const (
	Magic      = "ALLZ"
	HeaderSize = 12

	// MaxSize bounds the declared output size, which is allocated up front.
	MaxSize = 512 << 20
)

type Header struct {
	Version        uint8
	MinBitsLength  uint8
	MinBitsOffset  uint8
	MinBitsLiteral uint8
	DstSize        uint32
}

func ParseHeader(c *cursor.Cursor) (Header, error) {
	var h Header
	if c.String(4) != Magic {
		if c.Err() != nil {
			return h, c.Err()
		}
		return h, ErrFormat
	}
	h.Version = c.U8()
	h.MinBitsLength = c.U8()
	h.MinBitsOffset = c.U8()
	h.MinBitsLiteral = c.U8()
	h.DstSize = c.U32()
	return h, c.Err()
}

// Decompress returns exactly DstSize bytes, refusing blocks that declare more than MaxSize.
func Decompress(src []byte) ([]byte, error) {
	c := cursor.New(src)
	h, err := ParseHeader(c)
	if err != nil {
		return nil, err
	}
	if h.DstSize > MaxSize {
		return nil, fmt.Errorf("%w: declared size %#x exceeds %#x", ErrCorrupt, h.DstSize, MaxSize)
	}
	d := decoder{c: c, h: h, dst: make([]byte, h.DstSize)}
	if err := d.run(); err != nil {
		return nil, err
	}
	return d.dst, nil
}

type decoder struct {
	c   *cursor.Cursor
	h   Header
	dst []byte
	at  int // write position in dst
	err error
}

func (d *decoder) control(minBits uint8) int {
	u := d.c.Unary()
	width := u + int(minBits)
	if width > 32 {
		if d.err == nil {
			d.err = fmt.Errorf("%w: %d-bit control", ErrCorrupt, width)
		}
		return 0
	}
	n := int(d.c.Bits(width))
	if u > 0 {
		n += (1<<u - 1) << minBits
	}
	return n
}

func (d *decoder) length() int   { return 3 + d.control(d.h.MinBitsLength) }
func (d *decoder) distance() int { return 1 + d.control(d.h.MinBitsOffset) }
func (d *decoder) literal() int  { return 1 + d.control(d.h.MinBitsLiteral) }

// copyMatch copies n bytes from dist bytes back, one at a time so that
// a match may overlap the bytes it is producing.
func (d *decoder) copyMatch(dist, n int) {
	if d.at-dist < 0 {
		if d.err == nil {
			d.err = fmt.Errorf("%w: distance %d at output %#x", ErrCorrupt, dist, d.at)
		}
		return
	}
	n = min(n, len(d.dst)-d.at)
	for range n {
		d.dst[d.at] = d.dst[d.at-dist]
		d.at++
	}
}

func (d *decoder) copyLiteral(n int) {
	n = min(n, len(d.dst)-d.at)
	d.c.CopyTo(d.dst, d.at, n)
	d.at += n
}

func (d *decoder) fail() error {
	if d.err != nil {
		return d.err
	}
	return d.c.Err()
}

func (d *decoder) run() error {
	size := len(d.dst)

	lit := d.literal()
	if lit >= size {
		d.copyLiteral(lit)
		return d.fail()
	}
	d.copyLiteral(lit)
	dist, n := d.distance(), d.length()

	for !d.c.Overflow() {
		if err := d.fail(); err != nil {
			return err
		}
		if d.at+n >= size { // stopping on a match
			d.copyMatch(dist, n)
			return d.fail()
		}
		if d.c.Bit() == 0 {
			lit = d.literal()
			if d.at+n+lit >= size { // stopping on a literal
				d.copyMatch(dist, n)
				d.copyLiteral(lit)
				return d.fail()
			}
			d.copyMatch(dist, n)
			d.copyLiteral(lit)
		} else {
			d.copyMatch(dist, n)
		}
		dist, n = d.distance(), d.length()
	}
	if err := d.fail(); err != nil {
		return err
	}
	return fmt.Errorf("%w: %#x of %#x bytes written", ErrOverflow, d.at, size)
}
