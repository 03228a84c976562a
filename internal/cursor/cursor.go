// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package cursor implements a positioned read head over an immutable byte
// buffer, with little-endian integer reads and an LSB-first bit reader.
//
// Byte-level reads that would run past the end of the buffer record a
// sticky error and return zero values, so a decoder can read a whole
// structure and check [Cursor.Err] once. Bit-level reads never fail: when
// the buffer is exhausted they feed zero bits and push the position past
// the end, which [Cursor.Overflow] reports.
package cursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var ErrBounds = errors.New("read past end of buffer")

type Cursor struct {
	buf []byte
	pos int

	// bit accumulator, drained LSB first and refilled a byte at a time
	bits  uint64
	nbits int

	err error
}

func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Len() int       { return len(c.buf) }
func (c *Cursor) Overflow() bool { return c.pos > len(c.buf) }
func (c *Cursor) Err() error     { return c.err }

// Buffer returns the underlying buffer, which must not be modified.
func (c *Cursor) Buffer() []byte { return c.buf }

func (c *Cursor) take(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.pos < 0 || c.pos+n > len(c.buf) {
		c.err = fmt.Errorf("%w: %d bytes at %#x of %#x", ErrBounds, n, c.pos, len(c.buf))
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *Cursor) U8() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *Cursor) U16() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (c *Cursor) U32() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (c *Cursor) I8() int8   { return int8(c.U8()) }
func (c *Cursor) I16() int16 { return int16(c.U16()) }
func (c *Cursor) I32() int32 { return int32(c.U32()) }

func (c *Cursor) F32() float32 { return math.Float32frombits(c.U32()) }

// String reads a fixed-length field and returns the text before the first NUL.
func (c *Cursor) String(n int) string {
	b := c.take(n)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// CString reads up to and including a NUL terminator,
// returning the text without it.
func (c *Cursor) CString() string {
	if c.err != nil {
		return ""
	}
	if c.pos < 0 || c.pos > len(c.buf) {
		c.err = fmt.Errorf("%w: string at %#x of %#x", ErrBounds, c.pos, len(c.buf))
		return ""
	}
	i := bytes.IndexByte(c.buf[c.pos:], 0)
	if i < 0 {
		c.err = fmt.Errorf("%w: unterminated string at %#x", ErrBounds, c.pos)
		return ""
	}
	return string(c.take(i + 1)[:i])
}

// Bytes returns a copy of the next n bytes.
func (c *Cursor) Bytes(n int) []byte {
	return bytes.Clone(c.take(n))
}

// CopyTo copies the next n bytes into dst[at:], without allocating.
func (c *Cursor) CopyTo(dst []byte, at, n int) {
	if c.err != nil {
		return
	}
	if at < 0 || n < 0 || at+n > len(dst) {
		c.err = fmt.Errorf("%w: copy of %d bytes to %#x of %#x", ErrBounds, n, at, len(dst))
		return
	}
	copy(dst[at:], c.take(n))
}

// Seek moves the byte position and returns it. Seeking never fails by itself:
// a position outside the buffer only matters to the next read.
func (c *Cursor) Seek(off int, whence int) int {
	switch whence {
	case io.SeekStart:
		c.pos = off
	case io.SeekCurrent:
		c.pos += off
	case io.SeekEnd:
		c.pos = len(c.buf) + off
	default:
		panic("invalid whence")
	}
	return c.pos
}

// Align rounds the position up to a multiple of n.
func (c *Cursor) Align(n int) {
	if r := c.pos % n; r != 0 {
		c.pos += n - r
	}
}

func (c *Cursor) fill(n int) {
	for c.nbits < n {
		var b byte
		if c.pos >= 0 && c.pos < len(c.buf) {
			b = c.buf[c.pos]
		}
		c.pos++
		c.bits |= uint64(b) << c.nbits
		c.nbits += 8
	}
}

func (c *Cursor) Bit() uint32 {
	c.fill(1)
	v := uint32(c.bits & 1)
	c.bits >>= 1
	c.nbits--
	return v
}

// Bits reads n bits, n <= 32, the first bit read being the least significant.
func (c *Cursor) Bits(n int) uint32 {
	if n == 0 {
		return 0
	} else if n > 32 {
		panic("bit read wider than 32")
	}
	c.fill(n)
	v := uint32(c.bits & (1<<n - 1))
	c.bits >>= n
	c.nbits -= n
	return v
}

// Unary counts 1 bits up to and including the first 0 bit.
func (c *Cursor) Unary() int {
	n := 0
	for c.Bit() == 1 {
		n++
	}
	return n
}
