// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"encoding/binary"
	"math"
)

// builder assembles little-endian test fixtures.
type builder struct {
	b []byte
}

func (w *builder) u8(v ...uint8) *builder {
	w.b = append(w.b, v...)
	return w
}

func (w *builder) u16(v ...uint16) *builder {
	for _, x := range v {
		w.b = binary.LittleEndian.AppendUint16(w.b, x)
	}
	return w
}

func (w *builder) u32(v ...uint32) *builder {
	for _, x := range v {
		w.b = binary.LittleEndian.AppendUint32(w.b, x)
	}
	return w
}

func (w *builder) f32(v ...float32) *builder {
	for _, x := range v {
		w.u32(math.Float32bits(x))
	}
	return w
}

func (w *builder) raw(s string) *builder {
	w.b = append(w.b, s...)
	return w
}

func (w *builder) cstr(s string) *builder {
	return w.raw(s).u8(0)
}

// fixed writes s NUL-padded to n bytes.
func (w *builder) fixed(s string, n int) *builder {
	w.raw(s)
	w.b = append(w.b, make([]byte, n-len(s))...)
	return w
}

func (w *builder) align(n int) *builder {
	for len(w.b)%n != 0 {
		w.b = append(w.b, 0)
	}
	return w
}

func (w *builder) pad(n int) *builder {
	w.b = append(w.b, make([]byte, n)...)
	return w
}

func (w *builder) pos() int { return len(w.b) }

func (w *builder) put16(at int, v uint16) { binary.LittleEndian.PutUint16(w.b[at:], v) }
func (w *builder) put32(at int, v uint32) { binary.LittleEndian.PutUint32(w.b[at:], v) }

// allzStored wraps data in an ALLZ block made of a single literal run,
// using an 8-bit minimum literal width so the control fits two bytes.
func allzStored(data []byte) []byte {
	n := len(data) - 1 // literal control; must be < 0x80
	w := new(builder).raw("ALLZ").u8(1, 0, 0, 8).u32(uint32(len(data)))
	w.u8(byte(n<<1), byte(n>>7))
	w.b = append(w.b, data...)
	return w.b
}

type schemaField struct {
	offset uint16
	typ    uint8
	pad    uint8
	en, jp string
}

func schemaChunk(fields ...schemaField) []byte {
	w := new(builder).raw("ALRD").u16(1, uint16(len(fields)), 0)
	for _, f := range fields {
		w.u16(f.offset).u8(f.typ, f.pad, uint8(len(f.en)), uint8(len(f.jp)))
		w.cstr(f.en).cstr(f.jp).align(4).pad(int(f.pad)).align(4)
	}
	return w.b
}
