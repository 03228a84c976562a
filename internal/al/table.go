// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/elliotnunn/alfuel/internal/cursor"
)

// Table forms that carry a string pool, a name block, or no label
const (
	formPool4  = 0x04
	formPool14 = 0x14
	formNamed  = 0x1e
)

// A Row maps column names to values. Columns whose type is not understood,
// or whose string offset misses the pool, are absent.
type Row map[string]Value

// Table is an ALTB chunk.
type Table struct {
	Header
	Version  uint8
	Form     uint8
	Reserved uint16
	RowSize  uint32
	Label    string // absent in form 0x04
	Schema   []Field
	Rows     []Row

	Pool        map[uint32]string // offset within the pool
	PoolOffsets []uint32          // in pool order

	// form 0x1E only
	NameReserved uint32
	Name         string
}

func decodeTable(buf []byte) (*Table, error) {
	c := cursor.New(buf)
	c.Seek(4, io.SeekStart)

	t := &Table{Header: newHeader(buf)}
	t.Version = c.U8()
	t.Form = c.U8()
	count := int(c.U16())
	t.Reserved = c.U16()
	start := int(c.U16())
	t.RowSize = c.U32()

	if t.Form == formPool4 || t.Form == formPool14 || t.Form == formNamed {
		size, at := c.U32(), c.U32()
		if c.Err() != nil {
			return nil, c.Err()
		}
		var err error
		t.Pool, t.PoolOffsets, err = readPool(buf, int(at), int(size))
		if err != nil {
			return nil, fmt.Errorf("string pool: %w", err)
		}
	}
	var nameAt int
	if t.Form == formNamed {
		nameAt = int(c.U32())
	}
	if t.Form != formPool4 {
		t.Label = c.String(4)
	}
	if c.Err() != nil {
		return nil, c.Err()
	}

	if start < c.Pos() || start > len(buf) {
		return nil, fmt.Errorf("%w: table starts at %#x, inside its header", ErrFormat, start)
	}
	schema, err := decodeSchema(buf[c.Pos():start])
	if err != nil {
		return nil, err
	}
	t.Schema = schema.Fields

	missed := 0
	for i := range count {
		base := start + int(t.RowSize)*i
		row := make(Row, len(t.Schema))
		for _, f := range t.Schema {
			c.Seek(base+int(f.Offset), io.SeekStart)
			switch f.Type {
			case TypeInt:
				row[f.NameEN] = Int(c.I32())
			case TypeFloat:
				row[f.NameEN] = Float(c.F32())
			case TypeByte:
				row[f.NameEN] = Byte(c.U8())
			case TypeString:
				if s, ok := t.Pool[c.U32()]; ok {
					row[f.NameEN] = String(s)
				} else {
					missed++
				}
			}
		}
		if c.Err() != nil {
			return nil, fmt.Errorf("row %d: %w", i, c.Err())
		}
		t.Rows = append(t.Rows, row)
	}
	if missed > 0 {
		slog.Warn("alTableStringMissing", "label", t.Label, "cells", missed)
	}

	if t.Form == formNamed {
		c.Seek(nameAt, io.SeekStart)
		t.NameReserved = c.U32()
		t.Name = c.String(int(c.U8()))
		if c.Err() != nil {
			return nil, fmt.Errorf("table name: %w", c.Err())
		}
	}
	return t, nil
}

// readPool scans NUL-terminated strings from buf[at:at+size].
func readPool(buf []byte, at, size int) (map[uint32]string, []uint32, error) {
	pool := make(map[uint32]string)
	var order []uint32
	c := cursor.New(buf)
	c.Seek(at, io.SeekStart)
	for c.Pos() < at+size {
		off := uint32(c.Pos() - at)
		s := c.CString()
		if c.Err() != nil {
			return nil, nil, c.Err()
		}
		pool[off] = s
		order = append(order, off)
	}
	return pool, order, nil
}
