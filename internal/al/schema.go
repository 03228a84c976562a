// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"fmt"
	"io"

	"github.com/elliotnunn/alfuel/internal/cursor"
)

// Column types of an ALRD field
const (
	TypeInt    = 0x01
	TypeFloat  = 0x04
	TypeByte   = 0x05
	TypeString = 0x20 // offset into the table's string pool
)

// A Field describes one column of a table row.
type Field struct {
	Offset uint16 // within the row
	Type   uint8
	NameEN string
	NameJP string
}

// Schema is an ALRD chunk, the column layout of an ALTB table.
type Schema struct {
	Header
	Version uint16
	Size    uint16
	Fields  []Field
}

func decodeSchema(buf []byte) (*Schema, error) {
	c := cursor.New(buf)
	if m := c.String(4); m != "ALRD" {
		if c.Err() != nil {
			return nil, c.Err()
		}
		return nil, fmt.Errorf("%w: schema tagged %q", ErrFormat, m)
	}

	s := &Schema{Header: newHeader(buf)}
	s.Version = c.U16()
	count := int(c.U16())
	s.Size = c.U16()

	for range count {
		var f Field
		f.Offset = c.U16()
		f.Type = c.U8()
		pad := int(c.U8())
		c.U16() // name lengths, not needed to find the terminators
		f.NameEN = c.CString()
		f.NameJP = c.CString()
		c.Align(4)
		c.Seek(pad, io.SeekCurrent)
		c.Align(4)
		if c.Err() != nil {
			return nil, c.Err()
		}
		s.Fields = append(s.Fields, f)
	}
	return s, nil
}
