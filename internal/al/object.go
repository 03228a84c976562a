// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package al

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/elliotnunn/alfuel/internal/cursor"
)

const objectFormWithMotion = 2

// Object is an ALOD chunk: a list of named entries, each with a subset of
// the chunk's fields.
type Object struct {
	Header
	Version      uint8
	Form         uint8
	Aux          uint32
	MotionOffset uint32
	FieldNames   []string
	FieldOffsets []uint16
	Entries      []ObjectEntry
	Motion       *Motion // form 2 only
}

type ObjectEntry struct {
	Name   string
	Fields []ObjectField // in stored order
}

type ObjectField struct {
	Name  string
	Kind  FieldKind
	Value Value // nil for WidgetSkinID
}

// Get returns the value of the first field with this name.
func (e *ObjectEntry) Get(name string) (Value, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

func decodeObject(buf []byte) (*Object, error) {
	c := cursor.New(buf)
	c.Seek(4, io.SeekStart)

	o := &Object{Header: newHeader(buf)}
	o.Version = c.U8()
	o.Form = c.U8()
	nEntries := int(c.U8())
	nFields := int(c.U8())
	o.Aux = c.U32()
	o.MotionOffset = c.U32()

	entryAt := make([]int, nEntries)
	for i := range entryAt {
		entryAt[i] = int(c.U16())
	}
	for range nFields {
		o.FieldOffsets = append(o.FieldOffsets, c.U16())
	}
	for range nFields {
		o.FieldNames = append(o.FieldNames, c.CString())
	}
	if c.Err() != nil {
		return nil, c.Err()
	}

	for _, base := range entryAt {
		e, err := o.readEntry(c, base)
		if err != nil {
			return nil, fmt.Errorf("entry at %#x: %w", base, err)
		}
		o.Entries = append(o.Entries, e)
	}

	if o.Form == objectFormWithMotion {
		if int(o.MotionOffset) > len(buf) {
			return nil, fmt.Errorf("%w: motion at %#x", ErrFormat, o.MotionOffset)
		}
		m, err := decodeMotion(buf[o.MotionOffset:])
		if err != nil {
			return nil, fmt.Errorf("motion: %w", err)
		}
		o.Motion = m
	}
	return o, nil
}

func (o *Object) readEntry(c *cursor.Cursor, base int) (ObjectEntry, error) {
	c.Seek(base, io.SeekStart)
	e := ObjectEntry{Name: c.String(8)}
	n := int(c.U32())
	if n > c.Len() { // each field takes at least three bytes of table
		return e, fmt.Errorf("%w: %d fields", ErrFormat, n)
	}
	offsets := make([]int, n)
	for j := range offsets {
		offsets[j] = base + int(c.U16())
	}
	indexes := c.Bytes(n)
	if c.Err() != nil {
		return e, c.Err()
	}

	for j, idx := range indexes {
		if int(idx) >= len(o.FieldNames) {
			slog.Warn("alObjectFieldIndexOutOfRange", "entry", e.Name, "index", idx)
			continue
		}
		f := ObjectField{Name: o.FieldNames[idx], Kind: objectFields[o.FieldNames[idx]]}
		c.Seek(offsets[j], io.SeekStart)
		if f.Kind == FieldUnknown {
			var size int
			if j+1 < n {
				size = max(offsets[j+1]-offsets[j], 0)
			}
			f.Value = Unknown{Raw: c.Bytes(size)}
			slog.Info("alObjectFieldUnknown", "entry", e.Name, "field", f.Name, "size", size)
		} else {
			f.Value = f.Kind.read(c)
		}
		if c.Err() != nil {
			return e, fmt.Errorf("field %s: %w", f.Name, c.Err())
		}
		e.Fields = append(e.Fields, f)
	}
	return e, nil
}
